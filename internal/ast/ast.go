package ast

import "fmt"

// Node represents any syntax tree node with an associated source location.
type Node interface {
	Pos() SourceLocation
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// SourceLocation is a position in BSL source code.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// String returns a human-readable representation of the location.
func (l SourceLocation) String() string {
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsValid reports whether the location carries real position information.
func (l SourceLocation) IsValid() bool {
	return l.Line > 0
}

// Program is the root node of a parsed BSL module.
type Program struct {
	Statements []Stmt
}

// Pos returns the location of the first statement, or a zero location
// for an empty module.
func (p *Program) Pos() SourceLocation {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return SourceLocation{}
}

// Parameter describes a procedure/function parameter.
// ByValue corresponds to the Знач keyword.
type Parameter struct {
	Name         string
	ByValue      bool
	DefaultValue Expr
}

// VarDeclaration declares a module variable: Перем Имя [= Значение] [Экспорт].
type VarDeclaration struct {
	Name   string
	Export bool
	Value  Expr // optional initializer
	Loc    SourceLocation
}

// ProcedureDecl declares a procedure (no return value).
type ProcedureDecl struct {
	Name   string
	Params []Parameter
	Body   []Stmt
	Export bool
	Loc    SourceLocation
}

// FunctionDecl declares a function.
type FunctionDecl struct {
	Name   string
	Params []Parameter
	Body   []Stmt
	Export bool
	Loc    SourceLocation
}

// Assignment assigns a value to a target: Переменная = Выражение.
type Assignment struct {
	Target Expr
	Value  Expr
	Loc    SourceLocation
}

// ProcedureCall is a statement-position call: ИмяПроцедуры(Арг1, Арг2).
type ProcedureCall struct {
	Name string
	Args []Expr
	Loc  SourceLocation
}

// ElseIfBranch is one ИначеЕсли clause of an If statement.
type ElseIfBranch struct {
	Condition Expr
	Body      []Stmt
}

// If is the full conditional: Если ... Тогда ... ИначеЕсли ... Иначе ... КонецЕсли.
type If struct {
	Condition      Expr
	ThenBranch     []Stmt
	ElseIfBranches []ElseIfBranch
	ElseBranch     []Stmt // nil when absent
	Loc            SourceLocation
}

// For is a counted loop: Для Переменная = От По [Шаг] Цикл ... КонецЦикла.
type For struct {
	Variable string
	From     Expr
	To       Expr
	Step     Expr // optional
	Body     []Stmt
	Loc      SourceLocation
}

// ForEach iterates a collection: Для Каждого Переменная Из Коллекция Цикл.
type ForEach struct {
	Variable   string
	Collection Expr
	Body       []Stmt
	Loc        SourceLocation
}

// While is a condition loop: Пока Условие Цикл ... КонецЦикла.
type While struct {
	Condition Expr
	Body      []Stmt
	Loc       SourceLocation
}

// Return exits a function, optionally with a value: Возврат [Выражение].
type Return struct {
	Value Expr // nil for bare Возврат
	Loc   SourceLocation
}

// Break exits the innermost loop: Прервать.
type Break struct {
	Loc SourceLocation
}

// Continue skips to the next loop iteration: Продолжить.
type Continue struct {
	Loc SourceLocation
}

// Try is the exception handler: Попытка ... Исключение ... КонецПопытки.
type Try struct {
	TryBlock   []Stmt
	CatchBlock []Stmt // nil when the handler is empty
	Loc        SourceLocation
}

// Raise raises an exception: ВызватьИсключение "текст".
type Raise struct {
	Message string
	Loc     SourceLocation
}

func (s *VarDeclaration) Pos() SourceLocation { return s.Loc }
func (s *ProcedureDecl) Pos() SourceLocation  { return s.Loc }
func (s *FunctionDecl) Pos() SourceLocation   { return s.Loc }
func (s *Assignment) Pos() SourceLocation     { return s.Loc }
func (s *ProcedureCall) Pos() SourceLocation  { return s.Loc }
func (s *If) Pos() SourceLocation             { return s.Loc }
func (s *For) Pos() SourceLocation            { return s.Loc }
func (s *ForEach) Pos() SourceLocation        { return s.Loc }
func (s *While) Pos() SourceLocation          { return s.Loc }
func (s *Return) Pos() SourceLocation         { return s.Loc }
func (s *Break) Pos() SourceLocation          { return s.Loc }
func (s *Continue) Pos() SourceLocation       { return s.Loc }
func (s *Try) Pos() SourceLocation            { return s.Loc }
func (s *Raise) Pos() SourceLocation          { return s.Loc }

func (*VarDeclaration) stmtNode() {}
func (*ProcedureDecl) stmtNode()  {}
func (*FunctionDecl) stmtNode()   {}
func (*Assignment) stmtNode()     {}
func (*ProcedureCall) stmtNode()  {}
func (*If) stmtNode()             {}
func (*For) stmtNode()            {}
func (*ForEach) stmtNode()        {}
func (*While) stmtNode()          {}
func (*Return) stmtNode()         {}
func (*Break) stmtNode()          {}
func (*Continue) stmtNode()       {}
func (*Try) stmtNode()            {}
func (*Raise) stmtNode()          {}

// BinaryOp enumerates BSL binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Modulo

	Equal
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual

	And
	Or
)

// IsArithmetic reports whether the operator is +, -, *, / or %.
func (op BinaryOp) IsArithmetic() bool { return op <= Modulo }

// IsComparison reports whether the operator is a comparison.
func (op BinaryOp) IsComparison() bool { return op >= Equal && op <= GreaterOrEqual }

// IsLogical reports whether the operator is И or ИЛИ.
func (op BinaryOp) IsLogical() bool { return op == And || op == Or }

// UnaryOp enumerates BSL unary operators.
type UnaryOp int

const (
	Not UnaryOp = iota
	Minus
)

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
	Loc   SourceLocation
}

// StringLit is a string literal.
type StringLit struct {
	Value string
	Loc   SourceLocation
}

// BoolLit is Истина or Ложь.
type BoolLit struct {
	Value bool
	Loc   SourceLocation
}

// DateLit is a date literal: '20240101'.
type DateLit struct {
	Value string
	Loc   SourceLocation
}

// UndefinedLit is the Неопределено literal.
type UndefinedLit struct {
	Loc SourceLocation
}

// NullLit is the Null literal.
type NullLit struct {
	Loc SourceLocation
}

// Identifier references a variable by name.
type Identifier struct {
	Name string
	Loc  SourceLocation
}

// MemberAccess accesses a property: Объект.Свойство.
type MemberAccess struct {
	Object Expr
	Member string
	Loc    SourceLocation
}

// Index subscripts a collection: Массив[0].
type Index struct {
	Object Expr
	Key    Expr
	Loc    SourceLocation
}

// Call invokes a function or method value.
type Call struct {
	Function Expr
	Args     []Expr
	Loc      SourceLocation
}

// New constructs a platform object: Новый ИмяТипа(Параметры).
type New struct {
	TypeName string
	Args     []Expr
	Loc      SourceLocation
}

// Binary is a binary operation.
type Binary struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
	Loc   SourceLocation
}

// Unary is a unary operation.
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Loc     SourceLocation
}

// Ternary is the ?(условие, а, б) expression.
type Ternary struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Loc       SourceLocation
}

// ArrayLit is an array constructor expression.
type ArrayLit struct {
	Elements []Expr
	Loc      SourceLocation
}

// StructureField is one key/value pair of a structure constructor.
type StructureField struct {
	Name  string
	Value Expr
}

// StructureLit is a structure constructor expression.
type StructureLit struct {
	Fields []StructureField
	Loc    SourceLocation
}

func (e *NumberLit) Pos() SourceLocation    { return e.Loc }
func (e *StringLit) Pos() SourceLocation    { return e.Loc }
func (e *BoolLit) Pos() SourceLocation      { return e.Loc }
func (e *DateLit) Pos() SourceLocation      { return e.Loc }
func (e *UndefinedLit) Pos() SourceLocation { return e.Loc }
func (e *NullLit) Pos() SourceLocation      { return e.Loc }
func (e *Identifier) Pos() SourceLocation   { return e.Loc }
func (e *MemberAccess) Pos() SourceLocation { return e.Loc }
func (e *Index) Pos() SourceLocation        { return e.Loc }
func (e *Call) Pos() SourceLocation         { return e.Loc }
func (e *New) Pos() SourceLocation          { return e.Loc }
func (e *Binary) Pos() SourceLocation       { return e.Loc }
func (e *Unary) Pos() SourceLocation        { return e.Loc }
func (e *Ternary) Pos() SourceLocation      { return e.Loc }
func (e *ArrayLit) Pos() SourceLocation     { return e.Loc }
func (e *StructureLit) Pos() SourceLocation { return e.Loc }

func (*NumberLit) exprNode()    {}
func (*StringLit) exprNode()    {}
func (*BoolLit) exprNode()      {}
func (*DateLit) exprNode()      {}
func (*UndefinedLit) exprNode() {}
func (*NullLit) exprNode()      {}
func (*Identifier) exprNode()   {}
func (*MemberAccess) exprNode() {}
func (*Index) exprNode()        {}
func (*Call) exprNode()         {}
func (*New) exprNode()          {}
func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Ternary) exprNode()      {}
func (*ArrayLit) exprNode()     {}
func (*StructureLit) exprNode() {}
