package types

import (
	"fmt"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
	"github.com/bsl-gradual/bsl-gradual/internal/diag"
)

// StateID identifies one flow state. IDs increase monotonically over
// a single analysis; states form a DAG even when the control flow
// loops, because loop bodies are analyzed once.
type StateID int

// FlowState is a snapshot of every tracked variable's resolution at
// one program point.
type FlowState struct {
	VariableTypes map[string]TypeResolution
	ID            StateID
	Predecessors  []StateID
}

// MergePoint records one join of control flow: the states that flowed
// in and the state they merged into.
type MergePoint struct {
	Inputs []StateID
	Result StateID
}

// FlowAnalyzer threads a FlowState through statements, forking at
// branches and merging at join points via the union algebra.
type FlowAnalyzer struct {
	states  map[StateID]*FlowState
	current StateID
	nextID  StateID
	merges  []MergePoint

	ctx   *TypeContext
	diags []diag.Diagnostic
}

// NewFlowAnalyzer seeds state 0 from the context's variables.
func NewFlowAnalyzer(ctx *TypeContext) *FlowAnalyzer {
	initial := &FlowState{
		VariableTypes: make(map[string]TypeResolution, len(ctx.Variables)),
		ID:            0,
	}
	for name, r := range ctx.Variables {
		initial.VariableTypes[name] = r
	}
	return &FlowAnalyzer{
		states:  map[StateID]*FlowState{0: initial},
		current: 0,
		nextID:  1,
		ctx:     ctx,
	}
}

// CurrentState returns the state after the last analyzed statement.
func (f *FlowAnalyzer) CurrentState() *FlowState {
	return f.states[f.current]
}

// State returns the state with the given id, or nil.
func (f *FlowAnalyzer) State(id StateID) *FlowState {
	return f.states[id]
}

// Diagnostics returns the findings accumulated so far.
func (f *FlowAnalyzer) Diagnostics() []diag.Diagnostic {
	return f.diags
}

// AnalyzeStatements runs each statement through the state machine in
// order.
func (f *FlowAnalyzer) AnalyzeStatements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		f.AnalyzeStatement(stmt)
	}
}

// AnalyzeStatement advances the current state over one statement.
func (f *FlowAnalyzer) AnalyzeStatement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		resolved := UnknownType()
		if s.Value != nil {
			resolved = f.InferExpression(s.Value)
		}
		f.assign(s.Name, resolved.WithLocation(s.Loc))

	case *ast.Assignment:
		target, ok := s.Target.(*ast.Identifier)
		if !ok {
			// Member and index targets are not tracked.
			f.InferExpression(s.Value)
			return
		}
		resolved := f.InferExpression(s.Value)
		f.checkReassignment(target.Name, resolved, s.Loc)
		f.assign(target.Name, resolved.WithLocation(s.Loc))

	case *ast.ProcedureCall:
		f.checkCall(s.Name, len(s.Args), s.Loc)
		for _, arg := range s.Args {
			f.InferExpression(arg)
		}

	case *ast.If:
		f.analyzeIf(s)

	case *ast.For:
		f.InferExpression(s.From)
		f.InferExpression(s.To)
		if s.Step != nil {
			f.InferExpression(s.Step)
		}
		f.assign(s.Variable, KnownType(Primitive{Kind: PrimitiveNumber}).WithLocation(s.Loc))
		// One pass over the body; no fixpoint.
		f.AnalyzeStatements(s.Body)

	case *ast.ForEach:
		f.InferExpression(s.Collection)
		f.assign(s.Variable, UnknownType().WithLocation(s.Loc))
		f.AnalyzeStatements(s.Body)

	case *ast.While:
		f.InferExpression(s.Condition)
		f.AnalyzeStatements(s.Body)

	case *ast.Return:
		if s.Value != nil {
			f.InferExpression(s.Value)
		}

	case *ast.Try:
		f.AnalyzeStatements(s.TryBlock)
		f.AnalyzeStatements(s.CatchBlock)
	}
}

// analyzeIf forks the current state into refined then/else states and
// merges them afterwards. Chained elseif branches do not participate:
// only the then and else bodies are analyzed, which trades precision
// for a single fork/merge per conditional.
func (f *FlowAnalyzer) analyzeIf(s *ast.If) {
	before := f.current

	narrower := NewNarrower(f.contextAt(before))
	refinements := narrower.AnalyzeCondition(s.Condition)
	f.InferExpression(s.Condition)

	thenStart := f.fork(before, refinements)
	f.current = thenStart
	f.AnalyzeStatements(s.ThenBranch)
	thenEnd := f.current

	elseBody := s.ElseBranch

	elseEnd := before
	if elseBody != nil {
		elseStart := f.fork(before, narrower.InvertRefinements(refinements))
		f.current = elseStart
		f.AnalyzeStatements(elseBody)
		elseEnd = f.current
	}

	f.current = f.Merge([]StateID{thenEnd, elseEnd})
}

// fork creates a new state from base with the refinements applied.
func (f *FlowAnalyzer) fork(base StateID, refinements []TypeRefinement) StateID {
	parent := f.states[base]
	vars := make(map[string]TypeResolution, len(parent.VariableTypes))
	for name, r := range parent.VariableTypes {
		vars[name] = r
	}
	for _, ref := range refinements {
		vars[ref.Variable] = ref.RefinedType
	}
	return f.newState(vars, []StateID{base})
}

// Merge joins several states into one. Variables are unioned by name:
// each variable's type in the merged state is the union of its types
// in every input state that defines it. A single input short-circuits
// to that state unchanged.
func (f *FlowAnalyzer) Merge(ids []StateID) StateID {
	if len(ids) == 1 {
		return ids[0]
	}

	names := make(map[string]struct{})
	for _, id := range ids {
		for name := range f.states[id].VariableTypes {
			names[name] = struct{}{}
		}
	}

	vars := make(map[string]TypeResolution, len(names))
	for name := range names {
		var inputs []TypeResolution
		for _, id := range ids {
			if r, ok := f.states[id].VariableTypes[name]; ok {
				inputs = append(inputs, r)
			}
		}
		vars[name] = CreateUnion(inputs)
	}

	preds := make([]StateID, len(ids))
	copy(preds, ids)
	merged := f.newState(vars, preds)
	f.merges = append(f.merges, MergePoint{Inputs: preds, Result: merged})
	return merged
}

// MergePoints returns every join recorded during the analysis, in
// creation order.
func (f *FlowAnalyzer) MergePoints() []MergePoint {
	return f.merges
}

func (f *FlowAnalyzer) newState(vars map[string]TypeResolution, preds []StateID) StateID {
	id := f.nextID
	f.nextID++
	f.states[id] = &FlowState{VariableTypes: vars, ID: id, Predecessors: preds}
	f.current = id
	return id
}

func (f *FlowAnalyzer) assign(name string, r TypeResolution) {
	cur := f.states[f.current]
	vars := make(map[string]TypeResolution, len(cur.VariableTypes)+1)
	for n, t := range cur.VariableTypes {
		vars[n] = t
	}
	vars[name] = r
	f.newState(vars, []StateID{cur.ID})
}

// contextAt builds a context snapshot for the narrower from a state.
func (f *FlowAnalyzer) contextAt(id StateID) *TypeContext {
	snapshot := f.ctx.Clone()
	snapshot.Variables = make(map[string]TypeResolution, len(f.states[id].VariableTypes))
	for name, r := range f.states[id].VariableTypes {
		snapshot.Variables[name] = r
	}
	return snapshot
}

// InferExpression resolves an expression's type against the current
// state. Unresolvable expressions come back unknown; inference never
// fails.
func (f *FlowAnalyzer) InferExpression(expr ast.Expr) TypeResolution {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return KnownType(Primitive{Kind: PrimitiveNumber})
	case *ast.StringLit:
		return KnownType(Primitive{Kind: PrimitiveString})
	case *ast.BoolLit:
		return KnownType(Primitive{Kind: PrimitiveBoolean})
	case *ast.DateLit:
		return KnownType(Primitive{Kind: PrimitiveDate})
	case *ast.UndefinedLit:
		return KnownType(Special{Kind: SpecialUndefined})
	case *ast.NullLit:
		return KnownType(Special{Kind: SpecialNull})

	case *ast.Identifier:
		if r, ok := f.states[f.current].VariableTypes[e.Name]; ok {
			return r
		}
		f.diags = append(f.diags, diag.Warning(
			diag.CodeUseBeforeDeclaration,
			fmt.Sprintf("переменная %q используется до объявления", e.Name),
			e.Loc,
		))
		return UnknownType()

	case *ast.Binary:
		return f.inferBinary(e)

	case *ast.Unary:
		f.InferExpression(e.Operand)
		if e.Op == ast.Minus {
			return InferredType(Primitive{Kind: PrimitiveNumber}, 0.9)
		}
		return KnownType(Primitive{Kind: PrimitiveBoolean})

	case *ast.Ternary:
		f.InferExpression(e.Condition)
		thenType := f.InferExpression(e.Then)
		elseType := f.InferExpression(e.Else)
		return CreateUnion([]TypeResolution{thenType, elseType})

	case *ast.Call:
		return f.inferCall(e)

	case *ast.New:
		for _, arg := range e.Args {
			f.InferExpression(arg)
		}
		if p, ok := LookupPlatformType(e.TypeName); ok {
			return KnownType(p)
		}
		return InferredType(Platform{TypeName: e.TypeName}, 0.7)

	case *ast.ArrayLit:
		for _, elem := range e.Elements {
			f.InferExpression(elem)
		}
		p, _ := LookupPlatformType("Массив")
		return KnownType(p)

	case *ast.StructureLit:
		for _, field := range e.Fields {
			f.InferExpression(field.Value)
		}
		p, _ := LookupPlatformType("Структура")
		return KnownType(p)

	case *ast.MemberAccess:
		f.InferExpression(e.Object)
		return UnknownType()

	case *ast.Index:
		f.InferExpression(e.Object)
		f.InferExpression(e.Key)
		return UnknownType()
	}
	return UnknownType()
}

func (f *FlowAnalyzer) inferBinary(e *ast.Binary) TypeResolution {
	left := f.InferExpression(e.Left)
	right := f.InferExpression(e.Right)

	switch {
	case e.Op.IsComparison():
		return KnownType(Primitive{Kind: PrimitiveBoolean})

	case e.Op.IsLogical():
		f.checkOperands(e, left, right, Primitive{Kind: PrimitiveBoolean})
		return KnownType(Primitive{Kind: PrimitiveBoolean})

	default: // arithmetic, including modulo
		leftNum := isPrimitive(left, PrimitiveNumber)
		rightNum := isPrimitive(right, PrimitiveNumber)
		switch {
		case leftNum && rightNum:
			if left.IsKnown() && right.IsKnown() {
				return KnownType(Primitive{Kind: PrimitiveNumber})
			}
			return InferredType(Primitive{Kind: PrimitiveNumber}, 0.9)
		case leftNum || rightNum:
			f.checkOperands(e, left, right, Primitive{Kind: PrimitiveNumber})
			return InferredType(Primitive{Kind: PrimitiveNumber}, 0.8)
		case e.Op == ast.Add && isPrimitive(left, PrimitiveString) && isPrimitive(right, PrimitiveString):
			if left.IsKnown() && right.IsKnown() {
				return KnownType(Primitive{Kind: PrimitiveString})
			}
			return InferredType(Primitive{Kind: PrimitiveString}, 0.9)
		default:
			f.checkOperands(e, left, right, Primitive{Kind: PrimitiveNumber})
			return UnknownType()
		}
	}
}

// checkOperands warns about an operand whose type is confidently not
// what the operator expects. Unknown operands never warn; partial
// knowledge stays permissive.
func (f *FlowAnalyzer) checkOperands(e *ast.Binary, left, right TypeResolution, want ConcreteType) {
	for _, operand := range []TypeResolution{left, right} {
		if !confident(operand) {
			continue
		}
		concrete, ok := operand.ConcreteType()
		if !ok || EqualConcrete(concrete, want) {
			continue
		}
		f.diags = append(f.diags, diag.Warning(
			diag.CodeOperandTypeMismatch,
			fmt.Sprintf("операнд типа %s не подходит для операции, ожидается %s", concrete.Name(), want.Name()),
			e.Loc,
		))
	}
}

func (f *FlowAnalyzer) inferCall(e *ast.Call) TypeResolution {
	args := make([]TypeResolution, len(e.Args))
	for i, arg := range e.Args {
		args[i] = f.InferExpression(arg)
	}

	ident, ok := e.Function.(*ast.Identifier)
	if !ok {
		// Method calls resolve dynamically.
		f.InferExpression(e.Function)
		return UnknownType()
	}

	f.checkCall(ident.Name, len(e.Args), e.Loc)

	if sig, ok := f.ctx.FunctionSig(ident.Name); ok {
		return sig.ReturnType
	}
	if fn, ok := LookupGlobalFunction(ident.Name); ok {
		return fn.ResolveReturnTypeWith(args)
	}
	return UnknownType()
}

// checkCall validates arity against a known signature and reports
// callees with no signature at all.
func (f *FlowAnalyzer) checkCall(name string, argc int, loc ast.SourceLocation) {
	if sig, ok := f.ctx.FunctionSig(name); ok {
		if argc != len(sig.Params) {
			f.diags = append(f.diags, diag.Error(
				diag.CodeArityMismatch,
				fmt.Sprintf("функция %q ожидает %d аргументов, передано %d", name, len(sig.Params), argc),
				loc,
			))
		}
		return
	}
	if fn, ok := LookupGlobalFunction(name); ok {
		if fn.ParamCount >= 0 && argc != fn.ParamCount {
			f.diags = append(f.diags, diag.Error(
				diag.CodeArityMismatch,
				fmt.Sprintf("функция %q ожидает %d аргументов, передано %d", name, fn.ParamCount, argc),
				loc,
			))
		}
		return
	}
	f.diags = append(f.diags, diag.Info(
		diag.CodeUnknownFunction,
		fmt.Sprintf("функция %q не найдена в текущем контексте", name),
		loc,
	))
}

// checkReassignment warns when a variable already confidently typed
// is reassigned to an incompatible type. Either side being unknown
// suppresses the warning.
func (f *FlowAnalyzer) checkReassignment(name string, incoming TypeResolution, loc ast.SourceLocation) {
	existing, ok := f.states[f.current].VariableTypes[name]
	if !ok {
		return
	}
	if compatibleResolutions(existing, incoming) {
		return
	}
	f.diags = append(f.diags, diag.Warning(
		diag.CodeIncompatibleAssignment,
		fmt.Sprintf("переменной %q типа %s присваивается несовместимое значение %s", name, existing, incoming),
		loc,
	))
}

// compatibleResolutions is deliberately permissive: partial knowledge
// never produces a warning in a gradually typed language.
func compatibleResolutions(a, b TypeResolution) bool {
	if a.IsUnknown() || b.IsUnknown() {
		return true
	}
	am := resolutionMembers(a)
	bm := resolutionMembers(b)
	if len(am) == 0 || len(bm) == 0 {
		return true
	}
	return IsCompatibleWithUnion(a, b)
}

func isPrimitive(r TypeResolution, kind PrimitiveKind) bool {
	concrete, ok := r.ConcreteType()
	if !ok {
		return false
	}
	p, ok := concrete.(Primitive)
	return ok && p.Kind == kind
}

func confident(r TypeResolution) bool {
	switch r.Certainty.Kind {
	case CertaintyKnown:
		return true
	case CertaintyInferred:
		return r.Certainty.Confidence >= 0.8
	default:
		return false
	}
}
