package graph

import (
	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// Builder constructs a dependency graph from a parsed module.
type Builder struct {
	graph    *Graph
	module   string
	scope    Scope
	exported map[string]bool
}

// NewBuilder creates a builder for the named module.
func NewBuilder(module string) *Builder {
	return &Builder{
		graph:    New(),
		module:   module,
		scope:    ModuleScope(module),
		exported: make(map[string]bool),
	}
}

// Build walks the program and returns the populated graph.
func (b *Builder) Build(program *ast.Program) *Graph {
	// Declarations first, so call sites resolve to the same node as
	// the declaration regardless of order.
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.ProcedureDecl:
			b.exported[s.Name] = s.Export
		case *ast.FunctionDecl:
			b.exported[s.Name] = s.Export
		}
	}
	for _, stmt := range program.Statements {
		b.statement(stmt)
	}
	return b.graph
}

func (b *Builder) functionNode(name string) Function {
	return Function{Name: name, Exported: b.exported[name]}
}

func (b *Builder) statement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		node := Variable{Name: s.Name, Scope: b.scope}
		b.graph.AddNode(node)
		if s.Value != nil {
			b.expression(s.Value, node, DepType{Kind: DepAssignment}, s.Loc)
		}

	case *ast.ProcedureDecl:
		b.declaration(s.Name, s.Export, s.Params, s.Body, s.Loc)

	case *ast.FunctionDecl:
		fn := b.declaration(s.Name, s.Export, s.Params, s.Body, s.Loc)
		b.graph.AddEdge(ReturnValue{Function: s.Name}, fn, DepType{Kind: DepReturn}, s.Loc)

	case *ast.Assignment:
		if target, ok := s.Target.(*ast.Identifier); ok {
			node := Variable{Name: target.Name, Scope: b.scope}
			b.graph.AddNode(node)
			b.expression(s.Value, node, DepType{Kind: DepAssignment}, s.Loc)
		}

	case *ast.ProcedureCall:
		callee := b.functionNode(s.Name)
		b.graph.AddNode(callee)
		for i, arg := range s.Args {
			b.expression(arg, callee, DepType{Kind: DepParameter, ParamIndex: i}, s.Loc)
		}

	case *ast.If:
		b.condition(s.Condition, s.Loc)
		b.statements(s.ThenBranch)
		for _, branch := range s.ElseIfBranches {
			b.condition(branch.Condition, s.Loc)
			b.statements(branch.Body)
		}
		b.statements(s.ElseBranch)

	case *ast.For:
		node := Variable{Name: s.Variable, Scope: b.scope}
		b.graph.AddNode(node)
		b.expression(s.From, node, DepType{Kind: DepAssignment}, s.Loc)
		b.expression(s.To, node, DepType{Kind: DepExpression}, s.Loc)
		if s.Step != nil {
			b.expression(s.Step, node, DepType{Kind: DepExpression}, s.Loc)
		}
		b.statements(s.Body)

	case *ast.ForEach:
		node := Variable{Name: s.Variable, Scope: b.scope}
		b.graph.AddNode(node)
		b.expression(s.Collection, node, DepType{Kind: DepAssignment}, s.Loc)
		b.statements(s.Body)

	case *ast.While:
		b.condition(s.Condition, s.Loc)
		b.statements(s.Body)

	case *ast.Return:
		if fnScope := b.enclosingFunction(); fnScope != "" && s.Value != nil {
			ret := ReturnValue{Function: fnScope}
			b.graph.AddNode(ret)
			b.expression(s.Value, ret, DepType{Kind: DepReturn}, s.Loc)
		}

	case *ast.Try:
		b.statements(s.TryBlock)
		b.statements(s.CatchBlock)
	}
}

func (b *Builder) statements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		b.statement(stmt)
	}
}

func (b *Builder) declaration(name string, exported bool, params []ast.Parameter, body []ast.Stmt, loc ast.SourceLocation) Function {
	fn := Function{Name: name, Exported: exported}
	b.graph.AddNode(fn)

	for i, param := range params {
		p := Parameter{Function: name, Name: param.Name}
		b.graph.AddEdge(p, fn, DepType{Kind: DepParameter, ParamIndex: i}, loc)
	}

	prev := b.scope
	b.scope = FunctionScope(name)
	b.statements(body)
	b.scope = prev
	return fn
}

func (b *Builder) enclosingFunction() string {
	if b.scope.Kind == ScopeFunction || b.scope.Kind == ScopeLocal {
		return b.scope.Name
	}
	return ""
}

// condition records every identifier a branch condition reads.
func (b *Builder) condition(cond ast.Expr, loc ast.SourceLocation) {
	if cond == nil {
		return
	}
	ast.Walk(cond, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Identifier); ok {
			b.graph.AddNode(Variable{Name: ident.Name, Scope: b.scope})
		}
		return true
	})
}

// expression records edges from every entity read by expr into target.
func (b *Builder) expression(expr ast.Expr, target Node, dep DepType, loc ast.SourceLocation) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		b.graph.AddEdge(target, Variable{Name: e.Name, Scope: b.scope}, dep, loc)

	case *ast.MemberAccess:
		if obj, ok := e.Object.(*ast.Identifier); ok {
			field := Field{Object: obj.Name, Field: e.Member}
			b.graph.AddEdge(target, field, DepType{Kind: DepFieldAccess}, loc)
			b.graph.AddEdge(field, Variable{Name: obj.Name, Scope: b.scope}, DepType{Kind: DepFieldAccess}, loc)
		} else {
			b.expression(e.Object, target, DepType{Kind: DepExpression}, loc)
		}

	case *ast.Index:
		b.expression(e.Object, target, DepType{Kind: DepExpression}, loc)
		b.expression(e.Key, target, DepType{Kind: DepExpression}, loc)

	case *ast.Call:
		switch fn := e.Function.(type) {
		case *ast.Identifier:
			b.graph.AddEdge(target, b.functionNode(fn.Name), DepType{Kind: DepExpression}, loc)
		case *ast.MemberAccess:
			if obj, ok := fn.Object.(*ast.Identifier); ok {
				method := Method{Object: obj.Name, Method: fn.Member}
				b.graph.AddEdge(target, method, DepType{Kind: DepMethodCall}, loc)
				b.graph.AddEdge(method, Variable{Name: obj.Name, Scope: b.scope}, DepType{Kind: DepMethodCall}, loc)
			}
		}
		for i, arg := range e.Args {
			b.expression(arg, target, DepType{Kind: DepParameter, ParamIndex: i}, loc)
		}

	case *ast.New:
		for i, arg := range e.Args {
			b.expression(arg, target, DepType{Kind: DepParameter, ParamIndex: i}, loc)
		}

	case *ast.Binary:
		b.expression(e.Left, target, DepType{Kind: DepExpression}, loc)
		b.expression(e.Right, target, DepType{Kind: DepExpression}, loc)

	case *ast.Unary:
		b.expression(e.Operand, target, DepType{Kind: DepExpression}, loc)

	case *ast.Ternary:
		b.expression(e.Condition, target, DepType{Kind: DepConditional}, loc)
		b.expression(e.Then, target, DepType{Kind: DepExpression}, loc)
		b.expression(e.Else, target, DepType{Kind: DepExpression}, loc)

	case *ast.ArrayLit:
		for _, elem := range e.Elements {
			b.expression(elem, target, DepType{Kind: DepExpression}, loc)
		}

	case *ast.StructureLit:
		for _, field := range e.Fields {
			b.expression(field.Value, target, DepType{Kind: DepExpression}, loc)
		}
	}
}
