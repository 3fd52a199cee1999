package types

import (
	"github.com/bsl-gradual/bsl-gradual/internal/ast"
	"github.com/bsl-gradual/bsl-gradual/internal/diag"
	"github.com/bsl-gradual/bsl-gradual/internal/graph"
)

// Checker drives a full gradual typing pass over one parsed module:
// dependency graph, interprocedural signatures, then a flow-sensitive
// walk of the top-level statements. A Check call is synchronous and
// single-threaded; run independent checkers for independent modules.
type Checker struct {
	module   string
	depGraph *graph.Graph
	diags    []diag.Diagnostic
}

// NewChecker creates a checker for the named module.
func NewChecker(module string) *Checker {
	return &Checker{module: module}
}

// DependencyGraph returns the graph built during the last Check.
func (c *Checker) DependencyGraph() *graph.Graph {
	return c.depGraph
}

// Check analyzes the program and returns the resulting context and
// every accumulated diagnostic. Analysis always completes; findings
// never abort the pass.
func (c *Checker) Check(program *ast.Program) (*TypeContext, []diag.Diagnostic) {
	c.diags = nil
	c.depGraph = graph.NewBuilder(c.module).Build(program)

	ctx := NewTypeContext(c.module)

	callGraph := BuildCallGraph(program)
	interproc := NewInterproceduralAnalyzer(callGraph)
	interproc.AnalyzeAll()
	interproc.UpdateContext(ctx)

	flow := NewFlowAnalyzer(ctx)
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			c.checkBody(ctx, s.Name, s.Body)
		case *ast.ProcedureDecl:
			c.checkBody(ctx, s.Name, s.Body)
		default:
			flow.AnalyzeStatement(stmt)
		}
	}

	for name, r := range flow.CurrentState().VariableTypes {
		ctx.SetVariable(name, r)
	}

	c.diags = append(c.diags, flow.Diagnostics()...)
	return ctx, c.diags
}

// checkBody analyzes one function body in its own scope with the
// parameters pre-seeded from the inferred signature.
func (c *Checker) checkBody(ctx *TypeContext, name string, body []ast.Stmt) {
	ctx.PushScope(graph.FunctionScope(name))
	defer ctx.PopScope()

	local := ctx.Clone()
	local.Variables = make(map[string]TypeResolution)
	if sig, ok := ctx.FunctionSig(name); ok {
		for _, p := range sig.Params {
			local.Variables[p.Name] = p.Type
		}
	}

	flow := NewFlowAnalyzer(local)
	flow.AnalyzeStatements(body)
	c.diags = append(c.diags, flow.Diagnostics()...)
}
