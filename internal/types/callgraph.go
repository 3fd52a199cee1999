package types

import (
	"github.com/bsl-gradual/bsl-gradual/internal/ast"
	"github.com/bsl-gradual/bsl-gradual/internal/graph"
)

// ParamInfo is one formal parameter of a declared function.
type ParamInfo struct {
	Name    string
	Type    TypeResolution
	ByValue bool
}

// FunctionInfo is everything the interprocedural pass knows about one
// declared function or procedure. ReturnType is filled in after the
// body has been analyzed.
type FunctionInfo struct {
	Name       string
	Params     []ParamInfo
	Body       []ast.Stmt
	Exported   bool
	IsFunction bool // false for procedures
	ReturnType TypeResolution
	Scope      graph.Scope
	Loc        ast.SourceLocation
}

// CallSite is one syntactic call to a named function. Arguments hold
// one resolution per syntactic argument; extraction records them as
// unknown and later passes may sharpen them. ExpectedReturn is set
// for calls in expression position, where the call must produce a
// value, and nil for statement-position calls.
type CallSite struct {
	Callee         string
	ArgCount       int
	Arguments      []TypeResolution
	ExpectedReturn *TypeResolution
	Location       ast.SourceLocation
}

// CallGraph records which functions call which, preserving the order
// functions were declared in. Declaration order is the fallback
// analysis order when recursion makes a topological order impossible.
type CallGraph struct {
	functions map[string]*FunctionInfo
	callEdges map[string][]CallSite
	callers   map[string][]string
	declared  []string
}

// BuildCallGraph walks top-level declarations and their bodies.
func BuildCallGraph(program *ast.Program) *CallGraph {
	cg := &CallGraph{
		functions: make(map[string]*FunctionInfo),
		callEdges: make(map[string][]CallSite),
		callers:   make(map[string][]string),
	}

	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			cg.addFunction(s.Name, s.Params, s.Body, s.Export, true, s.Loc)
		case *ast.ProcedureDecl:
			cg.addFunction(s.Name, s.Params, s.Body, s.Export, false, s.Loc)
		}
	}

	for _, name := range cg.declared {
		cg.collectCallSites(name)
	}
	return cg
}

func (cg *CallGraph) addFunction(name string, params []ast.Parameter, body []ast.Stmt, exported, isFunction bool, loc ast.SourceLocation) {
	info := &FunctionInfo{
		Name:       name,
		Params:     make([]ParamInfo, len(params)),
		Body:       body,
		Exported:   exported,
		IsFunction: isFunction,
		ReturnType: UnknownType(),
		Scope:      graph.FunctionScope(name),
		Loc:        loc,
	}
	for i, p := range params {
		info.Params[i] = ParamInfo{
			Name:    p.Name,
			Type:    inferParameterType(p),
			ByValue: p.ByValue,
		}
	}
	cg.functions[name] = info
	cg.declared = append(cg.declared, name)
}

// inferParameterType derives a parameter's starting type from its
// default value literal; unannotated parameters stay dynamic.
func inferParameterType(p ast.Parameter) TypeResolution {
	switch p.DefaultValue.(type) {
	case *ast.NumberLit:
		return InferredType(Primitive{Kind: PrimitiveNumber}, 0.9)
	case *ast.StringLit:
		return InferredType(Primitive{Kind: PrimitiveString}, 0.9)
	case *ast.BoolLit:
		return InferredType(Primitive{Kind: PrimitiveBoolean}, 0.9)
	case *ast.DateLit:
		return InferredType(Primitive{Kind: PrimitiveDate}, 0.9)
	case *ast.UndefinedLit:
		return InferredType(Special{Kind: SpecialUndefined}, 0.9)
	default:
		return UnknownType()
	}
}

func (cg *CallGraph) collectCallSites(name string) {
	info := cg.functions[name]
	for _, stmt := range info.Body {
		ast.Walk(stmt, func(n ast.Node) bool {
			switch call := n.(type) {
			case *ast.Call:
				if fn, ok := call.Function.(*ast.Identifier); ok {
					expected := UnknownType()
					cg.addEdge(name, CallSite{
						Callee:         fn.Name,
						ArgCount:       len(call.Args),
						Arguments:      unknownArguments(len(call.Args)),
						ExpectedReturn: &expected,
						Location:       call.Loc,
					})
				}
			case *ast.ProcedureCall:
				cg.addEdge(name, CallSite{
					Callee:    call.Name,
					ArgCount:  len(call.Args),
					Arguments: unknownArguments(len(call.Args)),
					Location:  call.Loc,
				})
			}
			return true
		})
	}
}

func unknownArguments(n int) []TypeResolution {
	args := make([]TypeResolution, n)
	for i := range args {
		args[i] = UnknownType()
	}
	return args
}

func (cg *CallGraph) addEdge(caller string, site CallSite) {
	cg.callEdges[caller] = append(cg.callEdges[caller], site)
	cg.callers[site.Callee] = append(cg.callers[site.Callee], caller)
}

// Function looks up a declared function by name.
func (cg *CallGraph) Function(name string) (*FunctionInfo, bool) {
	info, ok := cg.functions[name]
	return info, ok
}

// Functions returns declared function names in declaration order.
func (cg *CallGraph) Functions() []string {
	out := make([]string, len(cg.declared))
	copy(out, cg.declared)
	return out
}

// CallSites returns the calls made from the named function.
func (cg *CallGraph) CallSites(name string) []CallSite {
	return cg.callEdges[name]
}

// Callers returns the functions that call the named function.
func (cg *CallGraph) Callers(name string) []string {
	return cg.callers[name]
}

// SetReturnType stores an inferred return type on the function info.
func (cg *CallGraph) SetReturnType(name string, r TypeResolution) {
	if info, ok := cg.functions[name]; ok {
		info.ReturnType = r
	}
}

// AnalysisOrder returns function names ordered callees-first when the
// call graph is acyclic. With recursion no such order exists and
// declaration order is returned instead; per-function recursion
// guards make ordering an optimization, not a correctness need.
func (cg *CallGraph) AnalysisOrder() []string {
	g := graph.New()
	for _, name := range cg.declared {
		g.AddNode(graph.Function{Name: name, Exported: cg.functions[name].Exported})
	}
	for caller, sites := range cg.callEdges {
		callerNode := graph.Function{Name: caller, Exported: cg.functions[caller].Exported}
		for _, site := range sites {
			callee, ok := cg.functions[site.Callee]
			if !ok {
				continue
			}
			// Callee before caller in the sorted order.
			g.AddEdge(
				graph.Function{Name: callee.Name, Exported: callee.Exported},
				callerNode,
				graph.DepType{Kind: graph.DepExpression},
				site.Location,
			)
		}
	}

	sorted, ok := g.TopologicalSort()
	if !ok {
		return cg.Functions()
	}
	order := make([]string, 0, len(cg.declared))
	for _, node := range sorted {
		if fn, ok := node.(graph.Function); ok {
			order = append(order, fn.Name)
		}
	}
	return order
}
