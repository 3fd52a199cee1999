package types

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// InterproceduralAnalyzer infers function signatures and return types
// across call boundaries. Recursion is broken by an explicit
// in-progress set rather than by host stack limits: a function seen
// again while its own analysis is still running resolves to unknown.
type InterproceduralAnalyzer struct {
	callGraph  *CallGraph
	cache      map[string]TypeResolution
	inProgress *set.Set[string]
}

// NewInterproceduralAnalyzer creates an analyzer over a call graph.
func NewInterproceduralAnalyzer(cg *CallGraph) *InterproceduralAnalyzer {
	return &InterproceduralAnalyzer{
		callGraph:  cg,
		cache:      make(map[string]TypeResolution),
		inProgress: set.New[string](4),
	}
}

// AnalyzeAll analyzes every declared function, callees before callers
// where the call graph permits, and returns the full signature map.
func (a *InterproceduralAnalyzer) AnalyzeAll() map[string]FunctionSignature {
	for _, name := range a.callGraph.AnalysisOrder() {
		a.AnalyzeFunction(name)
	}
	return a.Signatures()
}

// AnalyzeFunction infers the named function's return type, memoized.
func (a *InterproceduralAnalyzer) AnalyzeFunction(name string) TypeResolution {
	if cached, ok := a.cache[name]; ok {
		return cached
	}
	if a.inProgress.Contains(name) {
		return UnknownTypeWithNote("Recursive call detected")
	}
	info, ok := a.callGraph.Function(name)
	if !ok {
		return UnknownType()
	}

	a.inProgress.Insert(name)

	vars := make(map[string]TypeResolution, len(info.Params))
	for _, p := range info.Params {
		vars[p.Name] = p.Type
	}
	returns := a.collectReturns(info.Body, vars)

	a.inProgress.Remove(name)

	result := returnTypeFrom(returns)
	a.cache[name] = result
	a.callGraph.SetReturnType(name, result)
	return result
}

// returnTypeFrom combines the inferred types of every reachable
// return statement. No returns means a procedure-style function whose
// value is always Неопределено; differing types are unioned.
func returnTypeFrom(returns []TypeResolution) TypeResolution {
	switch len(returns) {
	case 0:
		return KnownType(Special{Kind: SpecialUndefined})
	case 1:
		return returns[0]
	}
	first, firstConcrete := returns[0].ConcreteType()
	allEqual := firstConcrete
	for _, r := range returns[1:] {
		c, ok := r.ConcreteType()
		if !ok || !EqualConcrete(first, c) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return returns[0]
	}
	return CreateUnion(returns)
}

// collectReturns walks a body in order, threading a branch-insensitive
// variable map through assignments and descending into every nested
// branch so returns inside conditionals are all observed.
func (a *InterproceduralAnalyzer) collectReturns(stmts []ast.Stmt, vars map[string]TypeResolution) []TypeResolution {
	var returns []TypeResolution
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Return:
			if s.Value != nil {
				returns = append(returns, a.inferExpr(s.Value, vars))
			}

		case *ast.VarDeclaration:
			if s.Value != nil {
				vars[s.Name] = a.inferExpr(s.Value, vars)
			} else {
				vars[s.Name] = UnknownType()
			}

		case *ast.Assignment:
			if target, ok := s.Target.(*ast.Identifier); ok {
				vars[target.Name] = a.inferExpr(s.Value, vars)
			}

		case *ast.If:
			returns = append(returns, a.collectReturns(s.ThenBranch, copyVars(vars))...)
			for _, branch := range s.ElseIfBranches {
				returns = append(returns, a.collectReturns(branch.Body, copyVars(vars))...)
			}
			returns = append(returns, a.collectReturns(s.ElseBranch, copyVars(vars))...)

		case *ast.For:
			vars[s.Variable] = KnownType(Primitive{Kind: PrimitiveNumber})
			returns = append(returns, a.collectReturns(s.Body, vars)...)

		case *ast.ForEach:
			vars[s.Variable] = UnknownType()
			returns = append(returns, a.collectReturns(s.Body, vars)...)

		case *ast.While:
			returns = append(returns, a.collectReturns(s.Body, vars)...)

		case *ast.Try:
			returns = append(returns, a.collectReturns(s.TryBlock, vars)...)
			returns = append(returns, a.collectReturns(s.CatchBlock, vars)...)
		}
	}
	return returns
}

// inferExpr is the interprocedural expression inference. Calls to
// declared functions route back through AnalyzeFunction so recursion
// is caught by the in-progress set.
func (a *InterproceduralAnalyzer) inferExpr(expr ast.Expr, vars map[string]TypeResolution) TypeResolution {
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
		if r, ok := vars[e.Name]; ok {
			return r
		}
		return UnknownType()

	case *ast.Binary:
		return a.inferBinaryExpr(e, vars)

	case *ast.Unary:
		if e.Op == ast.Minus {
			return InferredType(Primitive{Kind: PrimitiveNumber}, 0.9)
		}
		return KnownType(Primitive{Kind: PrimitiveBoolean})

	case *ast.Ternary:
		return CreateUnion([]TypeResolution{
			a.inferExpr(e.Then, vars),
			a.inferExpr(e.Else, vars),
		})

	case *ast.Call:
		if fn, ok := e.Function.(*ast.Identifier); ok {
			if _, declared := a.callGraph.Function(fn.Name); declared {
				return a.AnalyzeFunction(fn.Name)
			}
			if global, ok := LookupGlobalFunction(fn.Name); ok {
				args := make([]TypeResolution, len(e.Args))
				for i, arg := range e.Args {
					args[i] = a.inferExpr(arg, vars)
				}
				return global.ResolveReturnTypeWith(args)
			}
		}
		return UnknownType()

	case *ast.New:
		if p, ok := LookupPlatformType(e.TypeName); ok {
			return KnownType(p)
		}
		return InferredType(Platform{TypeName: e.TypeName}, 0.7)

	case *ast.ArrayLit:
		p, _ := LookupPlatformType("Массив")
		return KnownType(p)

	case *ast.StructureLit:
		p, _ := LookupPlatformType("Структура")
		return KnownType(p)
	}
	return UnknownType()
}

func (a *InterproceduralAnalyzer) inferBinaryExpr(e *ast.Binary, vars map[string]TypeResolution) TypeResolution {
	left := a.inferExpr(e.Left, vars)
	right := a.inferExpr(e.Right, vars)

	switch {
	case e.Op.IsComparison(), e.Op.IsLogical():
		return KnownType(Primitive{Kind: PrimitiveBoolean})
	default:
		leftNum := isPrimitive(left, PrimitiveNumber)
		rightNum := isPrimitive(right, PrimitiveNumber)
		switch {
		case leftNum && rightNum:
			return KnownType(Primitive{Kind: PrimitiveNumber})
		case leftNum || rightNum:
			return InferredType(Primitive{Kind: PrimitiveNumber}, 0.8)
		case e.Op == ast.Add && isPrimitive(left, PrimitiveString) && isPrimitive(right, PrimitiveString):
			return KnownType(Primitive{Kind: PrimitiveString})
		default:
			return UnknownType()
		}
	}
}

// Signature returns the inferred signature of one declared function.
func (a *InterproceduralAnalyzer) Signature(name string) (FunctionSignature, bool) {
	info, ok := a.callGraph.Function(name)
	if !ok {
		return FunctionSignature{}, false
	}
	params := make([]ParamSignature, len(info.Params))
	for i, p := range info.Params {
		params[i] = ParamSignature{Name: p.Name, Type: p.Type}
	}
	return FunctionSignature{
		Params:     params,
		ReturnType: info.ReturnType,
		Exported:   info.Exported,
	}, true
}

// UpdateContext seeds the context's function table with every
// inferred signature.
func (a *InterproceduralAnalyzer) UpdateContext(ctx *TypeContext) {
	for name, sig := range a.Signatures() {
		ctx.SetFunction(name, sig)
	}
}

// Signatures exposes every analyzed function's inferred signature.
func (a *InterproceduralAnalyzer) Signatures() map[string]FunctionSignature {
	out := make(map[string]FunctionSignature, len(a.callGraph.declared))
	for _, name := range a.callGraph.Functions() {
		info, _ := a.callGraph.Function(name)
		params := make([]ParamSignature, len(info.Params))
		for i, p := range info.Params {
			params[i] = ParamSignature{Name: p.Name, Type: p.Type}
		}
		out[name] = FunctionSignature{
			Params:     params,
			ReturnType: info.ReturnType,
			Exported:   info.Exported,
		}
	}
	return out
}

func copyVars(vars map[string]TypeResolution) map[string]TypeResolution {
	out := make(map[string]TypeResolution, len(vars))
	for name, r := range vars {
		out[name] = r
	}
	return out
}
