package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// функция builds: Функция name(params) body КонецФункции.
func функция(name string, params []string, body ...ast.Stmt) *ast.FunctionDecl {
	decl := &ast.FunctionDecl{Name: name, Body: body}
	for _, p := range params {
		decl.Params = append(decl.Params, ast.Parameter{Name: p})
	}
	return decl
}

func вызов(name string, args ...ast.Expr) *ast.Call {
	return &ast.Call{Function: &ast.Identifier{Name: name}, Args: args}
}

func TestCallGraphBuild(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("А", nil, &ast.Return{Value: вызов("Б")}),
		функция("Б", nil, &ast.Return{Value: &ast.NumberLit{Value: 1}}),
	}}

	cg := BuildCallGraph(program)
	assert.Equal(t, []string{"А", "Б"}, cg.Functions())

	sites := cg.CallSites("А")
	require.Len(t, sites, 1)
	assert.Equal(t, "Б", sites[0].Callee)
	assert.Equal(t, 0, sites[0].ArgCount)
	assert.Equal(t, []string{"А"}, cg.Callers("Б"))
}

func TestAnalysisOrderCalleesFirst(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("А", nil, &ast.Return{Value: вызов("Б")}),
		функция("Б", nil, &ast.Return{Value: &ast.NumberLit{Value: 1}}),
	}}

	order := BuildCallGraph(program).AnalysisOrder()
	require.Len(t, order, 2)
	assert.Equal(t, "Б", order[0], "callee must be analyzed before its caller")
	assert.Equal(t, "А", order[1])
}

func TestAnalysisOrderFallsBackOnRecursion(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("А", nil, &ast.Return{Value: вызов("Б")}),
		функция("Б", nil, &ast.Return{Value: вызов("А")}),
	}}

	order := BuildCallGraph(program).AnalysisOrder()
	assert.Equal(t, []string{"А", "Б"}, order, "cycles fall back to declaration order")
}

func TestRecursiveFunctionTerminates(t *testing.T) {
	// Функция Ф(н) Возврат н * Ф(н - 1); КонецФункции
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Ф", []string{"н"}, &ast.Return{Value: &ast.Binary{
			Left: &ast.Identifier{Name: "н"},
			Op:   ast.Multiply,
			Right: вызов("Ф", &ast.Binary{
				Left:  &ast.Identifier{Name: "н"},
				Op:    ast.Subtract,
				Right: &ast.NumberLit{Value: 1},
			}),
		}}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Ф")
	assert.Equal(t, CertaintyUnknown, r.Certainty.Kind)
}

func TestReturnTypeFromLiteral(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Имя", nil, &ast.Return{Value: &ast.StringLit{Value: "тест"}}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Имя")
	require.True(t, r.IsKnown())
	concrete, _ := r.ConcreteType()
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveString}))
}

func TestReturnTypePropagatesThroughCalls(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Внешняя", nil, &ast.Return{Value: вызов("Внутренняя")}),
		функция("Внутренняя", nil, &ast.Return{Value: &ast.NumberLit{Value: 7}}),
	}}

	sigs := NewInterproceduralAnalyzer(BuildCallGraph(program)).AnalyzeAll()
	outer := sigs["Внешняя"]
	concrete, ok := outer.ReturnType.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
}

func TestBranchReturnsUnion(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Выбор", []string{"флаг"}, &ast.If{
			Condition:  &ast.Identifier{Name: "флаг"},
			ThenBranch: []ast.Stmt{&ast.Return{Value: &ast.StringLit{Value: "а"}}},
			ElseBranch: []ast.Stmt{&ast.Return{Value: &ast.NumberLit{Value: 1}}},
		}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Выбор")
	members, ok := r.UnionMembers()
	require.True(t, ok, "differing branch returns must union")
	require.Len(t, members, 2)
	assert.True(t, ContainsType(r, Primitive{Kind: PrimitiveString}))
	assert.True(t, ContainsType(r, Primitive{Kind: PrimitiveNumber}))
}

func TestEqualReturnsDoNotUnion(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Всегда", []string{"флаг"}, &ast.If{
			Condition:  &ast.Identifier{Name: "флаг"},
			ThenBranch: []ast.Stmt{&ast.Return{Value: &ast.NumberLit{Value: 1}}},
			ElseBranch: []ast.Stmt{&ast.Return{Value: &ast.NumberLit{Value: 2}}},
		}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Всегда")
	concrete, ok := r.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
}

func TestProcedureHasUndefinedReturn(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.ProcedureDecl{Name: "Действие", Body: []ast.Stmt{
			assign("х", &ast.NumberLit{Value: 1}),
		}},
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Действие")
	concrete, ok := r.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Special{Kind: SpecialUndefined}))
}

func TestParameterDefaultValueInference(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.FunctionDecl{
			Name: "СПараметром",
			Params: []ast.Parameter{
				{Name: "число", DefaultValue: &ast.NumberLit{Value: 5}},
				{Name: "прочее"},
			},
			Body: []ast.Stmt{&ast.Return{Value: &ast.Identifier{Name: "число"}}},
		},
	}}

	sigs := NewInterproceduralAnalyzer(BuildCallGraph(program)).AnalyzeAll()
	sig := sigs["СПараметром"]
	require.Len(t, sig.Params, 2)

	concrete, ok := sig.Params[0].Type.ConcreteType()
	require.True(t, ok)
	assert.True(t, EqualConcrete(concrete, Primitive{Kind: PrimitiveNumber}))
	assert.True(t, sig.Params[1].Type.IsUnknown())
}

func TestAnalyzeFunctionMemoized(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Имя", nil, &ast.Return{Value: &ast.StringLit{Value: "тест"}}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	first := a.AnalyzeFunction("Имя")
	second := a.AnalyzeFunction("Имя")
	assert.Equal(t, first, second)
}

func TestSignatureLookup(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Имя", []string{"а"}, &ast.Return{Value: &ast.Identifier{Name: "а"}}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	a.AnalyzeAll()

	sig, ok := a.Signature("Имя")
	require.True(t, ok)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "а", sig.Params[0].Name)

	_, ok = a.Signature("Нет")
	assert.False(t, ok)
}

func TestUpdateContextSeedsSignatures(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Имя", nil, &ast.Return{Value: &ast.NumberLit{Value: 1}}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	a.AnalyzeAll()

	ctx := NewTypeContext("тест")
	a.UpdateContext(ctx)

	sig, ok := ctx.FunctionSig("Имя")
	require.True(t, ok)
	assert.True(t, sig.ReturnType.IsNumber())
}

func TestGlobalCallReturnFollowsArguments(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("Граница", nil, &ast.Return{Value: вызов("Макс",
			&ast.DateLit{Value: "20240101"},
			&ast.DateLit{Value: "20240201"},
		)}),
	}}

	a := NewInterproceduralAnalyzer(BuildCallGraph(program))
	r := a.AnalyzeFunction("Граница")
	assert.True(t, r.IsDate(), "Макс over dates resolves to a date, not the cataloged number")
}

func TestCallSiteArgumentsAndExpectedReturn(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		функция("А", nil,
			&ast.ProcedureCall{Name: "Сообщить", Args: []ast.Expr{&ast.StringLit{Value: "x"}}},
			&ast.Return{Value: вызов("Б", &ast.NumberLit{Value: 1})},
		),
	}}

	sites := BuildCallGraph(program).CallSites("А")
	require.Len(t, sites, 2)

	proc := sites[0]
	assert.Nil(t, proc.ExpectedReturn, "statement-position calls expect no value")
	require.Len(t, proc.Arguments, 1)
	assert.True(t, proc.Arguments[0].IsUnknown())

	expr := sites[1]
	require.NotNil(t, expr.ExpectedReturn, "expression-position calls must produce a value")
	assert.True(t, expr.ExpectedReturn.IsUnknown())
	require.Len(t, expr.Arguments, 1)
}
