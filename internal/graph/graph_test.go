package graph

import (
	"testing"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

func edge(g *Graph, from, to Node) {
	g.AddEdge(from, to, DepType{Kind: DepExpression}, ast.SourceLocation{})
}

func TestAddEdgeInsertsEndpoints(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	edge(g, a, b)

	if !g.Contains(a) || !g.Contains(b) {
		t.Fatal("AddEdge must insert both endpoints")
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.Len())
	}
}

func TestNodeStructuralIdentity(t *testing.T) {
	g := New()
	g.AddNode(Variable{Name: "х", Scope: ModuleScope("м")})
	g.AddNode(Variable{Name: "х", Scope: ModuleScope("м")})

	if g.Len() != 1 {
		t.Fatalf("structurally equal nodes must dedupe, got %d nodes", g.Len())
	}
}

func TestDependenciesAndDependents(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	c := Function{Name: "В"}
	edge(g, a, b)
	edge(g, a, c)
	edge(g, b, c)

	deps := g.Dependencies(a)
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies of А, got %d", len(deps))
	}
	dependents := g.Dependents(c)
	if len(dependents) != 2 {
		t.Fatalf("expected 2 dependents of В, got %d", len(dependents))
	}
}

func TestFindPath(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	c := Function{Name: "В"}
	d := Function{Name: "Г"}
	edge(g, a, b)
	edge(g, b, c)
	edge(g, a, d)

	path := g.FindPath(a, c)
	if len(path) != 3 {
		t.Fatalf("expected path of 3 nodes, got %v", path)
	}
	if path[0] != Node(a) || path[2] != Node(c) {
		t.Fatalf("path endpoints wrong: %v", path)
	}

	if g.FindPath(c, a) != nil {
		t.Fatal("no reverse path should exist")
	}
}

func TestFindPathSameNode(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	g.AddNode(a)

	path := g.FindPath(a, a)
	if len(path) != 1 {
		t.Fatalf("expected single-node path, got %v", path)
	}
}

func TestReachableNodes(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	c := Function{Name: "В"}
	isolated := Function{Name: "Отдельная"}
	edge(g, a, b)
	edge(g, b, c)
	g.AddNode(isolated)

	reachable := g.ReachableNodes(a)
	if len(reachable) != 3 {
		t.Fatalf("expected 3 reachable nodes, got %d", len(reachable))
	}
	for _, n := range reachable {
		if n == Node(isolated) {
			t.Fatal("isolated node must not be reachable")
		}
	}
}

func TestFindCycles(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	edge(g, a, b)
	edge(g, b, a)

	cycles := g.FindCycles()
	if len(cycles) == 0 {
		t.Fatal("expected the А/Б cycle to be found")
	}
	if len(cycles[0]) != 2 {
		t.Fatalf("expected a 2-node cycle, got %v", cycles[0])
	}
}

func TestFindCyclesNone(t *testing.T) {
	g := New()
	edge(g, Function{Name: "А"}, Function{Name: "Б"})

	if cycles := g.FindCycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	c := Function{Name: "В"}
	edge(g, a, b)
	edge(g, b, c)

	sorted, ok := g.TopologicalSort()
	if !ok {
		t.Fatal("acyclic graph must sort")
	}
	pos := make(map[Node]int)
	for i, n := range sorted {
		pos[n] = i
	}
	if pos[Node(a)] > pos[Node(b)] || pos[Node(b)] > pos[Node(c)] {
		t.Fatalf("order violates edges: %v", sorted)
	}
}

func TestTopologicalSortCycle(t *testing.T) {
	g := New()
	a := Function{Name: "А"}
	b := Function{Name: "Б"}
	edge(g, a, b)
	edge(g, b, a)

	if _, ok := g.TopologicalSort(); ok {
		t.Fatal("cyclic graph must not produce a complete order")
	}
}

func TestBuilderVariablesAndFunctions(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.VarDeclaration{Name: "Итог", Value: &ast.NumberLit{Value: 0}},
		&ast.FunctionDecl{
			Name:   "Посчитать",
			Export: true,
			Params: []ast.Parameter{{Name: "н"}},
			Body: []ast.Stmt{
				&ast.Return{Value: &ast.Identifier{Name: "н"}},
			},
		},
		&ast.Assignment{
			Target: &ast.Identifier{Name: "Итог"},
			Value: &ast.Call{
				Function: &ast.Identifier{Name: "Посчитать"},
				Args:     []ast.Expr{&ast.NumberLit{Value: 5}},
			},
		},
	}}

	g := NewBuilder("модуль").Build(program)

	fn := Function{Name: "Посчитать", Exported: true}
	if !g.Contains(fn) {
		t.Fatal("function node missing")
	}
	if !g.Contains(Parameter{Function: "Посчитать", Name: "н"}) {
		t.Fatal("parameter node missing")
	}
	if !g.Contains(ReturnValue{Function: "Посчитать"}) {
		t.Fatal("return value node missing")
	}
	if !g.Contains(Variable{Name: "Итог", Scope: ModuleScope("модуль")}) {
		t.Fatal("module variable node missing")
	}

	deps := g.Dependencies(Variable{Name: "Итог", Scope: ModuleScope("модуль")})
	var callsFn bool
	for _, d := range deps {
		if d == Node(fn) {
			callsFn = true
		}
	}
	if !callsFn {
		t.Fatal("assignment should depend on the called function")
	}
}

func TestBuilderMethodAndFieldNodes(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.Assignment{
			Target: &ast.Identifier{Name: "н"},
			Value: &ast.Call{
				Function: &ast.MemberAccess{
					Object: &ast.Identifier{Name: "массив"},
					Member: "Количество",
				},
			},
		},
		&ast.Assignment{
			Target: &ast.Identifier{Name: "к"},
			Value: &ast.MemberAccess{
				Object: &ast.Identifier{Name: "таблица"},
				Member: "Колонки",
			},
		},
	}}

	g := NewBuilder("модуль").Build(program)

	if !g.Contains(Method{Object: "массив", Method: "Количество"}) {
		t.Fatal("method node missing")
	}
	if !g.Contains(Field{Object: "таблица", Field: "Колонки"}) {
		t.Fatal("field node missing")
	}
}

func TestBuilderForLoopStepDependency(t *testing.T) {
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.For{
			Variable: "и",
			From:     &ast.NumberLit{Value: 1},
			To:       &ast.Identifier{Name: "граница"},
			Step:     &ast.Identifier{Name: "шаг"},
		},
	}}

	g := NewBuilder("модуль").Build(program)

	loopVar := Variable{Name: "и", Scope: ModuleScope("модуль")}
	step := Variable{Name: "шаг", Scope: ModuleScope("модуль")}
	var dependsOnStep bool
	for _, d := range g.Dependencies(loopVar) {
		if d == Node(step) {
			dependsOnStep = true
		}
	}
	if !dependsOnStep {
		t.Fatal("loop variable should depend on the step expression")
	}
}
