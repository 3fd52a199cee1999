// Package graph implements the scope and dependency graph over BSL
// declarations. Nodes are compared by structural value equality; the
// graph is a directed multigraph and cycles are permitted, since
// recursive function calls legitimately create them.
package graph

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// ScopeKind discriminates the Scope variants.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeLocal
)

// Scope identifies where a name is visible. Comparable by value.
type Scope struct {
	Kind    ScopeKind
	Name    string // module or function name; empty for Global
	BlockID int    // only meaningful for ScopeLocal
}

// GlobalScope is the scope of platform-level names.
func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

// ModuleScope is the scope of module-level declarations.
func ModuleScope(name string) Scope { return Scope{Kind: ScopeModule, Name: name} }

// FunctionScope is the scope of a function body.
func FunctionScope(name string) Scope { return Scope{Kind: ScopeFunction, Name: name} }

// LocalScope is a nested block inside a function.
func LocalScope(function string, blockID int) Scope {
	return Scope{Kind: ScopeLocal, Name: function, BlockID: blockID}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module " + s.Name
	case ScopeFunction:
		return "function " + s.Name
	default:
		return fmt.Sprintf("local %s#%d", s.Name, s.BlockID)
	}
}

// Node is a vertex in the dependency graph. All implementations are
// small comparable structs so two nodes describing the same entity
// are equal regardless of where they were constructed.
type Node interface {
	node()
	String() string
}

// Variable is a named variable in some scope.
type Variable struct {
	Name  string
	Scope Scope
}

// Function is a top-level function or procedure.
type Function struct {
	Name     string
	Exported bool
}

// Parameter is a formal parameter of a function.
type Parameter struct {
	Function string
	Name     string
}

// ReturnValue is the return slot of a function.
type ReturnValue struct {
	Function string
}

// Field is a property accessed on some object.
type Field struct {
	Object string
	Field  string
}

// Method is a method invoked on some object.
type Method struct {
	Object string
	Method string
}

func (Variable) node()    {}
func (Function) node()    {}
func (Parameter) node()   {}
func (ReturnValue) node() {}
func (Field) node()       {}
func (Method) node()      {}

func (n Variable) String() string    { return fmt.Sprintf("var %s (%s)", n.Name, n.Scope) }
func (n Function) String() string    { return "func " + n.Name }
func (n Parameter) String() string   { return fmt.Sprintf("param %s.%s", n.Function, n.Name) }
func (n ReturnValue) String() string { return "return " + n.Function }
func (n Field) String() string       { return fmt.Sprintf("field %s.%s", n.Object, n.Field) }
func (n Method) String() string      { return fmt.Sprintf("method %s.%s", n.Object, n.Method) }

// DepKind classifies an edge.
type DepKind int

const (
	DepAssignment DepKind = iota
	DepParameter
	DepReturn
	DepFieldAccess
	DepMethodCall
	DepExpression
	DepConditional
)

// DepType is the typed relation an edge carries. ParamIndex is only
// meaningful for DepParameter.
type DepType struct {
	Kind       DepKind
	ParamIndex int
}

// Edge is a directed dependency between two nodes.
type Edge struct {
	From     Node
	To       Node
	Type     DepType
	Location ast.SourceLocation
}

// Graph is a directed multigraph over dependency nodes.
type Graph struct {
	nodes *set.Set[Node]
	order []Node // insertion order, for deterministic traversals
	edges []Edge
	out   map[Node][]Node
	in    map[Node][]Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: set.New[Node](16),
		out:   make(map[Node][]Node),
		in:    make(map[Node][]Node),
	}
}

// AddNode inserts a node if not already present.
func (g *Graph) AddNode(n Node) {
	if g.nodes.Insert(n) {
		g.order = append(g.order, n)
	}
}

// AddEdge inserts an edge, auto-inserting both endpoints.
func (g *Graph) AddEdge(from, to Node, dep DepType, loc ast.SourceLocation) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges = append(g.edges, Edge{From: from, To: to, Type: dep, Location: loc})
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// Contains reports whether the node is in the graph.
func (g *Graph) Contains(n Node) bool { return g.nodes.Contains(n) }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return g.nodes.Size() }

// Dependencies returns the nodes that n points to.
func (g *Graph) Dependencies(n Node) []Node {
	deps := make([]Node, len(g.out[n]))
	copy(deps, g.out[n])
	return deps
}

// Dependents returns the nodes that point to n.
func (g *Graph) Dependents(n Node) []Node {
	deps := make([]Node, len(g.in[n]))
	copy(deps, g.in[n])
	return deps
}

// FindPath returns the node sequence of a shortest path from a to b,
// found by breadth-first search, or nil when no path exists.
func (g *Graph) FindPath(a, b Node) []Node {
	if !g.nodes.Contains(a) || !g.nodes.Contains(b) {
		return nil
	}
	if a == b {
		return []Node{a}
	}

	visited := set.New[Node](g.nodes.Size())
	visited.Insert(a)
	parent := make(map[Node]Node)
	queue := []Node{a}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if !visited.Insert(next) {
				continue
			}
			parent[next] = cur
			if next == b {
				return buildPath(parent, a, b)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func buildPath(parent map[Node]Node, a, b Node) []Node {
	var rev []Node
	for cur := b; ; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == a {
			break
		}
	}
	path := make([]Node, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

// ReachableNodes returns every node reachable from start, start
// included, via breadth-first search.
func (g *Graph) ReachableNodes(start Node) []Node {
	if !g.nodes.Contains(start) {
		return nil
	}
	visited := set.New[Node](g.nodes.Size())
	visited.Insert(start)
	reachable := []Node{start}
	queue := []Node{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if visited.Insert(next) {
				reachable = append(reachable, next)
				queue = append(queue, next)
			}
		}
	}
	return reachable
}

// FindCycles returns all simple cycles discovered by depth-first
// search with a recursion stack. Each cycle is reported as the node
// sequence from the first repeated node back to itself.
func (g *Graph) FindCycles() [][]Node {
	visited := set.New[Node](g.nodes.Size())
	onStack := set.New[Node](8)
	var stack []Node
	var cycles [][]Node

	var visit func(n Node)
	visit = func(n Node) {
		visited.Insert(n)
		onStack.Insert(n)
		stack = append(stack, n)

		for _, next := range g.out[n] {
			if onStack.Contains(next) {
				cycles = append(cycles, extractCycle(stack, next))
				continue
			}
			if !visited.Contains(next) {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack.Remove(n)
	}

	for _, n := range g.order {
		if !visited.Contains(n) {
			visit(n)
		}
	}
	return cycles
}

func extractCycle(stack []Node, entry Node) []Node {
	for i, n := range stack {
		if n == entry {
			cycle := make([]Node, len(stack)-i)
			copy(cycle, stack[i:])
			return cycle
		}
	}
	return nil
}

// TopologicalSort orders nodes so that every edge points from an
// earlier node to a later one, using Kahn's algorithm on in-degree. It
// returns ok=false when a cycle prevents a complete ordering; callers
// that tolerate recursion must fall back to another ordering.
func (g *Graph) TopologicalSort() ([]Node, bool) {
	indeg := make(map[Node]int, g.nodes.Size())
	for _, n := range g.order {
		indeg[n] = 0
	}
	for _, e := range g.edges {
		indeg[e.To]++
	}

	var queue []Node
	for _, n := range g.order {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}

	sorted := make([]Node, 0, g.nodes.Size())
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		sorted = append(sorted, cur)
		for _, next := range g.out[cur] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) != g.nodes.Size() {
		return nil, false
	}
	return sorted, true
}
