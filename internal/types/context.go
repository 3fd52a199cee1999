package types

import (
	"github.com/bsl-gradual/bsl-gradual/internal/graph"
)

// ParamSignature is one formal parameter of an analyzed function.
type ParamSignature struct {
	Name string
	Type TypeResolution
}

// FunctionSignature is the inferred shape of a function, persisted
// per name for reuse when analyzing dependent modules.
type FunctionSignature struct {
	Params     []ParamSignature
	ReturnType TypeResolution
	Exported   bool
}

// TypeContext accumulates everything the checker learns about one
// module: variable resolutions, function signatures and the scope the
// checker is currently inside. It is created per check and returned
// to the caller when the pass finishes.
type TypeContext struct {
	Variables map[string]TypeResolution
	Functions map[string]FunctionSignature

	CurrentScope graph.Scope
	scopeStack   []graph.Scope
}

// NewTypeContext creates an empty context rooted in the module scope.
func NewTypeContext(module string) *TypeContext {
	return &TypeContext{
		Variables:    make(map[string]TypeResolution),
		Functions:    make(map[string]FunctionSignature),
		CurrentScope: graph.ModuleScope(module),
	}
}

// Clone produces an independent copy. Resolutions are value types so
// a shallow map copy is a full snapshot.
func (c *TypeContext) Clone() *TypeContext {
	vars := make(map[string]TypeResolution, len(c.Variables))
	for name, r := range c.Variables {
		vars[name] = r
	}
	fns := make(map[string]FunctionSignature, len(c.Functions))
	for name, sig := range c.Functions {
		fns[name] = sig
	}
	stack := make([]graph.Scope, len(c.scopeStack))
	copy(stack, c.scopeStack)
	return &TypeContext{
		Variables:    vars,
		Functions:    fns,
		CurrentScope: c.CurrentScope,
		scopeStack:   stack,
	}
}

// SetVariable records the variable's resolution.
func (c *TypeContext) SetVariable(name string, r TypeResolution) {
	c.Variables[name] = r
}

// VariableType looks up a variable's resolution.
func (c *TypeContext) VariableType(name string) (TypeResolution, bool) {
	r, ok := c.Variables[name]
	return r, ok
}

// SetFunction records an inferred signature.
func (c *TypeContext) SetFunction(name string, sig FunctionSignature) {
	c.Functions[name] = sig
}

// FunctionSig looks up a function signature.
func (c *TypeContext) FunctionSig(name string) (FunctionSignature, bool) {
	sig, ok := c.Functions[name]
	return sig, ok
}

// PushScope enters a nested scope.
func (c *TypeContext) PushScope(s graph.Scope) {
	c.scopeStack = append(c.scopeStack, c.CurrentScope)
	c.CurrentScope = s
}

// PopScope restores the previous scope. Popping an empty stack is a
// no-op.
func (c *TypeContext) PopScope() {
	if len(c.scopeStack) == 0 {
		return
	}
	c.CurrentScope = c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
}
