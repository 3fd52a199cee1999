package types

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

func quietService(opts ...Option) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestServiceCachesByContent(t *testing.T) {
	svc := quietService()
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.VarDeclaration{Name: "х", Value: &ast.NumberLit{Value: 1}},
	}}
	source := []byte("Перем х = 1;")

	first := svc.Check("модуль", source, program)
	second := svc.Check("модуль", source, program)
	assert.Same(t, first, second, "identical content must hit the cache")
}

func TestServiceDistinguishesContent(t *testing.T) {
	svc := quietService()
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.VarDeclaration{Name: "х", Value: &ast.NumberLit{Value: 1}},
	}}

	first := svc.Check("модуль", []byte("Перем х = 1;"), program)
	second := svc.Check("модуль", []byte("Перем х = 2;"), program)
	assert.NotSame(t, first, second)
}

func TestServiceDistinguishesModules(t *testing.T) {
	svc := quietService()
	program := &ast.Program{}
	source := []byte("")

	first := svc.Check("первый", source, program)
	second := svc.Check("второй", source, program)
	assert.NotSame(t, first, second)
}

type countingCache struct {
	inner ResultCache
	gets  int
	puts  int
}

func (c *countingCache) Get(key string) (*Result, bool) {
	c.gets++
	return c.inner.Get(key)
}

func (c *countingCache) Put(key string, r *Result) {
	c.puts++
	c.inner.Put(key, r)
}

func TestServiceUsesInjectedCache(t *testing.T) {
	inner, err := NewLRUCache(8)
	require.NoError(t, err)
	cache := &countingCache{inner: inner}
	svc := quietService(WithCache(cache))

	program := &ast.Program{}
	svc.Check("модуль", []byte("а"), program)
	svc.Check("модуль", []byte("а"), program)

	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.puts)
}

func TestServiceResultCarriesDiagnostics(t *testing.T) {
	svc := quietService()
	program := &ast.Program{Statements: []ast.Stmt{
		&ast.ProcedureCall{Name: "НетТакой"},
	}}

	result := svc.Check("модуль", []byte("НетТакой();"), program)
	require.NotNil(t, result.Context)
	assert.NotEmpty(t, result.Diagnostics)
}
