package types

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bsl-gradual/bsl-gradual/internal/ast"
	"github.com/bsl-gradual/bsl-gradual/internal/diag"
)

// checkerVersion participates in cache keys so results computed by an
// older inference build are never reused after an upgrade.
const checkerVersion = "1"

const defaultCacheSize = 256

// Result bundles everything one Check produced.
type Result struct {
	Context     *TypeContext
	Diagnostics []diag.Diagnostic
}

// ResultCache is the injected memoization layer. Implementations must
// be safe for use by a single service instance; the service itself
// adds no locking.
type ResultCache interface {
	Get(key string) (*Result, bool)
	Put(key string, result *Result)
}

type lruResultCache struct {
	inner *lru.Cache[string, *Result]
}

func (c *lruResultCache) Get(key string) (*Result, bool) { return c.inner.Get(key) }
func (c *lruResultCache) Put(key string, result *Result) { c.inner.Add(key, result) }

// NewLRUCache creates the default bounded result cache.
func NewLRUCache(size int) (ResultCache, error) {
	inner, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &lruResultCache{inner: inner}, nil
}

// Service wraps the checker with result caching keyed by source
// content hash and structured logging around each run. One service
// serves one worker; run several services for parallel checking.
type Service struct {
	cache  ResultCache
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache injects a custom result cache.
func WithCache(cache ResultCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithLogger injects the logger used around check runs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a service with an LRU cache and the default
// logger unless options say otherwise.
func NewService(opts ...Option) *Service {
	s := &Service{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		// defaultCacheSize is positive so New cannot fail here.
		cache, _ := NewLRUCache(defaultCacheSize)
		s.cache = cache
	}
	return s
}

// Check analyzes the module, reusing any cached result for identical
// source content.
func (s *Service) Check(module string, source []byte, program *ast.Program) *Result {
	key := cacheKey(module, source)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("type check cache hit", "module", module)
		return cached
	}

	checker := NewChecker(module)
	ctx, diags := checker.Check(program)
	result := &Result{Context: ctx, Diagnostics: diags}
	s.cache.Put(key, result)

	s.logger.Debug("type check complete",
		"module", module,
		"variables", len(ctx.Variables),
		"functions", len(ctx.Functions),
		"diagnostics", len(diags),
	)
	return result
}

func cacheKey(module string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(checkerVersion))
	h.Write([]byte{0})
	h.Write([]byte(module))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}
