package capability

import (
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/km-arc/getall/framework/container"
)

// Scanner answers "which concrete types in the known modules satisfy this
// capability?" and memoizes every answer for its lifetime.
//
// The module set is fixed at construction. The discovery cache only grows:
// each capability is scanned at most once (concurrent first lookups of the
// same capability share one scan) and empty results are cached too.
// Lookups of cached capabilities never block.
type Scanner struct {
	modules []*Module

	cache sync.Map // reflect.Type → []reflect.Type
	group singleflight.Group

	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// WithMetrics records discovery metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// NewScanner creates a scanner over modules, visited in the given order.
// Create one per process (or per container) and share it.
func NewScanner(modules []*Module, opts ...Option) *Scanner {
	s := &Scanner{
		modules: slices.Clone(modules),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Modules returns the module set in scan order.
func (s *Scanner) Modules() []*Module { return slices.Clone(s.modules) }

// Discover returns the concrete types satisfying capability, in module order
// then declaration order. The result is a copy of the cached list.
func (s *Scanner) Discover(capability reflect.Type) []reflect.Type {
	return slices.Clone(s.discover(capability))
}

// discover returns the cached slice itself; callers must not modify it.
func (s *Scanner) discover(capability reflect.Type) []reflect.Type {
	capability = normalize(capability)
	if cached, ok := s.cache.Load(capability); ok {
		s.metrics.hit()
		return cached.([]reflect.Type)
	}

	// Keys are type names; a name collision between two capabilities would
	// share a result, so the winner reports which capability it scanned.
	v, _, _ := s.group.Do(container.KeyOf(capability), func() (any, error) {
		return s.store(capability), nil
	})
	if d := v.(discovery); d.capability == capability {
		return d.types
	}
	return s.store(capability).types
}

type discovery struct {
	capability reflect.Type
	types      []reflect.Type
}

// store scans capability unless another caller already cached it, then
// inserts the result atomically.
func (s *Scanner) store(capability reflect.Type) discovery {
	if cached, ok := s.cache.Load(capability); ok {
		s.metrics.hit()
		return discovery{capability, cached.([]reflect.Type)}
	}
	s.metrics.miss()
	actual, _ := s.cache.LoadOrStore(capability, s.scan(capability))
	return discovery{capability, actual.([]reflect.Type)}
}

func (s *Scanner) scan(capability reflect.Type) []reflect.Type {
	start := time.Now()
	matched := []reflect.Type{}
	for _, m := range s.modules {
		s.metrics.scanned(m.name)
		for _, e := range m.entries {
			if e.concrete() && Satisfies(capability, e.typ) && !slices.Contains(matched, e.typ) {
				matched = append(matched, e.typ)
			}
		}
	}

	name := container.KeyOf(capability)
	s.metrics.found(name, len(matched))
	s.log.Debug("capability discovered",
		zap.String("capability", name),
		zap.Int("types", len(matched)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return matched
}

// Cached reports whether capability has been discovered already.
func (s *Scanner) Cached(capability reflect.Type) bool {
	_, ok := s.cache.Load(normalize(capability))
	return ok
}

// Snapshot copies the discovery cache.
func (s *Scanner) Snapshot() map[reflect.Type][]reflect.Type {
	out := make(map[reflect.Type][]reflect.Type)
	s.cache.Range(func(k, v any) bool {
		out[k.(reflect.Type)] = slices.Clone(v.([]reflect.Type))
		return true
	})
	return out
}

// ── Assignability ─────────────────────────────────────────────────────────────

// Satisfies reports whether a value of type t can serve as capability:
//   - interface capability: t implements it;
//   - struct capability (a base type): t is that struct, or embeds it
//     directly or transitively, by value or by pointer.
//
// Interface types never satisfy anything; they are not concrete.
func Satisfies(capability, t reflect.Type) bool {
	if capability == nil || t == nil || t.Kind() == reflect.Interface {
		return false
	}
	capability = normalize(capability)
	if capability.Kind() == reflect.Interface {
		return t.Implements(capability)
	}
	return derives(indirect(t), capability, nil)
}

func derives(t, base reflect.Type, path []reflect.Type) bool {
	if t == base {
		return true
	}
	if t.Kind() != reflect.Struct || slices.Contains(path, t) {
		return false
	}
	path = append(path, t)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && derives(indirect(f.Type), base, path) {
			return true
		}
	}
	return false
}

// normalize maps a pointer-to-struct capability onto its struct, so *Base
// and Base share one cache entry.
func normalize(capability reflect.Type) reflect.Type {
	if capability != nil && capability.Kind() == reflect.Pointer && capability.Elem().Kind() == reflect.Struct {
		return capability.Elem()
	}
	return capability
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
