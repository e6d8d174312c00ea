package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrNotBound is returned when an abstract has no binding, instance or alias.
	ErrNotBound = errors.New("no binding registered")

	// ErrNotConstructible is returned by Build for a type that has neither a
	// binding, a registered constructor nor an injectable struct shape.
	ErrNotConstructible = errors.New("type cannot be constructed")

	// ErrCircularDependency is returned when a constructor graph loops back
	// onto a type that is still being built.
	ErrCircularDependency = errors.New("circular dependency")
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether it is a singleton.
type binding struct {
	factory   Factory
	singleton bool
}

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, c *Container) (any, error)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container — mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Resolve (generic)
//   - Constructor / Build (auto-wiring by parameter type)
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A's constructor needs B, give it C)
//   - Resolved event callbacks
//
// A Container is safe for concurrent use.
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]Extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// result type → constructor
	constructors map[reflect.Type]constructor

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:     make(map[string]*binding),
		instances:    make(map[string]any),
		aliases:      make(map[string]string),
		extenders:    make(map[string][]Extender),
		tags:         make(map[string][]string),
		contextual:   make(map[string]map[string]Factory),
		constructors: make(map[reflect.Type]constructor),
	}
	// Bind the container to itself — like Laravel's $app->instance()
	c.Instance("container", c)
	c.Alias("container", KeyFor[*Container]())
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](c, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &EloquentUserRepository{DB: db}, nil
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    return cache.NewMemory(), nil
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
}

func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)

	// Drop existing singleton instance so it's rebuilt with the new factory
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton}
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain. Contextual bindings apply while
// Build is resolving the parameters or injected fields of concrete.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When(container.KeyFor[*PhotoController]()).
//	    Needs(container.KeyFor[Filesystem]()).
//	    Give(func(c *container.Container) (any, error) { return filesystem.NewS3(), nil })
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if f, ok := m[abstract]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract. Extenders run on
// every Make and Build of the abstract, in registration order.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) (any, error) {
//	    return logging.NewTimestampWrapper(instance.(*Logger)), nil
//	})
func (c *Container) Extend(abstract string, fn Extender) error {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, resolved := c.instances[key]
	c.mu.Unlock()

	// Already resolved as singleton: decorate the cached instance in place.
	if !resolved {
		return nil
	}
	extended, err := fn(inst, c)
	if err != nil {
		return fmt.Errorf("container: extend [%s]: %w", abstract, err)
	}
	c.mu.Lock()
	c.instances[key] = extended
	c.mu.Unlock()
	return nil
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag, in tagging order.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		inst, err := c.Make(abs)
		if err != nil {
			return nil, fmt.Errorf("container: tagged [%s]: %w", tag, err)
		}
		result = append(result, inst)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Make("UserRepository")
func (c *Container) Make(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, resolved := c.instances[key]
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	if resolved {
		return inst, nil
	}
	if !bound {
		return nil, fmt.Errorf("container: [%s]: %w", abstract, ErrNotBound)
	}

	instance, err := b.factory(c)
	if err != nil {
		return nil, fmt.Errorf("container: make [%s]: %w", abstract, err)
	}
	if instance, err = c.decorate(key, instance); err != nil {
		return nil, fmt.Errorf("container: make [%s]: %w", abstract, err)
	}

	if b.singleton {
		c.mu.Lock()
		// A concurrent Make may have won the race; keep the first instance.
		if existing, ok := c.instances[key]; ok {
			c.mu.Unlock()
			return existing, nil
		}
		c.instances[key] = instance
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

func (c *Container) decorate(key string, instance any) (any, error) {
	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()

	var err error
	for _, ext := range exts {
		if instance, err = ext(instance, c); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if the abstract holds a cached instance.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Bindings returns all registered abstract keys, sorted.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after an abstract is made or a
// type is built.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Type keys ─────────────────────────────────────────────────────────────────

// KeyOf returns the abstract key used for a type: the package-qualified type
// name, with a "*" prefix per pointer level. Instantiated generic types keep
// their type arguments, so Handler[A] and Handler[B] get distinct keys.
//
//	c.Singleton(container.KeyOf(reflect.TypeFor[UserRepository]()), factory)
func KeyOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + KeyOf(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// KeyFor is KeyOf for a type known at the call site.
//
//	c.Alias("logger", container.KeyFor[*zap.Logger]())
func KeyFor[T any]() string {
	return KeyOf(reflect.TypeFor[T]())
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: v, err := c.Make("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%s]: [%s] resolved to %T",
			reflect.TypeFor[T](), abstract, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Meant for bootstrap code
// where a missing binding is a programming error.
func MustResolve[T any](c *Container, abstract string) T {
	typed, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return typed
}

// chain renders a build stack for error messages.
func chain(stack []reflect.Type, next reflect.Type) string {
	parts := make([]string, 0, len(stack)+1)
	for _, t := range stack {
		parts = append(parts, KeyOf(t))
	}
	parts = append(parts, KeyOf(next))
	return strings.Join(parts, " -> ")
}

var (
	contextType   = reflect.TypeFor[context.Context]()
	containerType = reflect.TypeFor[*Container]()
	errorType     = reflect.TypeFor[error]()
)
