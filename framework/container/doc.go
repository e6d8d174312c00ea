// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings, extension (decoration) and
// constructor-based auto-wiring.
//
// It mirrors the public API of Laravel's Illuminate\Container\Container as
// closely as Go's type system allows. Go has no constructor reflection, so
// auto-wiring goes through registered constructor functions whose parameters
// are resolved by type.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient — new instance every Make()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) (any, error) { return &Foo{}, nil })
//
//	// Singleton — created once, reused
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    return cache.NewMemory(), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", myConfig)
//
//	// Alias: type keys make a binding reachable from constructor parameters
//	c.Alias("config", container.KeyFor[*config.Config]())
//
// # Resolving
//
//	raw, err := c.Make("cache")
//	cache, err := container.Resolve[*MemoryCache](c, "cache")
//
// # Auto-wiring
//
//	func NewMailer(cfg *config.Config, log *zap.Logger) (*Mailer, error) { ... }
//
//	_ = c.Constructor(NewMailer)
//	v, err := c.Build(ctx, reflect.TypeFor[*Mailer]())
//
// Structs without a constructor are built as zero values; exported fields
// tagged `inject:""` are resolved by type:
//
//	type Report struct {
//	    Log *zap.Logger `inject:""`
//	}
//
// # Contextual Binding
//
//	c.When(container.KeyFor[*PhotoController]()).
//	    Needs(container.KeyFor[Filesystem]()).
//	    Give(func(c *container.Container) (any, error) { return &S3Filesystem{}, nil })
//
// # Tags
//
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	c.Extend("logger", func(instance any, c *container.Container) (any, error) {
//	    return &TimestampLogger{Inner: instance.(*Logger)}, nil
//	})
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    app.Singleton("heavy", func(c *container.Container) (any, error) {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	    return nil
//	}
package container
