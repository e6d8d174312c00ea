package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Register() binds services; Boot() is called after ALL providers have been
// registered, making it safe to resolve other bindings inside Boot().
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    app.Singleton("mailer", func(c *container.Container) (any, error) {
//	        cfg, err := container.Resolve[*config.Config](c, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.NewSMTP(cfg), nil
//	    })
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the abstract keys this provider registers.
	// Only consulted for deferred providers.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() abstracts is first resolved.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
//
// It mirrors the behaviour of Laravel's Application::registerConfiguredProviders
// and Application::bootProviders.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	loaders    map[ServiceProvider]*deferredLoad
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		loaders:    make(map[ServiceProvider]*deferredLoad),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// Registering the same provider twice is a no-op.
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.loaders[provider] = &deferredLoad{}
		r.mu.Unlock()
		r.interceptDeferred(provider)
		return nil
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}
	// If already booted, boot this provider immediately
	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("container: boot %T: %w", provider, err)
		}
	}
	return nil
}

// interceptDeferred binds a placeholder for each deferred abstract.
// The first Make() of any of them registers (and, if booted, boots) the
// provider, whose real bindings replace the placeholders.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) (any, error) {
			if err := r.load(provider); err != nil {
				return nil, err
			}
			if !c.Bound(abs) {
				return nil, fmt.Errorf("container: deferred provider %T did not bind [%s]: %w", provider, abs, ErrNotBound)
			}
			return c.Make(abs)
		})
	}
}

// deferredLoad runs a deferred provider's Register (and Boot) exactly once.
type deferredLoad struct {
	once sync.Once
	err  error
}

func (r *ProviderRegistry) load(provider ServiceProvider) error {
	r.mu.Lock()
	l := r.loaders[provider]
	r.mu.Unlock()

	l.once.Do(func() {
		// Forget placeholders first so a provider that skips an abstract fails loudly
		for _, abs := range provider.Provides() {
			r.app.Forget(abs)
		}

		if err := provider.Register(r.app); err != nil {
			l.err = fmt.Errorf("container: register deferred %T: %w", provider, err)
			return
		}
		if r.Booted() {
			if err := provider.Boot(r.app); err != nil {
				l.err = fmt.Errorf("container: boot deferred %T: %w", provider, err)
			}
		}
	})
	return l.err
}

// Boot calls Boot() on all eager providers, in registration order.
// Must be called after ALL providers have been registered.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("container: boot %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
