package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/getall/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled int
	bootCalled     int
}

func (p *eagerProvider) Register(app *container.Container) error {
	p.registerCalled++
	app.Singleton("eager-svc", func(c *container.Container) (any, error) { return "eager", nil })
	return nil
}

func (p *eagerProvider) Boot(app *container.Container) error {
	p.bootCalled++
	return nil
}

// deferredProvider is lazy — only registered when "deferred-svc" is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalled int
	bootCalled     int
}

func (p *deferredProvider) Register(app *container.Container) error {
	p.registerCalled++
	app.Singleton("deferred-svc", func(c *container.Container) (any, error) { return "deferred-value", nil })
	return nil
}

func (p *deferredProvider) Boot(app *container.Container) error {
	p.bootCalled++
	return nil
}

func (p *deferredProvider) IsDeferred() bool   { return true }
func (p *deferredProvider) Provides() []string { return []string{"deferred-svc"} }

// forgetfulProvider claims an abstract it never binds.
type forgetfulProvider struct {
	container.BaseProvider
}

func (p *forgetfulProvider) IsDeferred() bool   { return true }
func (p *forgetfulProvider) Provides() []string { return []string{"missing"} }
func (p *forgetfulProvider) Register(*container.Container) error {
	return nil
}

// failingProvider fails in the given phase.
type failingProvider struct {
	container.BaseProvider
	onRegister, onBoot error
}

func (p *failingProvider) Register(*container.Container) error { return p.onRegister }
func (p *failingProvider) Boot(*container.Container) error     { return p.onBoot }

// multiProvider registers multiple abstracts.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(app *container.Container) error {
	app.Singleton("alpha", func(c *container.Container) (any, error) { return "α", nil })
	app.Singleton("beta", func(c *container.Container) (any, error) { return "β", nil })
	return nil
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.registerCalled, "Register() should be called immediately for eager providers")
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.Zero(t, p.bootCalled, "Boot() should NOT be called before registry.Boot()")

	require.NoError(t, reg.Boot())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	got, err := container.Resolve[string](c, "eager-svc")
	require.NoError(t, err)
	assert.Equal(t, "eager", got)
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	require.NoError(t, reg.Boot())
	require.NoError(t, reg.Boot()) // second call should be no-op

	assert.True(t, reg.Booted())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	assert.False(t, reg.Booted())
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Register(p)) // second register of same instance

	assert.Equal(t, 1, p.registerCalled)
}

func TestRegistry_Errors(t *testing.T) {
	boom := errors.New("boom")

	reg := container.NewProviderRegistry(container.New())
	err := reg.Register(&failingProvider{onRegister: boom})
	assert.ErrorIs(t, err, boom)

	reg = container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&failingProvider{onBoot: boom}))
	assert.ErrorIs(t, reg.Boot(), boom)
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	assert.Zero(t, p.registerCalled, "deferred provider Register() should not be called until Make()")
	assert.True(t, c.Bound("deferred-svc"))
}

func TestRegistry_DeferredProvider_RegisteredOnFirstMake(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	got, err := container.Resolve[string](c, "deferred-svc")
	require.NoError(t, err)
	assert.Equal(t, "deferred-value", got)

	_, err = c.Make("deferred-svc")
	require.NoError(t, err)
	assert.Equal(t, 1, p.registerCalled)
	assert.Equal(t, 1, p.bootCalled, "deferred provider loaded after Boot() is booted on load")
}

func TestRegistry_DeferredProvider_MustBindWhatItProvides(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&forgetfulProvider{}))

	_, err := c.Make("missing")

	assert.ErrorIs(t, err, container.ErrNotBound)
}

// ── Multiple providers ────────────────────────────────────────────────────────

func TestRegistry_MultipleProviders_AllServicesResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&multiProvider{}))
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	for abstract, want := range map[string]string{"alpha": "α", "beta": "β", "eager-svc": "eager"} {
		got, err := container.Resolve[string](c, abstract)
		require.NoError(t, err)
		assert.Equal(t, want, got, abstract)
	}
}

// ── Providers list ────────────────────────────────────────────────────────────

func TestRegistry_Providers_ReturnsEagerOnes(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Register(&deferredProvider{})) // deferred — not in Providers()

	assert.Len(t, reg.Providers(), 1)
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider
	c := container.New()

	assert.NoError(t, p.Boot(c))
	assert.False(t, p.IsDeferred())
	assert.Empty(t, p.Provides())
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Boot()) // boot before registering

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p)) // register after boot

	assert.Equal(t, 1, p.bootCalled)
}
