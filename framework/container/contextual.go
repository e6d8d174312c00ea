package container

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When(container.KeyFor[*PhotoController]()).
//	    Needs(container.KeyFor[Filesystem]()).
//	    Give(func(c *container.Container) (any, error) { return filesystem.NewS3(), nil })
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// Needs specifies which abstract the concrete type depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give provides the factory used when Build resolves the needed abstract
// for the concrete type. The factory runs on every such resolution.
func (b *ContextualBuilder) Give(factory Factory) {
	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	if _, ok := b.container.contextual[b.concrete]; !ok {
		b.container.contextual[b.concrete] = make(map[string]Factory)
	}
	b.container.contextual[b.concrete][b.needs] = factory
}

// GiveValue is a shorthand for Give when the value is pre-built.
//
//	// Laravel: ->give('/tmp/photos')
//	c.When(container.KeyFor[*PhotoStore]()).Needs("string").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(_ *Container) (any, error) { return value, nil })
}
