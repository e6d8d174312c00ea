package orders

import (
	"github.com/km-arc/getall/framework/container"
	"github.com/km-arc/getall/framework/dispatch"
)

// ServiceProvider binds the order services the handlers depend on.
//
// Bound abstracts (by type):
//   - *Trail, *Books      → singletons
//   - Inventory           → *MemoryInventory seeded with Stock
//   - *dispatch.Publisher[OrderPlaced] → constructor
type ServiceProvider struct {
	container.BaseProvider
	Stock map[string]int
}

func (p *ServiceProvider) Register(app *container.Container) error {
	stock := p.Stock
	app.Singleton(container.KeyFor[*Trail](), func(*container.Container) (any, error) {
		return &Trail{}, nil
	})
	app.Singleton(container.KeyFor[*Books](), func(*container.Container) (any, error) {
		return &Books{}, nil
	})
	app.Singleton(container.KeyFor[Inventory](), func(*container.Container) (any, error) {
		return NewMemoryInventory(stock), nil
	})
	return app.Constructor(dispatch.NewPublisher[OrderPlaced])
}
