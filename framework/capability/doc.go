// Package capability discovers every implementation of a capability (an
// interface, an instantiated generic interface, or an embeddable base struct)
// among a fixed set of modules, and builds them through the container.
//
// # Modules
//
// Go cannot enumerate the types of a package at runtime, so each package
// declares its types once in a Module:
//
//	func Module() *capability.Module {
//	    return capability.NewModule("orders",
//	        capability.Provide(NewSendReceipt),  // built by its constructor
//	        capability.Type[Ledger](),            // built from the zero value
//	        capability.Abstract[Auditor](),       // base type, never returned
//	    )
//	}
//
// # Discovery
//
// A Scanner owns the module set and the discovery cache. Discover returns the
// concrete types satisfying a capability; the first call per capability
// scans, later calls are served from the cache.
//
//	scanner := capability.NewScanner([]*capability.Module{orders.Module()})
//	types := scanner.Discover(reflect.TypeFor[dispatch.NotificationHandler[orders.OrderPlaced]]())
//
// Capability identity is reflect.Type identity, so Handler[A] and Handler[B]
// are separate cache entries.
//
// # Resolution
//
//	resolver := capability.NewResolver(c, scanner)
//
//	one, err := capability.Get[*orders.Ledger](ctx, resolver)
//	typed, err := capability.GetType[Handler](ctx, resolver, t)
//	for h, err := range capability.All[Handler](ctx, resolver) { ... }
//
// All is lazy: each element is built when the loop reaches it, and a build
// failure is yielded in place of the element. Isolating failures between
// elements is the caller's job (see package dispatch).
package capability
