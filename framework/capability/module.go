package capability

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/km-arc/getall/framework/container"
)

// Entry is one type declared by a Module.
type Entry struct {
	typ      reflect.Type
	ctor     any
	abstract bool
}

// Type returns the type the entry contributes to discovery.
func (e Entry) Type() reflect.Type { return e.typ }

// Abstract reports whether the entry is excluded from discovery results.
func (e Entry) Abstract() bool { return e.abstract }

// concrete reports whether the entry can appear in discovery results.
func (e Entry) concrete() bool {
	return e.typ != nil && !e.abstract && e.typ.Kind() != reflect.Interface
}

// Provide declares a type through its constructor. The entry's type is the
// constructor's first result; its parameters are resolved by the builder.
//
//	capability.Provide(NewSendReceipt) // func(*zap.Logger) *SendReceipt
func Provide(ctor any) Entry {
	t := reflect.TypeOf(ctor)
	if t == nil || t.Kind() != reflect.Func || t.NumOut() == 0 {
		panic(fmt.Sprintf("capability: Provide expects a constructor function, got %T", ctor))
	}
	return Entry{typ: t.Out(0), ctor: ctor}
}

// Type declares T without a constructor; the builder creates it from its
// zero value. Struct types are declared as *T, the type the builder returns.
func Type[T any]() Entry {
	return Entry{typ: declared(reflect.TypeFor[T]())}
}

// Abstract declares T as a base type: it is enumerated but never returned
// by discovery, like an abstract class.
func Abstract[T any]() Entry {
	return Entry{typ: declared(reflect.TypeFor[T]()), abstract: true}
}

func declared(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Struct {
		return reflect.PointerTo(t)
	}
	return t
}

// ── Module ────────────────────────────────────────────────────────────────────

// Module is a named, ordered unit of types to scan: the Go stand-in for a
// compiled assembly. Packages usually expose one:
//
//	func Module() *capability.Module {
//	    return capability.NewModule("orders",
//	        capability.Provide(NewSendReceipt),
//	        capability.Provide(NewReserveStock),
//	    )
//	}
type Module struct {
	name    string
	entries []Entry
}

// NewModule creates a module. Entries keep their declaration order.
func NewModule(name string, entries ...Entry) *Module {
	return &Module{name: name, entries: slices.Clone(entries)}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Entries returns the module's entries in declaration order.
func (m *Module) Entries() []Entry { return slices.Clone(m.entries) }

// Types enumerates every declared type, abstract and interface ones included.
func (m *Module) Types() []reflect.Type {
	out := make([]reflect.Type, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.typ)
	}
	return out
}

// Register hands the module's constructors to the container so Build can
// create the declared types.
func (m *Module) Register(c *container.Container) error {
	for _, e := range m.entries {
		if e.ctor == nil {
			continue
		}
		if err := c.Constructor(e.ctor); err != nil {
			return fmt.Errorf("capability: module %s: %w", m.name, err)
		}
	}
	return nil
}

// Select returns the modules named in names, in that order. An empty names
// list selects every module in its given order.
func Select(available []*Module, names []string) ([]*Module, error) {
	if len(names) == 0 {
		return slices.Clone(available), nil
	}
	byName := make(map[string]*Module, len(available))
	for _, m := range available {
		byName[m.name] = m
	}
	selected := make([]*Module, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		m, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("capability: unknown module %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("capability: module %q selected twice", name)
		}
		seen[name] = true
		selected = append(selected, m)
	}
	return selected, nil
}
