package capability_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/container"
)

// ── Get / GetType ─────────────────────────────────────────────────────────────

func TestGet_BuildsThroughContainer(t *testing.T) {
	h := newHarness(t, handlersModule())

	a, err := capability.Get[*HandlerA](context.Background(), h.resolver)

	require.NoError(t, err)
	assert.Equal(t, "A", a.Handle(NotificationA{}))
}

func TestGet_UsesBindings(t *testing.T) {
	h := newHarness(t, handlersModule())
	h.container.Instance(container.KeyFor[Greeter](), English{})

	g, err := capability.Get[Greeter](context.Background(), h.resolver)

	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
}

func TestGet_FreshInstancePerCall(t *testing.T) {
	h := newHarness(t, handlersModule())
	ctx := context.Background()

	first, err := capability.Get[*HandlerA](ctx, h.resolver)
	require.NoError(t, err)
	second, err := capability.Get[*HandlerA](ctx, h.resolver)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestGetType_ReturnsCapabilityView(t *testing.T) {
	h := newHarness(t, handlersModule())
	ctx := context.Background()

	handler, err := capability.GetType[Handler[NotificationA]](ctx, h.resolver, typeOf[*HandlerA2]())
	require.NoError(t, err)
	assert.Equal(t, "A2", handler.Handle(NotificationA{}))

	base, err := capability.GetType[*Base](ctx, h.resolver, typeOf[*HandlerA]())
	require.NoError(t, err)
	assert.NotNil(t, base)
}

func TestGetType_Mismatch(t *testing.T) {
	h := newHarness(t, handlersModule())

	_, err := capability.GetType[Greeter](context.Background(), h.resolver, typeOf[*HandlerA]())

	assert.ErrorIs(t, err, capability.ErrCapabilityMismatch)
}

func TestGet_BuildErrorPropagates(t *testing.T) {
	h := newHarness(t, handlersModule())

	_, err := capability.Get[*NeedsGreeter](context.Background(), h.resolver)

	assert.ErrorIs(t, err, container.ErrNotBound)
}

// ── All ───────────────────────────────────────────────────────────────────────

func TestAll_BuildsEveryImplementationInOrder(t *testing.T) {
	h := newHarness(t, handlersModule())

	var got []string
	for handler, err := range capability.All[Handler[NotificationA]](context.Background(), h.resolver) {
		require.NoError(t, err)
		got = append(got, handler.Handle(NotificationA{}))
	}

	assert.Equal(t, []string{"A", "A2"}, got)
}

func TestAll_Empty(t *testing.T) {
	h := newHarness(t, handlersModule())

	n := 0
	for range capability.All[Unrelated](context.Background(), h.resolver) {
		n++
	}

	assert.Zero(t, n)
	assert.True(t, h.scanner.Cached(typeOf[Unrelated]()))
}

func TestAll_IsLazy(t *testing.T) {
	built := 0
	m := capability.NewModule("lazy",
		capability.Provide(func() *HandlerA { built++; return &HandlerA{} }),
		capability.Provide(func() *HandlerA2 { built++; return &HandlerA2{} }),
	)
	h := newHarness(t, m)

	seq := capability.All[Handler[NotificationA]](context.Background(), h.resolver)
	assert.Zero(t, built)
	assert.False(t, h.scanner.Cached(typeOf[Handler[NotificationA]]()))

	for _, err := range seq {
		require.NoError(t, err)
		break
	}
	assert.Equal(t, 1, built)

	for range seq {
	}
	assert.Equal(t, 3, built)
}

func TestAll_YieldsBuildErrorsInPlace(t *testing.T) {
	m := capability.NewModule("mixed",
		capability.Type[HandlerA](),
		capability.Type[NeedsGreeter](),
		capability.Type[HandlerA2](),
	)
	h := newHarness(t, m)

	var (
		got  []string
		errs []error
	)
	for handler, err := range capability.All[Handler[NotificationA]](context.Background(), h.resolver) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, handler.Handle(NotificationA{}))
	}

	assert.Equal(t, []string{"A", "A2"}, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], container.ErrNotBound)
}

func TestAll_ConstructorErrors(t *testing.T) {
	boom := errors.New("boom")
	m := capability.NewModule("failing",
		capability.Provide(func() (*HandlerA, error) { return nil, boom }),
	)
	h := newHarness(t, m)

	_, err := capability.Collect[Handler[NotificationA]](context.Background(), h.resolver)

	assert.ErrorIs(t, err, boom)
}

func TestAll_BaseCapability(t *testing.T) {
	tests := []struct {
		name   string
		module *capability.Module
		names  []string
	}{
		{"embedded by value", handlersModule(), []string{"", ""}},
		{"base itself", capability.NewModule("base", capability.Type[Base](), capability.Type[HandlerA]()), []string{"", ""}},
		{"embedded by injected pointer", capability.NewModule("wired", capability.Type[Wired]()), []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.module)
			ctx := context.Background()

			values, err := capability.Collect[Base](ctx, h.resolver)
			require.NoError(t, err)
			pointers, err := capability.Collect[*Base](ctx, h.resolver)
			require.NoError(t, err)

			require.Len(t, values, len(tt.names))
			require.Len(t, pointers, len(tt.names))
			for i, want := range tt.names {
				assert.Equal(t, want, values[i].Name)
				assert.NotNil(t, pointers[i])
			}
		})
	}
}

func TestAll_NilEmbeddedBaseIsMismatch(t *testing.T) {
	h := newHarness(t, capability.NewModule("shared", capability.Type[Shared]()))
	require.Equal(t, []reflect.Type{typeOf[*Shared]()}, h.scanner.Discover(typeOf[Base]()))

	for base, err := range capability.All[*Base](context.Background(), h.resolver) {
		assert.Nil(t, base)
		assert.ErrorIs(t, err, capability.ErrCapabilityMismatch)

		var resolveErr *capability.ResolveError
		require.ErrorAs(t, err, &resolveErr)
		assert.Equal(t, typeOf[*Shared](), resolveErr.Type)
	}
}

func TestResolveError_CarriesType(t *testing.T) {
	h := newHarness(t, handlersModule())

	_, err := capability.Get[*NeedsGreeter](context.Background(), h.resolver)

	var resolveErr *capability.ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, typeOf[*NeedsGreeter](), resolveErr.Type)
	assert.ErrorIs(t, err, container.ErrNotBound)
}

func TestAll_OneTypeTwoCapabilities(t *testing.T) {
	h := newHarness(t, capability.NewModule("cxd", capability.Type[HandlerCxD]()))
	ctx := context.Background()

	cs, err := capability.Collect[Handler[NotificationC]](ctx, h.resolver)
	require.NoError(t, err)
	ds, err := capability.Collect[Observer[NotificationD]](ctx, h.resolver)
	require.NoError(t, err)

	require.Len(t, cs, 1)
	require.Len(t, ds, 1)
	assert.Equal(t, "C", cs[0].Handle(NotificationC{}))
	assert.Equal(t, "D", ds[0].Observe(NotificationD{}))
	assert.NotSame(t, cs[0], ds[0], "each capability gets its own instance")
	assert.Len(t, h.scanner.Snapshot(), 2)
}

// ── As ────────────────────────────────────────────────────────────────────────

func TestAs(t *testing.T) {
	a := &HandlerA{Base: Base{Name: "a"}}

	base, ok := capability.As[*Base](a)
	require.True(t, ok)
	assert.Same(t, &a.Base, base)

	deep, ok := capability.As[*Base](&Deep{HandlerA: *a})
	require.True(t, ok)
	assert.Equal(t, "a", deep.Name)

	tests := []struct {
		name string
		inst any
		ok   bool
		want string
	}{
		{"embedded value", a, true, "a"},
		{"pointer to base", &Base{Name: "b"}, true, "b"},
		{"embedded pointer", &Wired{Base: &Base{Name: "w"}}, true, "w"},
		{"nil embedded pointer", &Shared{}, false, ""},
		{"nil base pointer", (*Base)(nil), false, ""},
		{"unrelated", &English{}, false, ""},
		{"nil", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := capability.As[Base](tt.inst)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, value.Name)
		})
	}

	_, ok = capability.As[*Base](&Shared{})
	assert.False(t, ok, "nil embedded pointer")

	_, ok = capability.As[Greeter](a)
	assert.False(t, ok)
}
