package capability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/getall/framework/capability"
	"github.com/km-arc/getall/framework/container"
)

// ── notifications ─────────────────────────────────────────────────────────────

type NotificationA struct{}
type NotificationB struct{}
type NotificationC struct{}
type NotificationD struct{}

// ── capabilities ──────────────────────────────────────────────────────────────

type Handler[N any] interface {
	Handle(N) string
}

type Observer[N any] interface {
	Observe(N) string
}

type Greeter interface {
	Greet() string
}

type Unrelated interface {
	Unrelated()
}

// ── bases ─────────────────────────────────────────────────────────────────────

type Base struct {
	Name string
}

type GenericBase[T any] struct {
	Value T
}

// ── concrete types ────────────────────────────────────────────────────────────

type HandlerA struct{ Base }

func (*HandlerA) Handle(NotificationA) string { return "A" }

type HandlerA2 struct{ Base }

func (*HandlerA2) Handle(NotificationA) string { return "A2" }

type HandlerB struct{ GenericBase[int] }

func (*HandlerB) Handle(NotificationB) string { return "B" }

// HandlerCxD serves two capabilities at once.
type HandlerCxD struct{ calls int }

func (*HandlerCxD) Handle(NotificationC) string  { return "C" }
func (*HandlerCxD) Observe(NotificationD) string { return "D" }

// Deep reaches Base through HandlerA.
type Deep struct{ HandlerA }

// Wired embeds its base by pointer and has it injected.
type Wired struct {
	*Base `inject:""`
}

// Shared embeds its base by pointer but nothing sets it.
type Shared struct {
	*Base
}

// AbstractHandler is declared abstract and must never be discovered.
type AbstractHandler struct{ Base }

func (*AbstractHandler) Handle(NotificationA) string { return "abstract" }

type English struct{}

func (English) Greet() string { return "hello" }

// NeedsGreeter cannot be built unless a Greeter is bound.
type NeedsGreeter struct {
	Greeter Greeter `inject:""`
}

func (*NeedsGreeter) Handle(NotificationA) string { return "needs" }

// ── helpers ───────────────────────────────────────────────────────────────────

type harness struct {
	container *container.Container
	scanner   *capability.Scanner
	resolver  *capability.Resolver
	metrics   *capability.Metrics
}

func newHarness(t *testing.T, modules ...*capability.Module) *harness {
	t.Helper()
	c := container.New()
	for _, m := range modules {
		require.NoError(t, m.Register(c))
	}
	metrics := capability.NewMetrics(prometheus.NewRegistry())
	scanner := capability.NewScanner(modules, capability.WithMetrics(metrics))
	return &harness{
		container: c,
		scanner:   scanner,
		resolver:  capability.NewResolver(c, scanner),
		metrics:   metrics,
	}
}

func handlersModule() *capability.Module {
	return capability.NewModule("handlers",
		capability.Type[HandlerA](),
		capability.Type[HandlerA2](),
		capability.Type[HandlerB](),
		capability.Abstract[AbstractHandler](),
		capability.Type[Greeter](),
	)
}
