package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/getall/framework/capability"
)

// NotificationHandler handles notifications of type N.
type NotificationHandler[N any] interface {
	Handle(ctx context.Context, notification N) error
}

// Publisher fans a notification out to every NotificationHandler[N] found
// by discovery.
type Publisher[N any] struct {
	resolver *capability.Resolver
	log      *zap.Logger
}

// NewPublisher creates a publisher. It is usable as a container constructor:
//
//	_ = c.Constructor(dispatch.NewPublisher[orders.OrderPlaced])
func NewPublisher[N any](resolver *capability.Resolver, log *zap.Logger) *Publisher[N] {
	return &Publisher[N]{resolver: resolver, log: log}
}

// Publish runs every handler in discovery order. A failing handler (build
// error, returned error or panic) is logged and does not stop the others;
// all failures are returned combined.
func (p *Publisher[N]) Publish(ctx context.Context, notification N) error {
	var errs error
	for handler, err := range capability.All[NotificationHandler[N]](ctx, p.resolver) {
		if err == nil {
			err = p.handle(ctx, handler, notification)
		}
		if err != nil {
			p.log.Error("notification handler failed",
				zap.String("notification", reflect.TypeFor[N]().String()),
				zap.String("handler", failedName(handler, err)),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (p *Publisher[N]) handle(ctx context.Context, handler NotificationHandler[N], notification N) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch: %s panicked: %v", handlerName(handler), r)
		}
	}()
	if err := handler.Handle(ctx, notification); err != nil {
		return fmt.Errorf("dispatch: %s: %w", handlerName(handler), err)
	}
	return nil
}

func handlerName(handler any) string {
	return fmt.Sprintf("%T", handler)
}

// failedName names the handler behind err, falling back to the concrete type
// recorded by the resolver when the handler was never built.
func failedName(handler any, err error) string {
	if handler != nil {
		return handlerName(handler)
	}
	var resolveErr *capability.ResolveError
	if errors.As(err, &resolveErr) {
		return resolveErr.Type.String()
	}
	return "<unknown>"
}
