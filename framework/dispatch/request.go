package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/km-arc/getall/framework/capability"
)

var (
	// ErrNoHandler is returned by Send when no handler serves the request type.
	ErrNoHandler = errors.New("no request handler")

	// ErrAmbiguousHandler is returned by Send when more than one handler
	// serves the request type.
	ErrAmbiguousHandler = errors.New("more than one request handler")
)

// RequestHandler answers requests of type Req with a Resp.
type RequestHandler[Req, Resp any] interface {
	HandleRequest(ctx context.Context, request Req) (Resp, error)
}

// Send routes request to the single RequestHandler[Req, Resp] among the
// scanned modules. Unlike Publish it fails fast: handler errors are returned
// as is.
func Send[Req, Resp any](ctx context.Context, r *capability.Resolver, request Req) (Resp, error) {
	var zero Resp
	capabilityType := reflect.TypeFor[RequestHandler[Req, Resp]]()
	types := r.Scanner().Discover(capabilityType)
	switch len(types) {
	case 0:
		return zero, fmt.Errorf("dispatch: %s: %w", capabilityType, ErrNoHandler)
	case 1:
	default:
		return zero, fmt.Errorf("dispatch: %s has %d handlers: %w", capabilityType, len(types), ErrAmbiguousHandler)
	}

	handler, err := capability.GetType[RequestHandler[Req, Resp]](ctx, r, types[0])
	if err != nil {
		return zero, err
	}
	return handler.HandleRequest(ctx, request)
}
