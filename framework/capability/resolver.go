package capability

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// ErrCapabilityMismatch is returned when a built instance cannot be viewed as
// the requested capability.
var ErrCapabilityMismatch = errors.New("instance does not satisfy capability")

// ResolveError reports the concrete type whose resolution failed.
type ResolveError struct {
	Type reflect.Type
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("capability: resolve %s: %v", e.Type, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Builder constructs an object of an arbitrary type, resolving that type's
// own dependencies. *container.Container implements it.
type Builder interface {
	Build(ctx context.Context, t reflect.Type) (any, error)
}

// Resolver turns capabilities and types into live instances. It keeps no
// instances itself; every call asks the builder again.
type Resolver struct {
	builder Builder
	scanner *Scanner
	metrics *Metrics
}

// NewResolver creates a resolver backed by builder and scanner.
func NewResolver(builder Builder, scanner *Scanner) *Resolver {
	return &Resolver{builder: builder, scanner: scanner, metrics: scanner.metrics}
}

// Scanner returns the scanner holding the discovery cache.
func (r *Resolver) Scanner() *Scanner { return r.scanner }

// Build builds one instance of t through the builder.
func (r *Resolver) Build(ctx context.Context, t reflect.Type) (any, error) {
	inst, err := r.builder.Build(ctx, t)
	if err != nil {
		r.metrics.resolveFailed()
		return nil, &ResolveError{Type: t, Err: err}
	}
	return inst, nil
}

// Get builds an instance of T.
//
//	mailer, err := capability.Get[*Mailer](ctx, resolver)
func Get[T any](ctx context.Context, r *Resolver) (T, error) {
	return GetType[T](ctx, r, reflect.TypeFor[T]())
}

// GetType builds an instance of the runtime type t and returns it as T.
// t must satisfy T; otherwise the instance is discarded and the error wraps
// ErrCapabilityMismatch.
//
//	for _, t := range handlerTypes {
//	    h, err := capability.GetType[EventHandler](ctx, resolver, t)
//	    ...
//	}
func GetType[T any](ctx context.Context, r *Resolver, t reflect.Type) (T, error) {
	var zero T
	inst, err := r.Build(ctx, t)
	if err != nil {
		return zero, err
	}
	typed, ok := As[T](inst)
	if !ok {
		return zero, &ResolveError{
			Type: t,
			Err:  fmt.Errorf("%T as %s: %w", inst, reflect.TypeFor[T](), ErrCapabilityMismatch),
		}
	}
	return typed, nil
}

// All returns every implementation of capability T, built lazily in
// discovery order: an element is built when the loop reaches it.
//
// A build failure is yielded in place of its element. Breaking out of the
// loop stops further builds; continuing moves on to the next type.
//
//	for handler, err := range capability.All[Handler[OrderPlaced]](ctx, resolver) {
//	    if err != nil {
//	        return err
//	    }
//	    handler.Handle(ctx, order)
//	}
//
// Ranging the sequence again reuses the cached discovery and builds fresh
// instances.
func All[T any](ctx context.Context, r *Resolver) iter.Seq2[T, error] {
	capability := reflect.TypeFor[T]()
	return func(yield func(T, error) bool) {
		for _, t := range r.scanner.discover(capability) {
			if !yield(GetType[T](ctx, r, t)) {
				return
			}
		}
	}
}

// Collect drains All, stopping at the first error.
func Collect[T any](ctx context.Context, r *Resolver) ([]T, error) {
	var out []T
	for v, err := range All[T](ctx, r) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ── Views ─────────────────────────────────────────────────────────────────────

// As views inst as T: directly when inst is a T, by dereferencing when inst
// is a *T, or through the embedded field of type T when T is a base struct
// (or pointer to one) that inst embeds. Nil embedded pointers never match.
func As[T any](inst any) (T, bool) {
	if typed, ok := inst.(T); ok {
		return typed, true
	}
	var zero T
	v := reflect.ValueOf(inst)
	if !v.IsValid() {
		return zero, false
	}
	target := reflect.TypeFor[T]()
	if target.Kind() == reflect.Struct && v.Type() == reflect.PointerTo(target) {
		if v.IsNil() {
			return zero, false
		}
		return v.Elem().Interface().(T), true
	}
	found, ok := embedded(v, target, nil)
	if !ok {
		return zero, false
	}
	return found.Interface().(T), true
}

func embedded(v reflect.Value, target reflect.Type, path []reflect.Type) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || slices.Contains(path, v.Type()) {
		return reflect.Value{}, false
	}
	path = append(path, v.Type())

	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.Anonymous {
			continue
		}
		fv := v.Field(i)
		switch {
		case !fv.CanInterface():
			continue
		case f.Type.Kind() == reflect.Pointer && fv.IsNil():
			continue
		case f.Type == target:
			return fv, true
		case target.Kind() == reflect.Pointer && f.Type == target.Elem() && fv.CanAddr():
			return fv.Addr(), true
		case target.Kind() == reflect.Struct && f.Type == reflect.PointerTo(target):
			return fv.Elem(), true
		}
		if found, ok := embedded(fv, target, path); ok {
			return found, true
		}
	}
	return reflect.Value{}, false
}
