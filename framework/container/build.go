package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

// constructor is a registered constructor function for one result type.
type constructor struct {
	fn     reflect.Value
	out    reflect.Type
	hasErr bool
}

// Constructor registers a constructor function used by Build. The function
// must return the built value, optionally followed by an error:
//
//	func NewMailer(cfg *config.Config, log *zap.Logger) *Mailer
//	func NewMailer(ctx context.Context, cfg *config.Config) (*Mailer, error)
//
// Parameters are resolved by type when Build runs. A later registration for
// the same result type replaces the earlier one.
func (c *Container) Constructor(fn any) error {
	ctor, err := newConstructor(fn)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructors[ctor.out] = ctor
	return nil
}

func newConstructor(fn any) (constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return constructor{}, fmt.Errorf("container: constructor must be a function, got %T", fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return constructor{}, fmt.Errorf("container: constructor %s must not be variadic", t)
	}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
		return constructor{fn: v, out: t.Out(0)}, nil
	case t.NumOut() == 2 && t.Out(1) == errorType:
		return constructor{fn: v, out: t.Out(0), hasErr: true}, nil
	default:
		return constructor{}, fmt.Errorf("container: constructor %s must return T or (T, error)", t)
	}
}

// HasConstructor reports whether a constructor is registered for t.
func (c *Container) HasConstructor(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.constructors[t]
	return ok
}

// ── Build ─────────────────────────────────────────────────────────────────────

// Build creates a value of type t, resolving its dependencies recursively,
// the equivalent of Laravel's $app->build(Concrete::class).
//
// Resolution order for t:
//  1. a binding or instance registered under KeyOf(t) (its lifetime applies);
//  2. a constructor registered with Constructor;
//  3. for a struct or pointer-to-struct, a zero value whose fields tagged
//     `inject:""` are resolved by type.
//
// Parameters of type context.Context receive ctx; parameters of type
// *Container receive c. Extenders registered under KeyOf(t) decorate the
// result of steps 2 and 3.
func (c *Container) Build(ctx context.Context, t reflect.Type) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.build(ctx, t, nil)
}

// Construct is the typed form of Build.
//
//	pub, err := container.Construct[*dispatch.Publisher[OrderPlaced]](ctx, c)
func Construct[T any](ctx context.Context, c *Container) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	inst, err := c.Build(ctx, t)
	if err != nil {
		return zero, err
	}
	v, err := assignable(inst, t, KeyOf(t))
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

// build returns the instance for t. Decorators may change its dynamic type,
// so callers needing a value of exactly t go through assignable.
func (c *Container) build(ctx context.Context, t reflect.Type, stack []reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("container: build <nil>: %w", ErrNotConstructible)
	}
	if slices.Contains(stack, t) {
		return nil, fmt.Errorf("container: %s: %w", chain(stack, t), ErrCircularDependency)
	}
	stack = append(stack[:len(stack):len(stack)], t)
	key := KeyOf(t)

	if c.Bound(key) {
		return c.Make(key)
	}

	c.mu.RLock()
	ctor, hasCtor := c.constructors[t]
	c.mu.RUnlock()

	var (
		v   reflect.Value
		err error
	)
	switch {
	case hasCtor:
		v, err = c.call(ctx, ctor, stack)
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		v, err = c.populate(ctx, t, stack)
	case t.Kind() == reflect.Struct:
		v, err = c.populate(ctx, reflect.PointerTo(t), stack)
		if err == nil {
			v = v.Elem()
		}
	case t.Kind() == reflect.Interface:
		return nil, fmt.Errorf("container: [%s]: %w", key, ErrNotBound)
	default:
		return nil, fmt.Errorf("container: build %s: %w", key, ErrNotConstructible)
	}
	if err != nil {
		return nil, err
	}

	inst, err := c.decorate(key, v.Interface())
	if err != nil {
		return nil, fmt.Errorf("container: build %s: %w", key, err)
	}
	c.fireAfterResolving(key, inst)
	return inst, nil
}

func (c *Container) call(ctx context.Context, ctor constructor, stack []reflect.Type) (reflect.Value, error) {
	fnType := ctor.fn.Type()
	args := make([]reflect.Value, fnType.NumIn())
	for i := range args {
		arg, err := c.dependency(ctx, ctor.out, fnType.In(i), stack)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("container: build %s: parameter %d: %w", KeyOf(ctor.out), i, err)
		}
		args[i] = arg
	}

	results := ctor.fn.Call(args)
	if ctor.hasErr && !results[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("container: build %s: %w", KeyOf(ctor.out), results[1].Interface().(error))
	}
	return results[0], nil
}

// populate allocates *T and fills its `inject` tagged fields.
func (c *Container) populate(ctx context.Context, t reflect.Type, stack []reflect.Type) (reflect.Value, error) {
	v := reflect.New(t.Elem())
	elem := v.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := t.Elem().Field(i)
		if _, ok := field.Tag.Lookup("inject"); !ok {
			continue
		}
		if !field.IsExported() {
			return reflect.Value{}, fmt.Errorf("container: build %s: field %s is tagged inject but unexported", KeyOf(t), field.Name)
		}
		dep, err := c.dependency(ctx, t, field.Type, stack)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("container: build %s: field %s: %w", KeyOf(t), field.Name, err)
		}
		elem.Field(i).Set(dep)
	}
	return v, nil
}

// dependency resolves one parameter or field of owner.
func (c *Container) dependency(ctx context.Context, owner, t reflect.Type, stack []reflect.Type) (reflect.Value, error) {
	switch t {
	case contextType:
		return reflect.ValueOf(&ctx).Elem(), nil
	case containerType:
		return reflect.ValueOf(c), nil
	}

	key := KeyOf(t)
	if f := c.getContextual(KeyOf(owner), key); f != nil {
		inst, err := f(c)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("container: contextual [%s]: %w", key, err)
		}
		return assignable(inst, t, key)
	}
	inst, err := c.build(ctx, t, stack)
	if err != nil {
		return reflect.Value{}, err
	}
	return assignable(inst, t, key)
}

// assignable converts inst into a value usable where t is expected.
func assignable(inst any, t reflect.Type, key string) (reflect.Value, error) {
	if inst == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("container: [%s] resolved to nil", key)
	}
	v := reflect.ValueOf(inst)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("container: [%s] resolved to %T, not assignable to %s", key, inst, t)
	}
	if v.Type() != t && t.Kind() == reflect.Interface {
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	}
	return v, nil
}
