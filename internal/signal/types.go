package signal

import (
	"fmt"
	"reflect"
)

// ReceiverFunc is a direct receiver supplied as a closure or method value.
// It is invoked with the sender identity and the dispatch payload.
type ReceiverFunc func(sender, params any)

// Bound is a direct receiver supplied as an object/method-name pair.
// The named method is looked up on Recv at invocation time and called
// with (sender, params).
type Bound struct {
	// Recv is the receiving object.
	Recv any

	// Method is the exported method name to invoke on Recv.
	Method string
}

// Declarative describes a receiver that must be resolved before first use:
// the module file is loaded, the class instantiated or the function looked
// up, through the dispatcher's ModuleLoader.
type Declarative struct {
	// Class is the optional class (module table) name. When set, the
	// dispatcher instantiates the class once and invokes Function as a
	// method on the cached instance.
	Class string

	// Function is the receiver entry point. Required; a descriptor with
	// an empty Function is skipped silently.
	Function string

	// Filename is the module file name (e.g. "warehouse.lua").
	Filename string

	// Filepath is the module directory, joined under the application root.
	Filepath string

	// Sender optionally restricts delivery to senders whose identity
	// label matches exactly.
	Sender string
}

// Kind discriminates the receiver descriptor variants.
type Kind int

const (
	// KindFunc is a direct closure receiver.
	KindFunc Kind = iota

	// KindBound is a direct object/method-pair receiver.
	KindBound

	// KindModule is a declarative module-backed receiver.
	KindModule
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindBound:
		return "bound"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Descriptor is the tagged union of receiver shapes held by the registry.
// Exactly one of Func, Bound, or Module is meaningful, selected by Kind.
type Descriptor struct {
	Kind   Kind
	Func   ReceiverFunc
	Bound  Bound
	Module Declarative
}

// FuncReceiver wraps a closure as a direct receiver descriptor.
func FuncReceiver(fn ReceiverFunc) Descriptor {
	return Descriptor{Kind: KindFunc, Func: fn}
}

// BoundReceiver wraps an object/method pair as a direct receiver descriptor.
func BoundReceiver(recv any, method string) Descriptor {
	return Descriptor{Kind: KindBound, Bound: Bound{Recv: recv, Method: method}}
}

// ModuleReceiver wraps a declarative record as a receiver descriptor.
func ModuleReceiver(d Declarative) Descriptor {
	return Descriptor{Kind: KindModule, Module: d}
}

// callBound invokes a bound receiver via reflection with (sender, params).
// Returns an error if the method does not exist or has an incompatible
// signature; errors raised by the method itself propagate as panics.
func callBound(b Bound, sender, params any) error {
	if b.Recv == nil {
		return fmt.Errorf("bound receiver: nil receiving object")
	}
	if b.Method == "" {
		return fmt.Errorf("bound receiver: empty method name")
	}

	m := reflect.ValueOf(b.Recv).MethodByName(b.Method)
	if !m.IsValid() {
		return fmt.Errorf("bound receiver: %T has no method %q", b.Recv, b.Method)
	}

	t := m.Type()
	if t.NumIn() != 2 {
		return fmt.Errorf("bound receiver: %T.%s must accept (sender, params)", b.Recv, b.Method)
	}

	senderArg, err := argValue(sender, t.In(0))
	if err != nil {
		return fmt.Errorf("bound receiver %T.%s: sender %w", b.Recv, b.Method, err)
	}
	paramsArg, err := argValue(params, t.In(1))
	if err != nil {
		return fmt.Errorf("bound receiver %T.%s: params %w", b.Recv, b.Method, err)
	}

	m.Call([]reflect.Value{senderArg, paramsArg})
	return nil
}

// argValue adapts a dispatch argument to a method parameter type.
// Nil arguments become the parameter's zero value.
func argValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("type %s is not assignable to %s", rv.Type(), t)
	}
	return rv, nil
}
