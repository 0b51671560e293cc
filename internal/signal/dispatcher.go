package signal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/sigmux/internal/diag"
)

// Dispatcher owns the receiver registry and delivers signals to receivers
// synchronously, in registration order. Construct one per process and pass
// it to every component that raises signals.
//
// The registry is read-only after construction. The instance cache and the
// re-entrancy guard have no internal synchronization; all dispatching must
// happen on a single goroutine (the shared Lua state behind declarative
// receivers has the same confinement requirement).
type Dispatcher struct {
	registry *Registry
	loader   ModuleLoader
	sink     diag.Sink
	root     string

	// instances caches one constructed instance per class name, shared
	// across all signals for the dispatcher's lifetime. Never evicted.
	instances map[string]Instance

	// resolving is the re-entrancy guard: held for the span of one
	// declarative resolution-and-invocation, cleared on every exit path.
	resolving bool

	// Stats
	dispatched atomic.Uint64
	invoked    atomic.Uint64
	skipped    atomic.Uint64
}

// New builds a Dispatcher from a raw configuration table.
// A nil or malformed table yields an empty registry, not an error.
func New(table map[string]any, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  BuildRegistry(table),
		sink:      diag.Nop{},
		root:      ".",
		instances: make(map[string]Instance),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Registry returns the dispatcher's receiver registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch announces a signal to every receiver registered for it, in
// registration order. It returns true when the signal had any registered
// receivers, regardless of how many actually ran; receivers that fail to
// resolve or filter themselves out are skipped silently.
//
// An empty signal name fails with ErrInvalidSignal; a nil or empty sender
// fails with ErrMissingSender. An error raised by a receiver during its
// own execution propagates and aborts the remaining receivers.
func (d *Dispatcher) Dispatch(signal string, sender, params any) (bool, error) {
	outcomes, err := d.DispatchDetailed(signal, sender, params)
	if err != nil {
		return false, err
	}
	return len(outcomes) > 0, nil
}

// DispatchDetailed is Dispatch with per-receiver visibility: one Outcome
// per registered receiver, in registration order. A signal with no
// receivers yields an empty slice and no error.
func (d *Dispatcher) DispatchDetailed(signal string, sender, params any) ([]Outcome, error) {
	if signal == "" {
		return nil, ErrInvalidSignal
	}
	if senderMissing(sender) {
		return nil, fmt.Errorf("%w: signal %q", ErrMissingSender, signal)
	}

	descs := d.registry.Receivers(signal)
	if len(descs) == 0 {
		return nil, nil
	}

	d.dispatched.Add(1)
	corr := uuid.NewString()
	d.status(diag.LevelDebug, corr, "dispatching %q from %s to %d receiver(s)", signal, SenderLabel(sender), len(descs))

	outcomes := make([]Outcome, 0, len(descs))
	for i, desc := range descs {
		out, err := d.invokeOne(corr, signal, i, sender, desc, params)
		outcomes = append(outcomes, out)
		if err != nil {
			// Receiver-raised failure: not swallowed, remaining
			// receivers are abandoned.
			return outcomes, &ReceiverError{Signal: signal, Index: i, Err: err}
		}
	}

	return outcomes, nil
}

// invokeOne delivers the signal to a single receiver descriptor.
// The returned error is a failure raised by the receiver itself; soft
// failures are reported through the Outcome only.
func (d *Dispatcher) invokeOne(corr, signal string, idx int, sender any, desc Descriptor, params any) (Outcome, error) {
	start := time.Now()
	out := Outcome{Signal: signal, Index: idx, Kind: desc.Kind}
	var err error

	switch desc.Kind {
	case KindFunc:
		// Direct receivers run unconditionally and bypass the guard.
		desc.Func(sender, params)
		out.Invoked = true

	case KindBound:
		if berr := callBound(desc.Bound, sender, params); berr != nil {
			out.Reason = SkipResolveFailed
			out.Err = berr
			d.status(diag.LevelWarn, corr, "signal %q receiver %d: %v", signal, idx, berr)
		} else {
			out.Invoked = true
		}

	case KindModule:
		out, err = d.invokeModule(corr, out, sender, desc.Module, params)
	}

	out.Duration = time.Since(start)
	if out.Invoked {
		d.invoked.Add(1)
	} else {
		d.skipped.Add(1)
	}
	return out, err
}

// invokeModule resolves and invokes one declarative receiver.
//
// The resolution pipeline runs in a fixed order: guard check, path
// validation, module-file existence, function-name presence, sender
// filter, then guard-protected resolution and invocation. Every failure
// before the guard is taken skips the receiver without touching the guard
// or the loader.
func (d *Dispatcher) invokeModule(corr string, out Outcome, sender any, m Declarative, params any) (Outcome, error) {
	if d.resolving {
		out.Reason = SkipGuardHeld
		d.status(diag.LevelDebug, corr, "signal %q receiver %d: declarative resolution already in progress", out.Signal, out.Index)
		return out, nil
	}

	if m.Filepath == "" || m.Filename == "" {
		out.Reason = SkipMissingPath
		return out, nil
	}

	path := filepath.Join(d.root, m.Filepath, m.Filename)
	if _, err := os.Stat(path); err != nil {
		out.Reason = SkipMissingModule
		out.Err = err
		d.status(diag.LevelWarn, corr, "signal %q receiver %d: module %s not found", out.Signal, out.Index, path)
		return out, nil
	}

	if m.Function == "" {
		out.Reason = SkipNoFunction
		return out, nil
	}

	if !matchesSender(m.Sender, sender) {
		out.Reason = SkipSenderFilter
		return out, nil
	}

	if d.loader == nil {
		out.Reason = SkipResolveFailed
		out.Err = ErrNoLoader
		d.status(diag.LevelError, corr, "signal %q receiver %d: %v", out.Signal, out.Index, ErrNoLoader)
		return out, nil
	}

	d.resolving = true
	defer func() { d.resolving = false }()

	if m.Class != "" {
		return d.invokeClassMethod(corr, out, path, sender, m, params)
	}
	return d.invokeFreeFunction(corr, out, path, m, params)
}

// invokeClassMethod resolves a class instance (cached across signals,
// constructed exactly once) and invokes the target method with
// (sender, params).
func (d *Dispatcher) invokeClassMethod(corr string, out Outcome, path string, sender any, m Declarative, params any) (Outcome, error) {
	inst, cached := d.instances[m.Class]
	if !cached {
		if err := d.loader.LoadFile(path); err != nil {
			out.Reason = SkipResolveFailed
			out.Err = err
			d.status(diag.LevelError, corr, "signal %q receiver %d: loading %s: %v", out.Signal, out.Index, path, err)
			return out, nil
		}

		created, err := d.loader.NewInstance(m.Class)
		if err != nil {
			out.Reason = SkipResolveFailed
			out.Err = err
			d.status(diag.LevelError, corr, "signal %q receiver %d: instantiating %s: %v", out.Signal, out.Index, m.Class, err)
			return out, nil
		}
		inst = created
	}

	if !inst.HasMethod(m.Function) {
		out.Reason = SkipResolveFailed
		out.Err = fmt.Errorf("class %s has no method %q", m.Class, m.Function)
		d.status(diag.LevelError, corr, "signal %q receiver %d: %v", out.Signal, out.Index, out.Err)
		return out, nil
	}

	if !cached {
		d.instances[m.Class] = inst
	}

	if err := inst.Call(m.Function, sender, params); err != nil {
		return out, err
	}
	out.Invoked = true
	return out, nil
}

// invokeFreeFunction resolves a module-level function, loading the module
// only if the function is not already available.
//
// Free functions are invoked with the params payload only, without the
// sender. This asymmetry with every other receiver kind is preserved from
// the original registration contract; see DESIGN.md.
func (d *Dispatcher) invokeFreeFunction(corr string, out Outcome, path string, m Declarative, params any) (Outcome, error) {
	if !d.loader.HasFunction(m.Function) {
		if err := d.loader.LoadFile(path); err != nil {
			out.Reason = SkipResolveFailed
			out.Err = err
			d.status(diag.LevelError, corr, "signal %q receiver %d: loading %s: %v", out.Signal, out.Index, path, err)
			return out, nil
		}
		if !d.loader.HasFunction(m.Function) {
			out.Reason = SkipResolveFailed
			out.Err = fmt.Errorf("module %s declares no function %q", path, m.Function)
			d.status(diag.LevelError, corr, "signal %q receiver %d: %v", out.Signal, out.Index, out.Err)
			return out, nil
		}
	}

	if err := d.loader.CallFunction(m.Function, params); err != nil {
		return out, err
	}
	out.Invoked = true
	return out, nil
}

// Stats returns cumulative dispatch statistics.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Invoked:    d.invoked.Load(),
		Skipped:    d.skipped.Load(),
		Instances:  len(d.instances),
	}
}

// Stats contains cumulative dispatcher statistics.
type Stats struct {
	// Dispatched is the number of Dispatch calls that found receivers.
	Dispatched uint64

	// Invoked is the number of receivers that actually ran.
	Invoked uint64

	// Skipped is the number of receivers skipped by soft failures.
	Skipped uint64

	// Instances is the number of cached class instances.
	Instances int
}

// status writes a diagnostic line, tagged with the dispatch correlation
// id. Sink failures never affect dispatch outcomes.
func (d *Dispatcher) status(level diag.Level, corr, format string, args ...any) {
	defer func() { _ = recover() }()
	d.sink.Status(level, fmt.Sprintf("[%s] ", corr[:8])+fmt.Sprintf(format, args...))
}

// senderMissing reports whether the sender identity is absent.
// Both nil and the empty string fail validation.
func senderMissing(sender any) bool {
	if sender == nil {
		return true
	}
	if s, ok := sender.(string); ok {
		return s == ""
	}
	return false
}
