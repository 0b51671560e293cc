// Package signal implements the in-process signal dispatch core for sigmux.
//
// A signal is a named occurrence announced by a sender. Receivers are
// registered ahead of time in a configuration table and run synchronously,
// in registration order, when a matching signal is dispatched.
//
// # Architecture
//
// The package has two parts, consumed in dependency order:
//
//   - Registry: an immutable-after-build mapping from signal name to an
//     ordered sequence of receiver descriptors, normalized once from an
//     externally supplied configuration table.
//   - Dispatcher: owns the registry, resolves each descriptor into an
//     invocable target, applies sender filtering, and invokes it while
//     holding a re-entrancy guard.
//
// # Receiver Kinds
//
// Receivers come in two shapes:
//
//   - Direct: an already-invocable value - a ReceiverFunc closure or a
//     Bound object/method pair. Invoked immediately with (sender, params),
//     bypassing the re-entrancy guard.
//   - Declarative: a record naming a module file, an optional class, and a
//     function. Resolved lazily through a ModuleLoader the first time the
//     receiver fires; class instances are created once and cached for the
//     dispatcher's lifetime.
//
// # Dispatch Semantics
//
// Dispatch never aborts because one receiver failed to resolve or filtered
// itself out: soft failures skip the single receiver and dispatch continues
// with the next one. Errors a receiver raises during its own execution are
// not caught; they propagate to the dispatcher's caller and abort the
// remaining receivers in the sequence.
//
// # Concurrency
//
// The registry is read-only after construction and safe for concurrent
// reads. The instance cache and the re-entrancy guard are mutable state
// with no internal synchronization: the dispatcher assumes a single logical
// goroutine of control, matching the single shared Lua state declarative
// receivers execute in. Re-entrant dispatch from within a receiver is
// expected and bounded for declarative receivers by the guard.
package signal
