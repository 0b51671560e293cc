package signal

import "github.com/dshills/sigmux/internal/diag"

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRoot sets the application root that declarative module paths are
// joined under. Defaults to the current directory.
func WithRoot(root string) Option {
	return func(d *Dispatcher) {
		if root != "" {
			d.root = root
		}
	}
}

// WithLoader sets the module loader used to resolve declarative receivers.
// Without a loader, declarative receivers are skipped with ErrNoLoader.
func WithLoader(l ModuleLoader) Option {
	return func(d *Dispatcher) {
		d.loader = l
	}
}

// WithSink sets the diagnostic sink the dispatcher writes status lines to.
// Defaults to a no-op sink.
func WithSink(s diag.Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sink = s
		}
	}
}
