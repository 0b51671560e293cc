package signal

// ModuleLoader is the capability the dispatcher consumes to resolve
// declarative receivers. Implementations make the classes and functions
// declared in a module file available for lookup and invocation; loading
// an already-loaded file must be a no-op.
//
// The reference implementation lives in the luamod subpackage.
type ModuleLoader interface {
	// LoadFile loads a module file, making its declared classes and
	// functions available. Idempotent per path.
	LoadFile(path string) error

	// HasFunction reports whether a free function with the given name is
	// currently available.
	HasFunction(name string) bool

	// CallFunction invokes an available free function. The returned error
	// is a failure raised by the function itself, not a resolution
	// failure; callers check HasFunction first.
	CallFunction(name string, args ...any) error

	// NewInstance constructs exactly one instance of the named class with
	// no constructor arguments. Fails if the class is not available.
	NewInstance(class string) (Instance, error)
}

// Instance is a resolved class instance held in the dispatcher's cache.
type Instance interface {
	// HasMethod reports whether the instance exposes the named method.
	HasMethod(name string) bool

	// Call invokes the named method on the instance. As with
	// ModuleLoader.CallFunction, the returned error is raised by the
	// method itself.
	Call(method string, args ...any) error
}
