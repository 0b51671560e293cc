package luamod

import (
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/sigmux/internal/signal"
)

// Loader implements signal.ModuleLoader over a single sandboxed Lua state.
//
// All receiver modules execute in one shared state: a class declared by
// one module is visible to every later resolution, matching the
// load-once, reuse-everywhere contract of the dispatcher's instance cache.
type Loader struct {
	mu sync.Mutex
	L  *lua.LState

	bridge *Bridge

	// loaded memoizes executed files by cleaned path so LoadFile is
	// idempotent.
	loaded map[string]bool

	closed bool
}

// Option configures a Loader.
type Option func(*Loader)

// New creates a Loader with a fresh sandboxed Lua state.
func New(opts ...Option) (*Loader, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Opened selectively below
	})

	openSafeLibraries(L)
	installSandbox(L)

	l := &Loader{
		L:      L,
		bridge: NewBridge(L),
		loaded: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// LoadFile executes a module file, making its declared classes and
// functions available. Loading the same file twice is a no-op.
func (l *Loader) LoadFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLoaderClosed
	}

	key := filepath.Clean(path)
	if l.loaded[key] {
		return nil
	}

	if err := l.doWithRecovery(func() error {
		return l.L.DoFile(path)
	}); err != nil {
		return fmt.Errorf("loading module %s: %w", path, err)
	}

	l.loaded[key] = true
	return nil
}

// HasFunction reports whether a global function with the given name is
// available.
func (l *Loader) HasFunction(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || name == "" {
		return false
	}
	return l.L.GetGlobal(name).Type() == lua.LTFunction
}

// CallFunction invokes a global function with the given arguments.
// The error is one raised by the function itself; use HasFunction for
// availability checks.
func (l *Loader) CallFunction(name string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLoaderClosed
	}

	fn := l.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}

	return l.doWithRecovery(func() error {
		l.L.Push(fn)
		for _, arg := range args {
			l.L.Push(l.bridge.ToLua(arg))
		}
		return l.L.PCall(len(args), 0, nil)
	})
}

// NewInstance constructs an instance of the named class with no
// constructor arguments. The class must be a global table; when it has a
// new() function, the returned table is the instance, otherwise the class
// table itself is used.
func (l *Loader) NewInstance(class string) (signal.Instance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLoaderClosed
	}

	g := l.L.GetGlobal(class)
	if g == lua.LNil {
		return nil, fmt.Errorf("%w: %q", ErrClassNotFound, class)
	}
	tbl, ok := g.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotAClass, class, g.Type())
	}

	ctor := l.L.GetField(tbl, "new")
	if ctor.Type() != lua.LTFunction {
		// No constructor; the class table is the singleton instance.
		return &instance{loader: l, class: class, self: tbl}, nil
	}

	var self *lua.LTable
	err := l.doWithRecovery(func() error {
		l.L.Push(ctor)
		if perr := l.L.PCall(0, 1, nil); perr != nil {
			return perr
		}
		ret := l.L.Get(-1)
		l.L.Pop(1)
		created, ok := ret.(*lua.LTable)
		if !ok {
			return fmt.Errorf("%w: %s.new returned %s", ErrBadConstructor, class, ret.Type())
		}
		self = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &instance{loader: l, class: class, self: self}, nil
}

// Global returns a global from the shared state converted to a Go value,
// or nil when it is not set. Intended for host-side inspection.
func (l *Loader) Global(name string) any {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.bridge.ToGo(l.L.GetGlobal(name))
}

// Register exposes a Go function as a global in the shared state, so
// receiver modules can call back into the host.
func (l *Loader) Register(name string, fn func(args []any) (any, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.L.SetGlobal(name, l.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		args := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, l.bridge.ToGo(L.Get(i)))
		}

		result, err := fn(args)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(l.bridge.ToLua(result))
		return 1
	}))
}

// Close releases the Lua state. All later operations fail with
// ErrLoaderClosed.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.L.Close()
	l.closed = true
	return nil
}

// doWithRecovery runs fn with panic recovery; gopher-lua panics on some
// internal failures.
func (l *Loader) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// instance is a resolved class instance bound to its loader's state.
type instance struct {
	loader *Loader
	class  string
	self   *lua.LTable
}

// HasMethod reports whether the instance exposes the named method,
// following __index metatables.
func (in *instance) HasMethod(name string) bool {
	in.loader.mu.Lock()
	defer in.loader.mu.Unlock()

	if in.loader.closed || name == "" {
		return false
	}
	return in.loader.L.GetField(in.self, name).Type() == lua.LTFunction
}

// Call invokes the named method colon-style, passing the instance as self
// followed by the bridged arguments.
func (in *instance) Call(method string, args ...any) error {
	in.loader.mu.Lock()
	defer in.loader.mu.Unlock()

	if in.loader.closed {
		return ErrLoaderClosed
	}

	L := in.loader.L
	fn := L.GetField(in.self, method)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%w: %s.%s", ErrFunctionNotFound, in.class, method)
	}

	return in.loader.doWithRecovery(func() error {
		L.Push(fn)
		L.Push(in.self)
		for _, arg := range args {
			L.Push(in.loader.bridge.ToLua(arg))
		}
		return L.PCall(len(args)+1, 0, nil)
	})
}
