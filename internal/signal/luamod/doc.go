// Package luamod implements the module-loading capability declarative
// receivers are resolved through, backed by gopher-lua.
//
// A receiver module is a Lua file declaring global functions and classes.
// A class is a global table; if it has a new() constructor, instantiation
// calls it with no arguments and uses the returned table, otherwise the
// class table itself serves as the singleton instance. Methods are invoked
// colon-style, with the instance passed as self.
//
// All modules share one sandboxed Lua state: the base, table, string, and
// math libraries are open, file and process access is removed, and require
// is restricted to built-in modules. Loading a file twice is a no-op.
//
// The underlying lua.LState is not goroutine-safe. The mutex in Loader
// serializes Go-side access, but receiver code must not call back into the
// Loader from within a running Lua function.
package luamod
