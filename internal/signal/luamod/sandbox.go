package luamod

import (
	lua "github.com/yuin/gopher-lua"
)

// safeModules are the built-in modules require may load.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// openSafeLibraries opens only the Lua standard libraries receiver modules
// are allowed to use. io, os, debug, and package are intentionally absent.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installSandbox removes the Lua primitives a receiver module could use to
// escape the loader: arbitrary file loading and unrestricted require.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	installSafeRequire(L)
}

// installSafeRequire replaces require with a whitelist-only version.
// Module paths are cleared so nothing can be loaded from disk.
func installSafeRequire(L *lua.LState) {
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	originalRequire := L.GetGlobal("require")

	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if safeModules[modName] {
			// The safe libraries are already open as globals; hand the
			// global table back when the package library is absent.
			if originalRequire.Type() == lua.LTFunction {
				L.Push(originalRequire)
				L.Push(lua.LString(modName))
				L.Call(1, 1)
				return 1
			}
			L.Push(L.GetGlobal(modName))
			return 1
		}

		// Note: L.RaiseError does a longjmp, so code after it is unreachable.
		L.RaiseError("module %q is not available to receiver modules", modName)
		return 0
	}))
}
