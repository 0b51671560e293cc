package luamod

import "errors"

// Sentinel errors for module resolution.
var (
	// ErrLoaderClosed is returned by all operations after Close.
	ErrLoaderClosed = errors.New("module loader is closed")

	// ErrClassNotFound is returned when NewInstance names a global that
	// does not exist.
	ErrClassNotFound = errors.New("class not found")

	// ErrNotAClass is returned when NewInstance names a global that is
	// not a table.
	ErrNotAClass = errors.New("global is not a class table")

	// ErrBadConstructor is returned when a class new() does not return a
	// table.
	ErrBadConstructor = errors.New("constructor did not return a table")

	// ErrFunctionNotFound is returned when CallFunction names a global
	// that is not a function.
	ErrFunctionNotFound = errors.New("function not found")
)
