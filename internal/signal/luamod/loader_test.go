package luamod

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeLua writes a Lua module file into dir and returns its path.
func writeLua(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLoader_LoadFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "count.lua", `counter = (counter or 0) + 1`)

	l := newTestLoader(t)

	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	if got := l.Global("counter"); got != int64(1) {
		t.Errorf("expected module to execute once, counter = %v", got)
	}
}

func TestLoader_LoadFileMissing(t *testing.T) {
	l := newTestLoader(t)

	if err := l.LoadFile(filepath.Join(t.TempDir(), "absent.lua")); err == nil {
		t.Error("expected error for missing module file")
	}
}

func TestLoader_FreeFunctions(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "free.lua", `
function greet(params)
	got_name = params.name
end
`)

	l := newTestLoader(t)

	if l.HasFunction("greet") {
		t.Error("function must not be available before load")
	}
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if !l.HasFunction("greet") {
		t.Fatal("function must be available after load")
	}

	if err := l.CallFunction("greet", map[string]any{"name": "Ada"}); err != nil {
		t.Fatal(err)
	}
	if got := l.Global("got_name"); got != "Ada" {
		t.Errorf("expected bridged argument, got %v", got)
	}

	if err := l.CallFunction("no_such"); !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("expected ErrFunctionNotFound, got %v", err)
	}
}

func TestLoader_CallFunctionRaisedError(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "boom.lua", `
function boom()
	error("nope")
end
`)

	l := newTestLoader(t)
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	if err := l.CallFunction("boom"); err == nil {
		t.Error("expected the raised Lua error to surface")
	}
}

func TestLoader_NewInstanceWithConstructor(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "warehouse.lua", `
Warehouse = {}
Warehouse.__index = Warehouse

function Warehouse.new()
	local self = setmetatable({}, Warehouse)
	self.notified = 0
	return self
end

function Warehouse:notifyWarehouse(sender, params)
	self.notified = self.notified + 1
	last_sender = sender
	if params then
		last_id = params.id
	end
	notify_count = self.notified
end
`)

	l := newTestLoader(t)
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	inst, err := l.NewInstance("Warehouse")
	if err != nil {
		t.Fatal(err)
	}
	if !inst.HasMethod("notifyWarehouse") {
		t.Fatal("expected method via __index metatable")
	}
	if inst.HasMethod("noSuch") {
		t.Error("unexpected method")
	}

	if err := inst.Call("notifyWarehouse", "OrderService", map[string]any{"id": 42}); err != nil {
		t.Fatal(err)
	}
	if got := l.Global("last_sender"); got != "OrderService" {
		t.Errorf("expected sender passed through, got %v", got)
	}
	if got := l.Global("last_id"); got != int64(42) {
		t.Errorf("expected params.id, got %v", got)
	}

	// Instance state persists across calls.
	if err := inst.Call("notifyWarehouse", "OrderService", nil); err != nil {
		t.Fatal(err)
	}
	if got := l.Global("notify_count"); got != int64(2) {
		t.Errorf("expected per-instance state, got %v", got)
	}
}

func TestLoader_NewInstanceWithoutConstructor(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "hooks.lua", `
Hooks = {}

function Hooks.onSave(self, sender, params)
	saved_by = sender
end
`)

	l := newTestLoader(t)
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	// No new(): the class table itself is the singleton instance.
	inst, err := l.NewInstance("Hooks")
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.Call("onSave", "UserModel", nil); err != nil {
		t.Fatal(err)
	}
	if got := l.Global("saved_by"); got != "UserModel" {
		t.Errorf("expected sender as first argument after self, got %v", got)
	}
}

func TestLoader_NewInstanceErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "bad.lua", `
NotATable = "just a string"

Broken = {}
function Broken.new()
	return 7
end
`)

	l := newTestLoader(t)
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	if _, err := l.NewInstance("Missing"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("expected ErrClassNotFound, got %v", err)
	}
	if _, err := l.NewInstance("NotATable"); !errors.Is(err, ErrNotAClass) {
		t.Errorf("expected ErrNotAClass, got %v", err)
	}
	if _, err := l.NewInstance("Broken"); !errors.Is(err, ErrBadConstructor) {
		t.Errorf("expected ErrBadConstructor, got %v", err)
	}
}

func TestLoader_Register(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "callback.lua", `
function use_host()
	answer = host_add(20, 22)
end
`)

	l := newTestLoader(t)
	l.Register("host_add", func(args []any) (any, error) {
		a, _ := args[0].(int64)
		b, _ := args[1].(int64)
		return a + b, nil
	})

	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if err := l.CallFunction("use_host"); err != nil {
		t.Fatal(err)
	}
	if got := l.Global("answer"); got != int64(42) {
		t.Errorf("expected host callback result, got %v", got)
	}
}

func TestLoader_Sandbox(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "probe.lua", `
function probe()
	dofile_gone = (dofile == nil)
	local ok_io = pcall(function() return require("io") end)
	require_io = ok_io
	local ok_str = pcall(function() return require("string") end)
	require_string = ok_str
end
`)

	l := newTestLoader(t)
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if err := l.CallFunction("probe"); err != nil {
		t.Fatal(err)
	}

	if got := l.Global("dofile_gone"); got != true {
		t.Error("dofile must be removed from receiver modules")
	}
	if got := l.Global("require_io"); got != false {
		t.Error("require(\"io\") must be rejected")
	}
	if got := l.Global("require_string"); got != true {
		t.Error("require(\"string\") must stay available")
	}
}

func TestLoader_Close(t *testing.T) {
	dir := t.TempDir()
	path := writeLua(t, dir, "m.lua", `function f() end`)

	l, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := l.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	inst, err := l.NewInstance("Missing")
	if inst != nil || !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("precondition: %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close must be idempotent: %v", err)
	}

	if err := l.LoadFile(path); !errors.Is(err, ErrLoaderClosed) {
		t.Errorf("expected ErrLoaderClosed, got %v", err)
	}
	if l.HasFunction("f") {
		t.Error("closed loader must report no functions")
	}
	if err := l.CallFunction("f"); !errors.Is(err, ErrLoaderClosed) {
		t.Errorf("expected ErrLoaderClosed, got %v", err)
	}
	if _, err := l.NewInstance("X"); !errors.Is(err, ErrLoaderClosed) {
		t.Errorf("expected ErrLoaderClosed, got %v", err)
	}
}
