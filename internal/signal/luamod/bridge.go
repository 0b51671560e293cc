package luamod

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua representations.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGo converts a Lua value to a Go value. Tables with only positive
// integer keys become []any; other tables become map[string]any. Circular
// tables are broken with nil.
func (b *Bridge) ToGo(lv lua.LValue) any {
	return b.toGoVisited(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	if lv == nil {
		return nil
	}

	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LNilType:
		return nil
	default:
		return v.String()
	}
}

// tableToGo converts a Lua table to a Go slice or map.
func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	length := t.Len()
	if length > 0 {
		// Array-shaped table.
		s := make([]any, 0, length)
		for i := 1; i <= length; i++ {
			s = append(s, b.toGoVisited(t.RawGetInt(i), visited))
		}
		return s
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = b.toGoVisited(v, visited)
	})
	return m
}

// ToLua converts a Go value to a Lua value.
func (b *Bridge) ToLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		return b.sliceToTable(val)
	case []string:
		t := b.L.NewTable()
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case map[string]any:
		return b.mapToTable(val)
	case map[string]string:
		t := b.L.NewTable()
		for k, s := range val {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case lua.LValue:
		return val
	default:
		return b.reflectToLua(v)
	}
}

func (b *Bridge) sliceToTable(s []any) *lua.LTable {
	t := b.L.NewTable()
	for i, v := range s {
		t.RawSetInt(i+1, b.ToLua(v))
	}
	return t
}

func (b *Bridge) mapToTable(m map[string]any) *lua.LTable {
	t := b.L.NewTable()
	for k, v := range m {
		t.RawSetString(k, b.ToLua(v))
	}
	return t
}

// reflectToLua handles structs, pointers, and other composite Go values.
func (b *Bridge) reflectToLua(v any) lua.LValue {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return lua.LNil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return b.structToTable(rv)
	case reflect.Slice, reflect.Array:
		t := b.L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, b.ToLua(rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := b.L.NewTable()
		for _, k := range rv.MapKeys() {
			t.RawSetString(fmt.Sprint(k.Interface()), b.ToLua(rv.MapIndex(k).Interface()))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// structToTable converts a struct's exported fields to a Lua table.
func (b *Bridge) structToTable(rv reflect.Value) *lua.LTable {
	t := b.L.NewTable()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		t.RawSetString(field.Name, b.ToLua(rv.Field(i).Interface()))
	}
	return t
}
