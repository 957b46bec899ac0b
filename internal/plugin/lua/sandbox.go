package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// builtinModules may be required by name; they are already open.
var builtinModules = map[string]bool{
	lua.BaseLibName:   true,
	lua.TabLibName:    true,
	lua.StringLibName: true,
	lua.MathLibName:   true,
}

// unsafeGlobals load code from disk or strings.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring"}

// installSandbox removes code-loading functions and replaces require with
// one that only resolves the built-in and preloaded modules.
func installSandbox(L *lua.LState, preload map[string]lua.LGFunction) {
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
		// Only the preload searcher stays; the others read from disk.
		if loaders, ok := L.GetField(pkg, "loaders").(*lua.LTable); ok {
			for loaders.Len() > 1 {
				loaders.Remove(loaders.Len())
			}
		}
	}

	originalRequire := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if _, ok := preload[name]; !ok && !builtinModules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
