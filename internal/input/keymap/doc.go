// Package keymap maps key presses to command IDs.
//
// Bindings live in named keymaps layered by priority: the built-in
// defaults, then the user's [keymap] config section, then bindings made by
// Lua plugins. A Registry resolves a key event against every layer and the
// highest layer wins. A binding with an empty action masks the layers
// below it, which is how a user unbinds a default key.
//
//	r := keymap.NewRegistry()
//	keymap.LoadDefaults(r)
//	if b, ok := r.Lookup(ev); ok {
//	    // run b.Action
//	}
package keymap
