// Package palette provides a searchable list of commands.
//
// Every action the user can run (start a case style, save, undo, quit) is
// registered as a Command. The full palette lists them all with fuzzy
// search and recently used commands first. The style menu is the same
// palette restricted to the "Case" category, shown in registration order
// with each style's description.
//
// A Picker holds the state of an open palette overlay: the query, the
// filtered results and the selection.
//
//	p := palette.New()
//	p.Register(&palette.Command{ID: "file.save", Title: "Save", Handler: save})
//	pk := p.Open("")
//	pk.Type('s')
//	cmd := pk.Accept()
//
// All palette operations are safe for concurrent use.
package palette
