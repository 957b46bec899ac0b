// Package lua runs the user's init script.
//
// The script runs in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are open, dofile/loadfile/load are removed and
// require only resolves the keycase module. Every call runs under a
// timeout.
//
// The keycase module drives the editor:
//
//	local kc = require("keycase")
//	kc.bind("Alt+p", "case.snake")
//	kc.on("session.ended", function(ev)
//	  kc.notify("typed " .. ev.transformed)
//	end)
//	kc.command("case.shout", "Shout", function() kc.start("upper") end)
//
// Callbacks registered with on run on the Runtime's own goroutine, never
// inside the publisher's call stack.
package lua
