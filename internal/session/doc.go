// Package session implements live per-keystroke case conversion.
//
// A Session consumes edit notifications from a Host, decides for each typed
// character whether it ends the session or should be rewritten in the
// session's style, and writes the rewrite back through the Host. Host
// notifications and write-back completions share one mailbox per session, so
// a session always sees its own write-back notification before the
// completion that clears its re-entrancy flag.
//
// A Manager owns the single active-session slot. Starting a style tears down
// whatever session was active before the new one begins.
//
// Termination rules, checked in order against the raw previous input:
//
//	" " then " "   delete both spaces, end
//	" " then "="   keep the space, end
//	"\n" or "="    leave the text alone, end
//
// Every other single character goes through casing.Transform.
package session
