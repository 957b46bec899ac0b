// Package buffer provides the thread-safe text buffer behind a keycase
// document.
//
// Offsets are byte offsets into the UTF-8 text. Every mutation assigns a new
// revision ID so observers can tell whether the text they rendered is stale.
//
//	buf := buffer.NewBufferFromString("hello world")
//	buf.Replace(5, 6, "_")  // "hello_world"
//	p := buf.OffsetToPoint(6) // (0:6)
package buffer
