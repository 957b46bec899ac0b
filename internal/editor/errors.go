package editor

import "errors"

var (
	// ErrDocumentNotFound indicates a document was not found.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentClosed indicates an edit on a closed document.
	ErrDocumentClosed = errors.New("document closed")

	// ErrNoPath indicates a save of a document that has no file path.
	ErrNoPath = errors.New("document has no path")
)
