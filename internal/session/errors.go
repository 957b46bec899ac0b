package session

import "errors"

var (
	// ErrNoActiveSurface is returned by Start when no text surface has focus.
	ErrNoActiveSurface = errors.New("no active text surface")

	// ErrSurfaceClosed is reported by a host when a write-back targets a
	// surface that no longer exists. It ends the session.
	ErrSurfaceClosed = errors.New("text surface closed")

	// ErrStaleEdit is reported by a host when the text a write-back targets
	// changed before the write-back ran.
	ErrStaleEdit = errors.New("edit target changed")

	// ErrInvalidStyle is returned by Start for a style outside the enum.
	ErrInvalidStyle = errors.New("invalid style")
)
