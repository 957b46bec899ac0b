// Package editor holds the documents being edited and the Surface that
// exposes the active document to input sessions.
//
// Every change to a Document is published on the event bus as a
// buffer.content.* event. Surface turns those events back into
// session.EditEvent values, and applies session write-backs as
// replacements marked with events.OriginWriteBack.
package editor
