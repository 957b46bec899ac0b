package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/keycase/internal/engine/buffer"
	"github.com/dshills/keycase/internal/engine/cursor"
	"github.com/dshills/keycase/internal/engine/history"
	"github.com/dshills/keycase/internal/event/events"
	"github.com/dshills/keycase/internal/session"
)

// Publisher receives document change events. event.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, any) error { return nil }

// Document is an open file or scratch buffer with a single cursor.
type Document struct {
	id  string
	pub Publisher

	mu   sync.Mutex
	name string
	path string
	buf  *buffer.Buffer
	cur  cursor.Cursor
	hist *history.History

	modified atomic.Bool
	closed   atomic.Bool
}

// NewDocument creates a document with content read from path.
func NewDocument(path string, content []byte, pub Publisher) *Document {
	text := string(content)
	buf := buffer.NewBufferFromString(text, buffer.WithLineEnding(buffer.DetectLineEnding(text)))
	return newDocument(path, buf, pub)
}

// NewScratchDocument creates an empty, unnamed document.
func NewScratchDocument(pub Publisher) *Document {
	return newDocument("", buffer.NewBuffer(), pub)
}

func newDocument(path string, buf *buffer.Buffer, pub Publisher) *Document {
	if pub == nil {
		pub = nopPublisher{}
	}
	name := "Untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	return &Document{
		id:   uuid.NewString(),
		name: name,
		pub:  pub,
		path: path,
		buf:  buf,
		hist: history.NewHistory(history.DefaultMaxEntries),
	}
}

// ID returns the document's unique ID. It doubles as the surface ID.
func (d *Document) ID() string { return d.id }

// Name returns the display name.
func (d *Document) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// Path returns the file path, empty for scratch documents.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// IsScratch returns true if the document has no file path.
func (d *Document) IsScratch() bool { return d.Path() == "" }

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool { return d.modified.Load() }

// IsClosed returns true once the document was closed.
func (d *Document) IsClosed() bool { return d.closed.Load() }

// Text returns the full content.
func (d *Document) Text() string { return d.buf.Text() }

// Lines returns the content split into lines.
func (d *Document) Lines() []string { return d.buf.Lines() }

// LineCount returns the number of lines.
func (d *Document) LineCount() uint32 { return d.buf.LineCount() }

// Cursor returns the cursor offset.
func (d *Document) Cursor() buffer.ByteOffset {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cur.Offset()
}

// CursorPoint returns the cursor position as line and column.
func (d *Document) CursorPoint() buffer.Point {
	return d.buf.OffsetToPoint(d.Cursor())
}

// SetCursor moves the cursor, clamped to the document.
func (d *Document) SetCursor(offset buffer.ByteOffset) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cur = cursor.NewCursor(offset).Clamp(d.buf.Len())
}

// Insert types text at the cursor.
func (d *Document) Insert(text string) error {
	if text == "" {
		return nil
	}
	d.mu.Lock()
	at := d.cur.Offset()
	d.mu.Unlock()
	return d.apply(buffer.NewInsert(at, text), events.OriginUser)
}

// Backspace deletes the character before the cursor.
func (d *Document) Backspace() error {
	d.mu.Lock()
	at := d.cur.Offset()
	d.mu.Unlock()
	if at == 0 {
		return nil
	}
	_, size := utf8.DecodeLastRuneInString(d.buf.TextRange(0, at))
	return d.apply(buffer.NewDelete(at-buffer.ByteOffset(size), at), events.OriginUser)
}

// DeleteForward deletes the character after the cursor.
func (d *Document) DeleteForward() error {
	d.mu.Lock()
	at := d.cur.Offset()
	d.mu.Unlock()
	rest := d.buf.TextRange(at, d.buf.Len())
	if rest == "" {
		return nil
	}
	_, size := utf8.DecodeRuneInString(rest)
	return d.apply(buffer.NewDelete(at, at+buffer.ByteOffset(size)), events.OriginUser)
}

// Replace replaces [start, end) with text.
func (d *Document) Replace(start, end buffer.ByteOffset, text string, origin events.Origin) error {
	return d.apply(buffer.NewEdit(buffer.NewRange(start, end), text), origin)
}

// WriteBack replaces [start, end) with text, provided expect is still the
// text at the expected offset. It returns session.ErrStaleEdit otherwise.
func (d *Document) WriteBack(at buffer.ByteOffset, expect string, start, end buffer.ByteOffset, text string) error {
	if d.closed.Load() {
		return session.ErrSurfaceClosed
	}

	d.mu.Lock()
	if d.buf.TextRange(at, at+buffer.ByteOffset(len(expect))) != expect {
		d.mu.Unlock()
		return session.ErrStaleEdit
	}
	ev, err := d.applyLocked(buffer.NewEdit(buffer.NewRange(start, end), text), events.OriginWriteBack)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	// A failing subscriber does not fail a write-back that already landed.
	_ = d.pub.Publish(context.Background(), ev)
	return nil
}

func (d *Document) apply(edit buffer.Edit, origin events.Origin) error {
	if d.closed.Load() {
		return ErrDocumentClosed
	}
	d.mu.Lock()
	ev, err := d.applyLocked(edit, origin)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	// Published outside the lock so subscribers may read the document.
	return d.pub.Publish(context.Background(), ev)
}

// applyLocked must be called with d.mu held. It returns the event to publish.
func (d *Document) applyLocked(edit buffer.Edit, origin events.Origin) (any, error) {
	res, err := d.buf.ApplyEdit(edit)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", edit, err)
	}
	d.hist.Push(history.FromResult(res, edit.NewText))
	d.cur = cursor.TransformCursor(d.cur, edit)
	d.modified.Store(true)
	return d.changeEvent(edit, res.OldText, origin), nil
}

func (d *Document) changeEvent(edit buffer.Edit, oldText string, origin events.Origin) any {
	switch {
	case edit.IsInsert():
		return events.BufferContentInserted{
			DocumentID: d.id,
			Offset:     int64(edit.Range.Start),
			Text:       edit.NewText,
			Origin:     origin,
		}
	case edit.IsDelete():
		return events.BufferContentDeleted{
			DocumentID: d.id,
			Start:      int64(edit.Range.Start),
			End:        int64(edit.Range.End),
			OldText:    oldText,
			Origin:     origin,
		}
	default:
		return events.BufferContentReplaced{
			DocumentID: d.id,
			Start:      int64(edit.Range.Start),
			End:        int64(edit.Range.End),
			OldText:    oldText,
			NewText:    edit.NewText,
			Origin:     origin,
		}
	}
}

// Undo reverts the last edit.
func (d *Document) Undo() error {
	return d.step(d.hist.Undo)
}

// Redo applies the last undone edit again.
func (d *Document) Redo() error {
	return d.step(d.hist.Redo)
}

func (d *Document) step(fn func(*buffer.Buffer) (buffer.Edit, error)) error {
	d.mu.Lock()
	edit, err := fn(d.buf)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.cur = cursor.TransformCursor(d.cur, edit).Clamp(d.buf.Len())
	d.modified.Store(true)
	ev := d.changeEvent(edit, "", events.OriginUser)
	d.mu.Unlock()
	return d.pub.Publish(context.Background(), ev)
}

// Motion

// MoveLeft moves the cursor one character back.
func (d *Document) MoveLeft() {
	d.mu.Lock()
	defer d.mu.Unlock()
	at := d.cur.Offset()
	if at == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(d.buf.TextRange(0, at))
	d.cur = d.cur.MoveBy(-buffer.ByteOffset(size))
}

// MoveRight moves the cursor one character forward.
func (d *Document) MoveRight() {
	d.mu.Lock()
	defer d.mu.Unlock()
	at := d.cur.Offset()
	rest := d.buf.TextRange(at, d.buf.Len())
	if rest == "" {
		return
	}
	_, size := utf8.DecodeRuneInString(rest)
	d.cur = d.cur.MoveBy(buffer.ByteOffset(size))
}

// MoveUp moves the cursor to the previous line, keeping the column.
func (d *Document) MoveUp() {
	d.moveLines(-1)
}

// MoveDown moves the cursor to the next line, keeping the column.
func (d *Document) MoveDown() {
	d.moveLines(1)
}

func (d *Document) moveLines(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.buf.OffsetToPoint(d.cur.Offset())
	line := int(p.Line) + delta
	if line < 0 || line >= int(d.buf.LineCount()) {
		return
	}
	p.Line = uint32(line)
	d.cur = d.cur.MoveTo(d.buf.PointToOffset(p))
}

// MoveLineStart moves the cursor to the start of its line.
func (d *Document) MoveLineStart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.buf.OffsetToPoint(d.cur.Offset())
	d.cur = d.cur.MoveTo(d.buf.LineStartOffset(p.Line))
}

// MoveLineEnd moves the cursor to the end of its line.
func (d *Document) MoveLineEnd() {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.buf.OffsetToPoint(d.cur.Offset())
	d.cur = d.cur.MoveTo(d.buf.LineEndOffset(p.Line))
}

// Persistence

// Save writes the document to its path.
func (d *Document) Save() error {
	path := d.Path()
	if path == "" {
		return ErrNoPath
	}
	return d.SaveAs(path)
}

// SaveAs writes the document to path and makes path its file.
func (d *Document) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := d.buf.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	d.mu.Lock()
	d.path = path
	d.name = filepath.Base(path)
	d.mu.Unlock()
	d.modified.Store(false)

	return d.pub.Publish(context.Background(), events.BufferSaved{
		DocumentID: d.id,
		Path:       path,
		Bytes:      n,
	})
}
