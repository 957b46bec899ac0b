package events

import "github.com/dshills/keycase/internal/event/topic"

// Buffer event topics.
const (
	// TopicBufferContentInserted is published when text is inserted into a document.
	TopicBufferContentInserted topic.Topic = "buffer.content.inserted"

	// TopicBufferContentDeleted is published when text is deleted from a document.
	TopicBufferContentDeleted topic.Topic = "buffer.content.deleted"

	// TopicBufferContentReplaced is published when a range is replaced.
	TopicBufferContentReplaced topic.Topic = "buffer.content.replaced"

	// TopicBufferSaved is published when a document is written to disk.
	TopicBufferSaved topic.Topic = "buffer.saved"
)

// Origin tells who caused a buffer change.
type Origin uint8

const (
	// OriginUser marks changes typed by the user.
	OriginUser Origin = iota
	// OriginWriteBack marks changes written by an input session.
	OriginWriteBack
)

// String returns the origin name.
func (o Origin) String() string {
	if o == OriginWriteBack {
		return "writeback"
	}
	return "user"
}

// BufferContentInserted is published when text is inserted.
type BufferContentInserted struct {
	DocumentID string
	Offset     int64
	Text       string
	Origin     Origin
}

// EventTopic implements event.TopicProvider.
func (BufferContentInserted) EventTopic() topic.Topic { return TopicBufferContentInserted }

// BufferContentDeleted is published when text is deleted.
type BufferContentDeleted struct {
	DocumentID string
	Start      int64
	End        int64
	OldText    string
	Origin     Origin
}

// EventTopic implements event.TopicProvider.
func (BufferContentDeleted) EventTopic() topic.Topic { return TopicBufferContentDeleted }

// BufferContentReplaced is published when a range is replaced with new text.
type BufferContentReplaced struct {
	DocumentID string
	Start      int64
	End        int64
	OldText    string
	NewText    string
	Origin     Origin
}

// EventTopic implements event.TopicProvider.
func (BufferContentReplaced) EventTopic() topic.Topic { return TopicBufferContentReplaced }

// BufferSaved is published after a document is written.
type BufferSaved struct {
	DocumentID string
	Path       string
	Bytes      int64
}

// EventTopic implements event.TopicProvider.
func (BufferSaved) EventTopic() topic.Topic { return TopicBufferSaved }
