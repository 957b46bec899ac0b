package editor

import (
	"os"
	"path/filepath"
	"sync"
)

// DocumentManager manages all open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document // id -> document
	order     []string
	active    *Document
	pub       Publisher
}

// NewDocumentManager creates a new document manager. Documents it creates
// publish their changes to pub.
func NewDocumentManager(pub Publisher) *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
		pub:       pub,
	}
}

// Open opens a document from a file and makes it active. A file that is
// already open is reused. A missing file opens as an empty document that
// will be created on save.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	for _, doc := range dm.documents {
		if doc.Path() == absPath {
			dm.active = doc
			return doc, nil
		}
	}

	content, err := os.ReadFile(absPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	doc := NewDocument(absPath, content, dm.pub)
	dm.addLocked(doc)
	return doc, nil
}

// CreateScratch creates a new scratch document and makes it active.
func (dm *DocumentManager) CreateScratch() *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc := NewScratchDocument(dm.pub)
	dm.addLocked(doc)
	return doc
}

func (dm *DocumentManager) addLocked(doc *Document) {
	dm.documents[doc.ID()] = doc
	dm.order = append(dm.order, doc.ID())
	dm.active = doc
}

// Close closes a document by ID. Edits and write-backs to it fail from then
// on.
func (dm *DocumentManager) Close(id string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, exists := dm.documents[id]
	if !exists {
		return ErrDocumentNotFound
	}
	doc.closed.Store(true)
	delete(dm.documents, id)

	for i, docID := range dm.order {
		if docID == id {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if dm.active == doc {
		dm.active = nil
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		}
	}
	return nil
}

// Active returns the currently active document.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// Get returns a document by ID.
func (dm *DocumentManager) Get(id string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, exists := dm.documents[id]
	return doc, exists
}

// All returns all open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, id := range dm.order {
		docs = append(docs, dm.documents[id])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// HasDirty returns true if any document has unsaved changes.
func (dm *DocumentManager) HasDirty() bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	for _, doc := range dm.documents {
		if doc.IsModified() {
			return true
		}
	}
	return false
}

// Next makes the next document in open order active and returns it.
func (dm *DocumentManager) Next() *Document {
	return dm.cycle(1)
}

// Previous makes the previous document in open order active and returns it.
func (dm *DocumentManager) Previous() *Document {
	return dm.cycle(-1)
}

func (dm *DocumentManager) cycle(step int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(dm.order) == 0 || dm.active == nil {
		return nil
	}
	idx := -1
	for i, id := range dm.order {
		if id == dm.active.ID() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return dm.active
	}

	n := len(dm.order)
	dm.active = dm.documents[dm.order[((idx+step)%n+n)%n]]
	return dm.active
}
