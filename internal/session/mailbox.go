package session

import "sync"

// message is anything a session consumes from its mailbox.
type message interface {
	isMessage()
}

// editMsg carries a host edit notification.
type editMsg struct {
	ev EditEvent
}

// completionMsg reports that a write-back landed.
type completionMsg struct {
	seq uint64
	err error
}

func (editMsg) isMessage()       {}
func (completionMsg) isMessage() {}

// mailbox is an unbounded single-consumer queue. Producers never block, so
// the host may call put from inside its own notification path.
type mailbox struct {
	mu     sync.Mutex
	queue  []message
	ready  chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

// put enqueues msg. It returns false once the mailbox is closed.
func (m *mailbox) put(msg message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// take pops the oldest message without blocking.
func (m *mailbox) take() (message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil, false
	}
	msg := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	return msg, true
}

// pending returns the number of queued messages.
func (m *mailbox) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// close drops queued messages and rejects further puts. It returns the
// number of dropped edit notifications.
func (m *mailbox) close() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for _, msg := range m.queue {
		if _, ok := msg.(editMsg); ok {
			dropped++
		}
	}
	m.closed = true
	m.queue = nil
	return dropped
}
