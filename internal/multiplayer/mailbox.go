package multiplayer

import "sync"

// mailbox is a bounded queue that never blocks the sender.
// When the buffer is full the oldest item is dropped.
type mailbox[T any] struct {
	items    chan T
	done     chan struct{}
	doneOnce sync.Once
}

func newMailbox[T any](size int) *mailbox[T] {
	if size < 1 {
		size = 64 // Default buffer size
	}
	return &mailbox[T]{
		items: make(chan T, size),
		done:  make(chan struct{}),
	}
}

// push reports false once the mailbox is closed.
func (m *mailbox[T]) push(item T) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.items <- item:
		return true
	default:
	}

	// Full: drop oldest and retry once.
	select {
	case <-m.items:
	default:
	}
	select {
	case m.items <- item:
	default:
	}
	return true
}

func (m *mailbox[T]) close() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
