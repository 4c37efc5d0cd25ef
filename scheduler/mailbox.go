package scheduler

import "github.com/relab/synod"

// mailbox is an unbounded FIFO queue backed by a circular buffer.
// When the buffer is full, it is doubled in size; entries are never dropped.
type mailbox struct {
	entries []synod.Delivery
	head    int
	size    int
}

func newMailbox(capacity int) mailbox {
	if capacity < 1 {
		capacity = 1
	}
	return mailbox{entries: make([]synod.Delivery, capacity)}
}

func (q *mailbox) push(entry synod.Delivery) {
	if q.size == len(q.entries) {
		q.grow()
	}
	tail := (q.head + q.size) % len(q.entries)
	q.entries[tail] = entry
	q.size++
}

func (q *mailbox) pop() (entry synod.Delivery, ok bool) {
	if q.size == 0 {
		return synod.Delivery{}, false
	}
	entry = q.entries[q.head]
	q.entries[q.head] = synod.Delivery{}
	q.head = (q.head + 1) % len(q.entries)
	q.size--
	return entry, true
}

func (q *mailbox) len() int {
	return q.size
}

// grow doubles the capacity, moving the entries to the front of the new buffer.
func (q *mailbox) grow() {
	entries := make([]synod.Delivery, 2*len(q.entries))
	n := copy(entries, q.entries[q.head:])
	copy(entries[n:], q.entries[:q.head])
	q.entries = entries
	q.head = 0
}
