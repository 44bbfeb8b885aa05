package logging

import "sync"

// compactThreshold is the number of consumed slots after which the queue
// moves its live entries to the front of the backing array.
const compactThreshold = 1024

// entryQueue is an unbounded multi-producer FIFO of log entries. The lock is
// held only for slice bookkeeping, never across I/O.
type entryQueue struct {
	mu     sync.Mutex
	items  []string
	head   int
	pushed uint64
}

func (q *entryQueue) push(entry string) {
	q.mu.Lock()
	q.items = append(q.items, entry)
	q.pushed++
	q.mu.Unlock()
}

// total returns how many entries have ever been pushed.
func (q *entryQueue) total() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}

// pop removes the head entry. ok is false when the queue is empty.
func (q *entryQueue) pop() (entry string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return emptyString, false
	}
	entry = q.items[q.head]
	q.items[q.head] = emptyString
	q.head++

	if q.head >= compactThreshold && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return entry, true
}

func (q *entryQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// reset discards all queued entries and returns how many were dropped.
func (q *entryQueue) reset() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items) - q.head
	q.items = nil
	q.head = 0
	return n
}
