// Package util provides a lock-free Single-Producer Single-Consumer (SPSC) queue implementation.
//
// Features and Guarantees:
//
//   - Lock-Free: the only shared state are the head and tail cursors, each written by exactly one side
//   - Bounded Size: the usable capacity is fixed at construction, no allocations after NewSPSC
//   - Non-Blocking: TryEnqueue and TryGetFront return immediately on full/empty, retry policy is up to the caller
//   - Strict FIFO: elements are observed by the consumer in exactly the order they were enqueued
//   - No False Sharing: head and tail are placed on separate cache lines
//
// The queue must be used by exactly one producer goroutine and one consumer goroutine for its
// whole lifetime. This is not checked at runtime.
package util

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// SPSC is a fixed-capacity lock-free ring buffer for one producer and one consumer.
//
// One physical slot is never filled to tell a full queue from an empty one:
// head == tail means empty, tail+1 == head (mod len) means full.
//
// Memory ordering: the producer writes the slot before publishing the new tail, the consumer
// loads the tail before reading the slot (and symmetrically for head). Go's sync/atomic
// operations are sequentially consistent, which covers the required acquire/release pairs.
type SPSC[T any] struct {
	_    cpu.CacheLinePad
	head atomic.Uint64 // next slot to read, written by the consumer only
	_    cpu.CacheLinePad
	tail atomic.Uint64 // next slot to write, written by the producer only
	_    cpu.CacheLinePad

	size  uint64 // number of physical slots (capacity + 1)
	slots []T
}

// NewSPSC creates a new queue that can hold exactly capacity elements.
// Panics if capacity is not positive.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("spsc: capacity must be positive, got %d", capacity))
	}
	return &SPSC[T]{
		size:  uint64(capacity) + 1,
		slots: make([]T, capacity+1),
	}
}

// TryEnqueue stores value at the tail of the queue.
// Returns false if the queue is full, the queue is left unchanged in that case.
//
// Thread-safety: must only be called by the producer.
func (q *SPSC[T]) TryEnqueue(value T) bool {
	tail := q.tail.Load() // only we write the tail
	next := tail + 1
	if next == q.size {
		next = 0
	}

	// acquire: the consumer must be done with the slot before we overwrite it
	if next == q.head.Load() {
		return false
	}

	q.slots[tail] = value

	// release: publish the slot to the consumer
	q.tail.Store(next)
	return true
}

// TryGetFront returns a pointer to the element at the head of the queue without removing it.
// Returns nil and false if the queue is empty.
// The pointer stays valid until Pop is called, the slot is still owned by the queue.
//
// Thread-safety: must only be called by the consumer.
func (q *SPSC[T]) TryGetFront() (*T, bool) {
	head := q.head.Load() // only we write the head

	// acquire: a published tail guarantees the slot is fully written
	if head == q.tail.Load() {
		return nil, false
	}
	return &q.slots[head], true
}

// Pop removes the element at the head of the queue.
// It must only be called after TryGetFront returned an element. Popping an empty queue
// is a programming error and panics.
//
// Thread-safety: must only be called by the consumer.
func (q *SPSC[T]) Pop() {
	head := q.head.Load()
	if head == q.tail.Load() {
		panic("spsc: pop on empty queue")
	}

	// help the go gc, the slot may hold pointers
	var zero T
	q.slots[head] = zero

	next := head + 1
	if next == q.size {
		next = 0
	}

	// release: hand the slot back to the producer
	q.head.Store(next)
}

// TryDequeue is a shortcut for TryGetFront followed by Pop.
// It returns a copy of the element.
//
// Thread-safety: must only be called by the consumer.
func (q *SPSC[T]) TryDequeue() (T, bool) {
	front, ok := q.TryGetFront()
	if !ok {
		var zero T
		return zero, false
	}
	value := *front
	q.Pop()
	return value, true
}

// IsEmpty returns a momentary snapshot of whether the queue is empty.
// Under concurrent use the result is informational only.
func (q *SPSC[T]) IsEmpty() bool {
	return q.head.Load() == q.tail.Load()
}

// Len returns a momentary snapshot of the number of queued elements.
// Under concurrent use the result is informational only.
func (q *SPSC[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	return int((tail + q.size - head) % q.size)
}

// Cap returns the usable capacity of the queue
func (q *SPSC[T]) Cap() int {
	return int(q.size - 1)
}
