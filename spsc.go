// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

import "code.hybscloud.com/atomix"

// SPSC is a bounded single-producer single-consumer lock-free queue.
//
// Based on Lamport's ring buffer with cached-index optimization: the
// producer caches its last-seen view of the consumer index, and vice
// versa, so that the common case (queue neither full nor empty) touches
// only the producer's or only the consumer's own cache line, reading the
// other side's index only when the cache says "maybe full"/"maybe
// empty". With a single writer on each side there is never a CAS to
// retry — every operation is wait-free.
//
// Since there is exactly one producer and one consumer, there is no
// contention between two producers or two consumers to disambiguate:
// the relaxed variants are identical to the strict ones.
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64 // consumer reads from here
	_          pad
	cachedTail uint64 // consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // producer writes here
	_          pad
	cachedHead uint64 // producer's cached view of head
	_          pad
	buffer     []T
	mask       uint64
}

// NewSPSC creates a new bounded SPSC queue. Capacity rounds up to the
// next power of two. Panics with ErrInvalidCapacity if capacity < 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic(ErrInvalidCapacity)
	}
	n := uint64(roundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Offer adds an element (producer only). Returns ErrInvalidElement if e
// is nil, ErrWouldBlock if and only if the queue is full, or nil.
func (q *SPSC[T]) Offer(e *T) error {
	if e == nil {
		return ErrInvalidElement
	}

	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return ErrWouldBlock
		}
	}

	q.buffer[tail&q.mask] = *e
	q.tail.StoreRelease(tail + 1)
	return nil
}

// RelaxedOffer equals Offer: a single producer has nothing to relax.
func (q *SPSC[T]) RelaxedOffer(e *T) error { return q.Offer(e) }

// Poll removes and returns the next element (consumer only). Returns
// ErrWouldBlock if and only if the queue is empty.
func (q *SPSC[T]) Poll() (T, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, ErrWouldBlock
		}
	}

	elem := q.buffer[head&q.mask]
	var zero T
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// RelaxedPoll equals Poll: a single consumer has nothing to relax.
func (q *SPSC[T]) RelaxedPoll() (T, error) { return q.Poll() }

// Peek returns the next element without removing it (consumer only).
// Returns ErrWouldBlock if and only if the queue is empty.
func (q *SPSC[T]) Peek() (T, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, ErrWouldBlock
		}
	}
	return q.buffer[head&q.mask], nil
}

// RelaxedPeek equals Peek: a single consumer has nothing to relax.
func (q *SPSC[T]) RelaxedPeek() (T, error) { return q.Peek() }

// Size returns the number of elements currently queued, in
// [0, Capacity()].
func (q *SPSC[T]) Size() int {
	for {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()
		head2 := q.head.LoadAcquire()
		if head == head2 {
			return int(tail - head2)
		}
	}
}

// IsEmpty reports whether the queue was observed empty.
func (q *SPSC[T]) IsEmpty() bool {
	return q.head.LoadAcquire() == q.tail.LoadAcquire()
}

// Capacity returns the queue's bounded capacity.
func (q *SPSC[T]) Capacity() int {
	return int(q.mask + 1)
}

// CurrentProducerIndex returns a monotone snapshot of total offers
// successfully made since construction.
func (q *SPSC[T]) CurrentProducerIndex() uint64 {
	return q.tail.LoadAcquire()
}

// CurrentConsumerIndex returns a monotone snapshot of total polls
// successfully made since construction.
func (q *SPSC[T]) CurrentConsumerIndex() uint64 {
	return q.head.LoadAcquire()
}

// Drain delivers elements to c in batches of bulkBatch, stopping when a
// batch delivers fewer than bulkBatch elements or the overflow guard
// trips.
func (q *SPSC[T]) Drain(c Sink[T]) int {
	total := 0
	for {
		got := q.DrainLimit(c, bulkBatch)
		total += got
		if got < bulkBatch || total >= bulkOverflowGuard {
			return total
		}
	}
}

// DrainLimit delivers up to limit elements to c, stopping early on the
// first empty result.
func (q *SPSC[T]) DrainLimit(c Sink[T], limit int) int {
	n := 0
	for n < limit {
		v, err := q.Poll()
		if err != nil {
			break
		}
		c.Accept(v)
		n++
	}
	return n
}

// DrainWait delivers elements to c until exit stops reporting
// KeepRunning, consulting wait.Idle whenever the queue is observed
// empty.
func (q *SPSC[T]) DrainWait(c Sink[T], wait WaitStrategy, exit ExitCondition) int {
	n := 0
	idle := 0
	for exit.KeepRunning() {
		v, err := q.Poll()
		if err != nil {
			idle = wait.Idle(idle)
			continue
		}
		idle = 0
		c.Accept(v)
		n++
	}
	return n
}

// Fill draws elements from s and offers them in batches of bulkBatch,
// stopping early the first time Offer fails (queue full) or the
// overflow guard trips. A single producer means a fill loop here can
// never race another producer's offer.
func (q *SPSC[T]) Fill(s Supplier[T]) (int, error) {
	total := 0
	for {
		got, err := q.FillLimit(s, bulkBatch)
		total += got
		if err != nil {
			return total, err
		}
		if got < bulkBatch || total >= bulkOverflowGuard {
			return total, nil
		}
	}
}

// FillLimit draws and offers up to limit elements from s, stopping early
// the first time Offer fails.
func (q *SPSC[T]) FillLimit(s Supplier[T], limit int) (int, error) {
	n := 0
	for n < limit {
		v := s.Get()
		if err := q.Offer(&v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// FillWait draws and offers elements from s until exit stops reporting
// KeepRunning, consulting wait.Idle whenever Offer fails. A value fetched
// from s while the queue is full is held and re-offered rather than
// discarded: s.Get() is only called again after the held value has been
// successfully offered.
func (q *SPSC[T]) FillWait(s Supplier[T], wait WaitStrategy, exit ExitCondition) (int, error) {
	n := 0
	idle := 0
	haveValue := false
	var v T
	for exit.KeepRunning() {
		if !haveValue {
			v = s.Get()
			haveValue = true
		}
		if err := q.Offer(&v); err != nil {
			idle = wait.Idle(idle)
			continue
		}
		haveValue = false
		idle = 0
		n++
	}
	return n, nil
}

var _ Queue[int] = (*SPSC[int])(nil)
