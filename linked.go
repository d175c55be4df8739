// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Linked is an unbounded multi-producer single-consumer lock-free queue.
//
// Based on Dmitry Vyukov's non-intrusive MPSC queue, adapted to an
// intrusive node: a singly-linked chain of nodes, each written once by
// the producer that created it. Producers serialize only on a single
// atomic exchange of the tail pointer; the consumer walks the chain one
// node at a time from a movable stub.
//
// The exchange is the offer's linearization point. Between the exchange
// and the follow-up store that links the previous tail to the new node,
// the chain is momentarily disconnected — a consumer that reaches the
// previous tail during that window must spin until the link is
// published. This is the single unbounded-wait site in the algorithm: it
// is fundamental to the design (not eliminated) and is bounded by the
// preempted producer's reschedule latency, not by any data-dependent
// condition. The consumer discipline (MPSC) means the spin can never be
// contended by more than one producer at a time.
type Linked[T any] struct {
	_            pad
	producerNode atomic.Pointer[linkedNode[T]]
	_            pad
	consumerNode atomic.Pointer[linkedNode[T]]
	_            pad
	offered      atomix.Uint64
	_            pad
	consumed     atomix.Uint64
}

type linkedNode[T any] struct {
	next  atomic.Pointer[linkedNode[T]]
	value T
}

// NewLinked creates a new unbounded MPSC queue, seeded with a single
// stub node so the first Offer has something to link from.
func NewLinked[T any]() *Linked[T] {
	stub := &linkedNode[T]{}
	q := &Linked[T]{}
	q.producerNode.Store(stub)
	q.consumerNode.Store(stub)
	return q
}

// Offer adds an element to the queue (any number of producers safe).
// Returns ErrInvalidElement if e is nil; otherwise always succeeds — an
// unbounded queue is never full.
func (q *Linked[T]) Offer(e *T) error {
	if e == nil {
		return ErrInvalidElement
	}
	n := &linkedNode[T]{value: *e}
	q.offered.AddAcqRel(1)
	prev := q.producerNode.Swap(n)
	prev.next.Store(n)
	return nil
}

// RelaxedOffer equals Offer: offer is already wait-free per producer
// beyond the exchange, so there is no further relaxation to make.
func (q *Linked[T]) RelaxedOffer(e *T) error {
	return q.Offer(e)
}

// Poll removes and returns the next element (single consumer only).
// Returns ErrWouldBlock if and only if the queue is empty at the moment
// of the call. If a producer has won the tail exchange but has not yet
// published its link, Poll spins until it does rather than reporting
// empty — this is the strict variant's confirmation step.
func (q *Linked[T]) Poll() (T, error) {
	curr := q.consumerNode.Load()
	nxt := curr.next.Load()
	if nxt == nil {
		if curr == q.producerNode.Load() {
			var zero T
			return zero, ErrWouldBlock
		}
		for nxt == nil {
			nxt = curr.next.Load()
		}
	}

	v := nxt.value
	var zero T
	nxt.value = zero
	q.consumerNode.Store(nxt)
	q.consumed.AddAcqRel(1)
	return v, nil
}

// RelaxedPoll omits the spin: it returns ErrWouldBlock whenever the
// current node's next is observed nil, even if a producer is mid-offer.
// Faster for consumers that can tolerate a spurious empty result.
func (q *Linked[T]) RelaxedPoll() (T, error) {
	curr := q.consumerNode.Load()
	nxt := curr.next.Load()
	if nxt == nil {
		var zero T
		return zero, ErrWouldBlock
	}

	v := nxt.value
	var zero T
	nxt.value = zero
	q.consumerNode.Store(nxt)
	q.consumed.AddAcqRel(1)
	return v, nil
}

// Peek returns the next element without removing it (single consumer
// only). Applies the same strict spin rule as Poll.
func (q *Linked[T]) Peek() (T, error) {
	curr := q.consumerNode.Load()
	nxt := curr.next.Load()
	if nxt == nil {
		if curr == q.producerNode.Load() {
			var zero T
			return zero, ErrWouldBlock
		}
		for nxt == nil {
			nxt = curr.next.Load()
		}
	}
	return nxt.value, nil
}

// RelaxedPeek is a single unsynchronized read of the next node, without
// the strict variant's spin.
func (q *Linked[T]) RelaxedPeek() (T, error) {
	curr := q.consumerNode.Load()
	nxt := curr.next.Load()
	if nxt == nil {
		var zero T
		return zero, ErrWouldBlock
	}
	return nxt.value, nil
}

// Size returns an approximate count of queued elements: the difference
// between total offers and total polls, both tracked as simple atomic
// counters rather than derived from the chain (walking an unbounded
// chain to count it would itself be unbounded work). May over-estimate
// under contention, consistent with the bounded queues' Size.
func (q *Linked[T]) Size() int {
	consumed := q.consumed.LoadAcquire()
	return int(q.offered.LoadAcquire() - consumed)
}

// IsEmpty reports whether the queue was observed empty, checked directly
// against the chain rather than the approximate counters so it agrees
// exactly with what Poll would have done at that instant.
func (q *Linked[T]) IsEmpty() bool {
	curr := q.consumerNode.Load()
	return curr.next.Load() == nil && curr == q.producerNode.Load()
}

// Capacity returns Unbounded: Linked has no fixed ceiling.
func (q *Linked[T]) Capacity() int {
	return Unbounded
}

// CurrentProducerIndex returns a monotone snapshot of total offers since
// construction.
func (q *Linked[T]) CurrentProducerIndex() uint64 {
	return q.offered.LoadAcquire()
}

// CurrentConsumerIndex returns a monotone snapshot of total polls since
// construction.
func (q *Linked[T]) CurrentConsumerIndex() uint64 {
	return q.consumed.LoadAcquire()
}

// Drain delivers elements to c in batches of bulkBatch, stopping when a
// batch delivers fewer than bulkBatch elements or the overflow guard
// trips.
func (q *Linked[T]) Drain(c Sink[T]) int {
	total := 0
	for {
		got := q.DrainLimit(c, bulkBatch)
		total += got
		if got < bulkBatch || total >= bulkOverflowGuard {
			return total
		}
	}
}

// DrainLimit delivers up to limit elements to c via RelaxedPoll, stopping
// early on the first nil next. Each RelaxedPoll advances the consumer
// node and the consumed counter before c receives the element, so an
// external observer of CurrentConsumerIndex sees monotonic progress
// throughout the call, not just at the end.
func (q *Linked[T]) DrainLimit(c Sink[T], limit int) int {
	n := 0
	for n < limit {
		v, err := q.RelaxedPoll()
		if err != nil {
			break
		}
		c.Accept(v)
		n++
	}
	return n
}

// DrainWait delivers elements to c until exit stops reporting
// KeepRunning, consulting wait.Idle whenever RelaxedPoll observes the
// queue empty.
func (q *Linked[T]) DrainWait(c Sink[T], wait WaitStrategy, exit ExitCondition) int {
	n := 0
	idle := 0
	for exit.KeepRunning() {
		v, err := q.RelaxedPoll()
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
// stopping when the overflow guard trips. Unlike Ring, Linked can
// support this safely: Offer on an unbounded queue never fails, so a
// fetched supplied element is never discarded.
func (q *Linked[T]) Fill(s Supplier[T]) (int, error) {
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

// FillLimit draws and offers up to limit elements from s.
func (q *Linked[T]) FillLimit(s Supplier[T], limit int) (int, error) {
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
// KeepRunning. Since Offer never fails on an unbounded queue, wait.Idle
// is never consulted here — it exists for interface symmetry with
// SPSC/SPMC, whose FillWait can observe a full queue.
func (q *Linked[T]) FillWait(s Supplier[T], wait WaitStrategy, exit ExitCondition) (int, error) {
	n := 0
	for exit.KeepRunning() {
		v := s.Get()
		if err := q.Offer(&v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

var _ Queue[int] = (*Linked[int])(nil)
