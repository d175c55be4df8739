// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

// Unbounded is the capacity reported by queues with no fixed ceiling
// (Linked). Bounded queues (Ring, SPSC, SPMC) report a non-negative
// power-of-two capacity instead.
const Unbounded = -1

// Queue is the shared message-passing contract implemented by every
// concrete queue in this package: Ring (bounded MPMC), Linked (unbounded
// MPSC), SPSC, and SPMC.
//
// Strict methods (Offer, Poll, Peek) honor exact full/empty laws: Offer
// returns ErrWouldBlock if and only if the queue is full at that instant,
// and Poll/Peek return ErrWouldBlock if and only if the queue is empty at
// that instant. Relaxed methods trade that guarantee for throughput: they
// may report spurious full/empty results under contention but never
// corrupt state.
//
// Queue intentionally excludes element removal by value, iteration,
// contains, capacity resizing, blocking APIs, priority, and fairness.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Peek returns the next element without removing it, or ErrWouldBlock
	// if the queue is empty.
	Peek() (T, error)

	// RelaxedOffer is Offer without the strict-full confirmation: it may
	// return ErrWouldBlock spuriously under contention even when the
	// queue is not actually full, but always succeeds when the queue is
	// stably non-full.
	RelaxedOffer(e *T) error

	// RelaxedPoll is Poll without the strict-empty confirmation: it may
	// return ErrWouldBlock spuriously under contention.
	RelaxedPoll() (T, error)

	// RelaxedPeek is a single unsynchronized read of the next element.
	RelaxedPeek() (T, error)

	// Size returns the number of elements currently queued. For bounded
	// queues this is always in [0, Capacity()]; for unbounded queues it
	// is in [0, +inf). It may over-estimate under contention.
	Size() int

	// IsEmpty reports whether the queue was observed empty. Conservative:
	// the consumer side is read first, so a concurrent poll between the
	// two reads can make this return false for a queue that has just
	// become empty — never the reverse.
	IsEmpty() bool

	// Capacity returns the bounded capacity, or Unbounded.
	Capacity() int

	// CurrentProducerIndex returns a monotone snapshot of the number of
	// successfully reserved offers since construction. For progress
	// monitoring and load balancing, not for correctness decisions.
	CurrentProducerIndex() uint64

	// CurrentConsumerIndex returns a monotone snapshot of the number of
	// successfully reserved polls since construction.
	CurrentConsumerIndex() uint64

	// Drain delivers elements to c in batches until the queue runs dry,
	// stopping after a bounded number of batches even if offers keep
	// arriving concurrently. Returns the number delivered.
	Drain(c Sink[T]) int

	// DrainLimit delivers up to limit elements to c, stopping early on
	// the first empty result. Returns the number delivered.
	DrainLimit(c Sink[T], limit int) int

	// DrainWait delivers elements to c until exit stops reporting
	// KeepRunning, consulting wait.Idle whenever the queue is observed
	// empty. Returns the number delivered.
	DrainWait(c Sink[T], wait WaitStrategy, exit ExitCondition) int

	// Fill draws elements from s and offers them, in batches, stopping
	// after a bounded number of batches. Returns the number offered, or
	// ErrUnsupported on a strict bounded MPMC queue (Ring).
	Fill(s Supplier[T]) (int, error)

	// FillLimit draws and offers up to limit elements from s, stopping
	// early the first time an offer fails. Returns the number offered, or
	// ErrUnsupported on a strict bounded MPMC queue (Ring).
	FillLimit(s Supplier[T], limit int) (int, error)

	// FillWait draws and offers elements from s until exit stops
	// reporting KeepRunning, consulting wait.Idle whenever an offer
	// fails. Returns the number offered, or ErrUnsupported on a strict
	// bounded MPMC queue (Ring).
	FillWait(s Supplier[T], wait WaitStrategy, exit ExitCondition) (int, error)
}

// Producer is the capability to offer elements (non-blocking).
type Producer[T any] interface {
	// Offer adds an element to the queue. e must not be nil: the empty
	// sentinel is never stored. Returns ErrInvalidElement if e is nil,
	// ErrWouldBlock if the queue is full, or nil on success.
	//
	// Thread safety depends on queue type:
	//   - SPSC, SPMC: single producer only
	//   - Ring (MPMC), Linked (MPSC): multiple producers safe
	Offer(e *T) error
}

// Consumer is the capability to poll elements (non-blocking).
type Consumer[T any] interface {
	// Poll removes and returns the next element, or ErrWouldBlock if the
	// queue is empty.
	//
	// Thread safety depends on queue type:
	//   - SPSC, Linked (MPSC): single consumer only
	//   - Ring (MPMC), SPMC: multiple consumers safe
	Poll() (T, error)
}

// Sink is the single-method capability bulk Drain operations feed
// elements into (spec's "Consumer" collaborator).
type Sink[T any] interface {
	// Accept receives one drained element.
	Accept(e T)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc[T any] func(T)

// Accept implements Sink.
func (f SinkFunc[T]) Accept(e T) { f(e) }

// Supplier is the single-method source capability bulk Fill operations
// draw elements from.
type Supplier[T any] interface {
	// Get produces the next element to offer.
	Get() T
}

// SupplierFunc adapts a plain function to Supplier.
type SupplierFunc[T any] func() T

// Get implements Supplier.
func (f SupplierFunc[T]) Get() T { return f() }

// WaitStrategy decides how a bulk Drain/Fill idles when the queue is
// observed empty (drain) or an offer fails (fill). count is the number of
// consecutive idle observations; implementations typically spin for small
// counts, then yield, then sleep. The returned value becomes the next
// call's count.
type WaitStrategy interface {
	Idle(count int) int
}

// ExitCondition lets a caller stop an open-ended Drain/Fill between inner
// iterations. There is no finer preemption granularity.
type ExitCondition interface {
	KeepRunning() bool
}

// bulkBatch is the chunk size the no-limit Drain/Fill forms loop in
// before re-checking the overflow guard.
const bulkBatch = 4096

// bulkOverflowGuard bounds the no-limit Drain/Fill forms at roughly
// 1<<31 total elements, resolving the open question over the overflow
// guard in favor of "bounded" over "unbounded, yields periodically": a
// pathological producer/consumer cannot wedge a no-limit bulk call
// forever.
const bulkOverflowGuard = 1 << 31
