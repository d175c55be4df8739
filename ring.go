// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Ring is a bounded multi-producer multi-consumer lock-free queue.
//
// Based on Dmitry Vyukov's MPMC ring buffer: a fixed-capacity circular
// array of slots, each carrying its own sequence number. A producer
// claims slot i by winning a CAS on producerIndex, then publishes by
// storing sequence[i] = i+1; a consumer claims the same slot by winning a
// CAS on consumerIndex, then republishes sequence[i] = i+capacity for the
// next lap. Per-slot sequence numbers make full ABA safety unnecessary:
// a slot's state (empty-for-round-n vs full-for-round-n) is recoverable
// from the sequence number alone.
//
// Every operation is lock-free; CAS failure means another thread made
// progress, so the system as a whole always advances even though no
// single retrying thread is individually wait-free.
//
// Memory: capacity slots, one sequence number + one T per slot.
type Ring[T any] struct {
	_             pad
	producerIndex atomix.Uint64
	_             pad
	consumerIndex atomix.Uint64
	_             pad
	buffer        []ringSlot[T]
	mask          uint64
	capacity      uint64
}

type ringSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// NewRing creates a new bounded MPMC queue. Capacity rounds up to the
// next power of two. Panics with ErrInvalidCapacity if capacity < 2.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		panic(ErrInvalidCapacity)
	}

	n := uint64(roundToPow2(capacity))
	q := &Ring[T]{
		buffer:   make([]ringSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Offer adds an element to the queue. Returns ErrInvalidElement if e is
// nil, ErrWouldBlock if and only if the queue is full at the moment of
// the call, or nil on success.
//
// The extra confirmation step below (reloading consumerIndex once the
// cached snapshot also says "full") is what makes this the strict
// variant: without it, a producer can observe a stale slot mid-rotation
// and report full when the queue is not, which is exactly what
// RelaxedOffer accepts in exchange for skipping the reload.
func (q *Ring[T]) Offer(e *T) error {
	if e == nil {
		return ErrInvalidElement
	}

	cIndex := int64(-1) // unconfirmed: forces a reload on first full signal
	sw := spin.Wait{}
	for {
		p := q.producerIndex.LoadAcquire()
		slot := &q.buffer[p&q.mask]
		s := slot.seq.LoadAcquire()
		delta := int64(s) - int64(p)

		switch {
		case delta == 0:
			if q.producerIndex.CompareAndSwapAcqRel(p, p+1) {
				slot.data = *e
				slot.seq.StoreRelease(p + 1)
				return nil
			}
		case delta < 0:
			full := int64(p-q.capacity) >= cIndex
			if full {
				cIndex = int64(q.consumerIndex.LoadAcquire())
				full = int64(p-q.capacity) >= cIndex
			}
			if full {
				return ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// RelaxedOffer is Offer without the strict-full confirmation: it returns
// ErrWouldBlock on the first observation of a stale slot, without
// reloading consumerIndex. It always succeeds when the queue is stably
// non-full, but may spuriously report full under contention.
func (q *Ring[T]) RelaxedOffer(e *T) error {
	if e == nil {
		return ErrInvalidElement
	}

	sw := spin.Wait{}
	for {
		p := q.producerIndex.LoadAcquire()
		slot := &q.buffer[p&q.mask]
		s := slot.seq.LoadAcquire()
		delta := int64(s) - int64(p)

		if delta == 0 {
			if q.producerIndex.CompareAndSwapAcqRel(p, p+1) {
				slot.data = *e
				slot.seq.StoreRelease(p + 1)
				return nil
			}
		} else if delta < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Poll removes and returns the next element. Returns ErrWouldBlock if
// and only if the queue is empty at the moment of the call.
func (q *Ring[T]) Poll() (T, error) {
	pIndex := int64(-1) // unconfirmed: forces a reload on first empty signal
	sw := spin.Wait{}
	for {
		c := q.consumerIndex.LoadAcquire()
		slot := &q.buffer[c&q.mask]
		s := slot.seq.LoadAcquire()
		delta := int64(s) - int64(c+1)

		switch {
		case delta == 0:
			if q.consumerIndex.CompareAndSwapAcqRel(c, c+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(c + q.capacity)
				return elem, nil
			}
		case delta < 0:
			empty := int64(c) >= pIndex
			if empty {
				pIndex = int64(q.producerIndex.LoadAcquire())
				empty = int64(c) >= pIndex
			}
			if empty {
				var zero T
				return zero, ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// RelaxedPoll is Poll without the strict-empty confirmation: it returns
// ErrWouldBlock on the first observation of an unfilled slot, without
// reloading producerIndex. May spuriously report empty under contention.
func (q *Ring[T]) RelaxedPoll() (T, error) {
	sw := spin.Wait{}
	for {
		c := q.consumerIndex.LoadAcquire()
		slot := &q.buffer[c&q.mask]
		s := slot.seq.LoadAcquire()
		delta := int64(s) - int64(c+1)

		if delta == 0 {
			if q.consumerIndex.CompareAndSwapAcqRel(c, c+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(c + q.capacity)
				return elem, nil
			}
		} else if delta < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Peek returns the next element without removing it. Returns
// ErrWouldBlock if and only if the queue is empty at the moment of the
// call. May retry internally while a concurrent offer/poll rotates the
// slot at the current consumer index.
func (q *Ring[T]) Peek() (T, error) {
	for {
		c := q.consumerIndex.LoadAcquire()
		slot := &q.buffer[c&q.mask]
		s := slot.seq.LoadAcquire()
		delta := int64(s) - int64(c+1)

		if delta == 0 {
			return slot.data, nil
		}
		if delta < 0 && c == q.producerIndex.LoadAcquire() {
			var zero T
			return zero, ErrWouldBlock
		}
	}
}

// RelaxedPeek is a single unsynchronized read of the slot at the current
// consumer index. May return ErrWouldBlock on a non-empty queue.
func (q *Ring[T]) RelaxedPeek() (T, error) {
	c := q.consumerIndex.LoadRelaxed()
	slot := &q.buffer[c&q.mask]
	s := slot.seq.LoadRelaxed()
	if int64(s)-int64(c+1) == 0 {
		return slot.data, nil
	}
	var zero T
	return zero, ErrWouldBlock
}

// Size returns the number of elements currently queued, in [0, Capacity()].
// May over-estimate under contention.
func (q *Ring[T]) Size() int {
	for {
		a := q.consumerIndex.LoadAcquire()
		p := q.producerIndex.LoadAcquire()
		a2 := q.consumerIndex.LoadAcquire()
		if a == a2 {
			return int(p - a2)
		}
	}
}

// IsEmpty reports whether the queue was observed empty.
func (q *Ring[T]) IsEmpty() bool {
	return q.consumerIndex.LoadAcquire() == q.producerIndex.LoadAcquire()
}

// Capacity returns the queue's bounded capacity.
func (q *Ring[T]) Capacity() int {
	return int(q.capacity)
}

// CurrentProducerIndex returns a monotone snapshot of total offers
// successfully reserved since construction.
func (q *Ring[T]) CurrentProducerIndex() uint64 {
	return q.producerIndex.LoadAcquire()
}

// CurrentConsumerIndex returns a monotone snapshot of total polls
// successfully reserved since construction.
func (q *Ring[T]) CurrentConsumerIndex() uint64 {
	return q.consumerIndex.LoadAcquire()
}

// Drain delivers elements to c via RelaxedPoll in batches of bulkBatch,
// stopping when a batch delivers fewer than bulkBatch elements or the
// overflow guard trips.
func (q *Ring[T]) Drain(c Sink[T]) int {
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
// early on the first empty result.
func (q *Ring[T]) DrainLimit(c Sink[T], limit int) int {
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
func (q *Ring[T]) DrainWait(c Sink[T], wait WaitStrategy, exit ExitCondition) int {
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

// Fill always returns ErrUnsupported: a bulk offer loop driven by a
// Supplier cannot be made safe on a strict bounded MPMC queue, because a
// failed Offer partway through would discard an already-fetched supplied
// element.
func (q *Ring[T]) Fill(s Supplier[T]) (int, error) {
	return 0, ErrUnsupported
}

// FillLimit always returns ErrUnsupported. See Fill.
func (q *Ring[T]) FillLimit(s Supplier[T], limit int) (int, error) {
	return 0, ErrUnsupported
}

// FillWait always returns ErrUnsupported. See Fill.
func (q *Ring[T]) FillWait(s Supplier[T], wait WaitStrategy, exit ExitCondition) (int, error) {
	return 0, ErrUnsupported
}

var _ Queue[int] = (*Ring[int])(nil)
