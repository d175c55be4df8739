// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPMC is a bounded single-producer multi-consumer lock-free queue.
//
// Shares Ring's per-slot sequence number scheme, simplified on the
// producer side: with exactly one producer there is never a competing
// writer to CAS against, so Offer advances producerIndex with a plain
// load-then-store instead of a compare-and-swap. The consumer side is
// unchanged from Ring, since multiple consumers still race each other
// for every slot.
type SPMC[T any] struct {
	_             pad
	producerIndex atomix.Uint64
	_             pad
	consumerIndex atomix.Uint64
	_             pad
	buffer        []ringSlot[T]
	mask          uint64
	capacity      uint64
}

// NewSPMC creates a new bounded SPMC queue. Capacity rounds up to the
// next power of two. Panics with ErrInvalidCapacity if capacity < 2.
func NewSPMC[T any](capacity int) *SPMC[T] {
	if capacity < 2 {
		panic(ErrInvalidCapacity)
	}

	n := uint64(roundToPow2(capacity))
	q := &SPMC[T]{
		buffer:   make([]ringSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// Offer adds an element (producer only). Returns ErrInvalidElement if e
// is nil, ErrWouldBlock if and only if the queue is full, or nil. With a
// single producer there is no CAS on producerIndex. A stale slot is
// confirmed against consumerIndex: if a consumer has already claimed it
// but not yet released it, Offer waits for the release instead of
// reporting full.
func (q *SPMC[T]) Offer(e *T) error {
	if e == nil {
		return ErrInvalidElement
	}

	p := q.producerIndex.LoadRelaxed()
	slot := &q.buffer[p&q.mask]
	sw := spin.Wait{}
	for int64(slot.seq.LoadAcquire())-int64(p) != 0 {
		if int64(p-q.capacity) >= int64(q.consumerIndex.LoadAcquire()) {
			return ErrWouldBlock
		}
		sw.Once()
	}

	slot.data = *e
	slot.seq.StoreRelease(p + 1)
	q.producerIndex.StoreRelease(p + 1)
	return nil
}

// RelaxedOffer equals Offer: a single producer has no contention to
// relax.
func (q *SPMC[T]) RelaxedOffer(e *T) error { return q.Offer(e) }

// Poll removes and returns the next element (consumers may share the
// queue concurrently). Returns ErrWouldBlock if and only if the queue is
// empty at the moment of the call.
func (q *SPMC[T]) Poll() (T, error) {
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
func (q *SPMC[T]) RelaxedPoll() (T, error) {
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
// call. May retry internally while a concurrent poll rotates the slot at
// the current consumer index.
func (q *SPMC[T]) Peek() (T, error) {
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
func (q *SPMC[T]) RelaxedPeek() (T, error) {
	c := q.consumerIndex.LoadRelaxed()
	slot := &q.buffer[c&q.mask]
	s := slot.seq.LoadRelaxed()
	if int64(s)-int64(c+1) == 0 {
		return slot.data, nil
	}
	var zero T
	return zero, ErrWouldBlock
}

// Size returns the number of elements currently queued, in
// [0, Capacity()]. May over-estimate under contention.
func (q *SPMC[T]) Size() int {
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
func (q *SPMC[T]) IsEmpty() bool {
	return q.consumerIndex.LoadAcquire() == q.producerIndex.LoadAcquire()
}

// Capacity returns the queue's bounded capacity.
func (q *SPMC[T]) Capacity() int {
	return int(q.capacity)
}

// CurrentProducerIndex returns a monotone snapshot of total offers
// successfully made since construction.
func (q *SPMC[T]) CurrentProducerIndex() uint64 {
	return q.producerIndex.LoadAcquire()
}

// CurrentConsumerIndex returns a monotone snapshot of total polls
// successfully reserved since construction.
func (q *SPMC[T]) CurrentConsumerIndex() uint64 {
	return q.consumerIndex.LoadAcquire()
}

// Drain delivers elements to c via RelaxedPoll in batches of bulkBatch,
// stopping when a batch delivers fewer than bulkBatch elements or the
// overflow guard trips.
func (q *SPMC[T]) Drain(c Sink[T]) int {
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
func (q *SPMC[T]) DrainLimit(c Sink[T], limit int) int {
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
func (q *SPMC[T]) DrainWait(c Sink[T], wait WaitStrategy, exit ExitCondition) int {
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
// stopping early the first time Offer fails (queue full) or the
// overflow guard trips. A single producer means a fill loop here can
// never race another producer's offer the way strict MPMC fill could.
func (q *SPMC[T]) Fill(s Supplier[T]) (int, error) {
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
func (q *SPMC[T]) FillLimit(s Supplier[T], limit int) (int, error) {
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
func (q *SPMC[T]) FillWait(s Supplier[T], wait WaitStrategy, exit ExitCondition) (int, error) {
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

var _ Queue[int] = (*SPMC[int])(nil)
