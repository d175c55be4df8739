// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ringq provides lock-free FIFO queue implementations for
// passing values between goroutines without a mutex or channel.
//
// Four concrete queues, three bounded and one unbounded, cover the
// producer/consumer cardinalities:
//
//	Ring   - bounded, multi-producer multi-consumer
//	SPSC   - bounded, single-producer single-consumer
//	SPMC   - bounded, single-producer multi-consumer
//	Linked - unbounded, multi-producer single-consumer
//
// All four implement the same [Queue] interface, so application code can
// depend on the interface and let a [Builder] or a direct constructor
// pick the concrete type.
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := ringq.NewRing[Event](4096)
//	q := ringq.NewSPSC[Request](1024)
//
// Builder API selects an algorithm from constraints:
//
//	q := ringq.Build[Event](ringq.NewBuilder(1024).SingleProducer().SingleConsumer()) // → SPSC
//	q := ringq.Build[Event](ringq.NewBuilder(1024).SingleProducer())                  // → SPMC
//	q := ringq.Build[Event](ringq.NewBuilder(1024))                                   // → Ring
//	q := ringq.BuildLinked[Event](ringq.NewBuilder(0))                                // → Linked
//
// # Basic Usage
//
//	q := ringq.NewRing[int](1024)
//
//	value := 42
//	if err := q.Offer(&value); ringq.IsWouldBlock(err) {
//	    // queue is full - apply backpressure
//	}
//
//	elem, err := q.Poll()
//	if ringq.IsWouldBlock(err) {
//	    // queue is empty - try again later
//	}
//
// # Strict vs relaxed
//
// Offer/Poll/Peek honor exact full/empty laws: they return
// [ErrWouldBlock] if and only if the queue is actually full or empty at
// that instant. The Relaxed variants skip that confirmation step and may
// report a spurious ErrWouldBlock under contention — never a wrong
// value, just an overcautious one — in exchange for touching one fewer
// cache line per call. Bulk Drain/Fill always use the relaxed form
// internally, since a spurious empty/full signal there just ends the
// batch a little early.
//
// # Common patterns
//
// Pipeline stage (SPSC):
//
//	q := ringq.NewSPSC[Data](1024)
//
//	go func() { // producer
//	    backoff := iox.Backoff{}
//	    for data := range input {
//	        for q.Offer(&data) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	go func() { // consumer
//	    backoff := iox.Backoff{}
//	    for {
//	        data, err := q.Poll()
//	        if err != nil {
//	            backoff.Wait()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(data)
//	    }
//	}()
//
// Event aggregation (Linked, unbounded MPSC): any number of producers,
// one aggregator, and Offer never reports full.
//
//	q := ringq.NewLinked[Event]()
//
//	for _, s := range sensors {
//	    go func(s Sensor) {
//	        for ev := range s.Events() {
//	            q.Offer(&ev)
//	        }
//	    }(s)
//	}
//
//	go func() {
//	    for {
//	        ev, err := q.Poll()
//	        if err == nil {
//	            aggregate(ev)
//	        }
//	    }
//	}()
//
// Work distribution (SPMC): one dispatcher, many workers pulling from
// the same bounded ring.
//
//	q := ringq.NewSPMC[Task](1024)
//
//	go func() {
//	    backoff := iox.Backoff{}
//	    for task := range tasks {
//	        for q.Offer(&task) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	for range numWorkers {
//	    go func() {
//	        for {
//	            task, err := q.Poll()
//	            if err == nil {
//	                task.Execute()
//	            }
//	        }
//	    }()
//	}
//
// Worker pool (Ring): any number of submitters, any number of workers.
//
//	q := ringq.NewRing[Job](4096)
//
//	for range numWorkers {
//	    go func() {
//	        for {
//	            job, err := q.Poll()
//	            if err == nil {
//	                job.Run()
//	            }
//	        }
//	    }()
//	}
//
//	func Submit(j Job) error {
//	    return q.Offer(&j)
//	}
//
// # Bulk transfer
//
// Drain/DrainLimit/DrainWait move many elements to a [Sink] in one call;
// Fill/FillLimit/FillWait pull many elements from a [Supplier] and offer
// them. Fill is unsupported on Ring (ErrUnsupported): on a strict bounded
// MPMC queue, a failed Offer partway through a fill batch would discard
// an already-fetched supplied element with no way to put it back. SPSC
// and SPMC support Fill because their single producer can never race a
// second producer's offer the way Ring's could.
//
// # Error handling
//
// Queues return [ErrWouldBlock] when an operation cannot proceed
// immediately. It is sourced from [code.hybscloud.com/iox] for ecosystem
// consistency and is a control flow signal, not a failure:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Offer(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !ringq.IsWouldBlock(err) {
//	        return err // programming error: ErrInvalidElement
//	    }
//	    backoff.Wait()
//	}
//
// [IsWouldBlock], [IsSemantic], and [IsNonFailure] classify an error
// without a type switch; all three delegate to the matching iox helper.
//
// # Capacity
//
// Bounded queues round capacity up to the next power of two and panic
// with [ErrInvalidCapacity] below 2:
//
//	q := ringq.NewRing[int](3)    // actual capacity: 4
//	q := ringq.NewRing[int](1000) // actual capacity: 1024
//
// Linked reports [Unbounded] instead of a fixed capacity.
//
// Size is an instantaneous snapshot, not a length in the slice sense —
// under concurrent access it may be stale the instant it's returned.
// It exists for monitoring and load shedding, never for correctness
// decisions (check Offer/Poll's own return value for that).
//
// # Thread safety
//
// Operations are safe only within the cardinality a type advertises:
//
//   - Ring:   any number of producers, any number of consumers
//   - SPSC:   exactly one producer goroutine, one consumer goroutine
//   - SPMC:   exactly one producer goroutine, any number of consumers
//   - Linked: any number of producers, exactly one consumer goroutine
//
// Violating a type's cardinality (e.g. two producers on SPSC) is a data
// race, not a checked error.
//
// # Race detection
//
// Go's race detector tracks explicit synchronization (mutex, channel,
// WaitGroup) but not the acquire-release orderings these queues use
// directly on atomic fields, so it can report false positives on
// otherwise-correct lock-free code. Tests affected by this are gated
// behind the RaceEnabled constant (//go:build race / !race) and skip
// themselves when the detector is active.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomics with explicit memory ordering,
// and [code.hybscloud.com/spin] for CAS-retry backoff.
package ringq
