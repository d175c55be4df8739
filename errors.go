// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Offer/RelaxedOffer: the queue is full (backpressure).
// For Poll/Peek/RelaxedPoll/RelaxedPeek: the queue is empty (no data
// available).
//
// ErrWouldBlock is a control flow signal, not a failure: a strict Offer
// returns it if and only if the queue is actually full at that instant,
// and a strict Poll/Peek returns it if and only if the queue is actually
// empty. Relaxed variants may return it spuriously under contention. The
// caller should retry (with backoff or yield) rather than propagate it.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Offer(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if ringq.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err // programming error: ErrInvalidElement
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidElement is returned by Offer/RelaxedOffer when the supplied
// element pointer is nil. Null elements are never stored; nil is reserved
// to let Poll/Peek signal absence via ErrWouldBlock.
var ErrInvalidElement = errors.New("ringq: invalid element: nil")

// ErrInvalidCapacity is the value constructors panic with when capacity
// is below the minimum of 2. It is a programming error, raised eagerly
// and never retried — there is no sensible "would block" meaning for a
// malformed construction request.
var ErrInvalidCapacity = errors.New("ringq: invalid capacity: must be >= 2")

// ErrUnsupported is returned by Fill/FillLimit/FillWait on strict bounded
// MPMC queues (Ring). A bulk offer loop driven by a Supplier cannot be
// synthesized safely there: if an Offer inside the loop fails, the
// already-fetched supplied element would be silently discarded. Ring
// keeps this restriction rather than invent a lossy bulk form.
var ErrUnsupported = errors.New("ringq: unsupported operation")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
