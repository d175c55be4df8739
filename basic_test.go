// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq_test

import (
	"errors"
	"testing"

	"github.com/tanagra-labs/ringq"
)

// =============================================================================
// Basic round-trip operations
// =============================================================================

func TestRingBasic(t *testing.T) {
	q := ringq.NewRing[int](3)

	if q.Capacity() != 4 {
		t.Fatalf("Capacity: got %d, want 4", q.Capacity())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Offer(&v); err != nil {
			t.Fatalf("Offer(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Offer(&v); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Offer on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Poll()
		if err != nil {
			t.Fatalf("Poll(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Poll(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Poll(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Poll on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestSPSCBasic(t *testing.T) {
	q := ringq.NewSPSC[int](3)

	if q.Capacity() != 4 {
		t.Fatalf("Capacity: got %d, want 4", q.Capacity())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Offer(&v); err != nil {
			t.Fatalf("Offer(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Offer(&v); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Offer on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Poll()
		if err != nil {
			t.Fatalf("Poll(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Poll(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Poll(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Poll on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestSPMCBasic(t *testing.T) {
	q := ringq.NewSPMC[int](3)

	if q.Capacity() != 4 {
		t.Fatalf("Capacity: got %d, want 4", q.Capacity())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Offer(&v); err != nil {
			t.Fatalf("Offer(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Offer(&v); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Offer on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Poll()
		if err != nil {
			t.Fatalf("Poll(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Poll(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Poll(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Poll on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestLinkedBasic(t *testing.T) {
	q := ringq.NewLinked[int]()

	if q.Capacity() != ringq.Unbounded {
		t.Fatalf("Capacity: got %d, want Unbounded", q.Capacity())
	}

	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}

	for i := range 10000 {
		v := i
		if err := q.Offer(&v); err != nil {
			t.Fatalf("Offer(%d): %v", i, err)
		}
	}

	for i := range 10000 {
		val, err := q.Poll()
		if err != nil {
			t.Fatalf("Poll(%d): %v", i, err)
		}
		if val != i {
			t.Fatalf("Poll(%d): got %d, want %d", i, val, i)
		}
	}

	if _, err := q.Poll(); !errors.Is(err, ringq.ErrWouldBlock) {
		t.Fatalf("Poll on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestOfferNilElement(t *testing.T) {
	r := ringq.NewRing[int](4)
	if err := r.Offer(nil); !errors.Is(err, ringq.ErrInvalidElement) {
		t.Fatalf("Offer(nil): got %v, want ErrInvalidElement", err)
	}

	l := ringq.NewLinked[int]()
	if err := l.Offer(nil); !errors.Is(err, ringq.ErrInvalidElement) {
		t.Fatalf("Offer(nil) on Linked: got %v, want ErrInvalidElement", err)
	}
}

func TestNewInvalidCapacityPanics(t *testing.T) {
	cases := []func(){
		func() { ringq.NewRing[int](1) },
		func() { ringq.NewSPSC[int](0) },
		func() { ringq.NewSPMC[int](-1) },
	}
	for i, fn := range cases {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("case %d: expected panic", i)
				}
				if !errors.Is(r.(error), ringq.ErrInvalidCapacity) {
					t.Fatalf("case %d: got %v, want ErrInvalidCapacity", i, r)
				}
			}()
			fn()
		}()
	}
}

func TestCapacityRoundsToPowerOfTwo(t *testing.T) {
	cases := []struct{ in, want int }{
		{2, 2}, {3, 4}, {4, 4}, {1000, 1024}, {1024, 1024},
	}
	for _, c := range cases {
		if got := ringq.NewRing[int](c.in).Capacity(); got != c.want {
			t.Errorf("NewRing(%d).Capacity() = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := ringq.NewRing[int](4)
	v := 7
	if err := q.Offer(&v); err != nil {
		t.Fatal(err)
	}

	if got, err := q.Peek(); err != nil || got != 7 {
		t.Fatalf("Peek: got (%d, %v), want (7, nil)", got, err)
	}
	if got, err := q.Peek(); err != nil || got != 7 {
		t.Fatalf("second Peek: got (%d, %v), want (7, nil)", got, err)
	}
	if got, err := q.Poll(); err != nil || got != 7 {
		t.Fatalf("Poll after Peek: got (%d, %v), want (7, nil)", got, err)
	}
}

func TestSizeAndIsEmpty(t *testing.T) {
	q := ringq.NewRing[int](8)
	if !q.IsEmpty() || q.Size() != 0 {
		t.Fatalf("new queue: IsEmpty=%v Size=%d, want true 0", q.IsEmpty(), q.Size())
	}

	for i := range 3 {
		v := i
		if err := q.Offer(&v); err != nil {
			t.Fatal(err)
		}
	}
	if q.IsEmpty() || q.Size() != 3 {
		t.Fatalf("after 3 offers: IsEmpty=%v Size=%d, want false 3", q.IsEmpty(), q.Size())
	}
}
