// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ringq

// Builder selects a concrete bounded Queue implementation from a
// capacity and a pair of producer/consumer cardinality constraints,
// rather than requiring the caller to name Ring/SPSC/SPMC directly.
type Builder struct {
	capacity       int
	singleProducer bool
	singleConsumer bool
}

// NewBuilder starts a Builder for a bounded queue of the given capacity.
// Defaults to multi-producer multi-consumer (Ring) until narrowed by
// SingleProducer/SingleConsumer.
func NewBuilder(capacity int) *Builder {
	return &Builder{capacity: capacity}
}

// SingleProducer declares that only one goroutine will ever call Offer.
func (b *Builder) SingleProducer() *Builder {
	b.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will ever call Poll.
func (b *Builder) SingleConsumer() *Builder {
	b.singleConsumer = true
	return b
}

// Build constructs the bounded queue implied by b's constraints:
//
//	single producer + single consumer -> SPSC
//	single producer + multi  consumer -> SPMC
//	multi  producer + single consumer -> Ring (no dedicated MPSC ring;
//	                                      see BuildLinked for unbounded MPSC)
//	multi  producer + multi  consumer -> Ring
//
// Panics with ErrInvalidCapacity if the builder's capacity is below 2.
func Build[T any](b *Builder) Queue[T] {
	switch {
	case b.singleProducer && b.singleConsumer:
		return NewSPSC[T](b.capacity)
	case b.singleProducer && !b.singleConsumer:
		return NewSPMC[T](b.capacity)
	default:
		return NewRing[T](b.capacity)
	}
}

// BuildLinked constructs the unbounded MPSC queue. b's capacity and
// SingleConsumer are ignored: Linked is always unbounded and always
// single-consumer; SingleProducer has no effect either, since Linked
// already supports any number of producers.
func BuildLinked[T any](_ *Builder) Queue[T] {
	return NewLinked[T]()
}
