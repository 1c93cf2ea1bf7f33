package stagedef

// Ref is a nullable reference to one element of an arena pool of T.
// The zero Ref is absent.
type Ref[T any] struct {
	slot uint32 // index+1
}

// RefTo returns a reference to pool element i.
func RefTo[T any](i int) Ref[T] {
	return Ref[T]{slot: uint32(i) + 1}
}

// IsNil reports whether the reference is absent.
func (r Ref[T]) IsNil() bool { return r.slot == 0 }

// Index returns the pool index, or -1 when absent.
func (r Ref[T]) Index() int { return int(r.slot) - 1 }

// Get returns the referenced element of pool, or nil when absent.
func (r Ref[T]) Get(pool []T) *T {
	if r.slot == 0 || int(r.slot) > len(pool) {
		return nil
	}
	return &pool[r.slot-1]
}

// Span is a contiguous run of elements in an arena pool of T.
// Empty spans are always the zero Span.
type Span[T any] struct {
	Start uint32
	Count uint32
}

// SpanOf returns the span [start, start+count), normalising empty spans.
func SpanOf[T any](start, count int) Span[T] {
	if count == 0 {
		return Span[T]{}
	}
	return Span[T]{Start: uint32(start), Count: uint32(count)}
}

// Len returns the number of elements.
func (s Span[T]) Len() int { return int(s.Count) }

// Of returns the elements of pool covered by the span.
func (s Span[T]) Of(pool []T) []T {
	if s.Count == 0 {
		return nil
	}
	return pool[s.Start : s.Start+s.Count : s.Start+s.Count]
}

// At returns a reference to the i-th element of the span.
func (s Span[T]) At(i int) Ref[T] {
	if i < 0 || i >= int(s.Count) {
		return Ref[T]{}
	}
	return RefTo[T](int(s.Start) + i)
}

// end returns the exclusive end index.
func (s Span[T]) end() uint64 { return uint64(s.Start) + uint64(s.Count) }
