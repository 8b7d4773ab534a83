// Package ring provides a fixed-capacity FIFO that overwrites its oldest
// entry when full.
package ring

// Buffer is a ring buffer of T.
// Not safe for concurrent use; the caller synchronizes.
type Buffer[T any] struct {
	buf   []T
	head  int // next write position
	count int
}

// New creates a Buffer holding at most capacity items. capacity must be > 0.
func New[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{buf: make([]T, capacity)}
}

// Push appends v. If the buffer is full the oldest item is overwritten and
// Push returns true.
func (r *Buffer[T]) Push(v T) (dropped bool) {
	capacity := len(r.buf)
	r.buf[r.head] = v
	r.head = (r.head + 1) % capacity
	if r.count == capacity {
		// head was pointing at the oldest item, which is now gone
		return true
	}
	r.count++
	return false
}

// Pop removes and returns the oldest item.
func (r *Buffer[T]) Pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	i := r.oldest()
	v := r.buf[i]
	r.buf[i] = zero
	r.count--
	return v, true
}

// DrainAll removes and returns all items, oldest first. Returns nil if empty.
func (r *Buffer[T]) DrainAll() []T {
	if r.count == 0 {
		return nil
	}

	var zero T
	result := make([]T, r.count)
	start := r.oldest()
	for i := range result {
		idx := (start + i) % len(r.buf)
		result[i] = r.buf[idx]
		r.buf[idx] = zero
	}

	r.count = 0
	r.head = 0
	return result
}

// Len returns the number of buffered items.
func (r *Buffer[T]) Len() int {
	return r.count
}

// Cap returns the buffer capacity.
func (r *Buffer[T]) Cap() int {
	return len(r.buf)
}

// Oldest item is at (head - count) mod capacity.
func (r *Buffer[T]) oldest() int {
	return (r.head - r.count + len(r.buf)) % len(r.buf)
}
