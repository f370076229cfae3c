// Package ringslot provides a fixed-capacity, power-of-two masked ring
// buffer. It is grounded on the masking technique in
// github.com/joeycumines/go-catrate's internal ringBuffer (catrate/ring.go)
// but specialized to a fixed capacity (no growth): chanflow's SRSW ring,
// the "hot" lane of the chunked buffer, and the broadcast ring all need a
// buffer that never reallocates once sized, trading catrate's dynamic
// insert/search for plain push/pop at the head and tail.
package ringslot

// Ring is a fixed-capacity circular buffer. Capacity must be a power of
// two. The zero value is not usable; construct with New.
type Ring[T any] struct {
	slots []T
	mask  uint64
	r, w  uint64
}

// New constructs a Ring with the given capacity, which must be a power of
// two greater than zero.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ringslot: capacity must be a power of 2")
	}
	return &Ring[T]{
		slots: make([]T, capacity),
		mask:  uint64(capacity - 1),
	}
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.slots) }

// Len returns the number of currently occupied slots.
func (r *Ring[T]) Len() int { return int(r.w - r.r) }

// Full reports whether the ring has no free slots.
func (r *Ring[T]) Full() bool { return r.Len() == len(r.slots) }

// Empty reports whether the ring has no occupied slots.
func (r *Ring[T]) Empty() bool { return r.r == r.w }

// TryPush writes v to the tail slot. Returns false if the ring is full.
func (r *Ring[T]) TryPush(v T) bool {
	if r.Full() {
		return false
	}
	r.slots[r.w&r.mask] = v
	r.w++
	return true
}

// TryPop removes and returns the head slot. The second return is false if
// the ring is empty.
func (r *Ring[T]) TryPop() (T, bool) {
	var zero T
	if r.Empty() {
		return zero, false
	}
	idx := r.r & r.mask
	v := r.slots[idx]
	r.slots[idx] = zero
	r.r++
	return v, true
}

// Peek returns the head slot without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	var zero T
	if r.Empty() {
		return zero, false
	}
	return r.slots[r.r&r.mask], true
}

// WriteAt overwrites the slot at absolute sequence number seq, used by the
// broadcast ring which writes unconditionally (overwriting the oldest
// entry) rather than failing when full. Advances the write cursor to seq+1
// if seq is at or past it.
func (r *Ring[T]) WriteAt(seq uint64, v T) {
	r.slots[seq&r.mask] = v
	if seq >= r.w {
		r.w = seq + 1
	}
	if r.w-r.r > uint64(len(r.slots)) {
		r.r = r.w - uint64(len(r.slots))
	}
}

// ReadAt returns the slot at absolute sequence number seq without any
// cursor bookkeeping; the caller (BroadcastRing) owns sequence validity.
func (r *Ring[T]) ReadAt(seq uint64) T {
	return r.slots[seq&r.mask]
}

// DrainInto pops up to max elements in FIFO order, appending to dst.
func (r *Ring[T]) DrainInto(dst []T, max int) []T {
	n := 0
	for n < max {
		v, ok := r.TryPop()
		if !ok {
			break
		}
		dst = append(dst, v)
		n++
	}
	return dst
}

// Clear resets the ring to empty, zeroing retained slots for GC.
func (r *Ring[T]) Clear() {
	var zero T
	for r.r != r.w {
		r.slots[r.r&r.mask] = zero
		r.r++
	}
	r.r, r.w = 0, 0
}
