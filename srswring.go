package chanflow

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-chanflow/internal/ringslot"
)

// srswBuffer implements the single-reader-single-writer ring flavor
// (spec.md §4.2 table, row SRSW ring): fixed power-of-two capacity, TryPush
// fails with Full when at capacity, FIFO ordering. Every push, pop and
// waiter registration runs under one mutex (see the mu field); only the
// occupancy count is an atomic, so Len reads it without taking the lock.
type srswBuffer[T any] struct {
	ring *ringslot.Ring[T]
	// mu serializes TryPush/TryPop against each other and against
	// waiter registration. A true lock-free SPSC ring needs no mutex at
	// all between its single producer and single consumer, but chanflow's
	// ChannelBuffer contract is also invoked from the Select engine and
	// from Close, which are not guaranteed to run on the producer/consumer
	// goroutines — so mutual exclusion is kept, and the "lock-free
	// friendly" property is satisfied by never blocking inside the lock.
	mu       sync.Mutex
	popWait  waiterQueue[T]
	pushWait pushWaiterSet
	len      atomic.Int64
}

func newSRSWBuffer[T any](capacity int) *srswBuffer[T] {
	cap2 := nextPowerOfTwo(capacity)
	return &srswBuffer[T]{ring: ringslot.New[T](cap2)}
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (b *srswBuffer[T]) TryPush(v T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w := b.popWait.popOne(); w != nil {
		w.resolve(v)
		return true
	}
	if !b.ring.TryPush(v) {
		return false
	}
	b.len.Add(1)
	return true
}

func (b *srswBuffer[T]) TryPop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tryPopLocked()
}

func (b *srswBuffer[T]) tryPopLocked() (T, bool) {
	v, ok := b.ring.TryPop()
	if !ok {
		var zero T
		return zero, false
	}
	b.len.Add(-1)
	b.pushWait.popOneWake()
	return v, true
}

func (b *srswBuffer[T]) TryPopMany(max int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, 0, max)
	for len(out) < max {
		v, ok := b.tryPopLocked()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func (b *srswBuffer[T]) AddPopWaiter() *popWaiter[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.tryPopLocked(); ok {
		w := newPopWaiter[T]()
		w.resolve(v)
		return w
	}
	w := newPopWaiter[T]()
	b.popWait.push(w)
	return w
}

func (b *srswBuffer[T]) RemovePopWaiter(w *popWaiter[T]) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.popWait.remove(w)
}

func (b *srswBuffer[T]) AddPushWaiter() *pushWaiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := newPushWaiter()
	if !b.ring.Full() {
		w.resolve()
		return w
	}
	b.pushWait.push(w)
	return w
}

func (b *srswBuffer[T]) RemovePushWaiter(w *pushWaiter) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pushWait.remove(w)
}

func (b *srswBuffer[T]) ConsumePushPermit() {}

func (b *srswBuffer[T]) WakeAllPushWaiters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushWait.wakeAll()
}

func (b *srswBuffer[T]) FailAllPopWaiters(err error) {
	b.mu.Lock()
	waiters := b.popWait.drainAll()
	b.mu.Unlock()
	for _, w := range waiters {
		w.fail(err)
	}
}

func (b *srswBuffer[T]) Len() int { return int(b.len.Load()) }

func (b *srswBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring.Clear()
	b.len.Store(0)
}
