package chanflow

import (
	"sync"

	"github.com/joeycumines/go-chanflow/internal/ringslot"
)

// broadcastRing implements the SPMC flavor (spec.md §4.2 table, row
// BroadcastRing; detailed semantics in §4.2 "Broadcast ring"). Fixed
// power-of-two capacity slots, monotonic writeSeq; each subscriber owns a
// cursor (spec.md §9 "Broadcast subscription as a cursor"), the ring keeps
// the set of live cursors, and each cursor holds its own outstanding
// pop-waiter.
//
// Unlike the other flavors, broadcastRing is not itself reached through
// the ChannelBuffer interface (its reader side is per-subscriber, not
// single-buffer): NewBroadcast wires a *broadcastRing directly into
// BroadcastReceiver handles instead of going through ChannelCore's
// single-buffer ops mixin.
type broadcastRing[T any] struct {
	mu       sync.Mutex
	ring     *ringslot.Ring[T]
	writeSeq uint64
	closed   bool
	subs     map[*broadcastCursor[T]]struct{}
}

// broadcastCursor is a subscriber's read position (spec.md §3), shared by
// pointer between the subscriber's handle and the ring's cursor set.
type broadcastCursor[T any] struct {
	seq   uint64
	ring  *broadcastRing[T]
	mu    sync.Mutex
	popW  *popWaiter[T] // outstanding waiter, if any, keyed by this cursor
}

func newBroadcastRing[T any](capacity int) *broadcastRing[T] {
	return &broadcastRing[T]{
		ring: ringslot.New[T](nextPowerOfTwo(capacity)),
		subs: make(map[*broadcastCursor[T]]struct{}),
	}
}

// Publish writes v at the next sequence, overwriting the oldest slot if
// the ring is full, and wakes every subscriber waiting for data.
func (r *broadcastRing[T]) Publish(v T) {
	r.mu.Lock()
	seq := r.writeSeq
	r.ring.WriteAt(seq, v)
	r.writeSeq++
	subs := make([]*broadcastCursor[T], 0, len(r.subs))
	for c := range r.subs {
		subs = append(subs, c)
	}
	r.mu.Unlock()

	for _, c := range subs {
		c.wake()
	}
}

func (r *broadcastRing[T]) Close() {
	r.mu.Lock()
	r.closed = true
	subs := make([]*broadcastCursor[T], 0, len(r.subs))
	for c := range r.subs {
		subs = append(subs, c)
	}
	r.mu.Unlock()
	for _, c := range subs {
		c.wake()
	}
}

// Subscribe creates a new cursor. replay requests up to replay
// already-published items be visible before live delivery, never reaching
// back past the oldest live slot: startSeq = max(0, writeSeq - replay,
// writeSeq - cap).
func (r *broadcastRing[T]) Subscribe(replay int) *broadcastCursor[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	cap64 := uint64(r.ring.Cap())
	start := r.writeSeq
	if replay > 0 {
		back := uint64(replay)
		if back > r.writeSeq {
			back = r.writeSeq
		}
		start = r.writeSeq - back
	}
	floor := uint64(0)
	if r.writeSeq > cap64 {
		floor = r.writeSeq - cap64
	}
	if start < floor {
		start = floor
	}
	c := &broadcastCursor[T]{seq: start, ring: r}
	r.subs[c] = struct{}{}
	return c
}

// Unsubscribe removes a cursor from the ring's waiter table (spec.md §9).
func (r *broadcastRing[T]) Unsubscribe(c *broadcastCursor[T]) {
	r.mu.Lock()
	delete(r.subs, c)
	r.mu.Unlock()
	c.mu.Lock()
	w := c.popW
	c.popW = nil
	c.mu.Unlock()
	if w != nil {
		w.cancel()
	}
}

// wake resolves the cursor's outstanding waiter, if any, by retrying
// tryReceive.
func (c *broadcastCursor[T]) wake() {
	c.mu.Lock()
	w := c.popW
	c.mu.Unlock()
	if w == nil {
		return
	}
	res, ok := c.ring.tryReceive(c)
	if !ok {
		return
	}
	c.mu.Lock()
	if c.popW == w {
		c.popW = nil
	}
	c.mu.Unlock()
	if res.Kind == RecvDisconnected {
		w.fail(nil)
	} else {
		w.resolve(res.Value)
	}
}

// tryReceive implements spec.md §4.2's tryReceive(cursor) algorithm.
func (r *broadcastRing[T]) tryReceive(c *broadcastCursor[T]) (RecvResult[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cap64 := uint64(r.ring.Cap())
	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()

	if r.writeSeq > cap64 && seq < r.writeSeq-cap64 {
		// lag recovery: advance to oldest still-live sequence.
		seq = r.writeSeq - cap64
	}

	if seq >= r.writeSeq {
		if r.closed {
			c.mu.Lock()
			c.seq = seq
			c.mu.Unlock()
			return RecvDisconnectedResult[T](), true
		}
		c.mu.Lock()
		c.seq = seq
		c.mu.Unlock()
		return Empty[T](), false
	}

	v := r.ring.ReadAt(seq)
	c.mu.Lock()
	c.seq = seq + 1
	c.mu.Unlock()
	return Received(v), true
}

// TryRecv is the non-blocking fast path used by BroadcastReceiver.TryRecv.
func (c *broadcastCursor[T]) TryRecv() RecvResult[T] {
	res, ok := c.ring.tryReceive(c)
	if !ok {
		return Empty[T]()
	}
	return res
}

// RecvCancelable mirrors spec.md §4.5: fast-path pop returns a ready
// waiter; otherwise registers one that wake() will complete.
func (c *broadcastCursor[T]) RecvCancelable() *popWaiter[T] {
	if res, ok := c.ring.tryReceive(c); ok {
		w := newPopWaiter[T]()
		if res.Kind == RecvDisconnected {
			w.fail(nil)
		} else {
			w.resolve(res.Value)
		}
		return w
	}
	w := newPopWaiter[T]()
	c.mu.Lock()
	c.popW = w
	c.mu.Unlock()
	return w
}

// CancelWaiter removes the cursor's current waiter, if it is w, and marks
// it canceled.
func (c *broadcastCursor[T]) CancelWaiter(w *popWaiter[T]) {
	c.mu.Lock()
	if c.popW == w {
		c.popW = nil
	}
	c.mu.Unlock()
	w.cancel()
}

// Seq reports the cursor's current read position, for tests verifying
// spec.md §8 property 9 (monotonic advance except across lag).
func (c *broadcastCursor[T]) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}
