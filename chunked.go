package chanflow

import (
	"sync"

	"github.com/joeycumines/go-chanflow/internal/ringslot"
)

// Chunked buffer tuning constants (spec.md §4.2 "Chunked buffer").
const (
	chunkedHotCapacity = 256 // power of two
	chunkedChunkSize   = 256 // power of two
	chunkedThresholdDiv = 4  // rebalance once hot ring drops below capacity/thresholdDiv
	chunkedRebalanceBatch = 64
	chunkedGateDiv        = 4 // head chunk must still hold chunkSize/gateDiv items to donate
)

// chunkedBuffer implements the burst-tolerant unbounded flavor (spec.md
// §4.2 table, row Chunked): a power-of-two "hot" ring absorbs steady-state
// traffic; on overflow, pushes append to a tail chunk (another power-of-two
// mini-ring), and a new chunk is appended when the tail fills. Pops drain
// the hot ring first, then the head chunk. The rebalance rule moves items
// from the head chunk back into the hot ring once it has room, gated so
// small backlogs don't thrash (spec.md §4.2).
//
// Grounded on eventloop.ChunkedIngress's two-tier design (a fast ring plus
// chunked overflow for burst absorption under a single mutex), adapted
// here to the FIFO pop/push contract instead of ingress's
// drain-everything batching.
type chunkedBuffer[T any] struct {
	mu       sync.Mutex
	hot      *ringslot.Ring[T]
	chunks   []*ringslot.Ring[T] // chunks[0] is the head (oldest)
	popWait  waiterQueue[T]
	pushWait pushWaiterSet
}

func newChunkedBuffer[T any]() *chunkedBuffer[T] {
	return &chunkedBuffer[T]{hot: ringslot.New[T](chunkedHotCapacity)}
}

func (b *chunkedBuffer[T]) TryPush(v T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w := b.popWait.popOne(); w != nil {
		w.resolve(v)
		return true
	}
	if len(b.chunks) == 0 && b.hot.TryPush(v) {
		return true
	}
	b.pushToChunks(v)
	return true
}

func (b *chunkedBuffer[T]) pushToChunks(v T) {
	if len(b.chunks) == 0 || b.chunks[len(b.chunks)-1].Full() {
		b.chunks = append(b.chunks, ringslot.New[T](chunkedChunkSize))
	}
	tail := b.chunks[len(b.chunks)-1]
	if !tail.TryPush(v) {
		// shouldn't happen given the Full check above, but stay total.
		b.chunks = append(b.chunks, ringslot.New[T](chunkedChunkSize))
		b.chunks[len(b.chunks)-1].TryPush(v)
	}
}

func (b *chunkedBuffer[T]) TryPop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tryPopLocked()
}

func (b *chunkedBuffer[T]) tryPopLocked() (T, bool) {
	if v, ok := b.hot.TryPop(); ok {
		b.pushWait.popOneWake()
		b.maybeRebalance()
		return v, true
	}
	if len(b.chunks) > 0 {
		head := b.chunks[0]
		if v, ok := head.TryPop(); ok {
			if head.Empty() {
				b.chunks = b.chunks[1:]
			}
			b.pushWait.popOneWake()
			return v, true
		}
	}
	var zero T
	return zero, false
}

// maybeRebalance implements spec.md §4.2's rebalancing rule: after a pop
// empties the hot ring below capacity/thresholdDiv, move up to
// rebalanceBatch items from the head chunk into the hot ring, but only
// while the head chunk still holds at least chunkSize/gateDiv items.
func (b *chunkedBuffer[T]) maybeRebalance() {
	if len(b.chunks) == 0 {
		return
	}
	if b.hot.Len() >= chunkedHotCapacity/chunkedThresholdDiv {
		return
	}
	head := b.chunks[0]
	if head.Len() < chunkedChunkSize/chunkedGateDiv {
		return
	}
	moved := 0
	for moved < chunkedRebalanceBatch && !b.hot.Full() {
		v, ok := head.TryPop()
		if !ok {
			break
		}
		if !b.hot.TryPush(v) {
			// hot ring filled mid-move: this item must go back to the
			// front of the head chunk conceptually, but since chunks are
			// FIFO rings without a push-front op, push it to a temporary
			// buffer ring at the new chunk head instead.
			b.chunks[0] = prependRing(head, v)
			break
		}
		moved++
	}
	if head.Empty() && len(b.chunks) > 0 && b.chunks[0] == head {
		b.chunks = b.chunks[1:]
	}
}

// prependRing rebuilds a ring with v restored at the front, followed by
// whatever remained in old. Only hit on the rare race where the hot ring
// fills mid-rebalance; correctness over throughput here.
func prependRing[T any](old *ringslot.Ring[T], v T) *ringslot.Ring[T] {
	remaining := old.DrainInto(nil, old.Len())
	nr := ringslot.New[T](chunkedChunkSize)
	nr.TryPush(v)
	for _, x := range remaining {
		nr.TryPush(x)
	}
	return nr
}

func (b *chunkedBuffer[T]) TryPopMany(max int) []T {
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

func (b *chunkedBuffer[T]) AddPopWaiter() *popWaiter[T] {
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

func (b *chunkedBuffer[T]) RemovePopWaiter(w *popWaiter[T]) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.popWait.remove(w)
}

func (b *chunkedBuffer[T]) AddPushWaiter() *pushWaiter {
	w := newPushWaiter()
	w.resolve() // unbounded: never blocks
	return w
}

func (b *chunkedBuffer[T]) RemovePushWaiter(*pushWaiter) bool { return false }

func (b *chunkedBuffer[T]) ConsumePushPermit() {}

func (b *chunkedBuffer[T]) WakeAllPushWaiters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushWait.wakeAll()
}

func (b *chunkedBuffer[T]) FailAllPopWaiters(err error) {
	b.mu.Lock()
	waiters := b.popWait.drainAll()
	b.mu.Unlock()
	for _, w := range waiters {
		w.fail(err)
	}
}

func (b *chunkedBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.hot.Len()
	for _, c := range b.chunks {
		n += c.Len()
	}
	return n
}

func (b *chunkedBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hot.Clear()
	b.chunks = nil
}
