package chanflow

import (
	"context"
	"sync"
)

// BroadcastSender is the write handle for a broadcast channel. Every
// published value is delivered independently to each live subscriber's
// cursor (spec.md §4.2).
type BroadcastSender[T any] struct {
	ring *broadcastRing[T]
	life *lifecycle
}

func (s BroadcastSender[T]) Send(v T) SendResult {
	if s.life.sendDisconnected() {
		return SendDisconnectedResult()
	}
	s.ring.Publish(v)
	return Sent()
}

func (s BroadcastSender[T]) Close() {
	if s.life.detachSender() {
		s.ring.Close()
	}
}

// BroadcastReceiver is a single subscriber's view of a broadcast channel,
// backed by its own cursor (spec.md §9 "Broadcast subscription as a
// cursor"). Distinct from Receiver[T] because there is no shared pop side
// to clone — Subscribe on BroadcastSender's originating channel creates an
// independent subscriber instead.
type BroadcastReceiver[T any] struct {
	cursor *broadcastCursor[T]
	ring   *broadcastRing[T]
	life   *lifecycle
}

func (r BroadcastReceiver[T]) TryRecv() RecvResult[T] {
	if r.life.receiversClosed() {
		return RecvDisconnectedResult[T]()
	}
	return r.cursor.TryRecv()
}

func (r BroadcastReceiver[T]) Recv(ctx context.Context) RecvResult[T] {
	if r.life.receiversClosed() {
		return RecvDisconnectedResult[T]()
	}
	w := r.cursor.RecvCancelable()
	select {
	case <-w.done:
		return w.outcome()
	case <-ctx.Done():
		r.cursor.CancelWaiter(w)
		return RecvFailure[T](ctx.Err())
	}
}

func (r BroadcastReceiver[T]) RecvCancelable() (wait func() RecvResult[T], cancel func()) {
	w := r.cursor.RecvCancelable()
	return w.wait, func() { r.cursor.CancelWaiter(w) }
}

// Close detaches this subscriber from the broadcast channel.
func (r BroadcastReceiver[T]) Close() {
	r.ring.Unsubscribe(r.cursor)
	r.life.detachReceiver()
}

// broadcastChannel is the shared state a BroadcastSender and its
// subscribers reference; NewBroadcast returns a sender plus a Subscribe
// closure rather than a fixed receiver count, since subscriber count is
// unbounded and dynamic for this flavor.
type broadcastChannel[T any] struct {
	mu   sync.Mutex
	ring *broadcastRing[T]
	life lifecycle
}

// NewBroadcast creates a fan-out channel (spec.md §4.2, SPMC/broadcast
// flavor). Capacity (power-of-two rounded) bounds how far a slow subscriber
// can lag before it observes a jump (spec.md §4.2 "lag recovery"). The
// returned Subscribe function creates independent BroadcastReceiver handles;
// Replay(n) on a call to Subscribe requests up to n already-published items.
func NewBroadcast[T any](opts ...Option) (sender BroadcastSender[T], subscribe func(...Option) (BroadcastReceiver[T], error), err error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return BroadcastSender[T]{}, nil, err
	}
	cap := c.capacity
	if !c.capacitySet || cap <= 0 {
		cap = 256
	}
	bc := &broadcastChannel[T]{ring: newBroadcastRing[T](cap)}
	bc.life.activeSenders = 1

	sender = BroadcastSender[T]{ring: bc.ring, life: &bc.life}
	subscribe = func(subOpts ...Option) (BroadcastReceiver[T], error) {
		sc, err := resolveOptions(append(opts, subOpts...))
		if err != nil {
			return BroadcastReceiver[T]{}, err
		}
		bc.mu.Lock()
		defer bc.mu.Unlock()
		if bc.life.receiversClosed() {
			return BroadcastReceiver[T]{}, ErrClosed
		}
		bc.life.activeReceivers++
		cursor := bc.ring.Subscribe(sc.replay)
		return BroadcastReceiver[T]{cursor: cursor, ring: bc.ring, life: &bc.life}, nil
	}
	return sender, subscribe, nil
}
