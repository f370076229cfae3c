package chanflow

import (
	"context"
	"iter"
	"time"
)

// Sender is the write handle produced by every channel constructor (spec.md
// §4.4 "Handles"). Flavors that allow multiple concurrent producers expose
// Clone; single-sender flavors (SRSW ring, Promise) leave activeSenders
// capped at one by the embedded lifecycle, so a second Clone/attach call
// observes ErrSingleSender instead of silently succeeding.
type Sender[T any] struct {
	core *ChannelCore[T]
}

// Send blocks until the value is accepted, the context is canceled, or the
// channel disconnects.
func (s Sender[T]) Send(ctx context.Context, v T) SendResult { return s.core.Send(ctx, v) }

// TrySend is the non-blocking variant.
func (s Sender[T]) TrySend(v T) SendResult { return s.core.TrySend(v) }

// Close detaches this sender handle. The underlying channel only becomes
// send-disconnected once every cloned Sender has been closed.
func (s Sender[T]) Close() { s.core.closeSender() }

// Clone attaches a second independent Sender handle to the same channel.
// Returns ErrSingleSender if the flavor disallows multiple producers.
func (s Sender[T]) Clone() (Sender[T], error) {
	if err := s.core.attachSender(); err != nil {
		return Sender[T]{}, err
	}
	return Sender[T]{core: s.core}, nil
}

// SendTimeout blocks until v is accepted, d elapses, or the channel
// disconnects, whichever comes first (spec.md §4.5/§5.12). Self-hosted on
// Select with an OnDelay race arm rather than a parallel timer mechanism.
func (s Sender[T]) SendTimeout(v T, d time.Duration) SendResult {
	res, err := Select(context.Background(),
		OnSend(s, v, func(r SendResult) SendResult { return r }),
		OnDelay(d, func() SendResult { return SendTimedOut() }),
	)
	if err != nil {
		return SendFailure(err)
	}
	return res
}

// SendBatch sends every value in vs in order, stopping at the first one
// that doesn't succeed (spec.md §5.11). Plain Send backpressure already
// chunks delivery by whatever the channel flavor's capacity allows; a
// FlowControlledRemoteConnection additionally chunks by available credit
// since its own Send blocks on credit acquisition per value.
func (s Sender[T]) SendBatch(ctx context.Context, vs []T) error {
	for _, v := range vs {
		if res := s.Send(ctx, v); !res.Ok() {
			return res
		}
	}
	return nil
}

// Receiver is the read handle produced by every channel constructor except
// NewBroadcast, which returns BroadcastReceiver instead (spec.md §4.2:
// broadcast subscribers each own an independent cursor rather than sharing
// one buffer's pop side).
type Receiver[T any] struct {
	core *ChannelCore[T]
}

// Recv blocks until a value is available, the context is canceled, or the
// channel disconnects.
func (r Receiver[T]) Recv(ctx context.Context) RecvResult[T] { return r.core.Recv(ctx) }

// TryRecv is the non-blocking variant.
func (r Receiver[T]) TryRecv() RecvResult[T] { return r.core.TryRecv() }

// RecvCancelable returns a wait function and an independent cancel
// function, for composing into Select (spec.md §4.7).
func (r Receiver[T]) RecvCancelable() (wait func() RecvResult[T], cancel func()) {
	return r.core.RecvCancelable()
}

// Close detaches this receiver handle.
func (r Receiver[T]) Close() { r.core.closeReceiver() }

// Clone attaches a second independent Receiver handle. Returns
// ErrSingleReceiver if the flavor disallows multiple consumers.
func (r Receiver[T]) Clone() (Receiver[T], error) {
	if err := r.core.attachReceiver(); err != nil {
		return Receiver[T]{}, err
	}
	return Receiver[T]{core: r.core}, nil
}

// Len reports the channel's current logical occupancy.
func (r Receiver[T]) Len() int { return r.core.buf.Len() }

// RecvTimeout blocks until a value is available, d elapses, or the channel
// disconnects, whichever comes first (spec.md §4.5/§5.12). Self-hosted on
// Select with an OnDelay race arm rather than a parallel timer mechanism.
func (r Receiver[T]) RecvTimeout(d time.Duration) RecvResult[T] {
	res, err := Select(context.Background(),
		OnRecv(r, func(res RecvResult[T]) RecvResult[T] { return res }),
		OnDelay(d, func() RecvResult[T] { return RecvTimedOut[T]() }),
	)
	if err != nil {
		return RecvFailure[T](err)
	}
	return res
}

// Stream adapts r into a single-subscription iter.Seq (spec.md §5.10); see
// the package-level Stream function for the full behavior this delegates
// to.
func (r Receiver[T]) Stream(ctx context.Context) iter.Seq[RecvResult[T]] {
	return Stream(ctx, r)
}

// RecvBatch drains up to cfg.MaxSize values (spec.md §5.11); see the
// package-level RecvBatch function for the full min/max/partial-timeout
// behavior this delegates to. The returned error is nil for a full or
// partially filled batch and the terminal RecvResult (satisfying error)
// once the channel disconnects, the context is canceled, or the receiver's
// single-subscription slot was already claimed.
func (r Receiver[T]) RecvBatch(ctx context.Context, cfg BatchConfig) ([]T, error) {
	vs, res := RecvBatch[T](ctx, r, cfg)
	if !res.Ok() {
		return vs, res
	}
	return vs, nil
}

// newHandles wires up a fresh ChannelCore and its first Sender/Receiver
// pair, the shape every constructor in channel.go funnels through.
func newHandles[T any](buf ChannelBuffer[T], singleSender, singleReceiver bool, c *config) (Sender[T], Receiver[T]) {
	core := newCore[T](buf, singleSender, singleReceiver, c)
	core.life.activeSenders = 1
	core.life.activeReceivers = 1
	return Sender[T]{core: core}, Receiver[T]{core: core}
}
