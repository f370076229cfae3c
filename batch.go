package chanflow

import (
	"context"
	"time"
)

// BatchConfig configures RecvBatch. The zero value selects the documented
// defaults. Grounded on longpoll.ChannelConfig's three-phase shape: wait for
// MinSize (or the first value, if PartialTimeout applies), then top up to
// MaxSize opportunistically before returning.
type BatchConfig struct {
	// MaxSize is the hard cap on values returned. A value <= 0 selects the
	// default of 64.
	MaxSize int
	// MinSize is the target minimum before PartialTimeout forces an early
	// return with fewer values. Defaults to 1.
	MinSize int
	// PartialTimeout bounds how long RecvBatch waits for MinSize values
	// once the first value has arrived, before returning whatever it has.
	// Defaults to 10ms.
	PartialTimeout time.Duration
}

// RecvBatch drains up to MaxSize values from r, blocking for the first
// value, then waiting up to PartialTimeout for the batch to reach MinSize
// before returning early with a partial batch. It returns RecvDisconnected
// once the channel disconnects with nothing pending, or whatever was
// accumulated so far if disconnection happens mid-batch. Grounded on
// longpoll.Channel's min/max/partial-timeout drain loop, adapted from a
// callback-driven API to a direct slice return (spec.md §5.11, new in this
// module's expanded scope). Calling RecvBatch (or Stream) a second time on
// the same receiver claims spec.md §3/§4.4's single-subscription slot a
// second time, which fails immediately with ErrAlreadyConsumed.
func RecvBatch[T any](ctx context.Context, r Receiver[T], cfg BatchConfig) ([]T, RecvResult[T]) {
	if !r.core.beginSubscription() {
		return nil, RecvFailure[T](ErrAlreadyConsumed)
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 64
	}
	minSize := cfg.MinSize
	if minSize <= 0 {
		minSize = 1
	}
	partialTimeout := cfg.PartialTimeout
	if partialTimeout <= 0 {
		partialTimeout = 10 * time.Millisecond
	}

	out := make([]T, 0, maxSize)

	first := r.Recv(ctx)
	if !first.Ok() {
		return out, first
	}
	out = append(out, first.Value)

	if len(out) >= maxSize || len(out) >= minSize {
		return drainNonBlocking(r, out, maxSize), Received(first.Value)
	}

	timer := time.NewTimer(partialTimeout)
	defer timer.Stop()

MinSizeLoop:
	for len(out) < maxSize && len(out) < minSize {
		wait, cancel := r.RecvCancelable()
		resCh := make(chan RecvResult[T], 1)
		go func() { resCh <- wait() }()

		select {
		case res := <-resCh:
			switch {
			case res.Ok():
				out = append(out, res.Value)
			case res.Kind == RecvDisconnected:
				return out, res
			default:
				break MinSizeLoop
			}
		case <-timer.C:
			cancel()
			break MinSizeLoop
		case <-ctx.Done():
			cancel()
			return out, RecvFailure[T](ctx.Err())
		}
	}

	return drainNonBlocking(r, out, maxSize), Received(first.Value)
}

// drainNonBlocking opportunistically tops a batch up to maxSize using
// TryRecv, stopping at the first Empty or Disconnected, mirroring
// longpoll.Channel's MaxSizeLoop "default: stop" branch.
func drainNonBlocking[T any](r Receiver[T], out []T, maxSize int) []T {
	for len(out) < maxSize {
		res := r.TryRecv()
		if !res.Ok() {
			break
		}
		out = append(out, res.Value)
	}
	return out
}
