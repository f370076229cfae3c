package chanflow

import (
	"context"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
)

// Throttle wraps a Sender so that TrySend drops values arriving faster than
// one per d, using the rejection as the drop signal rather than buffering
// (spec.md §4.6). Grounded on catrate.Limiter's sliding-window Allow: a
// single limiter category ("send") is checked before every attempted
// TrySend, giving the same "at most N events per window" guarantee
// go-catrate provides its HTTP-handler callers, specialized to N=1 per d.
type ThrottledSender[T any] struct {
	inner   Sender[T]
	limiter *catrate.Limiter
}

// Throttle returns a ThrottledSender around s: at most one value per d is
// forwarded; the rest are silently dropped and reported as Sent, since
// throttling is a best-effort rate limit, not a capacity signal.
func Throttle[T any](s Sender[T], d time.Duration) ThrottledSender[T] {
	return ThrottledSender[T]{
		inner:   s,
		limiter: catrate.NewLimiter(map[time.Duration]int{d: 1}),
	}
}

// TrySend forwards to the wrapped sender only if the rate limiter admits
// this instant; otherwise it drops v and reports Sent anyway (spec.md §4.6:
// "drop and report success"), without touching the underlying channel.
func (t ThrottledSender[T]) TrySend(v T) SendResult {
	if _, ok := t.limiter.Allow("send"); !ok {
		return Sent()
	}
	return t.inner.TrySend(v)
}

// Send blocks until the rate limiter admits the value and the underlying
// channel accepts it, or ctx is canceled.
func (t ThrottledSender[T]) Send(ctx context.Context, v T) SendResult {
	for {
		next, ok := t.limiter.Allow("send")
		if ok {
			return t.inner.Send(ctx, v)
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return SendFailure(ctx.Err())
		}
	}
}

func (t ThrottledSender[T]) Close() { t.inner.Close() }

// DebouncedSender wraps a Sender so that a burst of TrySend calls within d
// of each other collapses to a single send of the most recent value, fired
// d after the last call in the burst goes quiet (spec.md §4.6). Grounded
// on the same coalescing idea as latestOnlyBuffer, but time-gated rather
// than capacity-gated.
type DebouncedSender[T any] struct {
	inner Sender[T]
	d     time.Duration

	mu      sync.Mutex
	pending bool
	value   T
	timer   *time.Timer
}

// Debounce returns a DebouncedSender around s.
func Debounce[T any](s Sender[T], d time.Duration) *DebouncedSender[T] {
	return &DebouncedSender[T]{inner: s, d: d}
}

// TrySend always succeeds from the caller's perspective (spec.md §4.6:
// debounced sends never report Full, since the value is locally absorbed),
// unless the underlying channel is already disconnected.
func (d *DebouncedSender[T]) TrySend(v T) SendResult {
	if d.inner.core.sendDisconnected() {
		return SendDisconnectedResult()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.d, d.flush)
	return Sent()
}

func (d *DebouncedSender[T]) flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.mu.Unlock()
	d.inner.TrySend(v)
}

// Close stops any pending debounce timer without flushing, then closes the
// underlying sender.
func (d *DebouncedSender[T]) Close() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mu.Unlock()
	d.inner.Close()
}
