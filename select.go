package chanflow

import (
	"context"
	"time"
)

// Arm is a single branch of a Select call (spec.md §4.7's branch ADT,
// generalized here to any readiness source rather than named
// Future/Stream/Receiver/Timer variants): poll is the non-blocking fast
// path, register starts the slow path and returns a blocking wait function
// plus an idempotent cancel. Build Arms with OnRecv, OnSend, OnChan,
// OnTick, OnDelay, or OnNotify rather than constructing one directly.
type Arm[R any] struct {
	poll     func() (R, bool)
	register func() (wait func() (R, bool), cancel func())
}

// OnRecv fires when r has a value ready, mapping the RecvResult (including
// Disconnected) through fn.
func OnRecv[T, R any](r Receiver[T], fn func(RecvResult[T]) R) Arm[R] {
	return Arm[R]{
		poll: func() (R, bool) {
			res := r.TryRecv()
			if res.Kind == RecvEmpty {
				var zero R
				return zero, false
			}
			return fn(res), true
		},
		register: func() (func() (R, bool), func()) {
			wait, cancel := r.RecvCancelable()
			return func() (R, bool) {
				res := wait()
				if res.Kind == RecvCanceled {
					var zero R
					return zero, false
				}
				return fn(res), true
			}, cancel
		},
	}
}

// OnSend fires once v can be handed to s, mapping the SendResult through
// fn. There is no non-blocking "wait for space" primitive on Sender beyond
// TrySend/Send, so the slow path parks a goroutine on a blocking Send.
func OnSend[T, R any](s Sender[T], v T, fn func(SendResult) R) Arm[R] {
	return Arm[R]{
		poll: func() (R, bool) {
			res := s.TrySend(v)
			if res.Kind == SendFull {
				var zero R
				return zero, false
			}
			return fn(res), true
		},
		register: func() (func() (R, bool), func()) {
			ctx, cancel := context.WithCancel(context.Background())
			return func() (R, bool) {
				res := s.Send(ctx, v)
				if res.Kind == SendFailed && ctx.Err() != nil {
					var zero R
					return zero, false
				}
				return fn(res), true
			}, cancel
		},
	}
}

// OnChan fires when a value is receivable from ch, mapping it through fn.
// Suitable for interop with plain Go channels, a [Ticker]'s C(), or any
// other <-chan source.
func OnChan[V, R any](ch <-chan V, fn func(V) R) Arm[R] {
	return Arm[R]{
		poll: func() (R, bool) {
			select {
			case v, ok := <-ch:
				if !ok {
					var zero R
					return zero, false
				}
				return fn(v), true
			default:
				var zero R
				return zero, false
			}
		},
		register: func() (func() (R, bool), func()) {
			done := make(chan struct{})
			var canceled bool
			cancel := func() {
				select {
				case <-done:
				default:
					canceled = true
					close(done)
				}
			}
			wait := func() (R, bool) {
				select {
				case v, ok := <-ch:
					if !ok || canceled {
						var zero R
						return zero, false
					}
					return fn(v), true
				case <-done:
					var zero R
					return zero, false
				}
			}
			return wait, cancel
		},
	}
}

// OnTick fires on every tick of t, mapping the tick time through fn.
func OnTick[R any](t *Ticker, fn func(time.Time) R) Arm[R] {
	return OnChan(t.C(), fn)
}

// OnDelay fires once, after d elapses, producing fn's result. Useful for
// building a Select-based timeout: combine with another Arm and whichever
// fires first wins.
func OnDelay[R any](d time.Duration, fn func() R) Arm[R] {
	return OnChan(time.After(d), func(time.Time) R { return fn() })
}

// OnNotify fires when n.Wait() would return true.
func OnNotify[R any](n *Notify, fn func() R) Arm[R] {
	return Arm[R]{
		poll: func() (R, bool) {
			var zero R
			return zero, false
		},
		register: func() (func() (R, bool), func()) {
			wait, cancel := n.WaitCancelable()
			return func() (R, bool) {
				if !wait() {
					var zero R
					return zero, false
				}
				return fn(), true
			}, cancel
		},
	}
}

type selectOutcome[R any] struct {
	idx   int
	value R
	ok    bool
}

// Select implements spec.md §4.7: evaluate every Arm's fast path first, in
// a rotation order keyed off the current time (rotation_offset =
// now_micros mod n) so repeated calls with multiple simultaneously-ready
// arms don't starve the later ones; only if none are immediately ready does
// it fall back to registering every arm's slow path and blocking for
// whichever resolves first. Exactly one arm's result is ever returned — all
// others are canceled once a winner is chosen, the canceller-registry
// guarantee from spec.md §4.7. Returns an error (wrapping ctx.Err()) if ctx
// is canceled before any arm resolves, or ErrSelectEmpty if called with no
// arms.
func Select[R any](ctx context.Context, arms ...Arm[R]) (R, error) {
	var zero R
	n := len(arms)
	if n == 0 {
		return zero, ErrSelectEmpty
	}

	offset := int(time.Now().UnixMicro() % int64(n))
	for i := 0; i < n; i++ {
		idx := (offset + i) % n
		if v, ok := arms[idx].poll(); ok {
			return v, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return zero, WrapError("chanflow: select", err)
	}

	results := make(chan selectOutcome[R], n)
	cancels := make([]func(), n)
	for i, arm := range arms {
		wait, cancel := arm.register()
		cancels[i] = cancel
		go func(i int, wait func() (R, bool)) {
			v, ok := wait()
			results <- selectOutcome[R]{idx: i, value: v, ok: ok}
		}(i, wait)
	}

	cancelAllExcept := func(winner int) {
		for i, c := range cancels {
			if i != winner && c != nil {
				c()
			}
		}
	}

	// results is buffered to exactly n: every registered arm sends at most
	// once, so canceling the losers never blocks their goroutines on a
	// send, and no separate drain goroutine is needed to avoid a leak.
	for {
		select {
		case <-ctx.Done():
			cancelAllExcept(-1)
			return zero, WrapError("chanflow: select", ctx.Err())
		case res := <-results:
			if !res.ok {
				// this arm was canceled or its source closed without a
				// value; keep waiting for another arm to resolve.
				continue
			}
			cancelAllExcept(res.idx)
			return res.value, nil
		}
	}
}
