package chanflow

import (
	"context"
	"iter"
)

// Stream adapts a Receiver into a single-subscription iter.Seq, the
// idiomatic Go-native reading of spec.md's "Stream" consumer type (§5.10,
// new in this module's expanded scope): range-over-func lets a consumer
// write `for res := range chanflow.Stream(ctx, r) { ... }` instead of
// hand-rolling a Recv loop. Each step is a plain blocking Recv that has
// already returned by the time the loop body runs, so stopping the range
// early (break) simply issues no further Recv and leaves no waiter
// registered. Calling Stream (or RecvBatch) a second time on the same receiver
// claims spec.md §3/§4.4's single-subscription slot a second time, which
// fails: the returned sequence yields exactly one RecvFailure wrapping
// ErrAlreadyConsumed and stops.
func Stream[T any](ctx context.Context, r Receiver[T]) iter.Seq[RecvResult[T]] {
	return func(yield func(RecvResult[T]) bool) {
		if !r.core.beginSubscription() {
			yield(RecvFailure[T](ErrAlreadyConsumed))
			return
		}
		for {
			res := r.Recv(ctx)
			if !yield(res) {
				return
			}
			if !res.Ok() {
				return
			}
		}
	}
}
