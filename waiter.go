package chanflow

import "sync"

// waiterState mirrors eventloop.PromiseState's three-state lifecycle
// (Pending/Resolved/Rejected) but adds Canceled, since pop-waiters must
// distinguish "failed with Disconnected" from "removed by the caller
// before anything happened" (spec.md §4.5 recvCancelable).
type waiterState int32

const (
	waiterPending waiterState = iota
	waiterResolved
	waiterFailed
	waiterCanceled
)

// popWaiter is the completion cell for a parked receiver, the Go analogue
// of eventloop.promise specialized to single-resolution, single-owner (no
// subscriber fan-out: a pop-waiter has exactly one consumer). Mirrors
// promise's mutex-guarded resolve-once state machine (promise.go Resolve/
// Reject) and exposes a channel for blocking wait, which is the idiomatic
// Go equivalent of promise.ToChannel.
type popWaiter[T any] struct {
	mu    sync.Mutex
	state waiterState
	value T
	err   error
	done  chan struct{}
}

func newPopWaiter[T any]() *popWaiter[T] {
	return &popWaiter[T]{done: make(chan struct{})}
}

// resolve completes the waiter with a value. Returns false if it was
// already completed (idempotent-safe per spec.md §4.1).
func (w *popWaiter[T]) resolve(v T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterResolved
	w.value = v
	close(w.done)
	return true
}

// fail completes the waiter with an error (typically Disconnected).
func (w *popWaiter[T]) fail(err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterFailed
	w.err = err
	close(w.done)
	return true
}

// cancel marks the waiter canceled iff it is still pending. Returns true
// if this call performed the transition (the caller is then responsible
// for removing the waiter from whatever queue holds it).
func (w *popWaiter[T]) cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterCanceled
	close(w.done)
	return true
}

// isPending reports whether the waiter has not yet been resolved, failed,
// or canceled. Used for the addPopWaiter bypass race check.
func (w *popWaiter[T]) isPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == waiterPending
}

// wait blocks until the waiter completes and returns the outcome.
func (w *popWaiter[T]) wait() RecvResult[T] {
	<-w.done
	return w.outcome()
}

func (w *popWaiter[T]) outcome() RecvResult[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case waiterResolved:
		return Received(w.value)
	case waiterCanceled:
		return Canceled[T]()
	default:
		if w.err != nil {
			return RecvResult[T]{Kind: RecvDisconnected, Cause: w.err}
		}
		return RecvDisconnectedResult[T]()
	}
}

// pushWaiter is the completion cell for a parked sender awaiting space
// (spec.md §4.5 waitNotFull). It carries no value — resolution just means
// "a permit is now available, retry tryPush" — or an error meaning the
// channel became disconnected while waiting.
type pushWaiter struct {
	mu    sync.Mutex
	state waiterState
	err   error
	done  chan struct{}
}

func newPushWaiter() *pushWaiter {
	return &pushWaiter{done: make(chan struct{})}
}

func (w *pushWaiter) resolve() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterResolved
	close(w.done)
	return true
}

func (w *pushWaiter) fail(err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterFailed
	w.err = err
	close(w.done)
	return true
}

func (w *pushWaiter) wait() error {
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
