package chanflow

import "sync"

// Notify is a standalone permits-and-waiters primitive (spec.md §4.7
// collaborator / §2 overview): NotifyOne/NotifyAll/NotifyN wake parked
// Wait calls, and a notify issued with nobody waiting is banked as a
// permit so a subsequent Wait returns immediately, the same
// signal-before-wait race Go's sync.Cond cannot close without an external
// mutex held across both calls. Grounded on pushWaiter's single-resolution
// completion cell, reused here instead of sync.Cond so Notify
// composes with context cancellation the way every other blocking op in
// this package does.
type Notify struct {
	mu      sync.Mutex
	permits int
	waiters []*pushWaiter
	closed  bool
}

// NewNotify constructs a ready-to-use Notify with zero banked permits.
func NewNotify() *Notify { return &Notify{} }

// NotifyOne wakes a single waiting Wait call, or banks one permit if none
// are currently waiting.
func (n *Notify) NotifyOne() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if len(n.waiters) > 0 {
		w := n.waiters[0]
		n.waiters = n.waiters[1:]
		w.resolve()
		return
	}
	n.permits++
}

// NotifyAll wakes every currently waiting Wait call, without banking any
// permits for future waiters.
func (n *Notify) NotifyAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, w := range n.waiters {
		w.resolve()
	}
	n.waiters = nil
}

// NotifyN wakes up to count waiting Wait calls, banking any remainder as
// permits.
func (n *Notify) NotifyN(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for count > 0 && len(n.waiters) > 0 {
		w := n.waiters[0]
		n.waiters = n.waiters[1:]
		w.resolve()
		count--
	}
	n.permits += count
}

// Wait blocks until a notification (live or banked) is available, or the
// wait channel closes. It returns false if Close was called instead of a
// notification ever arriving.
func (n *Notify) Wait() bool {
	wait, _ := n.WaitCancelable()
	return wait()
}

// WaitCancelable mirrors the Receiver.RecvCancelable shape, for composing
// Notify into a Select branch.
func (n *Notify) WaitCancelable() (wait func() bool, cancel func()) {
	n.mu.Lock()
	if n.permits > 0 {
		n.permits--
		n.mu.Unlock()
		return func() bool { return true }, func() {}
	}
	if n.closed {
		n.mu.Unlock()
		return func() bool { return false }, func() {}
	}
	w := newPushWaiter()
	n.waiters = append(n.waiters, w)
	n.mu.Unlock()

	wait = func() bool { return w.wait() == nil }
	cancel = func() {
		n.mu.Lock()
		for i, other := range n.waiters {
			if other == w {
				n.waiters = append(n.waiters[:i], n.waiters[i+1:]...)
				break
			}
		}
		n.mu.Unlock()
		w.fail(ErrClosed)
	}
	return wait, cancel
}

// Close wakes every waiter with a negative result and causes all future
// Wait calls to return false immediately. Idempotent.
func (n *Notify) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, w := range n.waiters {
		w.fail(ErrClosed)
	}
	n.waiters = nil
	n.permits = 0
}
