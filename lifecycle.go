package chanflow

import "sync"

// lifecycle tracks live sender/receiver counts and drives the
// disconnection protocol (spec.md §4.4). Embedded by ChannelCore; kept as
// its own type so the disconnect predicates and transition rules are
// testable in isolation from any particular buffer flavor.
type lifecycle struct {
	mu              sync.Mutex
	activeSenders   int
	activeReceivers int
	closedSenders   bool
	closedReceivers bool
	singleSender    bool
	singleReceiver  bool
}

// attachSender increments the sender count, enforcing the single-sender
// invariant (spec.md §3 "activeSenders <= 1 if flavor disallows
// multi-sender").
func (l *lifecycle) attachSender() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closedSenders {
		return ErrClosed
	}
	if l.singleSender && l.activeSenders > 0 {
		return ErrSingleSender
	}
	l.activeSenders++
	return nil
}

func (l *lifecycle) attachReceiver(bufEmpty func() bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closedReceivers {
		return ErrClosed
	}
	if l.closedSenders && bufEmpty() {
		return ErrClosed
	}
	if l.singleReceiver && l.activeReceivers > 0 {
		return ErrSingleReceiver
	}
	l.activeReceivers++
	return nil
}

// detachSender decrements the sender count. When it reaches zero it marks
// closedSenders; the caller (ChannelCore) is responsible for waking push
// waiters and, if the buffer is already empty, failing pop waiters — this
// method only returns whether that transition just happened, since those
// actions need the buffer, which lifecycle doesn't hold.
func (l *lifecycle) detachSender() (justClosed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.activeSenders > 0 {
		l.activeSenders--
	}
	if l.activeSenders == 0 && !l.closedSenders {
		l.closedSenders = true
		return true
	}
	return false
}

// detachReceiver mirrors detachSender for the receiver side.
func (l *lifecycle) detachReceiver() (justClosed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.activeReceivers > 0 {
		l.activeReceivers--
	}
	if l.activeReceivers == 0 && !l.closedReceivers {
		l.closedReceivers = true
		return true
	}
	return false
}

// sendDisconnected implements spec.md §3's derived predicate:
// closedSenders OR (closedReceivers AND activeReceivers==0).
func (l *lifecycle) sendDisconnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closedSenders || (l.closedReceivers && l.activeReceivers == 0)
}

// recvDisconnected implements spec.md §3's derived predicate:
// closedReceivers OR (closedSenders AND buf.empty). bufEmpty is evaluated
// under the caller's own buffer lock, not lifecycle's.
func (l *lifecycle) recvDisconnected(bufEmpty bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closedReceivers || (l.closedSenders && bufEmpty)
}

func (l *lifecycle) receiverCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeReceivers
}

func (l *lifecycle) senderCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeSenders
}

func (l *lifecycle) sendersClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closedSenders
}

func (l *lifecycle) receiversClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closedReceivers
}
