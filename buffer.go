package chanflow

import "container/list"

// ChannelBuffer is the uniform contract implemented by every buffer
// flavor (spec.md §3/§4.1). All methods except waitNotFull/waitNotEmpty
// (expressed here as PushWaiter/consumer registration) are synchronous and
// non-blocking; callers build the async send/recv slow paths on top.
type ChannelBuffer[T any] interface {
	// TryPush attempts to enqueue v without blocking. Returns false iff
	// there is no space (bounded) or no matching popper (rendezvous).
	// A successful TryPush that finds a pending pop-waiter MUST hand the
	// value directly to it (bypass push) instead of touching storage.
	TryPush(v T) bool

	// TryPop attempts to dequeue without blocking. ok is false iff the
	// buffer is logically empty.
	TryPop() (v T, ok bool)

	// TryPopMany dequeues up to max elements in FIFO order.
	TryPopMany(max int) []T

	// AddPopWaiter registers a new pop-waiter, first attempting a
	// synchronous TryPop to close the push/wait race (spec.md §4.1). If
	// that succeeds the returned waiter is already resolved.
	AddPopWaiter() *popWaiter[T]

	// RemovePopWaiter removes w from the waiter set. Idempotent and safe
	// after w has already completed.
	RemovePopWaiter(w *popWaiter[T]) bool

	// AddPushWaiter registers a waiter for "space or a receiver became
	// available" (spec.md's waitNotFull). Used by the bounded/rendezvous
	// slow send path.
	AddPushWaiter() *pushWaiter

	// RemovePushWaiter removes w from the waiter set.
	RemovePushWaiter(w *pushWaiter) bool

	// ConsumePushPermit is called by the send slow path immediately
	// before a retried TryPush, giving bounded buffers a chance to
	// decrement their permit counter (spec.md §3 Permits invariant).
	ConsumePushPermit()

	// WakeAllPushWaiters resolves every outstanding push-waiter (a
	// receiver arrived, or the channel became disconnected).
	WakeAllPushWaiters()

	// FailAllPopWaiters fails every outstanding pop-waiter with err,
	// fast-slot first, then queued waiters in arrival order (spec.md
	// §4.1).
	FailAllPopWaiters(err error)

	// Len reports the current logical occupancy, for metrics and
	// permits-invariant tests.
	Len() int

	// Clear empties the buffer's storage (spec.md §4.4, receiver-closed
	// path).
	Clear()
}

// waiterQueue is the PopWaiterQueue helper from spec.md §4.1: an O(1) fast
// slot for the overwhelmingly common single-waiter case, falling back to
// an ordered list once a second waiter arrives. Not itself a
// ChannelBuffer; embedded by each flavor's buffer implementation. Not
// safe for concurrent use — callers hold the owning buffer's mutex.
type waiterQueue[T any] struct {
	fast  *popWaiter[T]
	extra *list.List // of *popWaiter[T], only allocated past the first overflow
}

// push appends a new pop-waiter to the queue (fast slot first).
func (q *waiterQueue[T]) push(w *popWaiter[T]) {
	if q.fast == nil {
		q.fast = w
		return
	}
	if q.extra == nil {
		q.extra = list.New()
	}
	q.extra.PushBack(w)
}

// popOne removes and returns the earliest-arrived waiter, or nil if empty.
// Used by the bypass-push path: exactly one waiter is resolved per push.
func (q *waiterQueue[T]) popOne() *popWaiter[T] {
	if q.fast != nil {
		w := q.fast
		q.fast = nil
		q.promoteFromExtra()
		return w
	}
	return nil
}

// promoteFromExtra moves the next queued waiter (if any) into the fast
// slot after the fast slot is vacated.
func (q *waiterQueue[T]) promoteFromExtra() {
	if q.extra == nil || q.extra.Len() == 0 {
		return
	}
	front := q.extra.Front()
	q.fast = front.Value.(*popWaiter[T])
	q.extra.Remove(front)
}

// remove removes w from wherever it sits. Idempotent: if w isn't present
// (already popped via popOne, or never added) this is a no-op returning
// false.
func (q *waiterQueue[T]) remove(w *popWaiter[T]) bool {
	if q.fast == w {
		q.fast = nil
		q.promoteFromExtra()
		return true
	}
	if q.extra != nil {
		for e := q.extra.Front(); e != nil; e = e.Next() {
			if e.Value.(*popWaiter[T]) == w {
				q.extra.Remove(e)
				return true
			}
		}
	}
	return false
}

// drainAll returns every waiter still queued, fast-slot first, and empties
// the queue. Used by FailAllPopWaiters.
func (q *waiterQueue[T]) drainAll() []*popWaiter[T] {
	var out []*popWaiter[T]
	if q.fast != nil {
		out = append(out, q.fast)
		q.fast = nil
	}
	if q.extra != nil {
		for e := q.extra.Front(); e != nil; e = e.Next() {
			out = append(out, e.Value.(*popWaiter[T]))
		}
		q.extra.Init()
	}
	return out
}

func (q *waiterQueue[T]) empty() bool {
	return q.fast == nil && (q.extra == nil || q.extra.Len() == 0)
}

// pushWaiterSet is the equivalent fast-slot+list structure for push
// waiters, which unlike pop-waiters are usually woken in bulk (WakeAll)
// rather than one-at-a-time, but still benefit from O(1) add/remove in the
// single-blocked-sender case.
type pushWaiterSet struct {
	fast  *pushWaiter
	extra *list.List // of *pushWaiter
}

func (s *pushWaiterSet) push(w *pushWaiter) {
	if s.fast == nil {
		s.fast = w
		return
	}
	if s.extra == nil {
		s.extra = list.New()
	}
	s.extra.PushBack(w)
}

func (s *pushWaiterSet) remove(w *pushWaiter) bool {
	if s.fast == w {
		s.fast = nil
		if s.extra != nil && s.extra.Len() > 0 {
			front := s.extra.Front()
			s.fast = front.Value.(*pushWaiter)
			s.extra.Remove(front)
		}
		return true
	}
	if s.extra != nil {
		for e := s.extra.Front(); e != nil; e = e.Next() {
			if e.Value.(*pushWaiter) == w {
				s.extra.Remove(e)
				return true
			}
		}
	}
	return false
}

func (s *pushWaiterSet) wakeAll() {
	if s.fast != nil {
		s.fast.resolve()
		s.fast = nil
	}
	if s.extra != nil {
		for e := s.extra.Front(); e != nil; e = e.Next() {
			e.Value.(*pushWaiter).resolve()
		}
		s.extra.Init()
	}
}

func (s *pushWaiterSet) failAll(err error) {
	if s.fast != nil {
		s.fast.fail(err)
		s.fast = nil
	}
	if s.extra != nil {
		for e := s.extra.Front(); e != nil; e = e.Next() {
			e.Value.(*pushWaiter).fail(err)
		}
		s.extra.Init()
	}
}

// popOneWake wakes exactly one waiter (used when a single permit/slot
// frees up, e.g. after a pop on a bounded buffer makes room for one
// sender).
func (s *pushWaiterSet) popOneWake() bool {
	if s.fast != nil {
		w := s.fast
		s.fast = nil
		if s.extra != nil && s.extra.Len() > 0 {
			front := s.extra.Front()
			s.fast = front.Value.(*pushWaiter)
			s.extra.Remove(front)
		}
		return w.resolve()
	}
	return false
}
