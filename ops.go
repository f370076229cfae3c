package chanflow

import "context"

// Send implements spec.md §4.5's blocking send: fast-path TryPush; on
// failure, park on a push-waiter and retry until either a permit frees up
// or the channel disconnects. ctx cancellation surfaces as SendFailure
// wrapping ctx.Err(), mirroring eventloop's context-aware blocking calls.
func (c *ChannelCore[T]) Send(ctx context.Context, v T) SendResult {
	res := c.send(ctx, v)
	c.metrics.RecordSend(c.metricsID, res.Kind.String())
	return res
}

func (c *ChannelCore[T]) send(ctx context.Context, v T) SendResult {
	if c.sendDisconnected() {
		return SendDisconnectedResult()
	}
	if c.buf.TryPush(v) {
		return Sent()
	}
	for {
		w := c.buf.AddPushWaiter()
		if c.sendDisconnected() {
			c.buf.RemovePushWaiter(w)
			return SendDisconnectedResult()
		}
		select {
		case <-w.done:
		case <-ctx.Done():
			c.buf.RemovePushWaiter(w)
			return SendFailure(ctx.Err())
		}
		if err := w.wait(); err != nil {
			return SendDisconnectedResult()
		}
		if c.sendDisconnected() {
			return SendDisconnectedResult()
		}
		c.buf.ConsumePushPermit()
		if c.buf.TryPush(v) {
			return Sent()
		}
	}
}

// TrySend implements spec.md §4.5's non-blocking send.
func (c *ChannelCore[T]) TrySend(v T) SendResult {
	res := c.trySend(v)
	c.metrics.RecordSend(c.metricsID, res.Kind.String())
	return res
}

func (c *ChannelCore[T]) trySend(v T) SendResult {
	if c.sendDisconnected() {
		return SendDisconnectedResult()
	}
	if c.buf.TryPush(v) {
		return Sent()
	}
	return Full()
}

// Recv implements spec.md §4.5's blocking receive: fast-path TryPop; on
// failure, register a pop-waiter (itself racing a bypass TryPop) and block
// on its completion.
func (c *ChannelCore[T]) Recv(ctx context.Context) RecvResult[T] {
	res := c.recv(ctx)
	c.metrics.RecordRecv(c.metricsID, res.Kind.String())
	return res
}

func (c *ChannelCore[T]) recv(ctx context.Context) RecvResult[T] {
	if c.recvDisconnected() {
		return RecvDisconnectedResult[T]()
	}
	if v, ok := c.buf.TryPop(); ok {
		return Received(v)
	}
	w := c.buf.AddPopWaiter()
	if !w.isPending() {
		return w.outcome()
	}
	if c.recvDisconnected() {
		if c.buf.RemovePopWaiter(w) {
			return RecvDisconnectedResult[T]()
		}
		return w.wait()
	}
	select {
	case <-w.done:
		return w.outcome()
	case <-ctx.Done():
		if w.cancel() {
			c.buf.RemovePopWaiter(w)
			return RecvFailure[T](ctx.Err())
		}
		return w.outcome()
	}
}

// TryRecv implements spec.md §4.5's non-blocking receive.
func (c *ChannelCore[T]) TryRecv() RecvResult[T] {
	res := c.tryRecv()
	c.metrics.RecordRecv(c.metricsID, res.Kind.String())
	return res
}

func (c *ChannelCore[T]) tryRecv() RecvResult[T] {
	if c.recvDisconnected() {
		return RecvDisconnectedResult[T]()
	}
	v, ok := c.buf.TryPop()
	if !ok {
		return Empty[T]()
	}
	return Received(v)
}

// TryRecvMany dequeues up to max values without blocking, through the
// buffer's TryPopMany. RecvBatch in batch.go does not call it; it tops a
// batch up with TryRecv instead.
func (c *ChannelCore[T]) TryRecvMany(max int) []T {
	return c.buf.TryPopMany(max)
}

// RecvCancelable implements spec.md §4.5: returns a future-like waiter
// together with a cancel function. Calling cancel after the waiter has
// already completed is a safe no-op, matching popWaiter's single-resolution
// guarantee.
func (c *ChannelCore[T]) RecvCancelable() (wait func() RecvResult[T], cancel func()) {
	if c.recvDisconnected() {
		done := RecvDisconnectedResult[T]()
		return func() RecvResult[T] { return done }, func() {}
	}
	if v, ok := c.buf.TryPop(); ok {
		done := Received(v)
		return func() RecvResult[T] { return done }, func() {}
	}
	w := c.buf.AddPopWaiter()
	wait = w.wait
	cancel = func() {
		if w.cancel() {
			c.buf.RemovePopWaiter(w)
		}
	}
	return wait, cancel
}
