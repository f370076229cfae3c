package chanflow

import "sync/atomic"

// ChannelCore composes a buffer, a lifecycle record, and a metrics/logging
// facet (spec.md §4.4/§9 "replace inheritance/mixins with composition").
// It is registered in the process-local registry on construction and is
// reachable from handles either directly (see SPEC_FULL.md §4) or via the
// registry id carried by a TransferablePayload, which UnpackSender/
// UnpackReceiver resolve within the same process.
type ChannelCore[T any] struct {
	id          int64
	buf         ChannelBuffer[T]
	life        lifecycle
	metricsID   string
	metrics     MetricsRecorder
	logger      Logger
	consumed    atomic.Bool // set by the first Stream/RecvBatch subscription
	transferred atomic.Bool // set by the first Pack of either handle
}

func newCore[T any](buf ChannelBuffer[T], singleSender, singleReceiver bool, c *config) *ChannelCore[T] {
	core := &ChannelCore[T]{
		buf:       buf,
		metricsID: c.metricsID,
		metrics:   c.metricsRecorder,
		logger:    c.logger,
	}
	core.life.singleSender = singleSender
	core.life.singleReceiver = singleReceiver
	core.id = registerCore[T](core)
	return core
}

func (c *ChannelCore[T]) bufEmpty() bool { return c.buf.Len() == 0 }

func (c *ChannelCore[T]) sendDisconnected() bool { return c.life.sendDisconnected() }

func (c *ChannelCore[T]) recvDisconnected() bool { return c.life.recvDisconnected(c.bufEmpty()) }

// closeSender runs the sender side of spec.md §4.4's disconnection
// protocol: decrement; if zero remain, mark closedSenders, wake all push
// waiters, and if the buffer is empty, fail all pop waiters with
// Disconnected.
func (c *ChannelCore[T]) closeSender() {
	if c.life.detachSender() {
		c.buf.WakeAllPushWaiters()
		if c.bufEmpty() {
			c.buf.FailAllPopWaiters(ErrClosed)
		}
		c.logger.Debug("chanflow: all senders closed", "metricsID", c.metricsID)
	}
}

// closeReceiver runs the receiver side: decrement; if zero remain, mark
// closedReceivers, wake push waiters *before* clearing the buffer (spec.md
// §4.4 ordering requirement), fail pop waiters, then clear.
func (c *ChannelCore[T]) closeReceiver() {
	if c.life.detachReceiver() {
		c.buf.WakeAllPushWaiters()
		c.buf.FailAllPopWaiters(ErrClosed)
		c.buf.Clear()
		c.logger.Debug("chanflow: all receivers closed", "metricsID", c.metricsID)
	}
}

func (c *ChannelCore[T]) attachSender() error  { return c.life.attachSender() }
func (c *ChannelCore[T]) attachReceiver() error { return c.life.attachReceiver(c.bufEmpty) }

// beginSubscription claims this core's single-subscription slot (spec.md
// §3/§4.4: "streams are single-subscription per handle"). It returns true
// only for the first caller; every subsequent Stream/RecvBatch call on the
// same receiver observes false and must report ErrAlreadyConsumed instead
// of proceeding.
func (c *ChannelCore[T]) beginSubscription() bool { return c.consumed.CompareAndSwap(false, true) }

// beginTransfer claims this core's single-transfer slot (spec.md §6
// "Transferable handle payload"); a handle may be Packed at most once.
func (c *ChannelCore[T]) beginTransfer() bool { return c.transferred.CompareAndSwap(false, true) }
