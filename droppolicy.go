package chanflow

// dropPolicyBuffer wraps any bounded ChannelBuffer, reinterpreting a
// failed TryPush per the configured DropPolicy (spec.md §4.3). Only
// TryPush is overridden; every other method delegates straight through.
type dropPolicyBuffer[T any] struct {
	ChannelBuffer[T]
	policy    DropPolicy
	onDrop    func(any)
	metricsID string
	metrics   MetricsRecorder
	logger    Logger
}

func newDropPolicyBuffer[T any](inner ChannelBuffer[T], policy DropPolicy, onDrop func(any), metricsID string, metrics MetricsRecorder, logger Logger) *dropPolicyBuffer[T] {
	return &dropPolicyBuffer[T]{
		ChannelBuffer: inner,
		policy:        policy,
		onDrop:        onDrop,
		metricsID:     metricsID,
		metrics:       metrics,
		logger:        logger,
	}
}

func (b *dropPolicyBuffer[T]) TryPush(v T) bool {
	if b.ChannelBuffer.TryPush(v) {
		return true
	}

	switch b.policy {
	case DropBlock:
		return false

	case DropNewest:
		b.invokeOnDrop(v)
		return true

	case DropOldest:
		dropped, ok := b.ChannelBuffer.TryPop()
		if !ok {
			// no element to evict (e.g. a concurrent pop-waiter absorbed
			// the slot): propagate the original failure per spec.md §4.3.
			return false
		}
		b.invokeOnDrop(dropped)
		if !b.ChannelBuffer.TryPush(v) {
			return false
		}
		return true

	default:
		return false
	}
}

// invokeOnDrop calls the user callback panic-safely (spec.md §4.3: "the
// wrapper swallows exceptions thrown from them to prevent a misbehaving
// observer from corrupting the channel").
func (b *dropPolicyBuffer[T]) invokeOnDrop(v any) {
	if b.metrics != nil {
		b.metrics.RecordDrop(b.metricsID)
	}
	if b.onDrop == nil {
		return
	}
	if err := recoverToError(func() { b.onDrop(v) }); err != nil && b.logger != nil {
		b.logger.Warn("chanflow: onDrop callback panicked", "error", err)
	}
}
