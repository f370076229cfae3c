package chanflow

// NewUnbounded creates an MPSC/MPMC channel with unlimited capacity
// (spec.md §4.2). Pass Chunked() to select the burst-absorbing variant
// instead of the plain FIFO.
func NewUnbounded[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	var buf ChannelBuffer[T]
	if c.chunked {
		buf = newChunkedBuffer[T]()
	} else {
		buf = newUnboundedBuffer[T]()
	}
	s, r := newHandles[T](buf, false, false, c)
	return s, r, nil
}

// NewBounded creates a capacity-limited MPSC/MPMC channel (spec.md §4.2).
// Capacity must be supplied via Capacity(n), n>0; WithDropPolicy selects
// the overflow behavior.
func NewBounded[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	if !c.capacitySet || c.capacity <= 0 {
		return Sender[T]{}, Receiver[T]{}, &ChanError{Op: "NewBounded", Message: "Capacity(n) with n>0 is required"}
	}
	var buf ChannelBuffer[T] = newBoundedBuffer[T](c.capacity)
	if c.dropPolicy != DropBlock {
		buf = newDropPolicyBuffer[T](buf, c.dropPolicy, c.onDrop, c.metricsID, c.metricsRecorder, c.logger)
	}
	s, r := newHandles[T](buf, false, false, c)
	return s, r, nil
}

// NewRendezvous creates a zero-capacity handoff channel (spec.md §4.2): a
// send only completes once a matching recv is already in flight.
func NewRendezvous[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	s, r := newHandles[T](newRendezvousBuffer[T](), false, false, c)
	return s, r, nil
}

// NewLatestOnly creates a coalescing, single-slot channel (spec.md §4.2): a
// push that finds the slot full overwrites it instead of blocking.
func NewLatestOnly[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	s, r := newHandles[T](newLatestOnlyBuffer[T](), false, false, c)
	return s, r, nil
}

// NewPromise creates a one-shot single-sender/single-receiver channel
// (spec.md §4.2). ConsumeOnce(false) makes every subsequent recv replay the
// stored value instead of disconnecting after the first.
func NewPromise[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	s, r := newHandles[T](newPromiseBuffer[T](c.consumeOnce), true, true, c)
	return s, r, nil
}

// NewSRSW creates a fixed-capacity single-producer/single-consumer ring
// channel (spec.md §4.2). Capacity is rounded up to the next power of two.
func NewSRSW[T any](opts ...Option) (Sender[T], Receiver[T], error) {
	c, err := resolveOptions(opts)
	if err != nil {
		return Sender[T]{}, Receiver[T]{}, err
	}
	if !c.capacitySet || c.capacity <= 0 {
		return Sender[T]{}, Receiver[T]{}, &ChanError{Op: "NewSRSW", Message: "Capacity(n) with n>0 is required"}
	}
	s, r := newHandles[T](newSRSWBuffer[T](c.capacity), true, true, c)
	return s, r, nil
}
