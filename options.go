// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package chanflow

// DropPolicy selects the behavior of a bounded buffer when tryPush finds
// no space (spec.md §4.3).
type DropPolicy int

const (
	// DropBlock propagates the Full failure; the caller must waitNotFull.
	// This is the default.
	DropBlock DropPolicy = iota
	// DropOldest pops the logically-oldest queued element, reports it via
	// onDrop, and retries the push.
	DropOldest
	// DropNewest drops the incoming value, reports it via onDrop, and
	// still reports the send as successful.
	DropNewest
)

func (p DropPolicy) String() string {
	switch p {
	case DropBlock:
		return "Block"
	case DropOldest:
		return "Oldest"
	case DropNewest:
		return "Newest"
	default:
		return "Unknown"
	}
}

// config accumulates Option values for a channel constructor. The channel
// flavor is chosen by which constructor is called, not by capacity:
// capacity is read only by NewBounded and NewSRSW (which require n>0) and
// by NewBroadcast (which uses 256 when it is unset or <=0).
type config struct {
	capacity        int
	capacitySet     bool
	dropPolicy      DropPolicy
	onDrop          func(any)
	chunked         bool
	metricsID       string
	metricsRecorder MetricsRecorder
	logger          Logger
	consumeOnce     bool
	replay          int
}

// Option configures a channel constructor (NewBounded, NewUnbounded, etc).
// Implements the same opaque-closure pattern as eventloop.LoopOption.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (f optionFunc) apply(c *config) error { return f(c) }

// Capacity sets a bounded channel's maximum in-flight element count. It
// does not select a flavor: Capacity(0) makes NewBounded and NewSRSW
// return an error and makes NewBroadcast use its default; the
// zero-capacity flavor is built with NewRendezvous.
func Capacity(n int) Option {
	return optionFunc(func(c *config) error {
		c.capacity = n
		c.capacitySet = true
		return nil
	})
}

// WithDropPolicy selects the sliding-window behavior of a bounded buffer
// and the observer invoked for every dropped value. onDrop may be nil.
func WithDropPolicy(p DropPolicy, onDrop func(any)) Option {
	return optionFunc(func(c *config) error {
		c.dropPolicy = p
		c.onDrop = onDrop
		return nil
	})
}

// Chunked selects the hot-ring-plus-overflow-chunks unbounded buffer
// variant (spec.md §4.2) instead of the plain unbounded FIFO.
func Chunked() Option {
	return optionFunc(func(c *config) error {
		c.chunked = true
		return nil
	})
}

// WithMetricsID tags the channel for MetricsRecorder calls.
func WithMetricsID(id string) Option {
	return optionFunc(func(c *config) error {
		c.metricsID = id
		return nil
	})
}

// WithMetricsRecorder attaches a MetricsRecorder to this channel only.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return optionFunc(func(c *config) error {
		if r == nil {
			r = defaultMetrics
		}
		c.metricsRecorder = r
		return nil
	})
}

// WithLogger attaches a Logger to this channel only, overriding the
// package-level default from SetLogger.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *config) error {
		c.logger = l
		return nil
	})
}

// ConsumeOnce configures a promise channel (spec.md §8 property 5): when
// true (the default), the second recv after a value has been delivered
// returns Disconnected; when false every recv returns the stored value
// until the sender closes and the buffer drains.
func ConsumeOnce(once bool) Option {
	return optionFunc(func(c *config) error {
		c.consumeOnce = once
		return nil
	})
}

// Replay configures how many already-published items a new broadcast
// subscriber should receive before live delivery (spec.md §4.2).
func Replay(n int) Option {
	return optionFunc(func(c *config) error {
		c.replay = n
		return nil
	})
}

// resolveOptions seeds documented defaults and applies opts in order,
// skipping nils, exactly as eventloop.resolveLoopOptions does.
func resolveOptions(opts []Option) (*config, error) {
	c := &config{
		dropPolicy:      DropBlock,
		metricsRecorder: defaultMetrics,
		logger:          getGlobalLogger(),
		consumeOnce:     true,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.apply(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
