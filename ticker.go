package chanflow

import "time"

// Ticker is a periodic Arm source for Select (spec.md §4.8): it fires at
// most once per period even if the consumer falls behind, rather than
// queuing up missed ticks, the same catch-up-free guarantee time.Ticker
// already gives the standard library — chanflow wraps it instead of
// reimplementing a timer heap, since eventloop's own timer heap exists to
// serve single-threaded cooperative scheduling that this package's
// goroutine-based model doesn't need.
type Ticker struct {
	t *time.Ticker
}

// NewTicker starts a Ticker firing every d.
func NewTicker(d time.Duration) *Ticker {
	return &Ticker{t: time.NewTicker(d)}
}

// C returns the channel ticks are delivered on, suitable for direct use in
// a Select's OnTick branch.
func (t *Ticker) C() <-chan time.Time { return t.t.C }

// Stop releases the underlying timer resources. A stopped Ticker's channel
// is never closed; callers must stop selecting on it instead.
func (t *Ticker) Stop() { t.t.Stop() }

// Reset changes the ticker's period, matching time.Ticker.Reset semantics.
func (t *Ticker) Reset(d time.Duration) { t.t.Reset(d) }
