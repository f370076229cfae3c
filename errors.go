package chanflow

import (
	"errors"
	"fmt"
)

// Standard sentinel errors returned (wrapped) as the Cause of Failed
// results, or by lifecycle/registry operations that don't fit the
// SendResult/RecvResult shape.
var (
	// ErrClosed is returned by operations attempted on a handle after its
	// own Close has already run.
	ErrClosed = errors.New("chanflow: handle closed")

	// ErrAlreadyConsumed is returned when Stream or RecvBatch is called a
	// second time on a single-subscription receiver handle.
	ErrAlreadyConsumed = errors.New("chanflow: receiver already subscribed")

	// ErrSingleSender is returned by Sender.Clone and UnpackSender when a
	// single-sender flavor already has a live sender.
	ErrSingleSender = errors.New("chanflow: channel only supports one sender")

	// ErrSingleReceiver is returned by Receiver.Clone and UnpackReceiver
	// when a single-receiver flavor already has a live receiver.
	ErrSingleReceiver = errors.New("chanflow: channel only supports one receiver")

	// ErrPromiseSet fails the promise buffer's push-waiter once a value has
	// already been stored (with either ConsumeOnce setting); a blocking
	// Send that meets it reports Disconnected rather than this error.
	ErrPromiseSet = errors.New("chanflow: promise already fulfilled")

	// ErrTransferTwice is returned when a handle payload produced by a
	// prior unpack is packed and sent again; the semantics of doing so are
	// unspecified upstream and this implementation rejects it.
	ErrTransferTwice = errors.New("chanflow: handle payload already transferred")

	// ErrNoCredits is returned by TrySend on a flow-controlled remote
	// connection with zero available credits.
	ErrNoCredits = errors.New("chanflow: no flow-control credits available")

	// ErrSelectEmpty is returned by Select when called with no arms.
	ErrSelectEmpty = errors.New("chanflow: select called with no arms")
)

// ChanError is a typed, cause-chaining error analogous to the teacher's
// TimeoutError/RangeError pair: it names the operation that failed, an
// optional message, and carries the underlying cause for
// errors.Is/errors.As.
type ChanError struct {
	// Op names the failing operation (e.g. "NewBounded", "unpack").
	Op      string
	Message string
	Cause   error
}

func (e *ChanError) Error() string {
	if e.Message == "" {
		return "chanflow: " + e.Op
	}
	return "chanflow: " + e.Op + ": " + e.Message
}

// Unwrap exposes the cause chain for errors.Is/errors.As.
func (e *ChanError) Unwrap() error { return e.Cause }

// WrapError wraps cause with a contextual message, exactly like
// eventloop.WrapError: the result satisfies errors.Is(result, cause).
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}

// AggregateError collects multiple causes into one error. Nothing in this
// package constructs one itself; it is exported for callers that combine
// several errors. Mirrors eventloop.AggregateError.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "chanflow: aggregate error (empty)"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("chanflow: %d errors, first: %v", len(e.Errors), e.Errors[0])
	}
}

// Unwrap supports errors.Is/errors.As across every contained error.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// Is reports true for any target that is itself an *AggregateError, in
// addition to the normal Unwrap-driven matching.
func (e *AggregateError) Is(target error) bool {
	var t *AggregateError
	return errors.As(target, &t)
}

// recoverToError runs fn, converting any panic into an error. Used to make
// the DropPolicy onDrop callback panic-safe (spec.md §4.3), mirroring
// eventloop.safeExecute's recover pattern. Select does not use it: a panic
// in an Arm's mapping function is not recovered.
func recoverToError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = WrapError("panic in callback", e)
			} else {
				err = fmt.Errorf("chanflow: panic in callback: %v", r)
			}
		}
	}()
	fn()
	return nil
}
