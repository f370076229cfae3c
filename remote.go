package chanflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/joeycumines/go-chanflow/platform"
	"github.com/joeycumines/go-microbatch"
	"golang.org/x/sync/semaphore"
)

// controlKind discriminates frames on the wire. Every frame starts with
// the literal 3-byte marker "#cc" followed by a JSON envelope, mirroring
// the control-message convention spec.md §6 names explicitly so a byte
// sniffer (or a human reading a packet capture) can tell a chanflow frame
// apart from application payloads sharing the same socket.
const controlMarker = "#cc"

type controlKind string

const (
	controlValue  controlKind = "value"  // carries one sent value
	controlBatch  controlKind = "batch"  // carries coalesced values (spec.md §4.9 BatchMessage)
	controlClose  controlKind = "close"  // sender or receiver closed
	controlCredit controlKind = "credit" // flow-control credit grant
)

type controlFrame struct {
	Kind    controlKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Credits int64           `json:"credits,omitempty"`
}

func encodeFrame(f controlFrame) ([]byte, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(controlMarker)+len(body))
	out = append(out, controlMarker...)
	out = append(out, body...)
	return out, nil
}

func decodeFrame(raw []byte) (controlFrame, error) {
	var f controlFrame
	if len(raw) < len(controlMarker) || string(raw[:len(controlMarker)]) != controlMarker {
		return f, &ChanError{Op: "remote", Message: "frame missing \"#cc\" discriminator"}
	}
	err := json.Unmarshal(raw[len(controlMarker):], &f)
	return f, err
}

// RemoteConnection is the fire-and-forget transport binding from spec.md
// §6: values sent locally are marshaled and written to port; frames read
// from receiver are unmarshaled and delivered into a local unbounded
// buffer. There is no backpressure across the wire — a fast sender can
// pile frames up on the local receive buffer — which is why
// FlowControlledRemoteConnection exists as the variant to reach for
// whenever the peer might be slow.
type RemoteConnection[T any] struct {
	port     platform.Port
	receiver platform.Receiver
	sender   Sender[T]
	recv     Receiver[T]
	cancel   context.CancelFunc
}

// NewRemoteConnection starts pumping values between a local channel pair
// and a transport. The local Sender is fed from frames read off receiver;
// values sent into the returned RemoteConnection's SendToPeer are written
// to port.
func NewRemoteConnection[T any](ctx context.Context, port platform.Port, receiver platform.Receiver) (*RemoteConnection[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	s, r, err := NewUnbounded[T]()
	if err != nil {
		cancel()
		return nil, err
	}
	rc := &RemoteConnection[T]{port: port, receiver: receiver, sender: s, recv: r, cancel: cancel}
	go rc.pumpInbound(ctx)
	return rc, nil
}

func (rc *RemoteConnection[T]) pumpInbound(ctx context.Context) {
	for {
		raw, err := rc.receiver.Recv(ctx)
		if err != nil {
			rc.sender.Close()
			return
		}
		frame, err := decodeFrame(raw)
		if err != nil {
			continue
		}
		switch frame.Kind {
		case controlValue:
			var v T
			if err := json.Unmarshal(frame.Payload, &v); err != nil {
				continue
			}
			rc.sender.TrySend(v)
		case controlBatch:
			var vs []T
			if err := json.Unmarshal(frame.Payload, &vs); err != nil {
				continue
			}
			for _, v := range vs {
				rc.sender.TrySend(v)
			}
		case controlClose:
			rc.sender.Close()
			return
		}
	}
}

// SendToPeer marshals v and writes it to the transport.
func (rc *RemoteConnection[T]) SendToPeer(ctx context.Context, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	frame, err := encodeFrame(controlFrame{Kind: controlValue, Payload: payload})
	if err != nil {
		return err
	}
	return rc.port.Send(ctx, frame)
}

// sendBatchFrame marshals vs into a single controlBatch frame (spec.md
// §4.9's BatchMessage), so a coalesced batch crosses the wire as one
// transmission instead of one per value.
func sendBatchFrame[T any](ctx context.Context, port platform.Port, vs []T) error {
	payload, err := json.Marshal(vs)
	if err != nil {
		return err
	}
	frame, err := encodeFrame(controlFrame{Kind: controlBatch, Payload: payload})
	if err != nil {
		return err
	}
	return port.Send(ctx, frame)
}

// LocalReceiver exposes the values pumped in from the peer.
func (rc *RemoteConnection[T]) LocalReceiver() Receiver[T] { return rc.recv }

// Close stops the inbound pump and closes both transport sides.
func (rc *RemoteConnection[T]) Close() error {
	rc.cancel()
	frame, _ := encodeFrame(controlFrame{Kind: controlClose})
	_ = rc.port.Send(context.Background(), frame)
	err := rc.port.Close()
	if rerr := rc.receiver.Close(); err == nil {
		err = rerr
	}
	return err
}

// FlowControlledRemoteConnection adds credit-based backpressure on top of
// RemoteConnection (spec.md §6): TrySend/Send/SendBatch may not transmit
// more than the currently granted credit count. Credits are replenished
// only by calling GrantCredits; the connection never sends controlCredit
// frames to its peer, and its inbound pump discards any it receives.
// SendToPeer, promoted from the embedded RemoteConnection, bypasses the
// credit pool. Grounded on
// golang.org/x/sync/semaphore.Weighted as the credit pool — acquiring a
// unit of weight is exactly "consume one credit", and TryAcquire gives the
// non-blocking TrySend fast path for free. Outbound frames are coalesced
// through a microbatch.Batcher (github.com/joeycumines/go-microbatch)
// instead of one Port.Send call per value, the same size-or-interval flush
// rule that package uses for any other bursty producer.
type FlowControlledRemoteConnection[T any] struct {
	*RemoteConnection[T]
	credits *semaphore.Weighted
	batcher *microbatch.Batcher[T]
}

// FlowControlConfig tunes a FlowControlledRemoteConnection's credit pool
// and outbound batching.
type FlowControlConfig struct {
	// InitialCredits is the number of values the local side may send before
	// blocking on peer-granted replenishment. Defaults to 64.
	InitialCredits int64
	// BatchSize caps how many values are coalesced into one frame.
	// Defaults to 32.
	BatchSize int
	// BatchInterval bounds how long a partial batch waits before flushing.
	// Defaults to 5ms.
	BatchInterval time.Duration
}

// NewFlowControlledRemoteConnection wraps port/receiver with credit-based
// backpressure and outbound batching.
func NewFlowControlledRemoteConnection[T any](ctx context.Context, port platform.Port, receiver platform.Receiver, cfg FlowControlConfig) (*FlowControlledRemoteConnection[T], error) {
	base, err := NewRemoteConnection[T](ctx, port, receiver)
	if err != nil {
		return nil, err
	}
	initial := cfg.InitialCredits
	if initial <= 0 {
		initial = 64
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	batchInterval := cfg.BatchInterval
	if batchInterval <= 0 {
		batchInterval = 5 * time.Millisecond
	}

	fc := &FlowControlledRemoteConnection[T]{
		RemoteConnection: base,
		credits:          semaphore.NewWeighted(initial),
	}
	fc.batcher = microbatch.NewBatcher[T](&microbatch.BatcherConfig{
		MaxSize:       batchSize,
		FlushInterval: batchInterval,
	}, func(ctx context.Context, values []T) error {
		// spec.md §4.9: coalesce into a single value frame below the
		// batching threshold, otherwise one BatchMessage frame for the
		// whole flush instead of one frame per value.
		if len(values) == 1 {
			return base.SendToPeer(ctx, values[0])
		}
		return sendBatchFrame(ctx, base.port, values)
	})
	return fc, nil
}

// TrySend consumes one credit and enqueues v for the next outbound batch.
// Returns ErrNoCredits if the credit pool is exhausted.
func (fc *FlowControlledRemoteConnection[T]) TrySend(v T) SendResult {
	if !fc.credits.TryAcquire(1) {
		return SendFailure(ErrNoCredits)
	}
	if _, err := fc.batcher.Submit(context.Background(), v); err != nil {
		return SendFailure(err)
	}
	return Sent()
}

// Send blocks until a credit is available (or ctx is canceled), then
// enqueues v.
func (fc *FlowControlledRemoteConnection[T]) Send(ctx context.Context, v T) SendResult {
	if err := fc.credits.Acquire(ctx, 1); err != nil {
		return SendFailure(err)
	}
	if _, err := fc.batcher.Submit(ctx, v); err != nil {
		return SendFailure(err)
	}
	return Sent()
}

// SendBatch sends every value in vs in order, chunked by whatever credit
// is available at the time each Send call acquires it (spec.md §5.11):
// unlike Sender[T].SendBatch's plain loop, each element here blocks on its
// own credit.Acquire, so a burst larger than the credit pool drains as
// credits are granted rather than all at once.
func (fc *FlowControlledRemoteConnection[T]) SendBatch(ctx context.Context, vs []T) error {
	for _, v := range vs {
		if res := fc.Send(ctx, v); !res.Ok() {
			return res
		}
	}
	return nil
}

// GrantCredits replenishes the local send-side credit pool. It is the
// only way credits are restored; received controlCredit frames are not
// passed to it automatically.
func (fc *FlowControlledRemoteConnection[T]) GrantCredits(n int64) {
	fc.credits.Release(n)
}

// Close flushes pending batched sends and tears down the underlying
// RemoteConnection.
func (fc *FlowControlledRemoteConnection[T]) Close() error {
	_ = fc.batcher.Close()
	return fc.RemoteConnection.Close()
}
