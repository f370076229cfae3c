package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-chanflow/platform"
)

// pipePort/pipeReceiver connect two RemoteConnections in-process over a
// buffered Go channel, standing in for a real socket so the control-frame
// protocol can be exercised without a network.
type pipePort struct {
	out chan<- []byte
}

func (p pipePort) Send(ctx context.Context, frame []byte) error {
	select {
	case p.out <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p pipePort) Close() error { return nil }

type pipeReceiver struct {
	in <-chan []byte
}

func (p pipeReceiver) Recv(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-p.in:
		if !ok {
			return nil, ErrClosed
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p pipeReceiver) Close() error { return nil }

func newPipe() (platform.Port, platform.Receiver, platform.Port, platform.Receiver) {
	ab := make(chan []byte, 16)
	ba := make(chan []byte, 16)
	return pipePort{out: ab}, pipeReceiver{in: ba}, pipePort{out: ba}, pipeReceiver{in: ab}
}

func TestRemoteConnection_DeliversValueAcrossPipe(t *testing.T) {
	portA, recvA, portB, recvB := newPipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connA, err := NewRemoteConnection[int](ctx, portA, recvA)
	require.NoError(t, err)
	defer connA.Close()

	connB, err := NewRemoteConnection[int](ctx, portB, recvB)
	require.NoError(t, err)
	defer connB.Close()

	require.NoError(t, connA.SendToPeer(ctx, 42))

	res := connB.LocalReceiver().Recv(ctx)
	require.True(t, res.Ok())
	assert.Equal(t, 42, res.Value)
}

func TestFlowControlledRemoteConnection_CreditExhaustionBlocksTrySend(t *testing.T) {
	portA, recvA, portB, recvB := newPipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connA, err := NewFlowControlledRemoteConnection[int](ctx, portA, recvA, FlowControlConfig{InitialCredits: 1})
	require.NoError(t, err)
	defer connA.Close()

	connB, err := NewRemoteConnection[int](ctx, portB, recvB)
	require.NoError(t, err)
	defer connB.Close()

	assert.True(t, connA.TrySend(1).Ok())
	assert.False(t, connA.TrySend(2).Ok())

	connA.GrantCredits(1)
	assert.True(t, connA.TrySend(3).Ok())
}

func TestFlowControlledRemoteConnection_BatchesReachPeer(t *testing.T) {
	portA, recvA, portB, recvB := newPipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connA, err := NewFlowControlledRemoteConnection[int](ctx, portA, recvA, FlowControlConfig{
		InitialCredits: 8,
		BatchSize:      4,
		BatchInterval:  5 * time.Millisecond,
	})
	require.NoError(t, err)
	defer connA.Close()

	connB, err := NewRemoteConnection[int](ctx, portB, recvB)
	require.NoError(t, err)
	defer connB.Close()

	for i := 0; i < 4; i++ {
		assert.True(t, connA.TrySend(i).Ok())
	}

	for i := 0; i < 4; i++ {
		res := connB.LocalReceiver().Recv(ctx)
		require.True(t, res.Ok())
		assert.Equal(t, i, res.Value)
	}
}

func TestFlowControlledRemoteConnection_FlushAboveOneCoalescesIntoSingleFrame(t *testing.T) {
	portA, recvA, portB, recvB := newPipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connA, err := NewFlowControlledRemoteConnection[int](ctx, portA, recvA, FlowControlConfig{
		InitialCredits: 8,
		BatchSize:      3,
		BatchInterval:  time.Second,
	})
	require.NoError(t, err)
	defer connA.Close()

	connB, err := NewRemoteConnection[int](ctx, portB, recvB)
	require.NoError(t, err)
	defer connB.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, connA.TrySend(i).Ok())
	}

	for i := 0; i < 3; i++ {
		res := connB.LocalReceiver().Recv(ctx)
		require.True(t, res.Ok())
		assert.Equal(t, i, res.Value)
	}
}

func TestControlFrame_RoundTripsThroughEncodeDecode(t *testing.T) {
	frame, err := encodeFrame(controlFrame{Kind: controlCredit, Credits: 7})
	require.NoError(t, err)

	decoded, err := decodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, controlCredit, decoded.Kind)
	assert.Equal(t, int64(7), decoded.Credits)
}

func TestDecodeFrame_RejectsMissingMarker(t *testing.T) {
	_, err := decodeFrame([]byte("not-a-chanflow-frame"))
	assert.Error(t, err)
}
