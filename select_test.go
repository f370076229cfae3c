package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_ImmediateArmWinsWithoutBlocking(t *testing.T) {
	_, r1, _ := NewUnbounded[int]()
	s2, r2, _ := NewUnbounded[int]()
	s2.TrySend(5)

	got, err := Select(context.Background(),
		OnRecv(r1, func(res RecvResult[int]) string { return "r1" }),
		OnRecv(r2, func(res RecvResult[int]) string { return "r2" }),
	)
	require.NoError(t, err)
	assert.Equal(t, "r2", got)
}

func TestSelect_BlocksUntilOneArmReady(t *testing.T) {
	s, r, _ := NewUnbounded[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.TrySend(1)
	}()

	got, err := Select(context.Background(),
		OnRecv(r, func(res RecvResult[int]) int { return res.Value }),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestSelect_ContextCancelReturnsError(t *testing.T) {
	_, r, _ := NewUnbounded[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Select(ctx,
		OnRecv(r, func(res RecvResult[int]) int { return res.Value }),
	)
	assert.Error(t, err)
}

func TestSelect_OnDelayActsAsTimeout(t *testing.T) {
	_, r, _ := NewUnbounded[int]()
	got, err := Select(context.Background(),
		OnRecv(r, func(res RecvResult[int]) string { return "value" }),
		OnDelay(10*time.Millisecond, func() string { return "timeout" }),
	)
	require.NoError(t, err)
	assert.Equal(t, "timeout", got)
}

func TestSelect_EmptyArmsReturnsError(t *testing.T) {
	_, err := Select[int](context.Background())
	assert.ErrorIs(t, err, ErrSelectEmpty)
}

func TestSelect_OnSendFires(t *testing.T) {
	s, r, _ := NewBounded[int](Capacity(1))
	got, err := Select(context.Background(),
		OnSend(s, 42, func(res SendResult) bool { return res.Ok() }),
	)
	require.NoError(t, err)
	assert.True(t, got)

	res := r.Recv(context.Background())
	require.True(t, res.Ok())
	assert.Equal(t, 42, res.Value)
}
