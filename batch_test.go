package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecvBatch_FillsToMaxSizeWithoutWaiting(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.True(t, s.TrySend(i).Ok())
	}

	out, res := RecvBatch(context.Background(), r, BatchConfig{MaxSize: 3, MinSize: 1})
	require.True(t, res.Ok())
	assert.Equal(t, []int{0, 1, 2}, out)
}

func TestRecvBatch_PartialTimeoutReturnsShortBatch(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())

	start := time.Now()
	out, res := RecvBatch(context.Background(), r, BatchConfig{MaxSize: 10, MinSize: 5, PartialTimeout: 20 * time.Millisecond})
	elapsed := time.Since(start)

	require.True(t, res.Ok())
	assert.Equal(t, []int{1}, out)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestRecvBatch_ReachesMinSizeBeforeTimeout(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())

	go func() {
		time.Sleep(5 * time.Millisecond)
		s.TrySend(2)
		s.TrySend(3)
	}()

	out, res := RecvBatch(context.Background(), r, BatchConfig{MaxSize: 10, MinSize: 3, PartialTimeout: time.Second})
	require.True(t, res.Ok())
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestRecvBatch_DisconnectBeforeFirstValue(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	s.Close()

	out, res := RecvBatch(context.Background(), r, BatchConfig{})
	assert.Empty(t, out)
	assert.Equal(t, RecvDisconnected, res.Kind)
}

func TestRecvBatch_DisconnectMidBatchReturnsAccumulated(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())
	s.Close()

	out, res := RecvBatch(context.Background(), r, BatchConfig{MaxSize: 10, MinSize: 5, PartialTimeout: 50 * time.Millisecond})
	assert.Equal(t, []int{1}, out)
	assert.Equal(t, RecvDisconnected, res.Kind)
}
