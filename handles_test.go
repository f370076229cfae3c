package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiver_RecvTimeoutReturnsValueBeforeDeadline(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(9).Ok())

	res := r.RecvTimeout(50 * time.Millisecond)
	require.True(t, res.Ok())
	assert.Equal(t, 9, res.Value)
}

func TestReceiver_RecvTimeoutExpiresWithoutValue(t *testing.T) {
	_, r, err := NewUnbounded[int]()
	require.NoError(t, err)

	start := time.Now()
	res := r.RecvTimeout(10 * time.Millisecond)
	assert.Equal(t, RecvTimeout, res.Kind)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSender_SendTimeoutSucceedsWhenSpaceAvailable(t *testing.T) {
	s, _, err := NewUnbounded[int]()
	require.NoError(t, err)

	res := s.SendTimeout(1, 50*time.Millisecond)
	assert.True(t, res.Ok())
}

func TestSender_SendTimeoutExpiresWhenBlocked(t *testing.T) {
	s, _, err := NewBounded[int](Capacity(1))
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())

	start := time.Now()
	res := s.SendTimeout(2, 10*time.Millisecond)
	assert.Equal(t, SendTimeout, res.Kind)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSender_SendBatchStopsAtFirstFailure(t *testing.T) {
	s, r, err := NewBounded[int](Capacity(2))
	require.NoError(t, err)

	err2 := s.SendBatch(context.Background(), []int{1, 2})
	require.NoError(t, err2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err2 = s.SendBatch(ctx, []int{3, 4})
	assert.Error(t, err2)

	res := r.TryRecv()
	require.True(t, res.Ok())
	assert.Equal(t, 1, res.Value)
}

func TestReceiver_RecvBatchMethodDelegatesToPackageFunc(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.True(t, s.TrySend(i).Ok())
	}

	out, err2 := r.RecvBatch(context.Background(), BatchConfig{MaxSize: 3, MinSize: 1})
	require.NoError(t, err2)
	assert.Equal(t, []int{0, 1, 2}, out)
}

func TestReceiver_RecvBatchMethodReportsDisconnect(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	s.Close()

	out, err2 := r.RecvBatch(context.Background(), BatchConfig{})
	assert.Empty(t, out)
	assert.Error(t, err2)
}

func TestReceiver_StreamMethodYieldsValues(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())
	require.True(t, s.TrySend(2).Ok())
	s.Close()

	var got []int
	for res := range r.Stream(context.Background()) {
		if !res.Ok() {
			break
		}
		got = append(got, res.Value)
	}
	assert.Equal(t, []int{1, 2}, got)
}
