package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_YieldsValuesInOrder(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.True(t, s.TrySend(i).Ok())
	}
	s.Close()

	var got []int
	for res := range Stream(context.Background(), r) {
		if !res.Ok() {
			break
		}
		got = append(got, res.Value)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestStream_EarlyBreakStopsIteration(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.True(t, s.TrySend(i).Ok())
	}

	var got []int
	for res := range Stream(context.Background(), r) {
		got = append(got, res.Value)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, got)
}

func TestStream_SecondSubscriptionFailsWithErrAlreadyConsumed(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(1).Ok())

	for res := range Stream(context.Background(), r) {
		_ = res
		break
	}

	out, res := RecvBatch(context.Background(), r, BatchConfig{})
	assert.Empty(t, out)
	assert.Equal(t, RecvFailed, res.Kind)
	assert.Equal(t, ErrAlreadyConsumed, res.Cause)
}

func TestStream_ContextCancelEndsIterationWithFailure(t *testing.T) {
	_, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var last RecvResult[int]
	for res := range Stream(ctx, r) {
		last = res
	}
	assert.False(t, last.Ok())
}
