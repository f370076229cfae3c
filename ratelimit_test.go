package chanflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_DropsBurstBeyondRate(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	ts := Throttle(s, 50*time.Millisecond)

	assert.True(t, ts.TrySend(1).Ok())
	assert.Equal(t, SendOk, ts.TrySend(2).Kind)

	res := r.TryRecv()
	require.True(t, res.Ok())
	assert.Equal(t, 1, res.Value)
	assert.Equal(t, RecvEmpty, r.TryRecv().Kind)
}

func TestThrottle_AdmitsAfterWindow(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	ts := Throttle(s, 20*time.Millisecond)

	require.True(t, ts.TrySend(1).Ok())
	time.Sleep(30 * time.Millisecond)
	require.True(t, ts.TrySend(2).Ok())

	res := r.Recv(context.Background())
	require.True(t, res.Ok())
	assert.Equal(t, 1, res.Value)
	res = r.Recv(context.Background())
	require.True(t, res.Ok())
	assert.Equal(t, 2, res.Value)
}

func TestDebounce_CoalescesBurstToLastValue(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	ds := Debounce(s, 20*time.Millisecond)

	ds.TrySend(1)
	ds.TrySend(2)
	ds.TrySend(3)

	res := r.Recv(context.Background())
	require.True(t, res.Ok())
	assert.Equal(t, 3, res.Value)
}
