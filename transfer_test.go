package chanflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-chanflow/platform"
)

func TestSender_PackUnpackRoundTrip(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)

	payload, err := s.Pack()
	require.NoError(t, err)
	assert.Equal(t, platform.RoleSender, payload.Role)

	s2, err := UnpackSender[int](payload)
	require.NoError(t, err)

	require.True(t, s2.TrySend(7).Ok())
	res := r.TryRecv()
	require.True(t, res.Ok())
	assert.Equal(t, 7, res.Value)
}

func TestReceiver_PackUnpackRoundTrip(t *testing.T) {
	s, r, err := NewUnbounded[int]()
	require.NoError(t, err)
	require.True(t, s.TrySend(9).Ok())

	payload, err := r.Pack()
	require.NoError(t, err)
	assert.Equal(t, platform.RoleReceiver, payload.Role)

	r2, err := UnpackReceiver[int](payload)
	require.NoError(t, err)

	res := r2.TryRecv()
	require.True(t, res.Ok())
	assert.Equal(t, 9, res.Value)
}

func TestSender_PackTwiceFails(t *testing.T) {
	s, _, err := NewUnbounded[int]()
	require.NoError(t, err)

	_, err = s.Pack()
	require.NoError(t, err)

	_, err = s.Pack()
	assert.ErrorIs(t, err, ErrTransferTwice)
}

func TestUnpackSender_RejectsStaleTransferredPayload(t *testing.T) {
	_, err := UnpackSender[int](platform.TransferablePayload{ChannelID: 1, Role: platform.RoleSender, Transferred: true})
	assert.ErrorIs(t, err, ErrTransferTwice)
}

func TestUnpackSender_RejectsWrongRole(t *testing.T) {
	s, _, err := NewUnbounded[int]()
	require.NoError(t, err)

	payload, err := s.Pack()
	require.NoError(t, err)
	payload.Role = platform.RoleReceiver

	_, err = UnpackSender[int](payload)
	assert.Error(t, err)
}

func TestUnpackSender_RejectsUnknownChannelID(t *testing.T) {
	_, err := UnpackSender[int](platform.TransferablePayload{ChannelID: -1, Role: platform.RoleSender})
	assert.ErrorIs(t, err, ErrClosed)
}
