package keypad

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionSetBasicKeyModern(t *testing.T) {
	tr := &fakeTransport{}
	s := Open(zap.NewNop(), tr)
	require.Equal(t, DialectModern, s.Dialect())

	err := s.SetBasicKey(5, 4, ModCtrl|ModShift, 2)
	require.NoError(t, err)

	// One detection probe, then exactly three command frames, each prefixed
	// with the detected report id.
	frames := tr.writes[1:]
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{3, 0xA1, 2, 0, 0, 0, 0, 0, 0}, frames[0])
	assert.Equal(t, []byte{3, 5, 0x21, 1, 0, 3, 4, 0, 0}, frames[1])
	assert.Equal(t, []byte{3, 0xAA, 0xAA, 0, 0, 0, 0, 0, 0}, frames[2])
}

func TestSessionSetBasicKeyLegacy(t *testing.T) {
	tr := &fakeTransport{rejects: map[byte]error{3: errRejected, 2: errRejected}}
	s := Open(zap.NewNop(), tr)
	require.Equal(t, DialectLegacy, s.Dialect())
	require.Equal(t, byte(0), s.ReportID())

	err := s.SetBasicKey(5, 4, ModCtrl|ModShift, 2)
	require.NoError(t, err)

	// Legacy firmware gets no layer switch and a bare key-type nibble,
	// whatever the requested layer.
	frames := tr.writes[1:]
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{0, 5, 0x01, 1, 0, 3, 4, 0, 0}, frames[0])
	assert.Equal(t, []byte{0, 0xAA, 0xAA, 0, 0, 0, 0, 0, 0}, frames[1])
}

func TestSessionSetMediaKey(t *testing.T) {
	tr := &fakeTransport{}
	s := Open(zap.NewNop(), tr)

	err := s.SetMediaKey(13, 233, 1)
	require.NoError(t, err)

	frames := tr.writes[1:]
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{3, 0xA1, 1, 0, 0, 0, 0, 0, 0}, frames[0])
	assert.Equal(t, []byte{3, 13, 0x12, 233, 0, 0, 0, 0, 0}, frames[1])
	assert.Equal(t, []byte{3, 0xAA, 0xAA, 0, 0, 0, 0, 0, 0}, frames[2])
}

func TestSessionSetLedMode(t *testing.T) {
	tr := &fakeTransport{}
	s := Open(zap.NewNop(), tr)

	err := s.SetLedMode(1)
	require.NoError(t, err)

	// No layer switch regardless of dialect, and the LED-flavored commit.
	frames := tr.writes[1:]
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{3, 0xB0, 0x08, 1, 0, 0, 0, 0, 0}, frames[0])
	assert.Equal(t, []byte{3, 0xAA, 0xA1, 0, 0, 0, 0, 0, 0}, frames[1])
}

func TestSessionPartialCommandFailure(t *testing.T) {
	// Write 0 is the detection probe; writes 1-3 are the command. Fail the
	// flash commit.
	tr := &fakeTransport{failAt: map[int]error{3: errRejected}}
	s := Open(zap.NewNop(), tr)
	require.Equal(t, DialectModern, s.Dialect())

	err := s.SetBasicKey(1, 4, 0, 1)
	require.Error(t, err)

	var partial *PartialCommandError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 2, partial.Sent)
	assert.Equal(t, 3, partial.Total)
	assert.ErrorIs(t, err, errRejected)

	// The key-set frame still went out before the failure.
	assert.Len(t, tr.writes, 3)
}

func TestSessionLedCommitFailure(t *testing.T) {
	tr := &fakeTransport{failAt: map[int]error{2: errRejected}}
	s := Open(zap.NewNop(), tr)

	err := s.SetLedMode(2)
	var partial *PartialCommandError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Sent)
	assert.Equal(t, 2, partial.Total)
}

func TestSessionFirstFrameFailureIsNotPartial(t *testing.T) {
	tr := &fakeTransport{failAt: map[int]error{1: errRejected}}
	s := Open(zap.NewNop(), tr)

	err := s.SetLedMode(2)
	require.Error(t, err)

	var partial *PartialCommandError
	assert.False(t, errors.As(err, &partial), "nothing was applied, plain I/O error expected")
	assert.ErrorIs(t, err, errRejected)
}

func TestSessionClosed(t *testing.T) {
	tr := &fakeTransport{}
	s := Open(zap.NewNop(), tr)

	require.NoError(t, s.Close())
	assert.True(t, tr.closed)

	assert.ErrorIs(t, s.SetBasicKey(1, 4, 0, 1), ErrNotConnected)
	assert.ErrorIs(t, s.SetMediaKey(1, 233, 1), ErrNotConnected)
	assert.ErrorIs(t, s.SetLedMode(0), ErrNotConnected)

	// Close is idempotent.
	require.NoError(t, s.Close())
}
