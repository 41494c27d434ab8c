package kosmo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-kosmo/bus"
)

func TestSession_State(t *testing.T) {
	s, err := newSession(bus.AddrTempo)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())

	s.inProgrammingMode = true
	assert.Equal(t, StateProgrammingMode, s.State())

	s.begin()
	assert.Equal(t, StateRequesting, s.State())
	s.end()
	assert.Equal(t, StateProgrammingMode, s.State())

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "programming", StateProgrammingMode.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestSession_Due(t *testing.T) {
	s, err := newSession(bus.AddrSampler)
	require.NoError(t, err)

	interval := 3 * time.Second
	assert.True(t, s.due(epoch, interval), "never requested")

	s.lastGetRequest = epoch
	assert.False(t, s.due(epoch.Add(interval), interval))
	assert.True(t, s.due(epoch.Add(interval+time.Nanosecond), interval))

	s.begin()
	assert.False(t, s.due(epoch.Add(time.Hour), interval), "never while an exchange runs")
}

func TestSession_FailAndRelease(t *testing.T) {
	s, err := newSession(bus.AddrDrumSequencer)
	require.NoError(t, err)
	s.inProgrammingMode = true

	assert.False(t, s.fail(epoch, 3))
	assert.False(t, s.fail(epoch, 3))
	assert.Equal(t, 2, s.RetryCount())

	settleAt := epoch.Add(time.Minute)
	assert.True(t, s.fail(settleAt, 3))
	assert.Zero(t, s.RetryCount())
	assert.False(t, s.InProgrammingMode())
	assert.Equal(t, settleAt, s.LastGetRequest())

	s.inProgrammingMode = true
	s.retryCount = 2
	s.release()
	assert.False(t, s.InProgrammingMode())
	assert.Zero(t, s.RetryCount())
	assert.True(t, s.LastGetRequest().IsZero())
}

func TestNewSession_UnknownSlave(t *testing.T) {
	_, err := newSession(bus.Address(0x42))
	require.ErrorIs(t, err, ErrUnknownSlave)
}
