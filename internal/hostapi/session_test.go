package hostapi_test

import (
	"testing"
	"time"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/emu"
	"github.com/advanceemu/gba/internal/hostapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine() *emu.Machine {
	c := cart.New(make([]byte, 0x1000), cart.BackupNone)
	m := emu.New(c, nil)
	m.Reset()
	return m
}

func TestSession_SubmitRunsOnOwningGoroutine(t *testing.T) {
	s := hostapi.NewSession("t1", newTestMachine())
	defer s.Close()

	v, err := s.Submit(func(m *emu.Machine) (interface{}, error) {
		return m.CPU.Regs.Get(15), nil
	})
	require.NoError(t, err)
	assert.Equal(t, newTestMachine().CPU.Regs.Get(15), v)
}

func TestSession_SubmitAfterCloseDisconnects(t *testing.T) {
	s := hostapi.NewSession("t2", newTestMachine())
	s.Close()

	// Give the run loop's select a moment to observe the closed done
	// channel before submitting.
	time.Sleep(10 * time.Millisecond)

	_, err := s.Submit(func(m *emu.Machine) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, hostapi.ErrHostQueueDisconnected)
}

func TestSession_FrameSlotPublishAndLatest(t *testing.T) {
	s := hostapi.NewSession("t3", newTestMachine())
	defer s.Close()

	assert.Nil(t, s.LatestFrame(), "no frame published yet")

	fr := &hostapi.FrameResponse{Width: 240, Height: 160, Pixels: make([]uint16, 240*160)}
	s.PublishFrame(fr)

	assert.Same(t, fr, s.LatestFrame())

	fr2 := &hostapi.FrameResponse{Width: 240, Height: 160}
	s.PublishFrame(fr2)
	assert.Same(t, fr2, s.LatestFrame(), "publish always overwrites the single slot")
}

func TestSessionManager_CreateGetDestroy(t *testing.T) {
	sm := hostapi.NewSessionManager()

	s, err := sm.Create(newTestMachine())
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, err := sm.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.Contains(t, sm.List(), s.ID)

	require.NoError(t, sm.Destroy(s.ID))
	_, err = sm.Get(s.ID)
	assert.ErrorIs(t, err, hostapi.ErrSessionNotFound)
}

func TestSessionManager_GetUnknownID(t *testing.T) {
	sm := hostapi.NewSessionManager()
	_, err := sm.Get("does-not-exist")
	assert.ErrorIs(t, err, hostapi.ErrSessionNotFound)
}
