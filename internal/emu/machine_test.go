package emu_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/emu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(rom []byte) *emu.Machine {
	c := cart.New(rom, cart.BackupNone)
	m := emu.New(c, nil)
	m.Reset()
	return m
}

func TestMachine_Reset_NoBIOSStartsAtCartridgeEntry(t *testing.T) {
	m := newMachine(make([]byte, 0x1000))
	assert.Equal(t, uint32(0x08000000), m.CPU.Regs.GetRawPC())
	assert.Nil(t, m.LastError)
}

func TestMachine_Reset_WithBIOSStartsAtResetVector(t *testing.T) {
	c := cart.New(make([]byte, 0x1000), cart.BackupNone)
	bios := make([]byte, 0x4000)
	bios[0] = 0xFF // non-zero so biosLoaded() detects a real image
	m := emu.New(c, bios)
	m.Reset()
	assert.Equal(t, uint32(0x00000000), m.CPU.Regs.GetRawPC())
}

func TestMachine_SetKey_ActiveLowLatch(t *testing.T) {
	m := newMachine(make([]byte, 0x1000))

	before := m.ReadMem(0x04000130, 2)
	assert.Equal(t, uint32(0x03FF), before, "every line released reads as all 1s")

	m.SetKey(emu.KeyA, true)
	after := m.ReadMem(0x04000130, 2)
	assert.Equal(t, uint32(0x03FE), after, "pressing A clears only its bit")

	m.SetKey(emu.KeyA, false)
	assert.Equal(t, uint32(0x03FF), m.ReadMem(0x04000130, 2))
}

func TestMachine_ReadWriteMem_RoundTrips(t *testing.T) {
	m := newMachine(make([]byte, 0x1000))

	m.WriteMem(0x02000000, 4, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), m.ReadMem(0x02000000, 4))

	m.WriteMem(0x03000010, 1, 0x7A)
	assert.Equal(t, uint32(0x7A), m.ReadMem(0x03000010, 1))
}

func TestMachine_Breakpoint_StopsStep(t *testing.T) {
	m := newMachine(make([]byte, 0x1000))

	pc := m.CPU.Regs.GetRawPC()
	m.AddBreakpoint(pc)

	// The pipeline takes three ticks to fill after a flush before the
	// instruction fetched from pc is the one actually retired.
	var err error
	for i := 0; i < 3; i++ {
		err = m.Step()
		if err != nil {
			break
		}
	}
	require.ErrorIs(t, err, emu.ErrBreakpointHit)

	m.RemoveBreakpoint(pc)
}

func TestMachine_Step_HaltsOnceLastErrorSet(t *testing.T) {
	m := newMachine(make([]byte, 0x1000))
	m.LastError = emu.ErrBreakpointHit

	err := m.Step()
	require.Error(t, err)
}

func TestMachine_SaveLoadBackup_RoundTrips(t *testing.T) {
	c := cart.New(make([]byte, 0x1000), cart.BackupSRAM)
	m := emu.New(c, nil)
	m.Reset()

	m.Cart.WriteBackup8(0x5, 0x9A)
	saved := m.SaveBackup()

	c2 := cart.New(make([]byte, 0x1000), cart.BackupSRAM)
	m2 := emu.New(c2, nil)
	m2.Reset()
	m2.LoadBackup(saved)

	assert.Equal(t, uint8(0x9A), m2.Cart.ReadBackup8(0x5))
}
