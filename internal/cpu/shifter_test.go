package cpu_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/cpu"
	"github.com/stretchr/testify/assert"
)

func TestShift_LSL(t *testing.T) {
	tests := []struct {
		name       string
		value      uint32
		amount     int
		regSourced bool
		wantResult uint32
		wantCarry  bool
	}{
		{"immediate LSL #0 is a pass-through", 0x1, 0, false, 0x1, false},
		{"LSL by 1", 0x80000000, 1, false, 0, true},
		{"LSL by 31", 0x2, 31, false, 0, true},
		{"LSL by 32 zeroes and takes bit 0 as carry", 0x1, 32, true, 0, true},
		{"LSL by more than 32 zeroes with no carry", 0x1, 33, true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, carry, _ := cpu.Shift(tt.value, cpu.ShiftLSL, tt.amount, tt.regSourced, false)
			assert.Equal(t, tt.wantResult, result)
			assert.Equal(t, tt.wantCarry, carry)
		})
	}
}

func TestShift_LSRImmediateZeroMeansThirtyTwo(t *testing.T) {
	result, carry, performed := cpu.Shift(0x80000000, cpu.ShiftLSR, 0, false, false)
	assert.Equal(t, uint32(0), result)
	assert.True(t, carry)
	assert.True(t, performed)
}

func TestShift_ASRSignExtends(t *testing.T) {
	result, carry, _ := cpu.Shift(0x80000000, cpu.ShiftASR, 32, true, false)
	assert.Equal(t, uint32(0xFFFFFFFF), result, "ASR of a negative value by >=32 saturates to all-ones")
	assert.True(t, carry)
}

func TestShift_RORByMultipleOf32CarriesBit31(t *testing.T) {
	result, carry, performed := cpu.Shift(0x80000001, cpu.ShiftROR, 32, true, false)
	assert.Equal(t, uint32(0x80000001), result)
	assert.True(t, carry)
	assert.True(t, performed)
}

func TestShift_RRX(t *testing.T) {
	result, carry, performed := cpu.Shift(0x2, cpu.ShiftRRX, 0, false, true)
	assert.Equal(t, uint32(0x80000001), result, "RRX rotates in the incoming carry at bit 31")
	assert.False(t, carry, "bit 0 of the original value becomes the new carry")
	assert.True(t, performed)
}

func TestShift_RegisterSourcedZeroIsPassThrough(t *testing.T) {
	result, carry, performed := cpu.Shift(0x55, cpu.ShiftLSR, 0, true, true)
	assert.Equal(t, uint32(0x55), result)
	assert.True(t, carry, "carry is left unchanged, unlike the immediate #0 case")
	assert.False(t, performed)
}
