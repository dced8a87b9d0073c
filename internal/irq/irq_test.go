package irq_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/irq"
	"github.com/stretchr/testify/assert"
)

func TestController_PendingRequiresIMEAndGatedIF(t *testing.T) {
	var c irq.Controller

	c.Raise(irq.VBlank)
	assert.False(t, c.Pending(), "IF is set but IME is off and IE doesn't enable it")

	c.WriteIME(true)
	assert.False(t, c.Pending(), "IME on, but IE still doesn't enable VBlank")

	c.WriteIE(1 << irq.VBlank)
	assert.True(t, c.Pending())
}

func TestController_WriteIFClearsOnlySetBits(t *testing.T) {
	var c irq.Controller
	c.Raise(irq.VBlank)
	c.Raise(irq.Timer0)

	c.WriteIF(1 << irq.VBlank)

	assert.Equal(t, uint16(1<<irq.Timer0), c.ReadIF(), "write-one-to-clear only acks VBlank")
}

func TestController_HaltAndExitHalt(t *testing.T) {
	var c irq.Controller
	assert.False(t, c.Halted())

	c.Halt()
	assert.True(t, c.Halted())

	c.ExitHalt()
	assert.False(t, c.Halted())
}

func TestController_RaiseLatchesIndependentlyOfGate(t *testing.T) {
	var c irq.Controller
	c.Raise(irq.DMA2)
	assert.Equal(t, uint16(1<<irq.DMA2), c.ReadIF(), "IF latches even with IME/IE both off")
}
