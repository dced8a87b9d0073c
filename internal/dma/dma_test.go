package dma_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/dma"
	"github.com/advanceemu/gba/internal/irq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	mem map[uint32]uint32
}

func newFakeBus() *fakeBus { return &fakeBus{mem: map[uint32]uint32{}} }

func (b *fakeBus) Read16(addr uint32) uint16  { return uint16(b.mem[addr]) }
func (b *fakeBus) Read32(addr uint32) uint32  { return b.mem[addr] }
func (b *fakeBus) Write16(addr uint32, v uint16) { b.mem[addr] = uint32(v) }
func (b *fakeBus) Write32(addr uint32, v uint32) { b.mem[addr] = v }

func TestController_RunImmediate_CopiesWords(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0xAAAAAAAA
	bus.mem[0x1004] = 0xBBBBBBBB

	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{
		Source: 0x1000, Dest: 0x2000, Count: 2, Unit32: true,
		SrcControl: dma.AddrIncrement, DestControl: dma.AddrIncrement,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(0)

	assert.Equal(t, uint32(0xAAAAAAAA), bus.mem[0x2000])
	assert.Equal(t, uint32(0xBBBBBBBB), bus.mem[0x2004])
	assert.False(t, c.Channels[0].Enable, "non-repeating channel disarms itself")
}

func TestController_RunImmediate_IgnoresWrongTrigger(t *testing.T) {
	bus := newFakeBus()
	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{Source: 0x1000, Dest: 0x2000, Count: 1, Trigger: dma.TriggerVBlank, Enable: true}

	c.RunImmediate(0)

	assert.Equal(t, uint32(0), bus.mem[0x2000], "a VBlank-triggered channel doesn't fire on RunImmediate")
}

func TestController_OnVBlank_FiresInChannelOrder(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0x11111111
	bus.mem[0x1100] = 0x22222222

	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{Source: 0x1000, Dest: 0x3000, Count: 1, Unit32: true, Trigger: dma.TriggerVBlank, Enable: true}
	c.Channels[1] = dma.Channel{Source: 0x1100, Dest: 0x3100, Count: 1, Unit32: true, Trigger: dma.TriggerVBlank, Enable: true}

	c.OnVBlank()

	assert.Equal(t, uint32(0x11111111), bus.mem[0x3000])
	assert.Equal(t, uint32(0x22222222), bus.mem[0x3100])
}

func TestController_DestReloadRestoresStartAddressOnRepeat(t *testing.T) {
	bus := newFakeBus()
	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{
		Source: 0x1000, Dest: 0x3000, Count: 2, Unit32: true,
		DestControl: dma.AddrReload, SrcControl: dma.AddrIncrement,
		Trigger: dma.TriggerImmediate, Repeat: true, Enable: true,
	}

	c.RunImmediate(0)

	assert.Equal(t, uint32(0x3000), c.Channels[0].Dest, "reload restores the destination for the next repeat")
	assert.True(t, c.Channels[0].Enable, "a repeating channel stays armed")
}

func TestController_ZeroCountMeansMaximum(t *testing.T) {
	bus := newFakeBus()
	c := &dma.Controller{Bus: bus}
	c.Channels[3] = dma.Channel{
		Source: 0x1000, Dest: 0x3000, Count: 0, Unit32: false,
		SrcControl: dma.AddrFixed, DestControl: dma.AddrIncrement,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(3)

	require.Equal(t, uint32(0x3000+0x10000*2), c.Channels[3].Dest, "channel 3's zero count means 0x10000 transfers")
}

func TestController_IRQOnDoneRaisesChannelSource(t *testing.T) {
	ctrl := &irq.Controller{}
	bus := newFakeBus()
	c := &dma.Controller{Bus: bus, IRQ: ctrl}
	c.Channels[2] = dma.Channel{Source: 0x1000, Dest: 0x2000, Count: 1, Trigger: dma.TriggerImmediate, IRQOnDone: true, Enable: true}

	c.RunImmediate(2)

	ctrl.WriteIME(true)
	ctrl.WriteIE(1 << irq.DMA2)
	assert.True(t, ctrl.Pending())
}

func TestController_Channel0SkipsSoundFIFODestinations(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0x11111111
	bus.mem[0x1004] = 0x22222222

	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{
		Source: 0x1000, Dest: 0x040000A0, Count: 2, Unit32: true,
		SrcControl: dma.AddrIncrement, DestControl: dma.AddrFixed,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(0)

	_, wrote := bus.mem[0x040000A0]
	assert.False(t, wrote, "channel 0 must never write to FIFO_A")
}

func TestController_Channel0SkipsFIFOBToo(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0x11111111

	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{
		Source: 0x1000, Dest: 0x040000A4, Count: 1, Unit32: true,
		SrcControl: dma.AddrIncrement, DestControl: dma.AddrFixed,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(0)

	_, wrote := bus.mem[0x040000A4]
	assert.False(t, wrote, "channel 0 must never write to FIFO_B")
}

func TestController_Channel1WritesToSoundFIFONormally(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0x33333333

	c := &dma.Controller{Bus: bus}
	c.Channels[1] = dma.Channel{
		Source: 0x1000, Dest: 0x040000A0, Count: 1, Unit32: true,
		SrcControl: dma.AddrIncrement, DestControl: dma.AddrFixed,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(1)

	assert.Equal(t, uint32(0x33333333), bus.mem[0x040000A0], "only channel 0 has the FIFO write-skip restriction")
}

func TestController_Channel0WritesNormallyToOtherDestinations(t *testing.T) {
	bus := newFakeBus()
	bus.mem[0x1000] = 0x44444444

	c := &dma.Controller{Bus: bus}
	c.Channels[0] = dma.Channel{
		Source: 0x1000, Dest: 0x02000000, Count: 1, Unit32: true,
		SrcControl: dma.AddrIncrement, DestControl: dma.AddrFixed,
		Trigger: dma.TriggerImmediate, Enable: true,
	}

	c.RunImmediate(0)

	assert.Equal(t, uint32(0x44444444), bus.mem[0x02000000])
}
