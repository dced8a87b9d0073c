// Package dma implements the GBA's four DMA channels: the
// immediate/VBlank/HBlank/special trigger arbitration and the four
// destination/source addressing modes.
package dma

import "github.com/advanceemu/gba/internal/irq"

// AddrControl is one of the four address-stepping modes a DMA channel's
// source or destination register can use.
type AddrControl int

const (
	AddrIncrement AddrControl = iota
	AddrDecrement
	AddrFixed
	AddrReload // destination only: increment, but reload to the start address on repeat
)

// Trigger selects when a channel becomes eligible to run.
type Trigger int

const (
	TriggerImmediate Trigger = iota
	TriggerVBlank
	TriggerHBlank
	TriggerSpecial
)

var irqSources = [4]irq.Source{irq.DMA0, irq.DMA1, irq.DMA2, irq.DMA3}

// Sound FIFO destinations (FIFO_A/FIFO_B). Channel 0 never feeds the
// sound FIFOs on real hardware (that's channels 1/2); a channel 0
// transfer whose destination lands on one of these is dropped.
const (
	fifoADest uint32 = 0x040000A0
	fifoBDest uint32 = 0x040000A4
)

// Channel is one DMA unit's register state plus the live cursor used
// while a transfer is in progress.
type Channel struct {
	Source, Dest uint32
	Count        uint32 // 14-bit (ch0-2) or 16-bit (ch3); 0 means maximum
	DestControl  AddrControl
	SrcControl   AddrControl
	Repeat       bool
	Unit32       bool // false: 16-bit units, true: 32-bit units
	Trigger      Trigger
	IRQOnDone    bool
	Enable       bool

	startSource, startDest uint32 // latched at trigger time, for AddrReload and Repeat
}

// Bus is the narrow memory interface DMA needs: plain word/halfword
// access, no region-specific quirks beyond what Bus already applies.
type Bus interface {
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// Controller holds the four channels and performs transfers directly
// against the bus; internal/emu calls OnVBlank/OnHBlank once per
// respective PPU event and RunImmediate whenever ENABLE is newly set on
// an immediate-trigger channel.
type Controller struct {
	Channels [4]Channel
	Bus      Bus
	IRQ      *irq.Controller
}

// RunImmediate fires channel i if it is enabled with TriggerImmediate.
// internal/emu calls this right after a channel's control register is
// written, since an immediate trigger fires as soon as it's armed.
func (c *Controller) RunImmediate(i int) {
	ch := &c.Channels[i]
	if ch.Enable && ch.Trigger == TriggerImmediate {
		c.run(i)
	}
}

// OnVBlank fires every enabled VBlank-triggered channel, in ascending
// channel order (0 has priority).
func (c *Controller) OnVBlank() { c.fireTrigger(TriggerVBlank) }

// OnHBlank fires every enabled HBlank-triggered channel.
func (c *Controller) OnHBlank() { c.fireTrigger(TriggerHBlank) }

func (c *Controller) fireTrigger(t Trigger) {
	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.Enable && ch.Trigger == t {
			c.run(i)
		}
	}
}

func (c *Controller) run(i int) {
	ch := &c.Channels[i]

	count := ch.Count
	if count == 0 {
		if i == 3 {
			count = 0x10000
		} else {
			count = 0x4000
		}
	}

	ch.startSource = ch.Source
	ch.startDest = ch.Dest
	src, dst := ch.Source, ch.Dest

	for n := uint32(0); n < count; n++ {
		if i == 0 && (dst == fifoADest || dst == fifoBDest) {
			// Channel 0 is never the sound-FIFO feed (that's channels 1/2);
			// a write landing on one of those destinations is dropped.
		} else if ch.Unit32 {
			c.Bus.Write32(dst, c.Bus.Read32(src))
		} else {
			c.Bus.Write16(dst, c.Bus.Read16(src))
		}
		src = stepAddr(src, ch.SrcControl, ch.Unit32)
		dst = stepAddr(dst, ch.DestControl, ch.Unit32)
	}

	ch.Source = src
	if ch.DestControl == AddrReload {
		ch.Dest = ch.startDest
	} else {
		ch.Dest = dst
	}

	if ch.IRQOnDone && c.IRQ != nil {
		c.IRQ.Raise(irqSources[i])
	}
	if !ch.Repeat {
		ch.Enable = false
	}
}

func stepAddr(addr uint32, mode AddrControl, unit32 bool) uint32 {
	step := uint32(2)
	if unit32 {
		step = 4
	}
	switch mode {
	case AddrDecrement:
		return addr - step
	case AddrFixed:
		return addr
	default: // AddrIncrement, AddrReload (reload only matters for Dest, applied by caller)
		return addr + step
	}
}
