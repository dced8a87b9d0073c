// Package timer implements the GBA's four 16-bit timers: prescaled
// counting, reload-on-overflow, cascade chaining, and overflow IRQs.
package timer

import "github.com/advanceemu/gba/internal/irq"

var prescalers = [4]uint32{1, 64, 256, 1024}
var irqSources = [4]irq.Source{irq.Timer0, irq.Timer1, irq.Timer2, irq.Timer3}

// Channel is one of the four timer units.
type Channel struct {
	Counter   uint16
	Reload    uint16
	Prescaler int  // index into prescalers: 0=1, 1=64, 2=256, 3=1024
	Cascade   bool // count-up: increment on the previous channel's overflow, ignoring Prescaler
	IRQEnable bool
	Enable    bool

	subCycles uint32 // accumulated bus cycles not yet consumed by the prescaler
}

// Bank is the four-channel unit, wired into the bus's I/O router and
// ticked once per CPU cycle from internal/emu's per-tick sequencing.
type Bank struct {
	Channels [4]Channel
	IRQ      *irq.Controller
}

// Tick advances every enabled, non-cascaded channel by one bus cycle,
// propagating overflow into cascade-chained channels in ascending order
// so a channel 1 cascade sees channel 0's overflow from this same tick.
func (b *Bank) Tick() {
	overflowed := false
	for i := range b.Channels {
		ch := &b.Channels[i]
		if !ch.Enable {
			overflowed = false
			continue
		}
		if ch.Cascade {
			if overflowed {
				overflowed = b.stepOnce(i)
			} else {
				overflowed = false
			}
			continue
		}
		ch.subCycles++
		period := prescalers[ch.Prescaler]
		overflowed = false
		for ch.subCycles >= period {
			ch.subCycles -= period
			overflowed = b.stepOnce(i) || overflowed
		}
	}
}

// stepOnce increments channel i's counter once, reloading and raising
// its IRQ (and reporting overflow to the caller for cascade purposes) on
// wraparound.
func (b *Bank) stepOnce(i int) bool {
	ch := &b.Channels[i]
	ch.Counter++
	if ch.Counter != 0 {
		return false
	}
	ch.Counter = ch.Reload
	if ch.IRQEnable && b.IRQ != nil {
		b.IRQ.Raise(irqSources[i])
	}
	return true
}

// ReadControl/WriteControl pack and unpack the TMxCNT_H control byte
// layout: bits 0-1 prescaler select, bit 2 cascade, bit 6 IRQ enable,
// bit 7 start.
func (ch *Channel) ReadControl() uint8 {
	var v uint8
	v |= uint8(ch.Prescaler) & 0x3
	if ch.Cascade {
		v |= 1 << 2
	}
	if ch.IRQEnable {
		v |= 1 << 6
	}
	if ch.Enable {
		v |= 1 << 7
	}
	return v
}

func (ch *Channel) WriteControl(v uint8) {
	wasEnabled := ch.Enable
	ch.Prescaler = int(v & 0x3)
	ch.Cascade = v&(1<<2) != 0
	ch.IRQEnable = v&(1<<6) != 0
	ch.Enable = v&(1<<7) != 0
	if ch.Enable && !wasEnabled {
		ch.Counter = ch.Reload
		ch.subCycles = 0
	}
}
