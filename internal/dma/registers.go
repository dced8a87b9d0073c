package dma

// ReadControl packs DMAxCNT_H (§3): dest/source addressing mode, repeat,
// unit size, start timing, IRQ-on-done, and enable.
func (ch *Channel) ReadControl() uint16 {
	v := uint16(ch.DestControl&0x3) << 5
	v |= uint16(ch.SrcControl&0x3) << 7
	if ch.Repeat {
		v |= 1 << 9
	}
	if ch.Unit32 {
		v |= 1 << 10
	}
	v |= uint16(ch.Trigger&0x3) << 12
	if ch.IRQOnDone {
		v |= 1 << 14
	}
	if ch.Enable {
		v |= 1 << 15
	}
	return v
}

// WriteControl unpacks DMAxCNT_H. The caller (internal/emu's IO router)
// is responsible for invoking Controller.RunImmediate after a write that
// newly sets Enable with TriggerImmediate, since an immediate trigger
// fires as soon as it's armed rather than waiting for the next PPU event.
func (ch *Channel) WriteControl(v uint16) {
	ch.DestControl = AddrControl((v >> 5) & 0x3)
	ch.SrcControl = AddrControl((v >> 7) & 0x3)
	ch.Repeat = v&(1<<9) != 0
	ch.Unit32 = v&(1<<10) != 0
	ch.Trigger = Trigger((v >> 12) & 0x3)
	ch.IRQOnDone = v&(1<<14) != 0
	ch.Enable = v&(1<<15) != 0
}

// WriteSourceLow/WriteSourceHigh and WriteDestLow/WriteDestHigh update
// DMAxSAD/DMAxDAD a halfword at a time, matching how the bus dispatches
// 16-bit and 32-bit I/O writes down to their constituent halves.
func (ch *Channel) WriteSourceLow(v uint16)  { ch.Source = ch.Source&0xFFFF0000 | uint32(v) }
func (ch *Channel) WriteSourceHigh(v uint16) { ch.Source = ch.Source&0xFFFF | uint32(v)<<16 }
func (ch *Channel) WriteDestLow(v uint16)    { ch.Dest = ch.Dest&0xFFFF0000 | uint32(v) }
func (ch *Channel) WriteDestHigh(v uint16)   { ch.Dest = ch.Dest&0xFFFF | uint32(v)<<16 }

// WriteCount sets DMAxCNT_L. The register is write-only on real
// hardware; reads of this address return open bus, which the IO router
// handles by simply not calling a Read method here.
func (ch *Channel) WriteCount(v uint16) { ch.Count = uint32(v) }
