package emu

// ioRouter implements bus.IOPorts by dispatching byte-granular I/O
// accesses to whichever peripheral owns the addressed register, and
// reassembling the 16-/32-bit register values those peripherals keep
// from the pair (or quad) of byte accesses the bus issues for a wide
// load/store. Grounded on the teacher's memory.go segment dispatch,
// generalized from single-permission segments to per-register routing.
type ioRouter struct {
	m *Machine
}

func (rt *ioRouter) ReadIO8(addr uint32) uint8 {
	switch {
	case addr < 0x56:
		return rt.readPPU(addr)
	case addr >= 0xB0 && addr < 0xE0:
		return rt.readDMA(addr)
	case addr >= 0x100 && addr < 0x110:
		return rt.readTimer(addr)
	case addr >= 0x130 && addr < 0x132:
		return byteOf16(addr-0x130, rt.m.keys)
	case addr >= 0x200 && addr < 0x202:
		return byteOf16(addr-0x200, rt.m.IRQ.ReadIE())
	case addr >= 0x202 && addr < 0x204:
		return byteOf16(addr-0x202, rt.m.IRQ.ReadIF())
	case addr >= 0x208 && addr < 0x20A:
		v := uint16(0)
		if rt.m.IRQ.ReadIME() {
			v = 1
		}
		return byteOf16(addr-0x208, v)
	default:
		return 0
	}
}

func (rt *ioRouter) WriteIO8(addr uint32, v uint8) {
	switch {
	case addr < 0x56:
		rt.writePPU(addr, v)
	case addr >= 0xB0 && addr < 0xE0:
		rt.writeDMA(addr, v)
	case addr >= 0x100 && addr < 0x110:
		rt.writeTimer(addr, v)
	case addr >= 0x200 && addr < 0x202:
		rt.m.IRQ.WriteIE(with16Byte(addr-0x200, rt.m.IRQ.ReadIE(), v))
	case addr >= 0x202 && addr < 0x204:
		// IF is write-one-to-clear, not overwrite: the untouched byte of
		// this 16-bit register must contribute zero bits here, or it
		// would spuriously re-clear whatever is currently pending in
		// that byte (merging in the live IF value, as with16Byte does
		// for ordinary registers, is wrong for this one).
		rt.m.IRQ.WriteIF(with16Byte(addr-0x202, 0, v))
	case addr >= 0x208 && addr < 0x20A:
		if addr == 0x208 {
			rt.m.IRQ.WriteIME(v&1 != 0)
		}
	case addr == 0x301:
		rt.m.IRQ.Halt()
	}
}

func (rt *ioRouter) readPPU(addr uint32) uint8 {
	p := rt.m.PPU
	switch {
	case addr < 2:
		return byteOf16(addr, p.DISPCNT)
	case addr >= 4 && addr < 6:
		return byteOf16(addr-4, p.DISPSTAT)
	case addr >= 6 && addr < 8:
		return byteOf16(addr-6, p.VCOUNT)
	case addr >= 8 && addr < 0x10:
		i := (addr - 8) / 2
		return byteOf16((addr-8)%2, p.BGCNT[i])
	case addr >= 0x10 && addr < 0x20:
		rel := addr - 0x10
		i := rel / 4
		if rel%4 < 2 {
			return byteOf16(rel%2, p.BGHOFS[i])
		}
		return byteOf16(rel%2, p.BGVOFS[i])
	default:
		return 0
	}
}

func (rt *ioRouter) writePPU(addr uint32, v uint8) {
	p := rt.m.PPU
	switch {
	case addr < 2:
		p.DISPCNT = with16Byte(addr, p.DISPCNT, v)
	case addr >= 4 && addr < 6:
		p.DISPSTAT = with16Byte(addr-4, p.DISPSTAT, v)
	case addr >= 8 && addr < 0x10:
		i := (addr - 8) / 2
		p.BGCNT[i] = with16Byte((addr-8)%2, p.BGCNT[i], v)
	case addr >= 0x10 && addr < 0x20:
		rel := addr - 0x10
		i := rel / 4
		if rel%4 < 2 {
			p.BGHOFS[i] = with16Byte(rel%2, p.BGHOFS[i], v)
		} else {
			p.BGVOFS[i] = with16Byte(rel%2, p.BGVOFS[i], v)
		}
	}
}

func (rt *ioRouter) readDMA(addr uint32) uint8 {
	rel := addr - 0xB0
	i := rel / 12
	ch := &rt.m.DMA.Channels[i]
	switch off := rel % 12; {
	case off < 4:
		return byteOf32(off, ch.Source)
	case off < 8:
		return byteOf32(off-4, ch.Dest)
	case off < 0xA:
		return 0 // DMAxCNT_L is write-only
	default:
		return byteOf16(off-0xA, ch.ReadControl())
	}
}

func (rt *ioRouter) writeDMA(addr uint32, v uint8) {
	rel := addr - 0xB0
	i := rel / 12
	ch := &rt.m.DMA.Channels[i]
	switch off := rel % 12; {
	case off < 4:
		if off < 2 {
			ch.WriteSourceLow(with16Byte(off, uint16(ch.Source), v))
		} else {
			ch.WriteSourceHigh(with16Byte(off-2, uint16(ch.Source>>16), v))
		}
	case off < 8:
		o := off - 4
		if o < 2 {
			ch.WriteDestLow(with16Byte(o, uint16(ch.Dest), v))
		} else {
			ch.WriteDestHigh(with16Byte(o-2, uint16(ch.Dest>>16), v))
		}
	case off < 0xA:
		ch.WriteCount(with16Byte(off-8, uint16(ch.Count), v))
	default:
		wasEnabled := ch.Enable
		ch.WriteControl(with16Byte(off-0xA, ch.ReadControl(), v))
		if !wasEnabled && ch.Enable {
			rt.m.DMA.RunImmediate(int(i))
		}
	}
}

func (rt *ioRouter) readTimer(addr uint32) uint8 {
	rel := addr - 0x100
	i := rel / 4
	ch := &rt.m.Timers.Channels[i]
	switch off := rel % 4; {
	case off < 2:
		return byteOf16(off, ch.Counter)
	default:
		return byteOf16(off-2, uint16(ch.ReadControl()))
	}
}

func (rt *ioRouter) writeTimer(addr uint32, v uint8) {
	rel := addr - 0x100
	i := rel / 4
	ch := &rt.m.Timers.Channels[i]
	switch off := rel % 4; {
	case off < 2:
		ch.Reload = with16Byte(off, ch.Reload, v)
	default:
		ch.WriteControl(uint8(with16Byte(off-2, uint16(ch.ReadControl()), v)))
	}
}

func byteOf16(off uint32, v uint16) uint8 {
	if off&1 == 0 {
		return uint8(v)
	}
	return uint8(v >> 8)
}

func with16Byte(off uint32, cur uint16, v uint8) uint16 {
	if off&1 == 0 {
		return cur&0xFF00 | uint16(v)
	}
	return cur&0x00FF | uint16(v)<<8
}

func byteOf32(off uint32, v uint32) uint8 {
	return uint8(v >> (8 * (off & 3)))
}
