package cpu

// ExecuteSingleTransfer runs LDR/STR/LDRB/STRB (§4.4), including the
// Thumb single-transfer formats (PC-relative, SP-relative, register and
// immediate offset), which all decode into the same Family. A misaligned
// word load rotates the loaded value right by (addr&3)*8 rather than
// faulting, matching the ARM7TDMI's documented "rotated read" behavior;
// a misaligned word store simply forces the low address bits to zero.
func ExecuteSingleTransfer(c *CPU, bus Bus, inst *Instruction) {
	base := transferBase(c, inst)
	offset := transferOffset(c, inst)
	effective := applyOffsetSign(base, offset, inst.AddOffset)

	var accessAddr uint32
	if inst.PreIndex {
		accessAddr = effective
	} else {
		accessAddr = base
	}

	if inst.Load {
		var value uint32
		if inst.Byte {
			value = uint32(bus.Read8(accessAddr))
		} else {
			value = bus.Read32(accessAddr &^ 3)
			rot := (accessAddr & 3) * 8
			if rot != 0 {
				value = (value >> rot) | (value << (32 - rot))
			}
		}
		c.SetRegister(inst.Rd, value)
	} else {
		value := c.ReadReg(inst.Rd, inst)
		if inst.Rd == 15 {
			value += 4 // STR of PC stores one instruction-width beyond the usual read-PC skew
		}
		if inst.Byte {
			bus.Write8(accessAddr, uint8(value))
		} else {
			bus.Write32(accessAddr&^3, value)
		}
	}

	writeBackTransferBase(c, inst, effective)
}

// ExecuteHalfwordTransfer runs LDRH/STRH/LDRSB/LDRSH (§4.4), including
// the Thumb halfword and sign-extended byte/halfword formats.
func ExecuteHalfwordTransfer(c *CPU, bus Bus, inst *Instruction) {
	base := transferBase(c, inst)
	offset := transferOffset(c, inst)
	effective := applyOffsetSign(base, offset, inst.AddOffset)

	var accessAddr uint32
	if inst.PreIndex {
		accessAddr = effective
	} else {
		accessAddr = base
	}

	if inst.Load {
		var value uint32
		switch {
		case inst.Half && inst.SignExtend:
			// LDRSH at an odd address is the ARM7TDMI's documented special
			// case: it does not rotate the halfword like LDRH does, it
			// instead degrades to a sign-extended byte load of the byte at
			// the odd address itself.
			if accessAddr&1 != 0 {
				value = uint32(int32(int8(bus.Read8(accessAddr))))
			} else {
				value = uint32(int32(int16(bus.Read16(accessAddr))))
			}
		case inst.Half:
			value = uint32(bus.Read16(accessAddr))
		case inst.SignExtend: // LDRSB
			value = uint32(int32(int8(bus.Read8(accessAddr))))
		default:
			value = uint32(bus.Read8(accessAddr))
		}
		c.SetRegister(inst.Rd, value)
	} else {
		value := c.ReadReg(inst.Rd, inst)
		bus.Write16(accessAddr, uint16(value))
	}

	writeBackTransferBase(c, inst, effective)
}

func transferBase(c *CPU, inst *Instruction) uint32 {
	switch {
	case inst.ThumbSPRelative:
		return c.Regs.Get(SP)
	case inst.ThumbPCRelative:
		return c.ReadReg(15, inst) &^ 3 // word-aligned, per the Thumb PC-relative load format
	default:
		return c.ReadReg(inst.Rn, inst)
	}
}

func transferOffset(c *CPU, inst *Instruction) uint32 {
	if inst.OffsetKind == OperandImmediate {
		return inst.OffsetImm
	}
	value := c.ReadReg(inst.OffsetReg, inst)
	if inst.OffsetShift == ShiftLSL && inst.OffsetShiftAmt == 0 {
		return value // plain register offset, no shift encoded
	}
	result, _, _ := Shift(value, inst.OffsetShift, inst.OffsetShiftAmt, false, c.Regs.CPSR().C)
	return result
}

func applyOffsetSign(base, offset uint32, add bool) uint32 {
	if add {
		return base + offset
	}
	return base - offset
}

func writeBackTransferBase(c *CPU, inst *Instruction, effective uint32) {
	if inst.ThumbSPRelative {
		if !inst.PreIndex || inst.WriteBack {
			c.Regs.Set(SP, effective)
		}
		return
	}
	if inst.ThumbPCRelative {
		return
	}
	// LDR with Rd==Rn: the loaded value already replaced the base register,
	// so a separate writeback would clobber it (§4.4).
	if inst.Load && inst.Rd == inst.Rn {
		return
	}
	writeBack := inst.WriteBack || !inst.PreIndex
	if writeBack && inst.Rn != 15 {
		c.Regs.Set(inst.Rn, effective)
	}
}
