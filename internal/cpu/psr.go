package cpu

// ExecutePSRTransfer runs MRS/MSR (§4.4). MSR's field mask (bit 16, the
// "control" field) gates whether the mode/T/I/F bits are writable at all:
// User mode may only ever touch the flag bits, regardless of the field
// mask the instruction requests.
func ExecutePSRTransfer(c *CPU, inst *Instruction) {
	if !inst.IsMSR {
		executeMRS(c, inst)
		return
	}
	executeMSR(c, inst)
}

func executeMRS(c *CPU, inst *Instruction) {
	var value uint32
	if inst.ToSPSR {
		value = c.Regs.SPSR().ToUint32()
	} else {
		value = c.Regs.CPSR().ToUint32()
	}
	c.SetRegister(inst.Rd, value)
}

func executeMSR(c *CPU, inst *Instruction) {
	var source uint32
	if inst.MSRImmediate {
		source = inst.Op2Imm
	} else {
		source = c.ReadReg(inst.Rm, inst)
	}

	privileged := c.Regs.Mode() != ModeUser

	if inst.ToSPSR {
		cur := c.Regs.SPSR()
		applyPSRWrite(&cur, source, inst.MSRFlagsOnly, true)
		c.Regs.SetSPSR(cur)
		return
	}

	cur := c.Regs.CPSR()
	applyPSRWrite(&cur, source, inst.MSRFlagsOnly || !privileged, privileged)
	c.Regs.SetCPSR(cur)
}

// applyPSRWrite updates p from source. flagsOnly restricts the write to
// N/Z/C/V; allowControl additionally permits I/F/T/Mode (still gated by
// the mode field actually being one of the seven architected modes).
func applyPSRWrite(p *PSR, source uint32, flagsOnly bool, allowControl bool) {
	p.N = source&(1<<31) != 0
	p.Z = source&(1<<30) != 0
	p.C = source&(1<<29) != 0
	p.V = source&(1<<28) != 0
	if flagsOnly || !allowControl {
		return
	}
	p.I = source&(1<<7) != 0
	p.F = source&(1<<6) != 0
	p.T = source&(1<<5) != 0
	if m := Mode(source & 0x1F); m.Valid() {
		p.Mode = m
	}
}
