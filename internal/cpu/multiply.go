package cpu

// ExecuteMultiply runs MUL/MLA (§4.4). C and V are left unchanged (the
// architecture defines them as unpredictable after a 32-bit multiply;
// this core chooses "unchanged" as its concrete behavior).
func ExecuteMultiply(c *CPU, inst *Instruction) {
	op1 := c.Regs.Get(inst.Rm)
	op2 := c.Regs.Get(inst.Rs)
	result := op1 * op2
	if inst.Accumulate {
		result += c.Regs.Get(inst.Rn)
	}
	c.Regs.Set(inst.Rd, result)

	if inst.S {
		p := c.Regs.CPSR()
		p.UpdateFlagsNZ(result)
		c.Regs.SetCPSR(p)
	}
}

// ExecuteMultiplyLong runs UMULL/UMLAL/SMULL/SMLAL, the ARMv4T 64-bit
// multiply family absent from earlier ARM cores. RdHi:RdLo hold the
// 64-bit product (or accumulated sum); N/Z reflect the full 64-bit
// result, C and V are left unchanged.
func ExecuteMultiplyLong(c *CPU, inst *Instruction) {
	rm := c.Regs.Get(inst.Rm)
	rs := c.Regs.Get(inst.Rs)

	var result uint64
	if inst.UnsignedLong {
		result = uint64(rm) * uint64(rs)
	} else {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	}

	if inst.Accumulate {
		hi := uint64(c.Regs.Get(inst.Rdhi))
		lo := uint64(c.Regs.Get(inst.Rdlo))
		result += (hi << 32) | lo
	}

	resHi := uint32(result >> 32)
	resLo := uint32(result)
	c.Regs.Set(inst.Rdhi, resHi)
	c.Regs.Set(inst.Rdlo, resLo)

	if inst.S {
		p := c.Regs.CPSR()
		p.N = resHi&0x80000000 != 0
		p.Z = result == 0
		c.Regs.SetCPSR(p)
	}
}
