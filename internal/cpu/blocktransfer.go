package cpu

import "math/bits"

// ExecuteBlockTransfer runs LDM/STM (§4.4), including the Thumb
// PUSH/POP and multiple load/store formats, which decode into the same
// family with BlockMode/RegList/WriteBack already resolved.
//
// An empty register list is architecturally defined as "transfer R15
// only, and adjust the base as if all sixteen registers had been
// listed" (a base adjustment of ±0x40); this core implements that
// literally rather than treating it as a no-op.
func ExecuteBlockTransfer(c *CPU, bus Bus, inst *Instruction) {
	regList := inst.RegList
	count := bits.OnesCount16(regList)
	emptyList := count == 0
	if emptyList {
		count = 16
	}

	base := c.Regs.Get(inst.Rn)
	size := uint32(count) * 4

	var start, final uint32
	switch inst.BlockMode {
	case BlockIA:
		start, final = base, base+size
	case BlockIB:
		start, final = base+4, base+size
	case BlockDA:
		start, final = base-size+4, base-size
	case BlockDB:
		start, final = base-size, base-size
	}

	userBank := inst.UserBank && regList&(1<<15) == 0
	pcInList := regList&(1<<15) != 0

	addr := start
	transfer := func(reg int) {
		if inst.Load {
			value := bus.Read32(addr &^ 3)
			switch {
			case reg == 15:
				c.Branch(value)
			case userBank:
				c.Regs.SetUserBank(reg, value)
			default:
				c.Regs.Set(reg, value)
			}
		} else {
			var value uint32
			switch {
			case reg == 15:
				value = c.ReadReg(15, inst) + 4 // STM of PC stores one word beyond the usual read-PC skew
			case userBank:
				value = c.Regs.GetUserBank(reg)
			default:
				value = c.Regs.Get(reg)
			}
			bus.Write32(addr&^3, value)
		}
		addr += 4
	}

	if emptyList {
		transfer(15)
	} else {
		for reg := 0; reg < 16; reg++ {
			if regList&(1<<uint(reg)) != 0 {
				transfer(reg)
			}
		}
	}

	if inst.WriteBack && inst.Rn != 15 {
		c.Regs.Set(inst.Rn, final)
	}

	if inst.UserBank && inst.Load && pcInList {
		if c.Regs.Mode() != ModeUser && c.Regs.Mode() != ModeSystem {
			c.Regs.SetCPSR(c.Regs.SPSR())
		}
	}
}
