package cpu

// ExecuteSwap runs SWP/SWPB (§4.4): an atomic read-modify-write of a
// single memory location. There is no real bus contention to model here,
// so "atomic" means only that the read happens before the write — no
// other instruction can run between them within a single Step.
func ExecuteSwap(c *CPU, bus Bus, inst *Instruction) {
	addr := c.Regs.Get(inst.Rn)
	src := c.Regs.Get(inst.Rm)

	if inst.Byte {
		old := bus.Read8(addr)
		bus.Write8(addr, uint8(src))
		c.Regs.Set(inst.Rd, uint32(old))
		return
	}

	rot := (addr & 3) * 8
	old := bus.Read32(addr &^ 3)
	if rot != 0 {
		old = (old >> rot) | (old << (32 - rot))
	}
	bus.Write32(addr&^3, src)
	c.Regs.Set(inst.Rd, old)
}
