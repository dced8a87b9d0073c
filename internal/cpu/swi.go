package cpu

// ExecuteSWI runs the software interrupt exception entry (§4.4/§4.5):
// save CPSR to SPSR_svc, switch to Supervisor mode, set LR_svc to the
// return address, vector to 0x08, and mask IRQs. The BIOS code that
// normally lives at that vector is out of scope here; callers that want
// high-level emulation of BIOS calls can intercept SWIComment before
// Step reaches this handler.
func ExecuteSWI(c *CPU, inst *Instruction) {
	old := c.Regs.CPSR()
	ret := inst.PC + 4
	if inst.Thumb {
		ret = inst.PC + 2
	}

	c.Regs.SetMode(ModeSupervisor)
	c.Regs.SetSPSR(old)
	c.Regs.Set(LR, ret)

	newPSR := old
	newPSR.Mode = ModeSupervisor
	newPSR.I = true
	newPSR.T = false
	c.Regs.SetCPSR(newPSR)

	c.Branch(0x00000008)
}
