package cpu

// ExecuteBranch runs B, BL, the Thumb conditional/unconditional branch
// formats, and the Thumb long-branch-with-link pair (§4.4). The BL pair
// is decoded and executed as two independent instructions that use LR as
// scratch storage exactly as real hardware does: the first half computes
// a PC-relative target into LR, the second half adds its own offset to
// LR and branches there, setting LR to the Thumb return address.
func ExecuteBranch(c *CPU, inst *Instruction) {
	switch {
	case inst.ThumbBLHigh:
		c.Regs.Set(LR, c.ReadReg(15, inst)+uint32(inst.BranchOffset))
	case inst.ThumbBLLow:
		target := c.Regs.Get(LR) + uint32(inst.BranchOffset)
		c.Regs.Set(LR, (inst.PC+2)|1)
		c.Branch(target)
	case inst.Link:
		ret := inst.PC + 4
		c.Regs.Set(LR, ret)
		c.Branch(c.ReadReg(15, inst) + uint32(inst.BranchOffset))
	default:
		c.Branch(c.ReadReg(15, inst) + uint32(inst.BranchOffset))
	}
}

// ExecuteBranchExchangeInst runs BX (and Thumb's hi-register BX form):
// the target's bit 0 selects ARM or Thumb state for the branch.
func ExecuteBranchExchangeInst(c *CPU, inst *Instruction) {
	c.BranchExchange(c.ReadReg(inst.Rm, inst))
}
