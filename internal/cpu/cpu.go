package cpu

import "github.com/advanceemu/gba/internal/logtag"

// IRQLine is the narrow view of the interrupt controller the CPU needs:
// whether a gated interrupt is currently pending, and the HALTCNT latch
// state described in §4.5. internal/irq.Controller implements this.
type IRQLine interface {
	Pending() bool
	Halted() bool
	ExitHalt()
}

// CPU is the ARMv4T processor core: register file, pipeline, and the
// per-tick orchestration described in §5 (interrupt gate, pipeline
// advance, instruction execution).
type CPU struct {
	Regs     *Registers
	Pipeline Pipeline
	IRQ      IRQLine
	Cycles   uint64

	// OnInstructionRetired and OnBusAccess are the narrow callback hooks
	// named in the design notes as the scripting layer's entire surface;
	// this core only ever calls them, never interprets their presence.
	OnInstructionRetired func(pc uint32)
	OnBusAccess          func(addr uint32, write bool)

	lastDecodeErr error
}

// NewCPU returns a CPU with a fresh register file in the reset state.
func NewCPU() *CPU {
	return &CPU{Regs: NewRegisters()}
}

// Reset clears registers and pipeline state and sets PC to entry.
func (c *CPU) Reset(entry uint32) {
	c.Regs.Reset()
	c.Pipeline.Flush()
	c.Regs.SetPC(entry)
	c.Cycles = 0
}

// LastDecodeError returns the most recently logged DecodeError, or nil.
// Exposed for the debugger/trace layer; it is never propagated as a Step
// failure per §7.
func (c *CPU) LastDecodeError() error { return c.lastDecodeErr }

// Step performs exactly one CPU tick: the interrupt gate check, pipeline
// advance (fetch + decode-shift), and execution of whatever instruction
// now occupies the execute slot. It returns the instruction retired this
// tick, or nil if the pipeline was not yet full (still filling after
// reset or a flush).
func (c *CPU) Step(bus Bus) *Instruction {
	if c.IRQ != nil && c.Pipeline.Full() && c.IRQ.Pending() && !c.Regs.CPSR().I {
		c.enterIRQ()
	}

	if c.IRQ != nil && c.IRQ.Halted() {
		return nil
	}

	pc := c.Regs.GetRawPC()
	thumb := c.Regs.CPSR().T
	c.Pipeline.Advance(pc, thumb, func(addr uint32, thumb bool) uint32 {
		if c.OnBusAccess != nil {
			c.OnBusAccess(addr, false)
		}
		if thumb {
			return uint32(bus.Read16(addr))
		}
		return bus.Read32(addr)
	})
	c.Regs.AdvancePC()

	inst := c.Pipeline.Execute()
	if inst == nil {
		return nil
	}
	if inst.DecodeErr != nil {
		c.lastDecodeErr = inst.DecodeErr
		logtag.Printf(logtag.CPU, "%v (substituted MOV r0,r0)", inst.DecodeErr)
	}

	if inst.Cond.Eval(c.Regs.CPSR()) {
		c.execute(bus, inst)
	}

	c.Cycles++
	if c.OnInstructionRetired != nil {
		c.OnInstructionRetired(inst.PC)
	}
	return inst
}

// ReadReg reads general register reg as the instruction currently
// executing (inst) sees it. Every register except PC reads the live
// value; PC reads inst.PC plus the architected prefetch skew — two
// instruction-widths ahead (PC+8/ARM, PC+4/Thumb) — since the pipeline
// keeps the raw fetch-stage PC two slots ahead of whatever is executing.
// Handlers must use this (never Regs.Get) for any operand register that
// might be R15.
func (c *CPU) ReadReg(reg int, inst *Instruction) uint32 {
	if reg != 15 {
		return c.Regs.Get(reg)
	}
	width := uint32(4)
	if inst.Thumb {
		width = 2
	}
	return inst.PC + 2*width
}

// ReadShiftedOperandReg reads Rm for a data-processing shifted-register
// operand. When the shift amount itself comes from a register (rather
// than an immediate) and Rm is R15, the value read carries one further
// instruction-width of skew beyond the usual PC+8, per §4.4: the shift
// amount's register fetch costs the pipeline an extra cycle of prefetch.
func (c *CPU) ReadShiftedOperandReg(reg int, inst *Instruction, shiftAmountFromRegister bool) uint32 {
	v := c.ReadReg(reg, inst)
	if reg == 15 && shiftAmountFromRegister && !inst.Thumb {
		v += 4
	}
	return v
}

// SetRegister writes reg (0-15), flushing the pipeline automatically when
// reg is PC, per §3's "a pipeline flush empties all three slots ... on
// any write to PC."
func (c *CPU) SetRegister(reg int, value uint32) {
	if reg == 15 {
		c.Branch(value)
		return
	}
	c.Regs.Set(reg, value)
}

// Branch writes PC (masking low bits per current instruction width) and
// flushes the pipeline.
func (c *CPU) Branch(target uint32) {
	c.Regs.SetPC(target)
	c.Pipeline.Flush()
}

// BranchExchange sets the Thumb state bit from the target's bit 0, then
// branches to the target with that bit cleared, and flushes.
func (c *CPU) BranchExchange(target uint32) {
	p := c.Regs.CPSR()
	p.T = target&1 != 0
	c.Regs.SetCPSR(p)
	c.Branch(target)
}

func (c *CPU) execute(bus Bus, inst *Instruction) {
	switch inst.Fam {
	case FamDataProcessing:
		ExecuteDataProcessing(c, bus, inst)
	case FamMultiply:
		ExecuteMultiply(c, inst)
	case FamMultiplyLong:
		ExecuteMultiplyLong(c, inst)
	case FamPSRTransfer:
		ExecutePSRTransfer(c, inst)
	case FamSingleTransfer:
		ExecuteSingleTransfer(c, bus, inst)
	case FamHalfwordTransfer:
		ExecuteHalfwordTransfer(c, bus, inst)
	case FamBlockTransfer:
		ExecuteBlockTransfer(c, bus, inst)
	case FamSwap:
		ExecuteSwap(c, bus, inst)
	case FamBranch:
		ExecuteBranch(c, inst)
	case FamBranchExchange:
		ExecuteBranchExchangeInst(c, inst)
	case FamSoftwareInterrupt:
		ExecuteSWI(c, inst)
	}
}

// enterIRQ performs the exception entry sequence of §4.5: save CPSR into
// SPSR_irq, switch to IRQ mode, set LR_irq to the return address, vector
// to 0x18, mask IRQs, clear T, and flush.
func (c *CPU) enterIRQ() {
	old := c.Regs.CPSR()
	ret := c.Regs.GetRawPC()
	if old.T {
		ret -= 2
	} else {
		ret -= 4
	}

	c.Regs.SetMode(ModeIRQ)
	c.Regs.SetSPSR(old)
	c.Regs.Set(LR, ret)

	newPSR := old
	newPSR.Mode = ModeIRQ
	newPSR.I = true
	newPSR.T = false
	c.Regs.SetCPSR(newPSR)

	c.Regs.SetPC(0x00000018)
	c.Pipeline.Flush()
	c.IRQ.ExitHalt()
}
