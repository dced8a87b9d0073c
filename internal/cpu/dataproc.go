package cpu

// ExecuteDataProcessing runs AND..MVN (§4.4). Operand 1 is always Rn;
// operand 2 is either a rotated immediate or a (possibly shifted)
// register, already classified by the decoder into inst.Op2Kind.
func ExecuteDataProcessing(c *CPU, bus Bus, inst *Instruction) {
	op1 := c.ReadReg(inst.Rn, inst)
	if inst.ThumbPCRelative {
		op1 &^= 3 // Thumb format 12: PC base is word-aligned
	}

	op2, shiftCarry := resolveOperand2(c, inst)

	var result uint32
	var carry, overflow bool
	writeResult := true
	updateFlags := inst.S

	switch inst.Opcode {
	case OpAND:
		result = op1 & op2
		carry = shiftCarry
	case OpEOR:
		result = op1 ^ op2
		carry = shiftCarry
	case OpSUB:
		result = op1 - op2
		carry = SubCarry(op1, op2)
		overflow = SubOverflow(op1, op2, result)
	case OpRSB:
		result = op2 - op1
		carry = SubCarry(op2, op1)
		overflow = SubOverflow(op2, op1, result)
	case OpADD:
		result = op1 + op2
		carry = AddCarry(op1, op2, result)
		overflow = AddOverflow(op1, op2, result)
	case OpADC:
		carryIn := b32(c.Regs.CPSR().C, 1)
		temp := op1 + op2
		result = temp + carryIn
		carry = AddCarry(op1, op2, temp) || AddCarry(temp, carryIn, result)
		overflow = AddOverflow(op1, op2, result)
	case OpSBC:
		carryIn := uint32(1)
		if !c.Regs.CPSR().C {
			carryIn = 0
		}
		sub := op2 + (1 - carryIn)
		result = op1 - sub
		carry = SubCarry(op1, sub)
		overflow = SubOverflow(op1, sub, result)
	case OpRSC:
		carryIn := uint32(1)
		if !c.Regs.CPSR().C {
			carryIn = 0
		}
		sub := op1 + (1 - carryIn)
		result = op2 - sub
		carry = SubCarry(op2, sub)
		overflow = SubOverflow(op2, sub, result)
	case OpTST:
		result = op1 & op2
		carry = shiftCarry
		writeResult = false
		updateFlags = true
	case OpTEQ:
		result = op1 ^ op2
		carry = shiftCarry
		writeResult = false
		updateFlags = true
	case OpCMP:
		result = op1 - op2
		carry = SubCarry(op1, op2)
		overflow = SubOverflow(op1, op2, result)
		writeResult = false
		updateFlags = true
	case OpCMN:
		result = op1 + op2
		carry = AddCarry(op1, op2, result)
		overflow = AddOverflow(op1, op2, result)
		writeResult = false
		updateFlags = true
	case OpORR:
		result = op1 | op2
		carry = shiftCarry
	case OpMOV:
		result = op2
		carry = shiftCarry
	case OpBIC:
		result = op1 &^ op2
		carry = shiftCarry
	case OpMVN:
		result = ^op2
		carry = shiftCarry
	}

	// S=1 with Rd=R15 on a non-comparison opcode restores CPSR from the
	// current mode's SPSR instead of updating flags individually; this is
	// the privileged "MOVS PC, LR"-style exception return idiom (§4.4).
	if writeResult && inst.Rd == 15 && inst.S {
		c.Regs.SetPC(result)
		if c.Regs.Mode() != ModeUser && c.Regs.Mode() != ModeSystem {
			c.Regs.SetCPSR(c.Regs.SPSR())
		}
		c.Pipeline.Flush()
		return
	}

	if writeResult {
		c.SetRegister(inst.Rd, result)
	}

	if updateFlags {
		p := c.Regs.CPSR()
		if opcodeIsLogical(inst.Opcode) {
			p.UpdateFlagsNZC(result, carry)
		} else {
			p.UpdateFlagsNZCV(result, carry, overflow)
		}
		c.Regs.SetCPSR(p)
	}
}

// resolveOperand2 evaluates operand 2 (immediate or shifted register) and
// the shifter's carry-out, used by logical opcodes when S=1.
func resolveOperand2(c *CPU, inst *Instruction) (op2 uint32, shiftCarry bool) {
	carryIn := c.Regs.CPSR().C

	if inst.Op2Kind == OperandImmediate {
		rot := inst.Op2ShiftAmt
		if rot == 0 {
			return inst.Op2Imm, carryIn
		}
		result, carry, _ := Shift(inst.Op2Imm, ShiftROR, rot, false, carryIn)
		return result, carry
	}

	regSourced := inst.Op2Kind == OperandRegisterShift
	amount := inst.Op2ShiftAmt
	if regSourced {
		amount = int(c.ReadReg(inst.Op2ShiftReg, inst) & 0xFF)
	}

	value := c.ReadShiftedOperandReg(inst.Rm, inst, regSourced)
	result, carry, _ := Shift(value, inst.Op2Shift, amount, regSourced, carryIn)
	return result, carry
}
