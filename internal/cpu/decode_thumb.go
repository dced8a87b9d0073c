package cpu

// DecodeThumb decodes a 16-bit Thumb-state halfword fetched from address
// pc. Thumb has nineteen instruction formats (§4.1); each is translated
// into the same Instruction record ARM decoding produces so the handlers
// in dataproc.go, transfer.go, branch.go etc. are shared between states.
// The BL pair (format 19) is decoded halfword-by-halfword: each half
// stands on its own and uses LR as scratch storage, exactly as real
// hardware does, so the two halves need not execute contiguously.
func DecodeThumb(word uint16, pc uint32) *Instruction {
	inst := &Instruction{Raw: uint32(word), Thumb: true, PC: pc, Cond: CondAL}

	w := word
	switch {
	case w&0xF800 == 0x1800:
		decodeThumbAddSub(inst, w)
	case w&0xE000 == 0x0000:
		decodeThumbShifted(inst, w)
	case w&0xE000 == 0x2000:
		decodeThumbImmediate(inst, w)
	case w&0xFC00 == 0x4000:
		decodeThumbALU(inst, w)
	case w&0xFC00 == 0x4400:
		decodeThumbHiReg(inst, w)
	case w&0xF800 == 0x4800:
		decodeThumbPCRelLoad(inst, w)
	case w&0xF200 == 0x5000:
		decodeThumbLoadStoreReg(inst, w)
	case w&0xF200 == 0x5200:
		decodeThumbLoadStoreSigned(inst, w)
	case w&0xE000 == 0x6000:
		decodeThumbLoadStoreImm(inst, w)
	case w&0xF000 == 0x8000:
		decodeThumbLoadStoreHalf(inst, w)
	case w&0xF000 == 0x9000:
		decodeThumbSPRelLoadStore(inst, w)
	case w&0xF000 == 0xA000:
		decodeThumbLoadAddress(inst, w)
	case w&0xFF00 == 0xB000:
		decodeThumbAddSP(inst, w)
	case w&0xF600 == 0xB400:
		decodeThumbPushPop(inst, w)
	case w&0xF000 == 0xC000:
		decodeThumbBlockTransfer(inst, w)
	case w&0xFF00 == 0xDF00:
		decodeThumbSWI(inst, w)
	case w&0xF000 == 0xD000:
		decodeThumbCondBranch(inst, w)
	case w&0xF800 == 0xE000:
		decodeThumbBranch(inst, w)
	case w&0xF800 == 0xF000:
		inst.ThumbBLHigh = true
		decodeThumbBLHalf(inst, w)
	case w&0xF800 == 0xF800:
		inst.ThumbBLLow = true
		decodeThumbBLHalf(inst, w)
	default:
		inst.Fam = FamUndefined
	}
	return inst
}

// format 1: move shifted register
func decodeThumbShifted(inst *Instruction, w uint16) {
	inst.Fam = FamDataProcessing
	inst.Opcode = OpMOV
	inst.S = true
	inst.Rd = int(w & 0x7)
	inst.Rm = int((w >> 3) & 0x7)
	inst.Op2Kind = OperandRegister
	inst.Op2Shift = ShiftType((w >> 11) & 0x3) // 00=LSL 01=LSR 10=ASR; 11 is format 2, excluded by the caller's mask
	inst.Op2ShiftAmt = int((w >> 6) & 0x1F)
}

// format 2: add/subtract
func decodeThumbAddSub(inst *Instruction, w uint16) {
	inst.Fam = FamDataProcessing
	inst.S = true
	inst.Rd = int(w & 0x7)
	inst.Rn = int((w >> 3) & 0x7)
	immediate := (w>>10)&1 != 0
	sub := (w>>9)&1 != 0
	if sub {
		inst.Opcode = OpSUB
	} else {
		inst.Opcode = OpADD
	}
	if immediate {
		inst.Op2Kind = OperandImmediate
		inst.Op2Imm = uint32((w >> 6) & 0x7)
	} else {
		inst.Op2Kind = OperandRegister
		inst.Rm = int((w >> 6) & 0x7)
	}
}

// format 3: move/compare/add/subtract immediate
func decodeThumbImmediate(inst *Instruction, w uint16) {
	inst.Fam = FamDataProcessing
	inst.S = true
	inst.Rd = int((w >> 8) & 0x7)
	inst.Rn = inst.Rd
	inst.Op2Kind = OperandImmediate
	inst.Op2Imm = uint32(w & 0xFF)
	switch (w >> 11) & 0x3 {
	case 0:
		inst.Opcode = OpMOV
	case 1:
		inst.Opcode = OpCMP
	case 2:
		inst.Opcode = OpADD
	case 3:
		inst.Opcode = OpSUB
	}
}

var thumbALUOps = [...]int{
	OpAND, OpEOR, -1 /*LSL*/, -1, /*LSR*/
	-1 /*ASR*/, OpADC, OpSBC, -1, /*ROR*/
	OpTST, -1 /*NEG*/, OpCMP, OpCMN,
	OpORR, -1 /*MUL*/, OpBIC, OpMVN,
}

// format 4: ALU operations (two low registers)
func decodeThumbALU(inst *Instruction, w uint16) {
	op := (w >> 6) & 0xF
	inst.Rd = int(w & 0x7)
	inst.Rn = inst.Rd
	inst.Rm = int((w >> 3) & 0x7)
	inst.S = true

	switch op {
	case 2, 3, 4, 7: // LSL, LSR, ASR, ROR by register
		inst.Fam = FamDataProcessing
		inst.Opcode = OpMOV
		inst.Op2Kind = OperandRegisterShift
		inst.Op2ShiftReg = inst.Rm
		inst.Rm = inst.Rd
		switch op {
		case 2:
			inst.Op2Shift = ShiftLSL
		case 3:
			inst.Op2Shift = ShiftLSR
		case 4:
			inst.Op2Shift = ShiftASR
		case 7:
			inst.Op2Shift = ShiftROR
		}
	case 9: // NEG: RSB Rd, Rn, #0
		inst.Fam = FamDataProcessing
		inst.Opcode = OpRSB
		inst.Op2Kind = OperandImmediate
		inst.Op2Imm = 0
	case 13: // MUL
		inst.Fam = FamMultiply
		inst.Rd = int(w & 0x7)
		inst.Rs = int((w >> 3) & 0x7)
		inst.Rm = inst.Rd
	default:
		inst.Fam = FamDataProcessing
		inst.Opcode = thumbALUOps[op]
		inst.Op2Kind = OperandRegister
		inst.Op2Shift = ShiftLSL
		inst.Op2ShiftAmt = 0
	}
}

// format 5: hi register operations / branch exchange
func decodeThumbHiReg(inst *Instruction, w uint16) {
	op := (w >> 8) & 0x3
	h1 := (w >> 7) & 1
	h2 := (w >> 6) & 1
	rd := int(w&0x7) | int(h1<<3)
	rm := int((w>>3)&0x7) | int(h2<<3)

	if op == 3 {
		inst.Fam = FamBranchExchange
		inst.Rm = rm
		return
	}

	inst.Fam = FamDataProcessing
	inst.Rd = rd
	inst.Rn = rd
	inst.Rm = rm
	inst.Op2Kind = OperandRegister
	inst.Op2Shift = ShiftLSL
	switch op {
	case 0:
		inst.Opcode = OpADD
	case 1:
		inst.Opcode = OpCMP
		inst.S = true
	case 2:
		inst.Opcode = OpMOV
	}
}

// format 6: PC-relative load
func decodeThumbPCRelLoad(inst *Instruction, w uint16) {
	inst.Fam = FamSingleTransfer
	inst.Load = true
	inst.PreIndex = true
	inst.AddOffset = true
	inst.ThumbPCRelative = true
	inst.Rd = int((w >> 8) & 0x7)
	inst.OffsetKind = OperandImmediate
	inst.OffsetImm = uint32(w&0xFF) * 4
}

// format 7: load/store with register offset
func decodeThumbLoadStoreReg(inst *Instruction, w uint16) {
	inst.Fam = FamSingleTransfer
	inst.PreIndex = true
	inst.AddOffset = true
	l := (w >> 11) & 1
	b := (w >> 10) & 1
	inst.Load = l != 0
	inst.Byte = b != 0
	inst.Rd = int(w & 0x7)
	inst.Rn = int((w >> 3) & 0x7)
	inst.OffsetKind = OperandRegister
	inst.OffsetReg = int((w >> 6) & 0x7)
}

// format 8: load/store sign-extended byte/halfword
func decodeThumbLoadStoreSigned(inst *Instruction, w uint16) {
	inst.Fam = FamHalfwordTransfer
	inst.PreIndex = true
	inst.AddOffset = true
	hFlag := (w >> 11) & 1
	signFlag := (w >> 10) & 1
	inst.Rd = int(w & 0x7)
	inst.Rn = int((w >> 3) & 0x7)
	inst.OffsetKind = OperandRegister
	inst.OffsetReg = int((w >> 6) & 0x7)

	switch {
	case signFlag == 0 && hFlag == 0: // STRH
		inst.Load = false
		inst.Half = true
	case signFlag == 0 && hFlag == 1: // LDRH
		inst.Load = true
		inst.Half = true
	case signFlag == 1 && hFlag == 0: // LDSB
		inst.Load = true
		inst.Byte = true
		inst.SignExtend = true
	case signFlag == 1 && hFlag == 1: // LDSH
		inst.Load = true
		inst.Half = true
		inst.SignExtend = true
	}
}

// format 9: load/store with immediate offset
func decodeThumbLoadStoreImm(inst *Instruction, w uint16) {
	inst.Fam = FamSingleTransfer
	inst.PreIndex = true
	inst.AddOffset = true
	b := (w >> 12) & 1
	l := (w >> 11) & 1
	inst.Byte = b != 0
	inst.Load = l != 0
	inst.Rd = int(w & 0x7)
	inst.Rn = int((w >> 3) & 0x7)
	offset5 := uint32((w >> 6) & 0x1F)
	if b != 0 {
		inst.OffsetImm = offset5
	} else {
		inst.OffsetImm = offset5 * 4
	}
	inst.OffsetKind = OperandImmediate
}

// format 10: load/store halfword (immediate)
func decodeThumbLoadStoreHalf(inst *Instruction, w uint16) {
	inst.Fam = FamHalfwordTransfer
	inst.PreIndex = true
	inst.AddOffset = true
	inst.Half = true
	l := (w >> 11) & 1
	inst.Load = l != 0
	inst.Rd = int(w & 0x7)
	inst.Rn = int((w >> 3) & 0x7)
	inst.OffsetKind = OperandImmediate
	inst.OffsetImm = uint32((w>>6)&0x1F) * 2
}

// format 11: SP-relative load/store
func decodeThumbSPRelLoadStore(inst *Instruction, w uint16) {
	inst.Fam = FamSingleTransfer
	inst.PreIndex = true
	inst.AddOffset = true
	inst.ThumbSPRelative = true
	l := (w >> 11) & 1
	inst.Load = l != 0
	inst.Rd = int((w >> 8) & 0x7)
	inst.OffsetKind = OperandImmediate
	inst.OffsetImm = uint32(w&0xFF) * 4
}

// format 12: load address (ADD Rd, PC|SP, #imm8*4)
func decodeThumbLoadAddress(inst *Instruction, w uint16) {
	inst.Fam = FamDataProcessing
	inst.Opcode = OpADD
	inst.Rd = int((w >> 8) & 0x7)
	sp := (w >> 11) & 1
	if sp != 0 {
		inst.Rn = SP
	} else {
		inst.ThumbPCRelative = true
		inst.Rn = 15
	}
	inst.Op2Kind = OperandImmediate
	inst.Op2Imm = uint32(w&0xFF) * 4
}

// format 13: add offset to stack pointer
func decodeThumbAddSP(inst *Instruction, w uint16) {
	inst.Fam = FamDataProcessing
	inst.Rd = SP
	inst.Rn = SP
	inst.Op2Kind = OperandImmediate
	imm := uint32(w&0x7F) * 4
	if (w>>7)&1 != 0 {
		inst.Opcode = OpSUB
	} else {
		inst.Opcode = OpADD
	}
	inst.Op2Imm = imm
}

// format 14: push/pop registers
func decodeThumbPushPop(inst *Instruction, w uint16) {
	inst.Fam = FamBlockTransfer
	l := (w >> 11) & 1
	r := (w >> 8) & 1
	inst.Load = l != 0
	inst.ThumbPushPopLR = r != 0
	inst.Rn = SP
	inst.WriteBack = true
	regs := uint16(w & 0xFF)
	if r != 0 {
		if l != 0 {
			regs |= 1 << 15 // POP also loads PC
		} else {
			regs |= 1 << 14 // PUSH also stores LR
		}
	}
	inst.RegList = regs
	if l != 0 {
		inst.BlockMode = BlockIA
	} else {
		inst.BlockMode = BlockDB
	}
}

// format 15: multiple load/store
func decodeThumbBlockTransfer(inst *Instruction, w uint16) {
	inst.Fam = FamBlockTransfer
	l := (w >> 11) & 1
	inst.Load = l != 0
	inst.Rn = int((w >> 8) & 0x7)
	inst.RegList = uint16(w & 0xFF)
	inst.WriteBack = true
	inst.BlockMode = BlockIA
}

// format 16: conditional branch
func decodeThumbCondBranch(inst *Instruction, w uint16) {
	inst.Fam = FamBranch
	inst.Cond = ConditionCode((w >> 8) & 0xF)
	offset := int32(int8(w & 0xFF))
	inst.BranchOffset = offset * 2
}

// format 17: software interrupt
func decodeThumbSWI(inst *Instruction, w uint16) {
	inst.Fam = FamSoftwareInterrupt
	inst.SWIComment = uint32(w & 0xFF)
}

// format 18: unconditional branch
func decodeThumbBranch(inst *Instruction, w uint16) {
	inst.Fam = FamBranch
	offset := uint32(w & 0x7FF)
	if offset&0x400 != 0 {
		offset |= 0xFFFFF800
	}
	inst.BranchOffset = int32(offset) * 2
}

// format 19: long branch with link, one halfword at a time.
func decodeThumbBLHalf(inst *Instruction, w uint16) {
	inst.Fam = FamBranch
	inst.Link = true
	offset11 := uint32(w & 0x7FF)
	if inst.ThumbBLHigh {
		off := offset11
		if off&0x400 != 0 {
			off |= 0xFFFFF800
		}
		inst.BranchOffset = int32(off << 12)
	} else {
		inst.BranchOffset = int32(offset11 << 1)
	}
}
