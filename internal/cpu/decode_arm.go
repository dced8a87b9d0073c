package cpu

// DecodeARM decodes a 32-bit ARM-state opcode word fetched from address
// pc into a structured Instruction. Decoding is a pattern match on bit
// templates, per §4.1; there is no runtime table construction.
func DecodeARM(word uint32, pc uint32) *Instruction {
	inst := &Instruction{Raw: word, PC: pc, Cond: ConditionCode((word >> 28) & 0xF)}

	switch {
	case word&0x0FFFFFF0 == 0x012FFF10:
		decodeBranchExchange(inst)
	case word&0x0E000000 == 0x0A000000:
		decodeBranch(inst)
	case word&0x0F000000 == 0x0F000000:
		decodeSWI(inst)
	case word&0x0FB00FF0 == 0x01000090:
		decodeSwap(inst)
	case word&0x0FC000F0 == 0x00000090:
		decodeMultiply(inst)
	case word&0x0F8000F0 == 0x00800090:
		decodeMultiplyLong(inst)
	case word&0x0E000000 == 0x08000000:
		decodeBlockTransfer(inst)
	case word&0x0E000010 == 0x06000010:
		// Bit 4 set with bits 27:26==01 is an undefined instruction on
		// ARMv4T (would be a media/coprocessor extension on later cores).
		inst.Fam = FamUndefined
	case word&0x0C000000 == 0x04000000:
		decodeSingleTransfer(inst)
	case word&0x0E400F90 == 0x00000090 || word&0x0E400090 == 0x00400090:
		decodeHalfwordTransfer(inst)
	case isPSRTransfer(word):
		decodePSRTransfer(inst)
	case word&0x0C000000 == 0x00000000:
		decodeDataProcessing(inst)
	default:
		inst.Fam = FamUndefined
	}
	return inst
}

// isPSRTransfer recognizes MRS/MSR: they share the data-processing major
// opcode space (bits 27:26 == 00) but are the "TST/TEQ/CMP/CMN-without-S"
// subcase — S=0 and the 1001-class test opcode bits set — per §4.1.
func isPSRTransfer(word uint32) bool {
	if word&0x0C000000 != 0 {
		return false
	}
	opBits := (word >> 23) & 0x1F // bits 27:23 == 00010 (register) or 00110 (immediate)
	if opBits&^0x04 != 0x02 {
		return false
	}
	s := (word >> 20) & 1
	if s != 0 {
		return false
	}
	// MRS: bits 21:16 = 00 1111, bits 11:0 = 0
	// MSR register form: bits 21:12 = 10 1001 1111, or MSR immediate with I=1
	return true
}

func decodeDataProcessing(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamDataProcessing
	inst.Opcode = int((w >> 21) & 0xF)
	inst.S = (w>>20)&1 != 0
	inst.Rn = int((w >> 16) & 0xF)
	inst.Rd = int((w >> 12) & 0xF)

	immediate := (w>>25)&1 != 0
	if immediate {
		inst.Op2Kind = OperandImmediate
		inst.Op2Imm = w & 0xFF
		inst.Op2ShiftAmt = int((w >> 8) & 0xF) * 2 // rotation, applied at execute time
		return
	}

	inst.Rm = int(w & 0xF)
	inst.Op2Shift = ShiftType((w >> 5) & 0x3)
	byReg := (w>>4)&1 != 0
	if byReg {
		inst.Op2Kind = OperandRegisterShift
		inst.Op2ShiftReg = int((w >> 8) & 0xF)
	} else {
		inst.Op2Kind = OperandRegister
		inst.Op2ShiftAmt = int((w >> 7) & 0x1F)
		if inst.Op2Shift == ShiftROR && inst.Op2ShiftAmt == 0 {
			inst.Op2Shift = ShiftRRX
		}
	}
}

func decodePSRTransfer(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamPSRTransfer
	inst.ToSPSR = (w>>22)&1 != 0
	inst.IsMSR = (w>>21)&1 != 0
	if !inst.IsMSR {
		// MRS Rd, CPSR|SPSR
		inst.Rd = int((w >> 12) & 0xF)
		return
	}
	// MSR
	inst.MSRFlagsOnly = (w>>16)&1 == 0 // field mask bit 16 (control) clear => flags-only
	if (w>>25)&1 != 0 {
		inst.MSRImmediate = true
		imm := w & 0xFF
		rot := ((w >> 8) & 0xF) * 2
		if rot != 0 {
			imm = (imm >> rot) | (imm << (32 - rot))
		}
		inst.Op2Imm = imm
	} else {
		inst.Rm = int(w & 0xF)
	}
}

func decodeMultiply(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamMultiply
	inst.Accumulate = (w>>21)&1 != 0
	inst.S = (w>>20)&1 != 0
	inst.Rd = int((w >> 16) & 0xF)
	inst.Rn = int((w >> 12) & 0xF)
	inst.Rs = int((w >> 8) & 0xF)
	inst.Rm = int(w & 0xF)
}

func decodeMultiplyLong(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamMultiplyLong
	inst.Long = true
	inst.UnsignedLong = (w>>22)&1 == 0
	inst.Accumulate = (w>>21)&1 != 0
	inst.S = (w>>20)&1 != 0
	inst.Rdhi = int((w >> 16) & 0xF)
	inst.Rdlo = int((w >> 12) & 0xF)
	inst.Rs = int((w >> 8) & 0xF)
	inst.Rm = int(w & 0xF)
}

func decodeSingleTransfer(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamSingleTransfer
	inst.PreIndex = (w>>24)&1 != 0
	inst.AddOffset = (w>>23)&1 != 0
	inst.Byte = (w>>22)&1 != 0
	inst.WriteBack = (w>>21)&1 != 0
	inst.Load = (w>>20)&1 != 0
	inst.Rn = int((w >> 16) & 0xF)
	inst.Rd = int((w >> 12) & 0xF)

	immediate := (w>>25)&1 == 0
	if immediate {
		inst.OffsetKind = OperandImmediate
		inst.OffsetImm = w & 0xFFF
		return
	}
	inst.OffsetKind = OperandRegister
	inst.OffsetReg = int(w & 0xF)
	inst.OffsetShift = ShiftType((w >> 5) & 0x3)
	inst.OffsetShiftAmt = int((w >> 7) & 0x1F)
	if inst.OffsetShift == ShiftROR && inst.OffsetShiftAmt == 0 {
		inst.OffsetShift = ShiftRRX
	}
}

func decodeHalfwordTransfer(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamHalfwordTransfer
	inst.PreIndex = (w>>24)&1 != 0
	inst.AddOffset = (w>>23)&1 != 0
	immediate := (w>>22)&1 != 0
	inst.WriteBack = (w>>21)&1 != 0
	inst.Load = (w>>20)&1 != 0
	inst.Rn = int((w >> 16) & 0xF)
	inst.Rd = int((w >> 12) & 0xF)

	sh := (w >> 5) & 0x3 // 01=halfword unsigned, 10=LDRSB, 11=LDRSH
	switch sh {
	case 0x1:
		inst.Half = true
	case 0x2:
		inst.Byte = true
		inst.SignExtend = true
	case 0x3:
		inst.Half = true
		inst.SignExtend = true
	}

	if immediate {
		inst.OffsetKind = OperandImmediate
		hi := (w >> 8) & 0xF
		lo := w & 0xF
		inst.OffsetImm = (hi << 4) | lo
	} else {
		inst.OffsetKind = OperandRegister
		inst.OffsetReg = int(w & 0xF)
	}
}

func decodeBlockTransfer(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamBlockTransfer
	p := (w>>24)&1 != 0
	u := (w>>23)&1 != 0
	inst.UserBank = (w>>22)&1 != 0
	inst.WriteBack = (w>>21)&1 != 0
	inst.Load = (w>>20)&1 != 0
	inst.Rn = int((w >> 16) & 0xF)
	inst.RegList = uint16(w & 0xFFFF)

	switch {
	case p && u:
		inst.BlockMode = BlockIB
	case !p && u:
		inst.BlockMode = BlockIA
	case p && !u:
		inst.BlockMode = BlockDB
	default:
		inst.BlockMode = BlockDA
	}
}

func decodeSwap(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamSwap
	inst.Byte = (w>>22)&1 != 0
	inst.Rn = int((w >> 16) & 0xF)
	inst.Rd = int((w >> 12) & 0xF)
	inst.Rm = int(w & 0xF)
}

func decodeBranch(inst *Instruction) {
	w := inst.Raw
	inst.Fam = FamBranch
	inst.Link = (w>>24)&1 != 0
	offset := w & 0x00FFFFFF
	if offset&0x00800000 != 0 {
		offset |= 0xFF000000
	}
	inst.BranchOffset = int32(offset << 2)
}

func decodeBranchExchange(inst *Instruction) {
	inst.Fam = FamBranchExchange
	inst.Rm = int(inst.Raw & 0xF)
}

func decodeSWI(inst *Instruction) {
	inst.Fam = FamSoftwareInterrupt
	inst.SWIComment = inst.Raw & 0x00FFFFFF
}
