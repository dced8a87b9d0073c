package cpu

// slotKind discriminates the three pipeline-slot states named in the
// design notes: empty is a distinct case, never conflated with a
// zero-valued fetch or decode.
type slotKind int

const (
	slotEmpty slotKind = iota
	slotFetched
	slotDecoded
)

type slot struct {
	kind  slotKind
	raw   uint32 // slotFetched: the raw fetched opcode word
	pc    uint32 // address this slot's opcode was fetched from
	thumb bool
	inst  *Instruction // slotDecoded
}

// Pipeline models the ARM7TDMI's three-stage fetch/decode/execute
// pipeline (§4.3). Advance refills fetch, moves fetch into decode, and
// moves decode into execute; Execute hands the caller the execute slot
// (possibly empty, immediately after a flush).
type Pipeline struct {
	fetch, decode, execute slot
}

// Flush empties all three slots. Per §3 this happens on any write to PC,
// on branches, on exception entry, and on an in-place PSR restore when
// R15 is the destination with S=1.
func (p *Pipeline) Flush() {
	p.fetch = slot{}
	p.decode = slot{}
	p.execute = slot{}
}

// Full reports whether every slot holds a live instruction. The interrupt
// gate only fires when the pipeline is full, preventing an interrupt from
// abandoning a not-yet-executed prefetch.
func (p *Pipeline) Full() bool {
	return p.fetch.kind != slotEmpty && p.decode.kind != slotEmpty && p.execute.kind != slotEmpty
}

// fetcher reads the next opcode at pc: a uint32 word in ARM state, or a
// uint16 halfword (widened into the low bits) in Thumb state.
type fetcher func(pc uint32, thumb bool) uint32

// Advance shifts the pipeline forward by one stage: execute <- decode,
// decode <- decode-of-fetch-word, fetch <- bus read at pc. decode is
// resolved through DecodeARM/DecodeThumb as it moves from the fetch slot
// into the decode slot, matching the "decode-of-fetch-word" step in §4.3.
func (p *Pipeline) Advance(pc uint32, thumb bool, read fetcher) {
	p.execute = p.decode

	if p.fetch.kind == slotFetched {
		var inst *Instruction
		if p.fetch.thumb {
			inst = DecodeThumb(uint16(p.fetch.raw), p.fetch.pc)
		} else {
			inst = DecodeARM(p.fetch.raw, p.fetch.pc)
		}
		if inst.Fam == FamUndefined {
			inst.DecodeErr = &DecodeError{Word: p.fetch.raw, Thumb: p.fetch.thumb, PC: p.fetch.pc}
			*inst = substituteNOP(inst)
		}
		p.decode = slot{kind: slotDecoded, pc: p.fetch.pc, thumb: p.fetch.thumb, inst: inst}
	} else {
		p.decode = slot{}
	}

	word := read(pc, thumb)
	p.fetch = slot{kind: slotFetched, raw: word, pc: pc, thumb: thumb}
}

// substituteNOP recovers from a decode failure by returning a MOV r0, r0
// in place of the unrecognized opcode, as required by §4.1/§7: the
// pipeline slot is still consumed, but the substituted instruction has no
// effect on architectural state.
func substituteNOP(bad *Instruction) Instruction {
	return Instruction{
		Raw: bad.Raw, Thumb: bad.Thumb, PC: bad.PC,
		Cond: CondAL, Fam: FamDataProcessing,
		Opcode: OpMOV, Rd: 0, Rm: 0,
		Op2Kind: OperandRegister, Op2Shift: ShiftLSL,
		DecodeErr: bad.DecodeErr,
	}
}

// Execute returns the execute slot's decoded instruction, or nil immediately
// after a flush (the next two Advance calls only populate fetch/decode).
func (p *Pipeline) Execute() *Instruction {
	if p.execute.kind != slotDecoded {
		return nil
	}
	return p.execute.inst
}
