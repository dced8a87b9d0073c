// Package cpu implements the ARMv4T (ARM7TDMI) instruction set: dual
// ARM/Thumb decode, the three-stage fetch/decode/execute pipeline, the
// barrel shifter, banked register file, and the per-family instruction
// handlers described by the processor core of the emulated console.
package cpu

import "fmt"

// Conventional names for the general registers used by link/stack
// addressing and by the handlers, matching ARM's procedure-call standard.
const (
	SP = 13
	LR = 14
	PC = 15
)

// Mode is one of the seven ARM processor modes. The numeric values match
// the CPSR mode field encoding (bits 4:0) so CPSR.Mode() round-trips.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// String returns the assembler mnemonic for a mode, or "???" if the mode
// field does not encode one of the seven valid modes.
func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "USR"
	case ModeFIQ:
		return "FIQ"
	case ModeIRQ:
		return "IRQ"
	case ModeSupervisor:
		return "SVC"
	case ModeAbort:
		return "ABT"
	case ModeUndefined:
		return "UND"
	case ModeSystem:
		return "SYS"
	default:
		return "???"
	}
}

// Valid reports whether m is one of the seven architected modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return true
	default:
		return false
	}
}

// bankIndex identifies one of the six banked register files: the shared
// User/System file, FIQ, and the four two-register banks. Per the design
// notes this is a fixed array dispatch rather than a hash keyed by mode.
type bankIndex int

const (
	bankUser bankIndex = iota
	bankFIQ
	bankSupervisor
	bankAbort
	bankIRQ
	bankUndefined
	bankCount
)

func bankFor(m Mode) bankIndex {
	switch m {
	case ModeFIQ:
		return bankFIQ
	case ModeSupervisor:
		return bankSupervisor
	case ModeAbort:
		return bankAbort
	case ModeIRQ:
		return bankIRQ
	case ModeUndefined:
		return bankUndefined
	default: // User, System
		return bankUser
	}
}

// PSR is the Current/Saved Program Status Register: condition flags,
// interrupt masks, the Thumb state bit, and the mode field.
type PSR struct {
	N, Z, C, V bool
	I, F, T    bool
	Mode       Mode
}

// ToUint32 packs the PSR into the architected 32-bit layout.
func (p PSR) ToUint32() uint32 {
	var v uint32
	if p.N {
		v |= 1 << 31
	}
	if p.Z {
		v |= 1 << 30
	}
	if p.C {
		v |= 1 << 29
	}
	if p.V {
		v |= 1 << 28
	}
	if p.I {
		v |= 1 << 7
	}
	if p.F {
		v |= 1 << 6
	}
	if p.T {
		v |= 1 << 5
	}
	v |= uint32(p.Mode) & 0x1F
	return v
}

// FromUint32 unpacks the architected 32-bit layout into p. A mode field
// that doesn't name one of the seven architected modes is kept as-is; the
// caller (PSR-transfer handler) is responsible for rejecting it.
func (p *PSR) FromUint32(v uint32) {
	p.N = v&(1<<31) != 0
	p.Z = v&(1<<30) != 0
	p.C = v&(1<<29) != 0
	p.V = v&(1<<28) != 0
	p.I = v&(1<<7) != 0
	p.F = v&(1<<6) != 0
	p.T = v&(1<<5) != 0
	p.Mode = Mode(v & 0x1F)
}

// UpdateFlagsNZ sets N and Z from result.
func (p *PSR) UpdateFlagsNZ(result uint32) {
	p.N = result&0x80000000 != 0
	p.Z = result == 0
}

// UpdateFlagsNZC sets N, Z and C.
func (p *PSR) UpdateFlagsNZC(result uint32, carry bool) {
	p.UpdateFlagsNZ(result)
	p.C = carry
}

// UpdateFlagsNZCV sets all four arithmetic flags.
func (p *PSR) UpdateFlagsNZCV(result uint32, carry, overflow bool) {
	p.UpdateFlagsNZ(result)
	p.C = carry
	p.V = overflow
}

// Registers holds the sixteen general registers, CPSR, the five banked
// SPSRs, and the banked physical storage for r8-r14 per mode. Register
// reads/writes dispatch through CPSR.Mode so banking is transparent to
// instruction handlers; they only ever see r0-r15.
type Registers struct {
	r      [16]uint32
	cpsr   PSR
	spsr   [bankCount]PSR // indexed by bankIndex; bankUser slot is unused
	banked [bankCount][7]uint32
	// banked[bankFIQ][0:5] holds r8-r12 for FIQ mode; r13/r14 live in
	// banked[b][5:7] for every banked mode b, for a uniform shape: slots
	// 0-4 are r8-r12 (FIQ only), slots 5-6 are r13-r14 (all banked modes).
}

// NewRegisters returns a Registers with CPSR.Mode = Supervisor (the reset
// mode architected for ARMv4T) and all other state zeroed.
func NewRegisters() *Registers {
	regs := &Registers{}
	regs.cpsr.Mode = ModeSupervisor
	return regs
}

// CPSR returns the current program status register.
func (r *Registers) CPSR() PSR { return r.cpsr }

// SetCPSR replaces the CPSR wholesale, e.g. when restoring from SPSR on
// exception return. The caller must flush the pipeline separately.
func (r *Registers) SetCPSR(p PSR) { r.cpsr = p }

// SPSR returns the saved PSR for the current mode. In User/System mode
// SPSR is architecturally undefined; callers must check Registers.Mode()
// before relying on this (see PrivilegedAccess in the error taxonomy).
func (r *Registers) SPSR() PSR {
	return r.spsr[bankFor(r.cpsr.Mode)]
}

// SetSPSR writes the saved PSR for the current mode. No-op (and the
// caller should log a PrivilegedAccess) in User/System mode.
func (r *Registers) SetSPSR(p PSR) {
	b := bankFor(r.cpsr.Mode)
	if b == bankUser {
		return
	}
	r.spsr[b] = p
}

// Mode returns the active processor mode.
func (r *Registers) Mode() Mode { return r.cpsr.Mode }

// SetMode switches the active mode, copying nothing: banked registers are
// addressed live through the new mode, so no register values move.
func (r *Registers) SetMode(m Mode) { r.cpsr.Mode = m }

// physical returns a pointer to the physical word backing register reg
// (0-15) under the current mode. Used by both Get/Set and by the
// block-transfer S-bit path (which instead asks for a specific mode via
// physicalInMode).
func (r *Registers) physical(reg int) *uint32 {
	return r.physicalInMode(reg, r.cpsr.Mode)
}

func (r *Registers) physicalInMode(reg int, mode Mode) *uint32 {
	switch {
	case reg < 8 || reg == 15:
		return &r.r[reg]
	case reg >= 8 && reg <= 12:
		if mode == ModeFIQ {
			return &r.banked[bankFIQ][reg-8]
		}
		return &r.r[reg]
	case reg == 13 || reg == 14:
		b := bankFor(mode)
		if b == bankUser {
			return &r.r[reg]
		}
		slot := 5 + (reg - 13)
		return &r.banked[b][slot]
	default:
		panic(fmt.Sprintf("cpu: register index out of range: %d", reg))
	}
}

// Get reads the raw value of general register reg (0-15), including the
// architectural PC itself with no prefetch adjustment. Instruction
// handlers that read R15 as an ALU/addressing operand must instead go
// through CPU.ReadReg, which accounts for the pipeline's prefetch skew
// (§4.4); Get/Set only ever see the bus-fetch address.
func (r *Registers) Get(reg int) uint32 {
	return *r.physical(reg)
}

// GetRawPC returns the raw program-counter value: the address the
// pipeline's fetch stage will read next, with no prefetch adjustment.
func (r *Registers) GetRawPC() uint32 { return r.r[15] }

// Set writes general register reg (0-15). Writing PC does not by itself
// flush the pipeline; callers that branch must call Pipeline.Flush.
func (r *Registers) Set(reg int, value uint32) {
	*r.physical(reg) = value
}

// SetPC sets the raw program counter, masking low bits per the current
// instruction width (bit 0 in Thumb, bits 1:0 in ARM), per §3.
func (r *Registers) SetPC(addr uint32) {
	if r.cpsr.T {
		r.r[15] = addr &^ 1
	} else {
		r.r[15] = addr &^ 3
	}
}

// AdvancePC steps the raw program counter forward by the current
// instruction width (4 bytes in ARM state, 2 in Thumb state), used once
// per tick to keep PC two instructions ahead of the executing slot.
func (r *Registers) AdvancePC() {
	if r.cpsr.T {
		r.r[15] += 2
	} else {
		r.r[15] += 4
	}
}

// GetUserBank reads r8-r14 from the User/System bank regardless of the
// current mode, used by LDM/STM with the S-bit set when R15 is not in
// the register list (§4.4 "user-mode-register access").
func (r *Registers) GetUserBank(reg int) uint32 {
	if reg < 8 || reg == 15 {
		return r.r[reg]
	}
	return r.r[reg]
}

// SetUserBank writes r8-r14 into the User/System bank regardless of the
// current mode.
func (r *Registers) SetUserBank(reg int, value uint32) {
	if reg == 15 {
		r.SetPC(value)
		return
	}
	r.r[reg] = value
}

// Reset zeroes every register, all banks, and resets CPSR/SPSR to the
// post-reset state (Supervisor mode, IRQ/FIQ disabled).
func (r *Registers) Reset() {
	*r = Registers{}
	r.cpsr.Mode = ModeSupervisor
	r.cpsr.I = true
	r.cpsr.F = true
}
