// Package emu wires the CPU, bus, PPU, timers, DMA controller, interrupt
// controller, and cartridge into a single runnable machine and exposes
// the host-facing operations named in §6 (new/step/run_to_vblank/
// set_key/read_mem/write_mem/add_breakpoint/remove_breakpoint/
// load_backup/save_backup). Grounded on the teacher's vm.VM: a composite
// struct owning every subsystem plus an execution-state/error field,
// generalized from a single ARM2 CPU+memory pair to the full GBA timing
// fabric.
package emu

import (
	"fmt"

	"github.com/advanceemu/gba/internal/bus"
	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/cpu"
	"github.com/advanceemu/gba/internal/dma"
	"github.com/advanceemu/gba/internal/irq"
	"github.com/advanceemu/gba/internal/ppu"
	"github.com/advanceemu/gba/internal/timer"
)

// Key identifies one of the ten GBA input lines, matching KEYINPUT's bit
// order (§6).
type Key int

const (
	KeyA Key = iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// entryPoint is where cartridge execution begins; the BIOS reset vector
// itself lives at 0, but a cartridge-only run (no BIOS image loaded)
// starts directly at the ROM's entry point per §6.
const entryPoint = 0x08000000

// biosEntryPoint is where execution begins when a BIOS image is loaded.
const biosEntryPoint = 0x00000000

// Machine is the fully wired GBA: every subsystem plus the breakpoint
// set and key state the host API operates on.
type Machine struct {
	CPU    *cpu.CPU
	Bus    *bus.Bus
	PPU    *ppu.PPU
	Timers *timer.Bank
	DMA    *dma.Controller
	IRQ    *irq.Controller
	Cart   *cart.Cart

	keys uint16 // KEYINPUT latch, active-low per §6

	breakpoints map[uint32]bool

	// LastError holds the most recent fatal error (UnmappedAccess,
	// DecodeFailure, etc. per §7); Step/RunToVBlank stop advancing once
	// set.
	LastError error
}

// New builds a Machine with all subsystems wired together and the
// cartridge inserted, but does not reset or start execution; call Reset
// to begin running from either the BIOS or the cartridge entry point.
func New(c *cart.Cart, biosImage []byte) *Machine {
	m := &Machine{
		CPU:         cpu.NewCPU(),
		Bus:         &bus.Bus{},
		PPU:         &ppu.PPU{},
		Timers:      &timer.Bank{},
		DMA:         &dma.Controller{},
		IRQ:         &irq.Controller{},
		Cart:        c,
		keys:        0x03FF, // all ten lines released (active-low, all 1s)
		breakpoints: make(map[uint32]bool),
	}

	if len(biosImage) > 0 {
		copy(m.Bus.BIOS[:], biosImage)
	}

	m.CPU.IRQ = m.IRQ
	m.Bus.Cart = c
	m.Bus.IO = &ioRouter{m: m}
	m.Bus.BIOSGate = func() bool {
		return m.CPU.Regs.GetRawPC() < 0x4000 || m.CPU.Regs.CPSR().Mode == cpu.ModeIRQ
	}

	m.PPU.Mem = m.Bus
	m.PPU.IRQ = m.IRQ
	m.PPU.OnVBlank = m.DMA.OnVBlank
	m.PPU.OnHBlank = m.DMA.OnHBlank

	m.Timers.IRQ = m.IRQ
	m.DMA.Bus = m.Bus
	m.DMA.IRQ = m.IRQ

	return m
}

// Reset restores the processor to its power-on state. If a BIOS image
// was loaded, execution begins at the reset vector; otherwise it begins
// directly at the cartridge entry point, skipping the BIOS intro.
func (m *Machine) Reset() {
	entry := uint32(entryPoint)
	if m.biosLoaded() {
		entry = biosEntryPoint
	}
	m.CPU.Reset(entry)
	m.LastError = nil
}

func (m *Machine) biosLoaded() bool {
	for _, b := range m.Bus.BIOS {
		if b != 0 {
			return true
		}
	}
	return false
}

// Step advances the machine by exactly one CPU tick: interrupt gate and
// pipeline advance happen inside CPU.Step, then the PPU advances one dot,
// then the timers tick. Step makes no separate DMA pass after the timer
// tick: HBlank/VBlank channels run from the PPU's hooks inside the PPU
// tick, and an immediate-trigger channel runs from the control-register
// write that arms it (ioRouter.writeDMA), during the instruction itself.
func (m *Machine) Step() error {
	if m.LastError != nil {
		return fmt.Errorf("emu: machine halted on error: %w", m.LastError)
	}

	inst := m.CPU.Step(m.Bus)
	// A decode error is recovered locally by the pipeline (substituted
	// with a no-op) per §7; CPU.LastDecodeError is exposed for tracing,
	// not treated as fatal here.

	m.PPU.Tick()
	m.Timers.Tick()

	if inst != nil && m.breakpoints[inst.PC] {
		return ErrBreakpointHit
	}
	return nil
}

// RunToVBlank steps the machine until the PPU reports VBlank has just
// begun (VCOUNT transitions to ScreenHeight), or a breakpoint/error stops
// it first. It returns the number of ticks executed.
func (m *Machine) RunToVBlank() (uint64, error) {
	var ticks uint64
	wasVBlank := m.PPU.DISPSTAT&1 != 0
	for {
		if err := m.Step(); err != nil {
			return ticks, err
		}
		ticks++
		nowVBlank := m.PPU.DISPSTAT&1 != 0
		if nowVBlank && !wasVBlank {
			return ticks, nil
		}
		wasVBlank = nowVBlank
	}
}

// SetKey updates one input line's pressed state; KEYINPUT reports
// released lines as 1, pressed as 0.
func (m *Machine) SetKey(k Key, pressed bool) {
	if pressed {
		m.keys &^= 1 << uint(k)
	} else {
		m.keys |= 1 << uint(k)
	}
}

// ReadMem and WriteMem expose the bus directly to the host for
// inspection/poking, bypassing CPU-side side effects like pipeline
// flush.
func (m *Machine) ReadMem(addr uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(m.Bus.Read8(addr))
	case 2:
		return uint32(m.Bus.Read16(addr))
	default:
		return m.Bus.Read32(addr)
	}
}

func (m *Machine) WriteMem(addr uint32, width int, value uint32) {
	switch width {
	case 1:
		m.Bus.Write8(addr, uint8(value))
	case 2:
		m.Bus.Write16(addr, uint16(value))
	default:
		m.Bus.Write32(addr, value)
	}
}

// AddBreakpoint and RemoveBreakpoint manage the PC-address-keyed
// breakpoint table Step consults; internal/debugger.BreakpointSet builds
// on top of this with conditions and one-shot semantics.
func (m *Machine) AddBreakpoint(pc uint32)    { m.breakpoints[pc] = true }
func (m *Machine) RemoveBreakpoint(pc uint32) { delete(m.breakpoints, pc) }

// LoadBackup and SaveBackup expose the cartridge's backup store for
// persistence (§6); a nil Cart or backup is a no-op.
func (m *Machine) LoadBackup(data []byte) {
	if m.Cart != nil {
		m.Cart.Load(data)
	}
}

func (m *Machine) SaveBackup() []byte {
	if m.Cart == nil {
		return nil
	}
	return m.Cart.Save()
}
