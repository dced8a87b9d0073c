// Package ppu implements the GBA display controller's scanline/dot
// timing state machine and pixel output for the tile-mapped text mode
// (mode 0) and the three bitmap modes (3/4/5). Rotation/scaling
// backgrounds (modes 1/2) are intentionally stubbed: §4 permits this,
// and the timing/bus contract this package exercises is identical
// whichever mode is selected.
package ppu

import "github.com/advanceemu/gba/internal/irq"

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	dotsPerLine   = 308
	hblankDot     = ScreenWidth
	linesPerFrame = 228
	vblankLine    = ScreenHeight
)

// VRAM/OAM/Palette are the narrow memory views the PPU renders from;
// internal/emu wires these directly onto the bus's backing arrays so the
// renderer shares the exact same storage the CPU's VRAM/OAM/Palette
// writes land in.
type Memory interface {
	VRAMByte(addr uint32) uint8
	PaletteByte(addr uint32) uint8
	OAMByte(addr uint32) uint8
}

// PPU is the scanline/dot state machine plus the register file that
// drives it (DISPCNT/DISPSTAT/VCOUNT and the four background control
// registers).
type PPU struct {
	Mem Memory
	IRQ *irq.Controller

	DISPCNT  uint16
	DISPSTAT uint16
	VCOUNT   uint16
	BGCNT    [4]uint16
	BGHOFS   [4]uint16
	BGVOFS   [4]uint16

	dot uint32

	// Framebuf holds one full frame of BGR555-equivalent 16-bit pixels,
	// filled one scanline at a time as HDraw completes.
	Framebuf [ScreenHeight][ScreenWidth]uint16

	// OnVBlank/OnHBlank are the DMA controller's trigger hooks; wired by
	// internal/emu so ppu need not import package dma.
	OnVBlank func()
	OnHBlank func()
}

// bgMode returns DISPCNT bits 0-2.
func (p *PPU) bgMode() int { return int(p.DISPCNT & 0x7) }

// Tick advances the PPU by one dot (§4/§5): one CPU tick, one PPU dot.
func (p *PPU) Tick() {
	p.dot++
	if p.dot == hblankDot {
		p.renderScanline(int(p.VCOUNT))
		p.setHBlank(true)
		if p.hblankIRQEnabled() {
			p.IRQ.Raise(irq.HBlank)
		}
		if p.OnHBlank != nil {
			p.OnHBlank()
		}
	}

	if p.dot < dotsPerLine {
		return
	}

	p.dot = 0
	p.setHBlank(false)
	p.VCOUNT++
	if p.VCOUNT == vblankLine {
		p.setVBlank(true)
		if p.vblankIRQEnabled() {
			p.IRQ.Raise(irq.VBlank)
		}
		if p.OnVBlank != nil {
			p.OnVBlank()
		}
	}
	if p.VCOUNT == linesPerFrame {
		p.VCOUNT = 0
		p.setVBlank(false)
	}
	if p.vcountIRQEnabled() && p.VCOUNT == p.vcountTarget() {
		p.IRQ.Raise(irq.VCount)
		p.DISPSTAT |= 1 << 2
	} else {
		p.DISPSTAT &^= 1 << 2
	}
}

func (p *PPU) setHBlank(v bool) {
	if v {
		p.DISPSTAT |= 1 << 1
	} else {
		p.DISPSTAT &^= 1 << 1
	}
}

func (p *PPU) setVBlank(v bool) {
	if v {
		p.DISPSTAT |= 1 << 0
	} else {
		p.DISPSTAT &^= 1 << 0
	}
}

func (p *PPU) hblankIRQEnabled() bool { return p.DISPSTAT&(1<<4) != 0 }
func (p *PPU) vblankIRQEnabled() bool { return p.DISPSTAT&(1<<3) != 0 }
func (p *PPU) vcountIRQEnabled() bool { return p.DISPSTAT&(1<<5) != 0 }
func (p *PPU) vcountTarget() uint16   { return p.DISPSTAT >> 8 }

// renderScanline fills one row of Framebuf according to the current
// video mode.
func (p *PPU) renderScanline(line int) {
	switch p.bgMode() {
	case 3:
		p.renderBitmap15(line, 0)
	case 4:
		frame := uint32(0)
		if p.DISPCNT&(1<<4) != 0 {
			frame = 0xA000
		}
		p.renderBitmap8(line, frame)
	case 5:
		frame := uint32(0)
		if p.DISPCNT&(1<<4) != 0 {
			frame = 0xA000
		}
		p.renderBitmap15Small(line, frame)
	case 0:
		p.renderTileBG0(line)
	default:
		// Modes 1/2 (rotation/scaling) are out of scope; leave the
		// scanline as it was (typically all zero from reset).
	}
}

// renderBitmap15 is mode 3: 240x160, BGR555, one frame, direct.
func (p *PPU) renderBitmap15(line int, base uint32) {
	for x := 0; x < ScreenWidth; x++ {
		off := base + uint32(line*ScreenWidth+x)*2
		lo := p.Mem.VRAMByte(off)
		hi := p.Mem.VRAMByte(off + 1)
		p.Framebuf[line][x] = uint16(lo) | uint16(hi)<<8
	}
}

// renderBitmap15Small is mode 5: 160x128, BGR555, two swappable frames.
func (p *PPU) renderBitmap15Small(line int, base uint32) {
	const w, h = 160, 128
	if line >= h {
		for x := 0; x < ScreenWidth; x++ {
			p.Framebuf[line][x] = 0
		}
		return
	}
	for x := 0; x < ScreenWidth; x++ {
		if x >= w {
			p.Framebuf[line][x] = 0
			continue
		}
		off := base + uint32(line*w+x)*2
		lo := p.Mem.VRAMByte(off)
		hi := p.Mem.VRAMByte(off + 1)
		p.Framebuf[line][x] = uint16(lo) | uint16(hi)<<8
	}
}

// renderBitmap8 is mode 4: 240x160, paletted, two swappable frames.
func (p *PPU) renderBitmap8(line int, base uint32) {
	for x := 0; x < ScreenWidth; x++ {
		idx := p.Mem.VRAMByte(base + uint32(line*ScreenWidth+x))
		p.Framebuf[line][x] = p.paletteColor(idx)
	}
}

func (p *PPU) paletteColor(index uint8) uint16 {
	off := uint32(index) * 2
	lo := p.Mem.PaletteByte(off)
	hi := p.Mem.PaletteByte(off + 1)
	return uint16(lo) | uint16(hi)<<8
}

// renderTileBG0 is a simplified mode-0 renderer: BG0 only, 4bpp or 8bpp,
// 256x256 screen size, no scrolling-screen-size variants, no priority
// compositing against BG1-3 or OBJ. A complete multi-background
// compositor is out of scope here (see DESIGN.md); this still exercises
// the tileset/tilemap addressing and the bus's VRAM/Palette paths.
func (p *PPU) renderTileBG0(line int) {
	cnt := p.BGCNT[0]
	charBase := uint32((cnt>>2)&0x3) * 0x4000
	screenBase := uint32((cnt>>8)&0x1F) * 0x800
	colorMode8bpp := cnt&(1<<7) != 0

	scrollY := int(p.BGVOFS[0])
	scrollX := int(p.BGHOFS[0])
	y := (line + scrollY) & 0xFF

	for x := 0; x < ScreenWidth; x++ {
		sx := (x + scrollX) & 0xFF
		tileX, tileY := sx/8, y/8
		entryOff := screenBase + uint32(tileY*32+tileX)*2
		lo := p.Mem.VRAMByte(entryOff)
		hi := p.Mem.VRAMByte(entryOff + 1)
		entry := uint16(lo) | uint16(hi)<<8
		tileIndex := entry & 0x3FF
		paletteBank := uint8((entry >> 12) & 0xF)

		px, py := sx%8, y%8

		var colorIndex uint8
		if colorMode8bpp {
			tileOff := charBase + uint32(tileIndex)*64 + uint32(py*8+px)
			colorIndex = p.Mem.VRAMByte(tileOff)
		} else {
			tileOff := charBase + uint32(tileIndex)*32 + uint32(py*4+px/2)
			b := p.Mem.VRAMByte(tileOff)
			if px%2 == 0 {
				colorIndex = b & 0xF
			} else {
				colorIndex = b >> 4
			}
			if colorIndex != 0 {
				colorIndex += paletteBank * 16
			}
		}

		if colorIndex == 0 {
			p.Framebuf[line][x] = p.paletteColor(0) // backdrop
		} else {
			p.Framebuf[line][x] = p.paletteColor(colorIndex)
		}
	}
}
