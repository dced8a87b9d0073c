package ppu_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/irq"
	"github.com/advanceemu/gba/internal/ppu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMem struct {
	vram, palette, oam [0x20000]uint8
}

func (m *fakeMem) VRAMByte(addr uint32) uint8    { return m.vram[addr] }
func (m *fakeMem) PaletteByte(addr uint32) uint8 { return m.palette[addr] }
func (m *fakeMem) OAMByte(addr uint32) uint8     { return m.oam[addr] }

func newTestPPU() (*ppu.PPU, *fakeMem) {
	mem := &fakeMem{}
	p := &ppu.PPU{Mem: mem, IRQ: &irq.Controller{}}
	return p, mem
}

func TestPPU_HBlankFlagSetsAtDot240(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 240; i++ {
		p.Tick()
	}
	assert.NotZero(t, p.DISPSTAT&(1<<1), "HBlank flag set once the visible 240 dots elapse")
}

func TestPPU_VBlankFlagSetsAtLine160(t *testing.T) {
	p, _ := newTestPPU()
	for line := 0; line < 160; line++ {
		for dot := 0; dot < 308; dot++ {
			p.Tick()
		}
	}
	assert.NotZero(t, p.DISPSTAT&1, "VBlank flag set once VCOUNT reaches 160")
	assert.Equal(t, uint16(160), p.VCOUNT)
}

func TestPPU_FrameWrapsAt228Lines(t *testing.T) {
	p, _ := newTestPPU()
	for line := 0; line < 228; line++ {
		for dot := 0; dot < 308; dot++ {
			p.Tick()
		}
	}
	assert.Equal(t, uint16(0), p.VCOUNT)
	assert.Zero(t, p.DISPSTAT&1, "VBlank clears once VCOUNT wraps back to 0")
}

func TestPPU_VBlankIRQFiresWhenEnabled(t *testing.T) {
	p, _ := newTestPPU()
	p.DISPSTAT |= 1 << 3 // VBlank IRQ enable
	p.IRQ.WriteIME(true)
	p.IRQ.WriteIE(1 << irq.VBlank)

	for line := 0; line < 160; line++ {
		for dot := 0; dot < 308; dot++ {
			p.Tick()
		}
	}
	assert.True(t, p.IRQ.Pending())
}

func TestPPU_OnVBlankHookFires(t *testing.T) {
	p, _ := newTestPPU()
	fired := false
	p.OnVBlank = func() { fired = true }

	for line := 0; line < 160; line++ {
		for dot := 0; dot < 308; dot++ {
			p.Tick()
		}
	}
	assert.True(t, fired)
}

func TestPPU_RenderMode3_DirectBitmap(t *testing.T) {
	p, mem := newTestPPU()
	p.DISPCNT = 3 // mode 3

	mem.vram[0] = 0xFF
	mem.vram[1] = 0x7F // 0x7FFF, white in BGR555

	for dot := 0; dot < 308; dot++ {
		p.Tick()
	}
	assert.Equal(t, uint16(0x7FFF), p.Framebuf[0][0])
}

func TestPPU_RenderMode4_PalettedBitmap(t *testing.T) {
	p, mem := newTestPPU()
	p.DISPCNT = 4 // mode 4, frame 0

	mem.vram[0] = 5 // palette index 5
	mem.palette[10] = 0x34
	mem.palette[11] = 0x12

	for dot := 0; dot < 308; dot++ {
		p.Tick()
	}
	assert.Equal(t, uint16(0x1234), p.Framebuf[0][0])
}

func TestPPU_RenderMode4_SecondFrameSelectedByDISPCNTBit4(t *testing.T) {
	p, mem := newTestPPU()
	p.DISPCNT = 4 | (1 << 4) // mode 4, frame 1 (base 0xA000)

	mem.vram[0xA000] = 7
	mem.palette[14] = 0xCD
	mem.palette[15] = 0xAB

	for dot := 0; dot < 308; dot++ {
		p.Tick()
	}
	assert.Equal(t, uint16(0xABCD), p.Framebuf[0][0])
}

func TestPPU_RenderMode5_SmallerCanvasBlanksOutsideEdges(t *testing.T) {
	p, _ := newTestPPU()
	p.DISPCNT = 5

	for dot := 0; dot < 308; dot++ {
		p.Tick()
	}
	require.Equal(t, uint16(0), p.Framebuf[0][200], "mode 5 is only 160 wide; columns beyond that stay blank")
}

func TestPPU_RenderMode0_TileBackdrop(t *testing.T) {
	p, mem := newTestPPU()
	p.DISPCNT = 0 // mode 0

	mem.palette[0] = 0x11
	mem.palette[1] = 0x22 // backdrop color for index 0

	for dot := 0; dot < 308; dot++ {
		p.Tick()
	}
	assert.Equal(t, uint16(0x2211), p.Framebuf[0][0], "an all-zero tilemap/tileset renders as the backdrop color")
}
