package bus_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIO struct {
	regs [0x400]uint8
}

func (f *fakeIO) ReadIO8(addr uint32) uint8  { return f.regs[addr%uint32(len(f.regs))] }
func (f *fakeIO) WriteIO8(addr uint32, v uint8) { f.regs[addr%uint32(len(f.regs))] = v }

type fakeCart struct {
	rom    []byte
	backup [0x10000]byte
}

func (f *fakeCart) ReadROM8(addr uint32) uint8 {
	if int(addr) >= len(f.rom) {
		return 0
	}
	return f.rom[addr]
}
func (f *fakeCart) ReadBackup8(addr uint32) uint8     { return f.backup[addr%uint32(len(f.backup))] }
func (f *fakeCart) WriteBackup8(addr uint32, v uint8) { f.backup[addr%uint32(len(f.backup))] = v }

func newTestBus() *bus.Bus {
	b := &bus.Bus{
		IO:   &fakeIO{},
		Cart: &fakeCart{rom: make([]byte, 0x1000)},
	}
	return b
}

func TestBus_EWRAM_RoundTrip8(t *testing.T) {
	b := newTestBus()
	b.Write8(0x02000010, 0xAB)
	assert.Equal(t, uint8(0xAB), b.Read8(0x02000010))
}

func TestBus_IWRAM_RoundTrip32(t *testing.T) {
	b := newTestBus()
	b.Write32(0x03000000, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(0x03000000))
}

func TestBus_EWRAM_Mirrors(t *testing.T) {
	b := newTestBus()
	b.Write8(0x02000005, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(0x02040005), "EWRAM mirrors every 256 KiB")
}

func TestBus_Read16_MisalignedRotates(t *testing.T) {
	b := newTestBus()
	b.Write32(0x03000000, 0x11223344)
	// An odd-address 16-bit read rotates the aligned halfword it actually
	// reads (§4.6), rather than reading two bytes at the odd offset.
	got := b.Read16(0x03000001)
	aligned := b.Read16(0x03000000)
	want := aligned>>8 | aligned<<8
	assert.Equal(t, want, got)
}

func TestBus_Write8_PaletteDuplicatesIntoHalfword(t *testing.T) {
	b := newTestBus()
	b.Write8(0x05000000, 0x7F)
	assert.Equal(t, uint8(0x7F), b.PaletteByte(0))
	assert.Equal(t, uint8(0x7F), b.PaletteByte(1), "a palette byte write duplicates into its sibling byte")
}

func TestBus_Write8_OAMByteWriteDropped(t *testing.T) {
	b := newTestBus()
	b.OAMByte(0) // baseline read, not asserted
	b.Write8(0x07000000, 0xFF)
	assert.Equal(t, uint8(0), b.OAMByte(0), "an 8-bit OAM write is silently dropped")
}

func TestBus_Write16_OAMWideWriteSucceeds(t *testing.T) {
	b := newTestBus()
	b.Write16(0x07000000, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), uint16(b.OAMByte(0))|uint16(b.OAMByte(1))<<8)
}

func TestBus_Write8_OBJVRAMByteWriteDropped(t *testing.T) {
	b := newTestBus()
	b.Write8(0x06010000, 0xFF) // OBJ character base
	assert.Equal(t, uint8(0), b.VRAMByte(0x10000), "an 8-bit OBJ-VRAM write is silently dropped")
}

func TestBus_Write8_BGVRAMDuplicatesIntoHalfword(t *testing.T) {
	b := newTestBus()
	b.Write8(0x06000000, 0x55) // BG character base, below the OBJ boundary
	assert.Equal(t, uint8(0x55), b.VRAMByte(0))
	assert.Equal(t, uint8(0x55), b.VRAMByte(1))
}

func TestBus_ROM_ReadOnly(t *testing.T) {
	b := newTestBus()
	b.Write8(0x08000000, 0xFF) // write is a no-op
	assert.Equal(t, uint8(0), b.Read8(0x08000000))
}

func TestBus_BIOSGate_OpenBusWhenForbidden(t *testing.T) {
	b := newTestBus()
	b.BIOS[0] = 0x11
	b.BIOS[1] = 0x22
	b.BIOS[2] = 0x33
	b.BIOS[3] = 0x44
	b.BIOSGate = func() bool { return true }

	require.Equal(t, uint32(0x44332211), b.Read32(0))

	b.BIOSGate = func() bool { return false }
	assert.Equal(t, uint32(0x44332211), b.Read32(0), "forbidden BIOS reads return the last latched word")
}

func TestBus_Backup_RoundTrip(t *testing.T) {
	b := newTestBus()
	b.Write8(0x0E000000, 0x99)
	assert.Equal(t, uint8(0x99), b.Read8(0x0E000000))
}
