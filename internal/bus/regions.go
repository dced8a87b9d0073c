package bus

type region int

const (
	regionOpenBus region = iota
	regionBIOS
	regionEWRAM
	regionIWRAM
	regionIO
	regionPalette
	regionVRAM
	regionOAM
	regionROM
	regionBackup
)

// objVRAMStart is the tile-mode OBJ character base (0x06010000). In the
// bitmap modes (3/4/5) OBJ VRAM actually begins at 0x06014000, but the
// byte-write-ignore quirk is applied at the fixed tile-mode boundary
// here; getting this boundary exactly right requires consulting the live
// PPU mode, which the bus intentionally does not depend on.
const objVRAMStart = 0x10000

// decode masks a 32-bit address to its 28-bit effective form and maps it
// to a region and an offset relative to that region's base address.
func decode(addr uint32) (region, uint32) {
	addr &= 0x0FFFFFFF
	switch (addr >> 24) & 0xFF {
	case 0x00, 0x01:
		return regionBIOS, addr
	case 0x02:
		return regionEWRAM, addr - 0x02000000
	case 0x03:
		return regionIWRAM, addr - 0x03000000
	case 0x04:
		return regionIO, addr - 0x04000000
	case 0x05:
		return regionPalette, addr - 0x05000000
	case 0x06:
		return regionVRAM, addr - 0x06000000
	case 0x07:
		return regionOAM, addr - 0x07000000
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return regionROM, (addr - 0x08000000) & 0x01FFFFFF
	case 0x0E, 0x0F:
		return regionBackup, addr & 0xFFFF
	default:
		return regionOpenBus, addr
	}
}

// vramOffset applies VRAM's split 128 KiB mirror period: the object
// character/tile window (the last 32 KiB of each 96 KiB image) repeats
// instead of the whole region re-mirroring (§3).
func vramOffset(off uint32) uint32 {
	w := off % (128 * 1024)
	if w >= 0x18000 {
		w -= 0x8000
	}
	return w
}
