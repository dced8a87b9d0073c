// Package cart implements cartridge ROM access and the three backup
// storage state machines a GBA title can carry: transparent SRAM, the
// Flash command-sequence FSM, and the EEPROM bit-serial protocol. It
// implements bus.Cartridge so internal/bus never needs to know which
// backup kind is attached.
package cart

import "fmt"

// BackupKind identifies which backup storage, if any, a title uses.
type BackupKind int

const (
	BackupNone BackupKind = iota
	BackupSRAM
	BackupFlash64K
	BackupFlash128K
	BackupEEPROM4K
	BackupEEPROM64K
)

func (k BackupKind) String() string {
	switch k {
	case BackupSRAM:
		return "SRAM"
	case BackupFlash64K:
		return "FLASH512"
	case BackupFlash128K:
		return "FLASH1M"
	case BackupEEPROM4K:
		return "EEPROM(4k)"
	case BackupEEPROM64K:
		return "EEPROM(64k)"
	default:
		return "NONE"
	}
}

// backupStore is the byte-addressable protocol every backup kind
// implements; EEPROM maps its serial protocol onto this same interface
// by treating each DMA-driven word as a one-bit access (see eeprom.go).
type backupStore interface {
	ReadByte(addr uint32) uint8
	WriteByte(addr uint32, v uint8)
}

// Cart holds the loaded ROM image and its attached backup store.
type Cart struct {
	ROM    []byte
	Kind   BackupKind
	Backup backupStore
}

// Header is the fixed-layout cartridge header fields the loader and the
// title database both need (§6).
type Header struct {
	Title    string
	GameCode string
}

// ParseHeader reads the 12-byte title and 4-byte game code from a raw
// ROM image per the fixed cartridge header layout.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0xB0 {
		return Header{}, fmt.Errorf("cart: image too short for a header (%d bytes)", len(rom))
	}
	return Header{
		Title:    trimASCII(rom[0xA0:0xAC]),
		GameCode: trimASCII(rom[0xAC:0xB0]),
	}, nil
}

func trimASCII(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}

// New builds a Cart with the backup store matching kind.
func New(rom []byte, kind BackupKind) *Cart {
	c := &Cart{ROM: rom, Kind: kind}
	switch kind {
	case BackupSRAM:
		c.Backup = newSRAM()
	case BackupFlash64K:
		c.Backup = newFlash(64 * 1024)
	case BackupFlash128K:
		c.Backup = newFlash(128 * 1024)
	case BackupEEPROM4K:
		c.Backup = newEEPROM(6)
	case BackupEEPROM64K:
		c.Backup = newEEPROM(14)
	default:
		c.Backup = newSRAM() // default fallback per §6.1's TitleDB chain
	}
	return c
}

// ReadROM8 implements bus.Cartridge: open bus (zero) past the image end.
func (c *Cart) ReadROM8(addr uint32) uint8 {
	if int(addr) >= len(c.ROM) {
		return 0
	}
	return c.ROM[addr]
}

func (c *Cart) ReadBackup8(addr uint32) uint8  { return c.Backup.ReadByte(addr) }
func (c *Cart) WriteBackup8(addr uint32, v uint8) { c.Backup.WriteByte(addr, v) }

// Save returns the backup store's raw contents for persistence.
func (c *Cart) Save() []byte {
	if s, ok := c.Backup.(interface{ Raw() []byte }); ok {
		return s.Raw()
	}
	return nil
}

// Load restores the backup store's raw contents.
func (c *Cart) Load(data []byte) {
	if s, ok := c.Backup.(interface{ LoadRaw([]byte) }); ok {
		s.LoadRaw(data)
	}
}
