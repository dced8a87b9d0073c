package config

import "github.com/advanceemu/gba/internal/cart"

// ResolveBackupOverride converts the [cartridge].backup_override string
// into a cart.BackupKind; an empty or unrecognized string yields
// BackupNone, meaning "no override" to loader.ResolveBackupKind's
// fallback chain.
func (c *Config) ResolveBackupOverride() cart.BackupKind {
	switch c.Cartridge.BackupOverride {
	case "sram":
		return cart.BackupSRAM
	case "flash512":
		return cart.BackupFlash64K
	case "flash1m":
		return cart.BackupFlash128K
	case "eeprom4k":
		return cart.BackupEEPROM4K
	case "eeprom64k":
		return cart.BackupEEPROM64K
	default:
		return cart.BackupNone
	}
}
