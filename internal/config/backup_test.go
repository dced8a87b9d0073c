package config_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResolveBackupOverride(t *testing.T) {
	tests := []struct {
		value string
		want  cart.BackupKind
	}{
		{"", cart.BackupNone},
		{"sram", cart.BackupSRAM},
		{"flash512", cart.BackupFlash64K},
		{"flash1m", cart.BackupFlash128K},
		{"eeprom4k", cart.BackupEEPROM4K},
		{"eeprom64k", cart.BackupEEPROM64K},
		{"unrecognized", cart.BackupNone},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Cartridge.BackupOverride = tt.value
			assert.Equal(t, tt.want, cfg.ResolveBackupOverride())
		})
	}
}
