// Package loader turns a cartridge image on disk (raw .gba, or a .gba
// member inside a zip archive) plus an optional BIOS image into a
// ready-to-run internal/cart.Cart, resolving the backup storage kind
// through the title database's fallback chain (§6.1). Grounded on the
// teacher's loader.LoadProgramIntoVM: file I/O wrapped in fmt.Errorf,
// generalized from "decode an assembly program" to "unwrap and inspect a
// ROM image."
package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/advanceemu/gba/internal/cart"
)

// LoadROM reads a cartridge image from path. A .zip archive is unwrapped
// to its first .gba member; a bare .gba (or any other extension) is read
// directly.
func LoadROM(path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadFromZip(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read ROM %q: %w", path, err)
	}
	return data, nil
}

func loadFromZip(path string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to open zip %q: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".gba") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("loader: failed to open %q in zip %q: %w", f.Name, path, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("loader: failed to read %q in zip %q: %w", f.Name, path, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("loader: zip %q contains no .gba member", path)
}

// LoadBIOS reads a raw BIOS image. A missing or empty path is not an
// error: Machine.Reset falls back to starting execution directly at the
// cartridge entry point.
func LoadBIOS(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read BIOS %q: %w", path, err)
	}
	return data, nil
}

// LoadCartridge parses a ROM image's header, resolves its backup kind
// through the title-database fallback chain, and builds a ready-to-use
// Cart. configOverride, if non-zero (BackupNone is the zero value and
// never itself an override — pass cart.BackupSRAM or another explicit
// kind), is used only when neither an exact title-database hit nor the
// header-heuristic scan resolves a kind.
func LoadCartridge(rom []byte, db TitleDB, configOverride cart.BackupKind) (*cart.Cart, cart.Header, error) {
	header, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, cart.Header{}, fmt.Errorf("loader: %w", err)
	}

	kind := ResolveBackupKind(header, rom, db, configOverride)
	return cart.New(rom, kind), header, nil
}

// ResolveBackupKind implements §6.1's fallback chain: exact game-code
// match in the title database, then an ASCII-needle scan of the ROM
// image for the save-type strings real cartridges embed, then a
// caller-supplied config override, then a default of plain SRAM.
func ResolveBackupKind(header cart.Header, rom []byte, db TitleDB, configOverride cart.BackupKind) cart.BackupKind {
	if kind, ok := db[header.GameCode]; ok {
		return kind
	}
	if kind, ok := scanBackupNeedles(rom); ok {
		return kind
	}
	if configOverride != cart.BackupNone {
		return configOverride
	}
	return cart.BackupSRAM
}

// backupNeedles is checked longest-prefix-first so "FLASH512_V"/
// "FLASH1M_V" are not shadowed by the shorter "FLASH_V".
var backupNeedles = []struct {
	needle string
	kind   cart.BackupKind
}{
	{"EEPROM_V", cart.BackupEEPROM64K},
	{"FLASH512_V", cart.BackupFlash64K},
	{"FLASH1M_V", cart.BackupFlash128K},
	{"FLASH_V", cart.BackupFlash64K},
	{"SRAM_V", cart.BackupSRAM},
}

func scanBackupNeedles(rom []byte) (cart.BackupKind, bool) {
	for _, n := range backupNeedles {
		if bytes.Contains(rom, []byte(n.needle)) {
			return n.kind, true
		}
	}
	return cart.BackupNone, false
}
