package hostapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/config"
	"github.com/advanceemu/gba/internal/emu"
)

var (
	errNoFrameYet = errors.New("hostapi: no frame rendered yet")
	errUnknownKey = errors.New("hostapi: unknown key name")
)

// resolveBackupOverride reuses Config's [cartridge].backup_override
// mapping so the HTTP request body and the config file accept the same
// vocabulary ("sram", "flash512", ...).
func resolveBackupOverride(name string) cart.BackupKind {
	c := &config.Config{}
	c.Cartridge.BackupOverride = name
	return c.ResolveBackupOverride()
}

var keyNames = map[string]emu.Key{
	"a":      emu.KeyA,
	"b":      emu.KeyB,
	"select": emu.KeySelect,
	"start":  emu.KeyStart,
	"right":  emu.KeyRight,
	"left":   emu.KeyLeft,
	"up":     emu.KeyUp,
	"down":   emu.KeyDown,
	"r":      emu.KeyR,
	"l":      emu.KeyL,
}

func parseKey(name string) (emu.Key, bool) {
	k, ok := keyNames[name]
	return k, ok
}

func parseMemQuery(r *http.Request) (addr uint32, length uint32, err error) {
	q := r.URL.Query()
	a, err := strconv.ParseUint(q.Get("address"), 0, 32)
	if err != nil {
		return 0, 0, err
	}
	l, err := strconv.ParseUint(q.Get("length"), 0, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(a), uint32(l), nil
}
