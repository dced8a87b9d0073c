package loader_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/advanceemu/gba/internal/cart"
	"github.com/advanceemu/gba/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestROM(t *testing.T, needle string) []byte {
	t.Helper()
	rom := make([]byte, 0x200)
	copy(rom[0xA0:], []byte("TESTGAME    TEST"))
	if needle != "" {
		copy(rom[0x100:], []byte(needle))
	}
	return rom
}

func TestLoadROM_PlainFile(t *testing.T) {
	rom := makeTestROM(t, "")
	path := filepath.Join(t.TempDir(), "game.gba")
	require.NoError(t, os.WriteFile(path, rom, 0644))

	got, err := loader.LoadROM(path)
	require.NoError(t, err)
	assert.Equal(t, rom, got)
}

func TestLoadROM_ZipArchive(t *testing.T) {
	rom := makeTestROM(t, "")
	path := filepath.Join(t.TempDir(), "game.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("game.gba")
	require.NoError(t, err)
	_, err = w.Write(rom)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	got, err := loader.LoadROM(path)
	require.NoError(t, err)
	assert.Equal(t, rom, got)
}

func TestLoadROM_ZipWithoutGBAMember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = loader.LoadROM(path)
	assert.Error(t, err)
}

func TestLoadBIOS_EmptyPathIsNotAnError(t *testing.T) {
	data, err := loader.LoadBIOS("")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLoadBIOS_MissingFileErrors(t *testing.T) {
	_, err := loader.LoadBIOS(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err)
}

func TestResolveBackupKind_TitleDBTakesPriority(t *testing.T) {
	rom := makeTestROM(t, "SRAM_V") // needle would otherwise say SRAM
	header, err := cart.ParseHeader(rom)
	require.NoError(t, err)

	db := loader.TitleDB{header.GameCode: cart.BackupFlash128K}
	got := loader.ResolveBackupKind(header, rom, db, cart.BackupNone)
	assert.Equal(t, cart.BackupFlash128K, got)
}

func TestResolveBackupKind_NeedleScanBeforeConfigOverride(t *testing.T) {
	rom := makeTestROM(t, "FLASH1M_V")
	header, err := cart.ParseHeader(rom)
	require.NoError(t, err)

	got := loader.ResolveBackupKind(header, rom, loader.TitleDB{}, cart.BackupSRAM)
	assert.Equal(t, cart.BackupFlash128K, got)
}

func TestResolveBackupKind_ConfigOverrideBeforeDefault(t *testing.T) {
	rom := makeTestROM(t, "")
	header, err := cart.ParseHeader(rom)
	require.NoError(t, err)

	got := loader.ResolveBackupKind(header, rom, loader.TitleDB{}, cart.BackupEEPROM4K)
	assert.Equal(t, cart.BackupEEPROM4K, got)
}

func TestResolveBackupKind_DefaultsToSRAM(t *testing.T) {
	rom := makeTestROM(t, "")
	header, err := cart.ParseHeader(rom)
	require.NoError(t, err)

	got := loader.ResolveBackupKind(header, rom, loader.TitleDB{}, cart.BackupNone)
	assert.Equal(t, cart.BackupSRAM, got)
}

func TestResolveBackupKind_LongestNeedlePreferred(t *testing.T) {
	rom := makeTestROM(t, "FLASH512_V")
	header, err := cart.ParseHeader(rom)
	require.NoError(t, err)

	got := loader.ResolveBackupKind(header, rom, loader.TitleDB{}, cart.BackupNone)
	assert.Equal(t, cart.BackupFlash64K, got)
}

func TestLoadCartridge_BuildsCartWithResolvedBackup(t *testing.T) {
	rom := makeTestROM(t, "EEPROM_V")

	c, header, err := loader.LoadCartridge(rom, loader.TitleDB{}, cart.BackupNone)
	require.NoError(t, err)
	assert.Equal(t, "TESTGAME", header.Title)
	assert.NotNil(t, c)
}
