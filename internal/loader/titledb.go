package loader

import "github.com/advanceemu/gba/internal/cart"

// TitleDB maps a cartridge's 4-byte game code to its known backup kind,
// for the handful of titles whose header heuristic is ambiguous or
// whose ROM predates the save-type string convention scanBackupNeedles
// relies on.
type TitleDB map[string]cart.BackupKind

// DefaultTitleDB is a small compiled-in seed; a real deployment would
// extend this from an external data file, which §6.1 leaves unspecified
// beyond "looks up backup type in an embedded title database."
var DefaultTitleDB = TitleDB{
	"AZLE": cart.BackupEEPROM64K, // Legend of Zelda: A Link to the Past / Four Swords
	"AGFE": cart.BackupFlash128K, // Golden Sun: The Lost Age
	"AXVE": cart.BackupFlash128K, // Pokemon Ruby
	"AXPE": cart.BackupFlash128K, // Pokemon Sapphire
	"BPEE": cart.BackupFlash128K, // Pokemon Emerald
	"AMTE": cart.BackupEEPROM64K, // Metroid Fusion
}
