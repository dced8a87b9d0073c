// Package logtag provides the subsystem-tagged logging the rest of this
// module uses, grounded on the teacher's api/debug.go: a package-level
// *log.Logger gated by an environment variable, with debug output off
// by default so normal emulation runs stay quiet. Every call site
// prefixes its message with one of the subsystem tags from §7's error
// taxonomy (cpu:, mmio:, ppu:, irq:, pipeline:, storage:) instead of
// inventing its own.
package logtag

import (
	"io"
	"log"
	"os"
)

var logger *log.Logger

func init() {
	if os.Getenv("GBA_EMU_DEBUG") != "" {
		logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
	} else {
		logger = log.New(io.Discard, "", 0)
	}
}

// Subsystem tags matching §7's target taxonomy.
const (
	CPU      = "cpu: "
	MMIO     = "mmio: "
	PPU      = "ppu: "
	IRQ      = "irq: "
	Pipeline = "pipeline: "
	Storage  = "storage: "
)

// Printf logs a tagged message when GBA_EMU_DEBUG is set; it is a no-op
// otherwise, so callers can leave trace calls in the hot path.
func Printf(tag, format string, args ...interface{}) {
	logger.Printf(tag+format, args...)
}

// SetOutput redirects where tagged log output goes (tests, a file
// configured via Config.Trace.OutputFile); by default it is discarded.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
