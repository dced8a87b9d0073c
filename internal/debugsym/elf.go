package debugsym

import (
	"debug/elf"
	"fmt"
)

// LoadELF reads a symbol table from an ELF file (typically produced by
// an ARM cross-compiler alongside the .gba image it built) and returns a
// Resolver over its function and object symbols. STT_NOTYPE/undefined
// and zero-value symbols are skipped since they add noise without
// locating any code or data.
func LoadELF(path string) (*Resolver, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("debugsym: failed to open %q: %w", path, err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("debugsym: failed to read symbols from %q: %w", path, err)
	}

	table := make(map[string]uint32, len(syms))
	for _, s := range syms {
		if s.Name == "" || s.Value == 0 {
			continue
		}
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT:
			table[s.Name] = uint32(s.Value)
		}
	}

	return NewResolver(table), nil
}
