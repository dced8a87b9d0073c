// Package debugsym loads ELF symbol tables for an optional debug-symbol
// file alongside a cartridge image, and resolves addresses to the
// nearest preceding symbol for trace and debugger display. The resolver
// itself is carried over from the teacher's vm.SymbolResolver unchanged
// in shape: an address-to-symbol table is address-to-symbol table
// whether the addresses come from an assembler's symbol table or an
// ELF's .symtab.
package debugsym

import (
	"fmt"
	"sort"
)

// Resolver provides address-to-symbol lookup for trace and debugger
// output, grounded on vm.SymbolResolver.
type Resolver struct {
	symbols         map[string]uint32
	addressToSymbol map[uint32]string
	sortedAddresses []uint32
}

// NewResolver builds a Resolver from a name->address symbol table.
func NewResolver(symbols map[string]uint32) *Resolver {
	if symbols == nil {
		symbols = make(map[string]uint32)
	}

	addressToSymbol := make(map[uint32]string, len(symbols))
	for name, addr := range symbols {
		addressToSymbol[addr] = name
	}

	sortedAddresses := make([]uint32, 0, len(addressToSymbol))
	for addr := range addressToSymbol {
		sortedAddresses = append(sortedAddresses, addr)
	}
	sort.Slice(sortedAddresses, func(i, j int) bool { return sortedAddresses[i] < sortedAddresses[j] })

	return &Resolver{
		symbols:         symbols,
		addressToSymbol: addressToSymbol,
		sortedAddresses: sortedAddresses,
	}
}

// LookupAddress returns the exact symbol name at address, or "".
func (r *Resolver) LookupAddress(address uint32) string { return r.addressToSymbol[address] }

// LookupSymbol returns the address bound to name, if any.
func (r *Resolver) LookupSymbol(name string) (uint32, bool) {
	addr, ok := r.symbols[name]
	return addr, ok
}

// ResolveAddress resolves address to the nearest symbol at or before it,
// with the byte offset from that symbol.
func (r *Resolver) ResolveAddress(address uint32) (symbolName string, offset uint32, found bool) {
	if name, ok := r.addressToSymbol[address]; ok {
		return name, 0, true
	}
	if len(r.sortedAddresses) == 0 {
		return "", 0, false
	}

	idx := sort.Search(len(r.sortedAddresses), func(i int) bool { return r.sortedAddresses[i] > address })
	if idx == 0 {
		return "", 0, false
	}

	nearest := r.sortedAddresses[idx-1]
	return r.addressToSymbol[nearest], address - nearest, true
}

// FormatAddress renders "symbol+offset (0xADDRESS)", or just the hex
// address when no symbol covers it.
func (r *Resolver) FormatAddress(address uint32) string {
	name, offset, found := r.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%08x", address)
	}
	if offset == 0 {
		return fmt.Sprintf("%s (0x%08x)", name, address)
	}
	return fmt.Sprintf("%s+%d (0x%08x)", name, offset, address)
}

// FormatAddressCompact renders "symbol+offset" without the raw address.
func (r *Resolver) FormatAddressCompact(address uint32) string {
	name, offset, found := r.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%08x", address)
	}
	if offset == 0 {
		return name
	}
	return fmt.Sprintf("%s+%d", name, offset)
}

// HasSymbols reports whether any symbols are loaded.
func (r *Resolver) HasSymbols() bool { return len(r.symbols) > 0 }

// SymbolCount returns the number of symbols loaded.
func (r *Resolver) SymbolCount() int { return len(r.symbols) }
