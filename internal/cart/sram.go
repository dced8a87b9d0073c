package cart

// sram is transparent byte memory with 32 KiB mirroring (§3).
type sram struct {
	data [32 * 1024]byte
}

func newSRAM() *sram { return &sram{} }

func (s *sram) ReadByte(addr uint32) uint8     { return s.data[addr%uint32(len(s.data))] }
func (s *sram) WriteByte(addr uint32, v uint8) { s.data[addr%uint32(len(s.data))] = v }

func (s *sram) Raw() []byte { return s.data[:] }
func (s *sram) LoadRaw(b []byte) {
	n := copy(s.data[:], b)
	for i := n; i < len(s.data); i++ {
		s.data[i] = 0xFF
	}
}
