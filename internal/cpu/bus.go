package cpu

// Bus is the narrow interface the CPU needs from the memory subsystem.
// internal/bus.Bus implements it; keeping the dependency direction this
// way (cpu depends on an interface, not on internal/bus) lets cpu be unit
// tested against a trivial in-memory fake.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}
