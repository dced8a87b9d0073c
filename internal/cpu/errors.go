package cpu

import "fmt"

// DecodeError reports that an opcode word matched no known bit pattern.
// Per §7 this is recovered locally: the pipeline substitutes a MOV r0,r0
// and logs a warning; DecodeError is never returned up through Step.
type DecodeError struct {
	Word  uint32
	Thumb bool
	PC    uint32
}

func (e *DecodeError) Error() string {
	width := "ARM"
	if e.Thumb {
		width = "Thumb"
	}
	return fmt.Sprintf("decode: unrecognized %s opcode 0x%08X at 0x%08X", width, e.Word, e.PC)
}
