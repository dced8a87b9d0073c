package emu

import "errors"

// ErrBreakpointHit is returned by Step/RunToVBlank when the instruction
// just retired sits on a breakpointed address (§7's debugger-facing
// control-flow signal, distinct from the fatal error taxonomy).
var ErrBreakpointHit = errors.New("emu: breakpoint hit")
