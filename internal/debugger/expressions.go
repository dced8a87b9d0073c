package debugger

import (
	"fmt"
	"strings"

	"github.com/advanceemu/gba/internal/emu"
)

// Evaluator tracks the $N value history across a debugger session, the
// way the teacher's ExpressionEvaluator does across a console session:
// each call to EvaluateExpression appends its result so a later
// expression can refer back to it with $1, $2, and so on.
type Evaluator struct {
	valueHistory []uint32
}

// NewEvaluator returns an Evaluator with empty value history.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// EvaluateExpression parses and evaluates expr, recording the result in
// the value history for later $N references.
func (e *Evaluator) EvaluateExpression(expr string, env Environment) (uint32, error) {
	v, err := e.evaluate(expr, env)
	if err != nil {
		return 0, err
	}
	e.valueHistory = append(e.valueHistory, v)
	return v, nil
}

func (e *Evaluator) evaluate(expr string, env Environment) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("debugger: empty expression")
	}
	lexer := newExprLexer(expr)
	tokens := lexer.tokenizeAll()
	parser := newExprParser(tokens, env, e)
	return parser.parse()
}

// GetValue returns the n'th recorded value ($1 is the first evaluated
// expression, matching the console's 1-based history numbering).
func (e *Evaluator) GetValue(n int) (uint32, error) {
	if n < 1 || n > len(e.valueHistory) {
		return 0, fmt.Errorf("debugger: no such value $%d", n)
	}
	return e.valueHistory[n-1], nil
}

// ValueCount returns how many expressions have been recorded.
func (e *Evaluator) ValueCount() int { return len(e.valueHistory) }

// Reset clears the value history.
func (e *Evaluator) Reset() { e.valueHistory = nil }

// Evaluate parses and evaluates expr against env with no value history
// of its own; it exists for one-shot callers like
// BreakpointSet.ProcessHit that don't need a persistent Evaluator. A
// condition that references $N always fails here since there is no
// history to draw from — conditions referencing prior console values
// should go through a session's own Evaluator instead.
func Evaluate(expr string, env Environment) (uint32, error) {
	e := NewEvaluator()
	return e.evaluate(expr, env)
}

// machineEnv adapts an *emu.Machine to Environment so breakpoint and
// watchpoint conditions can be evaluated against live CPU/memory state.
type machineEnv struct {
	m       *emu.Machine
	symbols map[string]uint32
}

// NewMachineEnvironment builds the Environment ProcessHit and watch
// expressions evaluate against, with an optional symbol table (nil is
// fine; symbol lookups simply always miss).
func NewMachineEnvironment(m *emu.Machine, symbols map[string]uint32) Environment {
	return &machineEnv{m: m, symbols: symbols}
}

func (e *machineEnv) Register(name string) (uint32, bool) {
	switch name {
	case "pc", "r15":
		return e.m.CPU.Regs.Get(15), true
	case "sp", "r13":
		return e.m.CPU.Regs.Get(13), true
	case "lr", "r14":
		return e.m.CPU.Regs.Get(14), true
	case "cpsr":
		return e.m.CPU.Regs.CPSR().ToUint32(), true
	case "n":
		return b32(e.m.CPU.Regs.CPSR().N), true
	case "z":
		return b32(e.m.CPU.Regs.CPSR().Z), true
	case "c":
		return b32(e.m.CPU.Regs.CPSR().C), true
	case "v":
		return b32(e.m.CPU.Regs.CPSR().V), true
	case "vcount":
		return uint32(e.m.PPU.VCOUNT), true
	}
	if strings.HasPrefix(name, "r") {
		var n int
		if _, err := fmt.Sscanf(name, "r%d", &n); err == nil && n >= 0 && n <= 14 {
			return e.m.CPU.Regs.Get(n), true
		}
	}
	return 0, false
}

func b32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func (e *machineEnv) ReadMem32(addr uint32) uint32 {
	return e.m.ReadMem(addr, 4)
}

func (e *machineEnv) Symbol(name string) (uint32, bool) {
	if e.symbols == nil {
		return 0, false
	}
	addr, ok := e.symbols[name]
	return addr, ok
}
