package debugger_test

import (
	"testing"

	"github.com/advanceemu/gba/internal/debugger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv is a minimal debugger.Environment for expression tests, so
// they don't need a real *emu.Machine.
type fakeEnv struct {
	regs    map[string]uint32
	mem     map[uint32]uint32
	symbols map[string]uint32
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{regs: map[string]uint32{}, mem: map[uint32]uint32{}, symbols: map[string]uint32{}}
}

func (e *fakeEnv) Register(name string) (uint32, bool) {
	v, ok := e.regs[name]
	return v, ok
}

func (e *fakeEnv) ReadMem32(addr uint32) uint32 { return e.mem[addr] }

func (e *fakeEnv) Symbol(name string) (uint32, bool) {
	v, ok := e.symbols[name]
	return v, ok
}

func TestEvaluate_Arithmetic(t *testing.T) {
	env := newFakeEnv()

	tests := []struct {
		expr string
		want uint32
	}{
		{"1 + 2", 3},
		{"2 + 3 * 4", 14, /* precedence: mul before add */},
		{"(2 + 3) * 4", 20},
		{"0x10 + 0b10", 18},
		{"10 - 20", 0xFFFFFFF6},
		{"1 << 4", 16},
		{"0xFF & 0x0F", 0x0F},
		{"0x0F | 0xF0", 0xFF},
		{"0xFF ^ 0x0F", 0xF0},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := debugger.Evaluate(tt.expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	env := newFakeEnv()
	_, err := debugger.Evaluate("1 / 0", env)
	assert.Error(t, err)
}

func TestEvaluate_Registers(t *testing.T) {
	env := newFakeEnv()
	env.regs["r0"] = 42
	env.regs["pc"] = 0x08000100

	got, err := debugger.Evaluate("r0 + 1", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(43), got)

	got, err = debugger.Evaluate("pc", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x08000100), got)
}

func TestEvaluate_MemoryDereference(t *testing.T) {
	env := newFakeEnv()
	env.mem[0x1000] = 0xCAFEBABE

	got, err := debugger.Evaluate("[0x1000]", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), got)

	got, err = debugger.Evaluate("*0x1000", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), got)
}

func TestEvaluate_UnknownRegisterIsError(t *testing.T) {
	env := newFakeEnv()
	_, err := debugger.Evaluate("r99", env)
	assert.Error(t, err)
}

func TestEvaluate_FlagAndVCountPseudoRegisters(t *testing.T) {
	env := newFakeEnv()
	env.regs["z"] = 1
	env.regs["vcount"] = 160

	got, err := debugger.Evaluate("z", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got, "a condition of just \"z\" fires whenever the zero flag is set")

	got, err = debugger.Evaluate("vcount", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(160), got)
}

func TestEvaluator_ValueHistory(t *testing.T) {
	env := newFakeEnv()
	e := debugger.NewEvaluator()

	v1, err := e.EvaluateExpression("10 + 5", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(15), v1)

	v2, err := e.EvaluateExpression("$1 * 2", env)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), v2)

	assert.Equal(t, 2, e.ValueCount())

	e.Reset()
	assert.Equal(t, 0, e.ValueCount())
	_, err = e.EvaluateExpression("$1", env)
	assert.Error(t, err, "history reset means $1 no longer resolves")
}

func TestEvaluate_StatelessHasNoHistory(t *testing.T) {
	env := newFakeEnv()
	_, err := debugger.Evaluate("$1", env)
	assert.Error(t, err, "the package-level Evaluate has no persistent history")
}
