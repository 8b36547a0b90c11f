package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newResolveState builds a state with distinct register and memory contents.
func newResolveState() (st *State) {
	st = &State{}
	st.Reset()

	for n := range REGISTER_COUNT {
		st.Register[n] = uint16(0x100 * (n + 1))
	}
	st.Sp = 0xfff0
	st.Pc = 0x0010
	st.Ex = 0xeeee
	st.Memory[0x0010] = 0x0005
	st.Memory[0x0011] = 0x0006

	return
}

func TestResolve_Table(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mode  CodeMode
		is_a  bool
		kind  OperandKind
		index uint16
		sp    uint16
		pc    uint16
	}){
		{ModeReg(MODE_REG, REG_A), true, OPERAND_REGISTER, 0, 0xfff0, 0x10},
		{ModeReg(MODE_REG, REG_J), false, OPERAND_REGISTER, 7, 0xfff0, 0x10},
		{ModeReg(MODE_REG_MEM, REG_B), true, OPERAND_MEMORY, 0x200, 0xfff0, 0x10},
		{ModeReg(MODE_REG_NEXT_MEM, REG_C), true, OPERAND_MEMORY, 0x305, 0xfff0, 0x11},
		{MODE_PUSH_POP, true, OPERAND_MEMORY, 0xfff0, 0xfff1, 0x10},
		{MODE_PUSH_POP, false, OPERAND_MEMORY, 0xffef, 0xffef, 0x10},
		{MODE_PEEK, true, OPERAND_MEMORY, 0xfff0, 0xfff0, 0x10},
		{MODE_PICK, true, OPERAND_MEMORY, 0xfff5, 0xfff0, 0x11},
		{MODE_SP, true, OPERAND_SP, 0, 0xfff0, 0x10},
		{MODE_PC, false, OPERAND_PC, 0, 0xfff0, 0x10},
		{MODE_EX, true, OPERAND_EX, 0, 0xfff0, 0x10},
		{MODE_NEXT_MEM, true, OPERAND_MEMORY, 0x0005, 0xfff0, 0x11},
		{MODE_NEXT, true, OPERAND_LITERAL, 0x0005, 0xfff0, 0x11},
		{ModeLiteral(0), true, OPERAND_LITERAL, 0, 0xfff0, 0x10},
		{ModeLiteral(31), true, OPERAND_LITERAL, 31, 0xfff0, 0x10},
	}

	for _, entry := range table {
		st := newResolveState()
		op := st.Resolve(entry.mode, entry.is_a)
		assert.Equal(entry.kind, op.Kind, "mode %#x", int(entry.mode))
		assert.Equal(entry.index, op.Index, "mode %#x", int(entry.mode))
		assert.Equal(entry.sp, st.Sp, "mode %#x", int(entry.mode))
		assert.Equal(entry.pc, st.Pc, "mode %#x", int(entry.mode))
	}
}

func TestResolve_Literals(t *testing.T) {
	assert := assert.New(t)

	st := newResolveState()
	for mode := MODE_LITERAL; mode <= MODE_MASK; mode++ {
		op := st.Resolve(mode, true)
		assert.Equal(uint16(mode-MODE_LITERAL), op.Read())

		// Writes to literals have no effect.
		op.Write(0xdead)
		assert.Equal(uint16(mode-MODE_LITERAL), op.Read())
	}

	op := st.Resolve(MODE_NEXT, true)
	op.Write(0xdead)
	assert.Equal(uint16(0x0005), op.Read())
	assert.Equal(uint16(0x0005), st.Memory[0x0010])
}

func TestResolve_RegisterIdempotent(t *testing.T) {
	assert := assert.New(t)

	st := newResolveState()
	before := st.Registers

	for mode := ModeReg(MODE_REG, REG_A); mode < MODE_REG_NEXT_MEM; mode++ {
		first := st.Resolve(mode, true).Read()
		second := st.Resolve(mode, true).Read()
		assert.Equal(first, second)
	}

	assert.Equal(before, st.Registers)
}

func TestResolve_Pop(t *testing.T) {
	assert := assert.New(t)

	st := &State{}
	st.Reset()
	st.Push(0x1111)
	st.Push(0x2222)

	first := st.Resolve(MODE_PUSH_POP, true).Read()
	second := st.Resolve(MODE_PUSH_POP, true).Read()

	assert.Equal(uint16(0x2222), first)
	assert.Equal(uint16(0x1111), second)
	assert.Equal(uint16(STACK_TOP), st.Sp)
}

func TestResolve_Write(t *testing.T) {
	assert := assert.New(t)

	st := newResolveState()

	st.Resolve(ModeReg(MODE_REG, REG_X), false).Write(0x1234)
	assert.Equal(uint16(0x1234), st.Register[REG_X])

	st.Resolve(ModeReg(MODE_REG_MEM, REG_A), false).Write(0x4321)
	assert.Equal(uint16(0x4321), st.Memory[0x100])

	st.Resolve(MODE_SP, false).Write(0x8000)
	assert.Equal(uint16(0x8000), st.Sp)

	st.Resolve(MODE_EX, false).Write(0x0001)
	assert.Equal(uint16(0x0001), st.Ex)

	st.Resolve(MODE_PC, false).Write(0x0200)
	assert.Equal(uint16(0x0200), st.Pc)

	st.Resolve(MODE_PUSH_POP, false).Write(0xbeef)
	assert.Equal(uint16(0x7fff), st.Sp)
	assert.Equal(uint16(0xbeef), st.Memory[0x7fff])
}

func TestResolve_Panic(t *testing.T) {
	assert := assert.New(t)

	st := newResolveState()
	assert.Panics(func() { st.Resolve(MODE_MASK+1, true) })
}
