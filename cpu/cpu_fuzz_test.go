package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// referenceBasic is a plain integer model of the arithmetic instructions.
func referenceBasic(op CodeOp, dst, src uint16) (res uint16, ex uint16, has_ex bool, ok bool) {
	b := int(dst)
	a := int(src)

	switch op {
	case OP_SET:
		return src, 0, false, true
	case OP_ADD:
		sum := b + a
		return uint16(sum), uint16(sum >> 16), true, true
	case OP_SUB:
		diff := b - a
		if diff < 0 {
			ex = 0xffff
		}
		return uint16(diff), ex, true, true
	case OP_MUL:
		product := b * a
		return uint16(product), uint16(product >> 16), true, true
	case OP_AND:
		return dst & src, 0, false, true
	case OP_BOR:
		return dst | src, 0, false, true
	case OP_XOR:
		return dst ^ src, 0, false, true
	}

	return
}

func FuzzStep(f *testing.F) {
	f.Add(uint16(0x7c01), uint16(0x1234), uint16(0x5678), uint32(0), uint16(STACK_TOP), false)
	f.Add(uint16(0x0402), uint16(0), uint16(0), uint32(0x0001ffff), uint16(STACK_TOP), false)
	f.Add(uint16(0x0403), uint16(0), uint16(0), uint32(0x00010000), uint16(STACK_TOP), false)
	f.Add(uint16(0x0404), uint16(0), uint16(0), uint32(0x0002ffff), uint16(STACK_TOP), true)
	f.Add(uint16(0x1820), uint16(0), uint16(0), uint32(0), uint16(0), false)
	f.Add(uint16(0x6381), uint16(0), uint16(0), uint32(0), uint16(0x8000), false)
	f.Add(uint16(0x0018), uint16(0), uint16(0), uint32(0), uint16(STACK_TOP), false)
	f.Add(uint16(0x7c20), uint16(0x0040), uint16(0), uint32(0), uint16(STACK_TOP), true)
	f.Add(uint16(0x6020), uint16(0), uint16(0), uint32(0), uint16(0x8000), true)

	f.Fuzz(func(t *testing.T, word uint16, imm0 uint16, imm1 uint16, regs uint32, sp uint16, skip bool) {
		assert := assert.New(t)

		code := Code{Word: word, Immediates: []uint16{imm0, imm1}}
		code.Immediates = code.Immediates[:code.ImmediateNeed()]

		cpu := newTestCpu(code)
		for n := range REGISTER_COUNT {
			cpu.Register[n] = uint16(0x1000 + n)
		}
		cpu.Register[REG_A] = uint16(regs)
		cpu.Register[REG_B] = uint16(regs >> 16)
		cpu.Sp = sp
		cpu.Skip = skip

		before := cpu.Registers
		below := cpu.Memory[sp-1]

		err := cpu.Step()
		assert.Equal(1, cpu.Ticks)
		assert.False(cpu.Skip && skip)

		if err != nil {
			var fault *ErrFault
			assert.True(errors.As(err, &fault))
			assert.Equal(word, fault.Word)
			assert.Equal(uint16(0), fault.Ip)
			assert.True(errors.Is(err, ErrOpcodeUnsupported) || errors.Is(err, ErrStackOverflow), err.Error())
			return
		}

		if skip {
			assert.Equal(uint16(code.Len()), cpu.Pc)
			assert.Equal(before.Register, cpu.Register)
			assert.Equal(before.Ex, cpu.Ex)

			// Only PUSH and POP operands move SP. Nothing is written.
			var moved bool
			if code.Op() == OP_SPECIAL {
				_, a := code.DecodeSpecial()
				moved = a == MODE_PUSH_POP
			} else {
				_, b, a := code.Decode()
				moved = b == MODE_PUSH_POP || a == MODE_PUSH_POP
			}
			if !moved {
				assert.Equal(sp, cpu.Sp)
			}
			assert.Equal(below, cpu.Memory[sp-1])
			return
		}

		if code.Op() == OP_SPECIAL {
			// JSR pushed the return address, after any POP of its target.
			expected := sp - 1
			if _, a := code.DecodeSpecial(); a == MODE_PUSH_POP {
				expected = sp
			}
			assert.Equal(expected, cpu.Sp)
			assert.Equal(uint16(code.Len()), cpu.Memory[cpu.Sp])
			return
		}

		op, b, a := code.Decode()
		if b != MODE_PC || op.Conditional() {
			assert.Equal(uint16(code.Len()), cpu.Pc)
		}

		if b != regA || a != regB {
			return
		}

		res, ex, has_ex, ok := referenceBasic(op, before.Register[REG_A], before.Register[REG_B])
		if !ok {
			return
		}

		assert.Equal(res, cpu.Register[REG_A], op.String())
		if has_ex {
			assert.Equal(ex, cpu.Ex, op.String())
		} else {
			assert.Equal(before.Ex, cpu.Ex, op.String())
		}
	})
}
