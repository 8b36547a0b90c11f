package cpu

// doBasic performs a basic instruction on the resolved operands.
// The destination is written before EX.
func (cpu *Cpu) doBasic(op CodeOp, b, a Operand) (err error) {
	dst := b.Read()
	src := a.Read()

	var result uint16
	var ex uint16
	write := true
	write_ex := true

	switch op {
	case OP_SET:
		result = src
		write_ex = false
	case OP_ADD:
		sum := uint32(dst) + uint32(src)
		if sum > 0xffff {
			ex = 1
		}
		result = uint16(sum)
	case OP_SUB:
		if src > dst {
			ex = 0xffff
		}
		result = dst - src
	case OP_MUL:
		product := uint32(dst) * uint32(src)
		ex = uint16(product >> 16)
		result = uint16(product)
	case OP_MLI:
		product := int32(int16(dst)) * int32(int16(src))
		ex = uint16(product >> 16)
		result = uint16(product)
	case OP_DIV:
		if src != 0 {
			ex = uint16((uint32(dst) << 16) / uint32(src))
			result = dst / src
		}
	case OP_DVI:
		if src != 0 {
			ex = uint16((int32(int16(dst)) << 16) / int32(int16(src)))
			result = uint16(int32(int16(dst)) / int32(int16(src)))
		}
	case OP_MOD:
		if src != 0 {
			result = dst % src
		}
		write_ex = false
	case OP_MDI:
		if src != 0 {
			result = uint16(int32(int16(dst)) % int32(int16(src)))
		}
		write_ex = false
	case OP_AND:
		result = dst & src
		write_ex = false
	case OP_BOR:
		result = dst | src
		write_ex = false
	case OP_XOR:
		result = dst ^ src
		write_ex = false
	case OP_SHR:
		ex = uint16((uint32(dst) << 16) >> src)
		result = uint16(uint32(dst) >> src)
	case OP_ASR:
		ex = uint16((int32(int16(dst)) << 16) >> src)
		result = uint16(int32(int16(dst)) >> src)
	case OP_SHL:
		ex = uint16((uint32(dst) << src) >> 16)
		result = uint16(uint32(dst) << src)
	case OP_IFB:
		cpu.Skip = (dst & src) == 0
		write, write_ex = false, false
	case OP_IFC:
		cpu.Skip = (dst & src) != 0
		write, write_ex = false, false
	case OP_IFE:
		cpu.Skip = dst != src
		write, write_ex = false, false
	case OP_IFN:
		cpu.Skip = dst == src
		write, write_ex = false, false
	case OP_IFG:
		cpu.Skip = !(dst > src)
		write, write_ex = false, false
	case OP_IFA:
		cpu.Skip = !(int16(dst) > int16(src))
		write, write_ex = false, false
	case OP_IFL:
		cpu.Skip = !(dst < src)
		write, write_ex = false, false
	case OP_IFU:
		cpu.Skip = !(int16(dst) < int16(src))
		write, write_ex = false, false
	default:
		err = ErrOpcodeUnsupported
		return
	}

	if write {
		b.Write(result)
	}
	if write_ex {
		cpu.Ex = ex
	}

	return
}

// doSpecial performs a special instruction on the resolved operand.
func (cpu *Cpu) doSpecial(op CodeSpecialOp, a Operand) (err error) {
	switch op {
	case SOP_JSR:
		target := a.Read()
		if cpu.StackFull() {
			err = ErrStackOverflow
			return
		}
		cpu.Push(cpu.Pc)
		cpu.Pc = target
	default:
		err = ErrOpcodeUnsupported
	}

	return
}
