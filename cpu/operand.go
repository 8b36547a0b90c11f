package cpu

// OperandKind is the location class of a resolved operand.
type OperandKind int

const (
	OPERAND_REGISTER = OperandKind(iota) // General purpose register.
	OPERAND_MEMORY                       // Memory cell.
	OPERAND_SP                           // Stack pointer.
	OPERAND_PC                           // Program counter.
	OPERAND_EX                           // Overflow register.
	OPERAND_LITERAL                      // Read-only value.
)

// Operand is a resolved addressing mode. It is valid for a single
// instruction dispatch.
type Operand struct {
	Kind  OperandKind
	Index uint16 // Register index, memory address, or literal value.

	state *State
}

// Read returns the current value at the operand location.
func (op Operand) Read() (value uint16) {
	switch op.Kind {
	case OPERAND_REGISTER:
		value = op.state.Register[op.Index]
	case OPERAND_MEMORY:
		value = op.state.Memory[op.Index]
	case OPERAND_SP:
		value = op.state.Sp
	case OPERAND_PC:
		value = op.state.Pc
	case OPERAND_EX:
		value = op.state.Ex
	case OPERAND_LITERAL:
		value = op.Index
	}

	return
}

// Write stores value at the operand location.
// Writes to a literal are silently discarded.
func (op Operand) Write(value uint16) {
	switch op.Kind {
	case OPERAND_REGISTER:
		op.state.Register[op.Index] = value
	case OPERAND_MEMORY:
		op.state.Memory[op.Index] = value
	case OPERAND_SP:
		op.state.Sp = value
	case OPERAND_PC:
		op.state.Pc = value
	case OPERAND_EX:
		op.state.Ex = value
	case OPERAND_LITERAL:
		// no-op
	}
}

// Resolve maps an addressing mode to an operand. is_a selects the source
// operand behaviour of MODE_PUSH_POP (pop) over the destination one (push).
//
// Resolution has side effects: modes with a next word consume it and
// advance PC, and MODE_PUSH_POP moves SP.
func (st *State) Resolve(mode CodeMode, is_a bool) (op Operand) {
	op.state = st

	switch {
	case mode >= MODE_REG && mode < MODE_REG_MEM:
		op.Kind = OPERAND_REGISTER
		op.Index = uint16(mode - MODE_REG)
	case mode >= MODE_REG_MEM && mode < MODE_REG_NEXT_MEM:
		op.Kind = OPERAND_MEMORY
		op.Index = st.Register[mode-MODE_REG_MEM]
	case mode >= MODE_REG_NEXT_MEM && mode < MODE_PUSH_POP:
		op.Kind = OPERAND_MEMORY
		op.Index = st.Register[mode-MODE_REG_NEXT_MEM] + st.nextWord()
	case mode == MODE_PUSH_POP:
		op.Kind = OPERAND_MEMORY
		if is_a {
			op.Index = st.Sp
			st.Sp++
		} else {
			st.Sp--
			op.Index = st.Sp
		}
	case mode == MODE_PEEK:
		op.Kind = OPERAND_MEMORY
		op.Index = st.Sp
	case mode == MODE_PICK:
		op.Kind = OPERAND_MEMORY
		op.Index = st.Sp + st.nextWord()
	case mode == MODE_SP:
		op.Kind = OPERAND_SP
	case mode == MODE_PC:
		op.Kind = OPERAND_PC
	case mode == MODE_EX:
		op.Kind = OPERAND_EX
	case mode == MODE_NEXT_MEM:
		op.Kind = OPERAND_MEMORY
		op.Index = st.nextWord()
	case mode == MODE_NEXT:
		op.Kind = OPERAND_LITERAL
		op.Index = st.nextWord()
	case mode >= MODE_LITERAL && mode <= MODE_MASK:
		op.Kind = OPERAND_LITERAL
		op.Index = uint16(mode - MODE_LITERAL)
	default:
		panic("unknown addressing mode")
	}

	return
}
