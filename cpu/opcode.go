package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is a basic (two operand) opcode.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_SPECIAL = CodeOp(0x00) // EXT
	OP_SET     = CodeOp(0x01) // SET
	OP_ADD     = CodeOp(0x02) // ADD
	OP_SUB     = CodeOp(0x03) // SUB
	OP_MUL     = CodeOp(0x04) // MUL
	OP_MLI     = CodeOp(0x05) // MLI
	OP_DIV     = CodeOp(0x06) // DIV
	OP_DVI     = CodeOp(0x07) // DVI
	OP_MOD     = CodeOp(0x08) // MOD
	OP_MDI     = CodeOp(0x09) // MDI
	OP_AND     = CodeOp(0x0a) // AND
	OP_BOR     = CodeOp(0x0b) // BOR
	OP_XOR     = CodeOp(0x0c) // XOR
	OP_SHR     = CodeOp(0x0d) // SHR
	OP_ASR     = CodeOp(0x0e) // ASR
	OP_SHL     = CodeOp(0x0f) // SHL
	OP_IFB     = CodeOp(0x10) // IFB
	OP_IFC     = CodeOp(0x11) // IFC
	OP_IFE     = CodeOp(0x12) // IFE
	OP_IFN     = CodeOp(0x13) // IFN
	OP_IFG     = CodeOp(0x14) // IFG
	OP_IFA     = CodeOp(0x15) // IFA
	OP_IFL     = CodeOp(0x16) // IFL
	OP_IFU     = CodeOp(0x17) // IFU
)

// Conditional returns true for the IFx family.
func (op CodeOp) Conditional() bool {
	return op >= OP_IFB && op <= OP_IFU
}

// CodeSpecialOp is a special (single operand) opcode.
type CodeSpecialOp int

//go:generate go tool stringer -linecomment -type=CodeSpecialOp
const (
	SOP_JSR = CodeSpecialOp(0x01) // JSR
)

// CodeRegister is a general purpose register index.
type CodeRegister int

//go:generate go tool stringer -linecomment -type=CodeRegister
const (
	REG_A = CodeRegister(0) // A
	REG_B = CodeRegister(1) // B
	REG_C = CodeRegister(2) // C
	REG_X = CodeRegister(3) // X
	REG_Y = CodeRegister(4) // Y
	REG_Z = CodeRegister(5) // Z
	REG_I = CodeRegister(6) // I
	REG_J = CodeRegister(7) // J
)

// CodeMode is a 6-bit operand addressing mode.
type CodeMode int

const (
	MODE_REG          = CodeMode(0x00) // register
	MODE_REG_MEM      = CodeMode(0x08) // [register]
	MODE_REG_NEXT_MEM = CodeMode(0x10) // [register + next word]
	MODE_PUSH_POP     = CodeMode(0x18) // PUSH (as b) or POP (as a)
	MODE_PEEK         = CodeMode(0x19) // [SP]
	MODE_PICK         = CodeMode(0x1a) // [SP + next word]
	MODE_SP           = CodeMode(0x1b) // SP
	MODE_PC           = CodeMode(0x1c) // PC
	MODE_EX           = CodeMode(0x1d) // EX
	MODE_NEXT_MEM     = CodeMode(0x1e) // [next word]
	MODE_NEXT         = CodeMode(0x1f) // next word literal
	MODE_LITERAL      = CodeMode(0x20) // literal 0..31
	MODE_MASK         = CodeMode(0x3f)
	MODE_B_MASK       = CodeMode(0x1f)
)

// ModeReg returns the mode code for a register based mode.
func ModeReg(base CodeMode, reg CodeRegister) CodeMode {
	return base + CodeMode(reg&7)
}

// ModeLiteral returns the inline literal mode for a value from 0 to 31.
func ModeLiteral(value uint16) CodeMode {
	return MODE_LITERAL + CodeMode(value&0x1f)
}

// NextWord returns true if the mode consumes a word following the instruction.
func (mode CodeMode) NextWord() bool {
	switch {
	case mode >= MODE_REG_NEXT_MEM && mode < MODE_PUSH_POP:
		return true
	case mode == MODE_PICK, mode == MODE_NEXT_MEM, mode == MODE_NEXT:
		return true
	}
	return false
}

// Writable returns true if a write through the mode has an effect.
func (mode CodeMode) Writable() bool {
	return mode < MODE_NEXT
}

// Code represents a single instruction word with the extra words consumed
// by its operands, in resolution order (b first, then a).
type Code struct {
	Word       uint16
	Immediates []uint16
}

// MakeCode creates a basic instruction.
// Valid ranges are op 0x01..0x1f, b 0x00..0x1f and a 0x00..0x3f.
func MakeCode(op CodeOp, b, a CodeMode, imms ...uint16) Code {
	return Code{
		Word:       (uint16(a&MODE_MASK) << 10) | (uint16(b&MODE_B_MASK) << 5) | uint16(op&0x1f),
		Immediates: imms,
	}
}

// MakeCodeSpecial creates a special instruction.
func MakeCodeSpecial(op CodeSpecialOp, a CodeMode, imms ...uint16) Code {
	return Code{
		Word:       (uint16(a&MODE_MASK) << 10) | (uint16(op&0x1f) << 5),
		Immediates: imms,
	}
}

// Op returns the basic opcode field. OP_SPECIAL marks a special instruction.
func (code Code) Op() CodeOp {
	return CodeOp(code.Word & 0x1f)
}

// Decode decodes and returns the basic opcode, destination and source modes.
func (code Code) Decode() (op CodeOp, b, a CodeMode) {
	word := code.Word
	op = CodeOp((word >> 0) & 0x1f)
	b = CodeMode((word >> 5) & 0x1f)
	a = CodeMode((word >> 10) & 0x3f)
	return
}

// DecodeSpecial decodes and returns the special opcode and its operand mode.
func (code Code) DecodeSpecial() (op CodeSpecialOp, a CodeMode) {
	word := code.Word
	op = CodeSpecialOp((word >> 5) & 0x1f)
	a = CodeMode((word >> 10) & 0x3f)
	return
}

// ImmediateNeed returns the number of extra words required by this instruction.
func (code Code) ImmediateNeed() int {
	need := 0

	if code.Op() == OP_SPECIAL {
		_, a := code.DecodeSpecial()
		if a.NextWord() {
			need++
		}
		return need
	}

	_, b, a := code.Decode()
	if b.NextWord() {
		need++
	}
	if a.NextWord() {
		need++
	}

	return need
}

// Len returns the number of memory words occupied by the code.
func (code Code) Len() int {
	return 1 + len(code.Immediates)
}

// operandString renders an operand, consuming its immediate if needed.
func operandString(mode CodeMode, is_a bool, imms []uint16) (str string, rest []uint16) {
	rest = imms
	next := "?"
	if mode.NextWord() && len(rest) > 0 {
		next = fmt.Sprintf("0x%04x", rest[0])
		rest = rest[1:]
	}

	switch {
	case mode < MODE_REG_MEM:
		str = CodeRegister(mode - MODE_REG).String()
	case mode < MODE_REG_NEXT_MEM:
		str = "[" + CodeRegister(mode-MODE_REG_MEM).String() + "]"
	case mode < MODE_PUSH_POP:
		str = "[" + next + "+" + CodeRegister(mode-MODE_REG_NEXT_MEM).String() + "]"
	case mode == MODE_PUSH_POP:
		str = "PUSH"
		if is_a {
			str = "POP"
		}
	case mode == MODE_PEEK:
		str = "PEEK"
	case mode == MODE_PICK:
		str = "[SP+" + next + "]"
	case mode == MODE_SP:
		str = "SP"
	case mode == MODE_PC:
		str = "PC"
	case mode == MODE_EX:
		str = "EX"
	case mode == MODE_NEXT_MEM:
		str = "[" + next + "]"
	case mode == MODE_NEXT:
		str = next
	default:
		str = fmt.Sprintf("%d", mode-MODE_LITERAL)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if code.Op() == OP_SPECIAL {
		op, a := code.DecodeSpecial()
		if op != SOP_JSR {
			return fmt.Sprintf("DAT 0x%04x", code.Word)
		}
		arg, _ := operandString(a, true, code.Immediates)
		return op.String() + " " + arg
	}

	op, b, a := code.Decode()
	if op > OP_IFU {
		return fmt.Sprintf("DAT 0x%04x", code.Word)
	}

	dst, imms := operandString(b, false, code.Immediates)
	src, _ := operandString(a, true, imms)

	var sb strings.Builder
	sb.WriteString(op.String())
	sb.WriteString(" ")
	sb.WriteString(dst)
	sb.WriteString(", ")
	sb.WriteString(src)

	return sb.String()
}
