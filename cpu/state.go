package cpu

import (
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 8       // General purpose registers A..J
	MEMORY_SIZE    = 0x10000 // Words of memory
	STACK_TOP      = 0xffff  // Reset value of SP
)

// Registers is the register file of the CPU, without memory.
type Registers struct {
	Register [REGISTER_COUNT]uint16 // General purpose registers, indexed by CodeRegister.
	Sp       uint16                 // Stack pointer.
	Pc       uint16                 // Program counter.
	Ex       uint16                 // Overflow/extend register.
	Skip     bool                   // Skip the next dispatched instruction.
}

// State is the complete machine state.
type State struct {
	Registers
	Memory [MEMORY_SIZE]uint16
}

// String returns the register state as a string.
func (r Registers) String() (text string) {
	regs := []string{
		"A", "B", "C", "X", "Y", "Z", "I", "J",
		"sp", "pc", "ex", "skip",
	}
	for n, reg := range regs {
		var strval string
		switch reg {
		case "sp":
			strval = fmt.Sprintf("%04X", r.Sp)
		case "pc":
			strval = fmt.Sprintf("%04X", r.Pc)
		case "ex":
			strval = fmt.Sprintf("%04X", r.Ex)
		case "skip":
			strval = "false"
			if r.Skip {
				strval = "true"
			}
		default:
			strval = fmt.Sprintf("%04X", r.Register[n])
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Reset clears the registers and memory, and empties the stack.
func (st *State) Reset() {
	st.Registers = Registers{Sp: STACK_TOP}
	clear(st.Memory[:])
}

// Load copies words into memory starting at addr, wrapping at the end
// of the address space.
func (st *State) Load(addr uint16, words []uint16) {
	for n, word := range words {
		st.Memory[addr+uint16(n)] = word
	}
}

// Dump returns a hex dump of count words of memory starting at addr,
// with width words per row.
func (st *State) Dump(addr uint16, count int, width int) string {
	if width <= 0 {
		width = 8
	}

	var sb strings.Builder
	for n := 0; n < count; n += width {
		row := addr + uint16(n)
		fmt.Fprintf(&sb, "%04X:", row)
		for c := 0; c < width && n+c < count; c++ {
			fmt.Fprintf(&sb, " %04X", st.Memory[row+uint16(c)])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// nextWord reads the word at PC and advances PC.
func (st *State) nextWord() (word uint16) {
	word = st.Memory[st.Pc]
	st.Pc++
	return
}
