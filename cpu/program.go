package cpu

import (
	"iter"
)

// Link is a reference to a label, patched after assembly.
type Link struct {
	Label  string // Label to resolve.
	Offset int    // Word offset within the opcode's codes.
}

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []Code
	Links  []Link
}

// Len returns the number of memory words generated by the opcode.
func (op *Opcode) Len() (count int) {
	for _, code := range op.Codes {
		count += code.Len()
	}
	return
}

// word returns a pointer to the word at offset within the opcode's codes.
func (op *Opcode) word(offset int) *uint16 {
	for n := range op.Codes {
		code := &op.Codes[n]
		if offset == 0 {
			return &code.Word
		}
		offset--
		if offset < len(code.Immediates) {
			return &code.Immediates[offset]
		}
		offset -= len(code.Immediates)
	}

	return nil
}

// Program is an assembled program and its label table.
type Program struct {
	Opcodes []Opcode
	Label   map[string]int
}

type Debug struct {
	*Opcode
	Index int // Word offset of the address within the opcode.
}

// Debug finds the opcode that generated the word at ip.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+op.Len() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the flat memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []uint16) {
	for ip, code := range prog.Codes() {
		for len(bins) < int(ip) {
			bins = append(bins, 0)
		}
		bins = append(bins, code.Word)
		bins = append(bins, code.Immediates...)
	}

	return
}

// Codes iterates over every code in the program, with its address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			ip := uint16(op.Ip)
			for _, code := range op.Codes {
				if !yield(ip, code) {
					return
				}
				ip += uint16(code.Len())
			}
		}
	}
}
