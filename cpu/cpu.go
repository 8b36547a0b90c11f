package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("0x%x", STACK_TOP),
}

// Cpu is the simulation context for the DCPU-16.
//
// A Cpu must only be used by one goroutine at a time.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State // Registers and memory.

	Ticks int // Instructions dispatched since reset, including skipped ones.
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Sets SP to STACK_TOP.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.State.Reset()
	cpu.Ticks = 0
}

// CodeAt returns the instruction at addr with its extra words, without
// changing the CPU state.
func (cpu *Cpu) CodeAt(addr uint16) (code Code) {
	code.Word = cpu.Memory[addr]
	for n := range code.ImmediateNeed() {
		code.Immediates = append(code.Immediates, cpu.Memory[addr+1+uint16(n)])
	}

	return
}

// Step fetches, decodes and dispatches a single instruction.
//
// Operands are resolved, with all of their side effects, even when the
// instruction is skipped.
func (cpu *Cpu) Step() (err error) {
	ip := cpu.Pc

	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", ip, cpu.CodeAt(ip))
	}

	code := Code{Word: cpu.nextWord()}

	defer func() {
		if err != nil {
			err = &ErrFault{Ip: ip, Word: code.Word, Registers: cpu.Registers, Err: err}
		}
	}()

	cpu.Ticks++

	if code.Op() == OP_SPECIAL {
		op, a_mode := code.DecodeSpecial()
		a := cpu.Resolve(a_mode, true)
		if cpu.Skip {
			cpu.Skip = false
			return
		}
		err = cpu.doSpecial(op, a)
		return
	}

	op, b_mode, a_mode := code.Decode()
	b := cpu.Resolve(b_mode, false)
	a := cpu.Resolve(a_mode, true)
	if cpu.Skip {
		cpu.Skip = false
		return
	}

	err = cpu.doBasic(op, b, a)

	return
}

// Execute runs from start until limit instructions have been dispatched,
// or until a fault. A limit of zero or less never stops.
//
// Reaching the limit is not an error: err is nil and the final state
// remains in the CPU.
func (cpu *Cpu) Execute(start uint16, limit int) (ticks int, err error) {
	cpu.Pc = start

	for limit <= 0 || ticks < limit {
		err = cpu.Step()
		if err != nil {
			if cpu.Verbose {
				log.Printf("cpu: %v", err)
			}
			return
		}
		ticks++
	}

	if cpu.Verbose {
		log.Printf("cpu: instruction limit reached at pc %04x", cpu.Pc)
	}

	return
}
