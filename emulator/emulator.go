// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/internal"
)

var _emulator_defines = map[string]string{
	"REG_A": fmt.Sprintf("%v", int(cpu.REG_A)),
	"REG_B": fmt.Sprintf("%v", int(cpu.REG_B)),
	"REG_C": fmt.Sprintf("%v", int(cpu.REG_C)),
	"REG_X": fmt.Sprintf("%v", int(cpu.REG_X)),
	"REG_Y": fmt.Sprintf("%v", int(cpu.REG_Y)),
	"REG_Z": fmt.Sprintf("%v", int(cpu.REG_Z)),
	"REG_I": fmt.Sprintf("%v", int(cpu.REG_I)),
	"REG_J": fmt.Sprintf("%v", int(cpu.REG_J)),
}

// Emulator state. CPU + memory + the program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the CPU, and load the program image into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	image := emu.Program.Binary()
	if len(image) > cpu.MEMORY_SIZE {
		err = cpu.ErrProgramSize
		return
	}

	emu.Cpu.Reset()
	emu.Cpu.Load(0, image)

	if emu.Verbose {
		log.Printf("emulator: loaded %v words", len(image))
	}

	return
}

// Load resets the CPU and loads a raw big-endian image, replacing the
// program listing.
func (emu *Emulator) Load(r io.Reader) (err error) {
	emu.Program = &cpu.Program{}
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	count, err := cpu.LoadImage(r, &emu.Cpu.State)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v words", count)
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() cpu.Code {
	return emu.Cpu.CodeAt(emu.Cpu.Pc)
}

// LineNo returns the source line number for the instruction at the
// program counter, or 0 if unknown.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction.
//
// done is set when the instruction jumped to itself without changing the
// stack or EX. With no interrupts or devices, such a program can make no
// further progress.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	ip := emu.Cpu.Pc
	sp := emu.Cpu.Sp
	ex := emu.Cpu.Ex

	err = emu.Cpu.Step()
	if err != nil {
		return
	}

	regs := &emu.Cpu.Registers
	done = regs.Pc == ip && regs.Sp == sp && regs.Ex == ex && !regs.Skip

	if done && emu.Verbose {
		log.Printf("emulator: halted at %04x", ip)
	}

	return
}

// Run ticks until the program halts, limit instructions have been
// executed, or ctx is done. A limit of zero or less never stops.
//
// The context is only checked between instructions.
func (emu *Emulator) Run(ctx context.Context, limit int) (done bool, err error) {
	for ticks := 0; limit <= 0 || ticks < limit; ticks++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: instruction limit %v reached", limit)
	}

	return
}
