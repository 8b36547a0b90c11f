// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/dcpu16/cpu"
	"github.com/ezrec/dcpu16/emulator"
)

// dumpWidth picks the number of words per hex dump row for the output.
func dumpWidth(out *os.File) int {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return 8
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width < 6+16*5 {
		return 8
	}

	return 16
}

// dump prints the registers, the top of the stack, and memory around PC.
func dump(emu *emulator.Emulator) {
	width := dumpWidth(os.Stdout)
	st := &emu.Cpu.State

	fmt.Print(st.Registers.String())
	fmt.Printf("ticks: %v\n", emu.Ticks())
	if line := emu.LineNo(); line != 0 {
		fmt.Printf(" line: %v\n", line)
	}
	fmt.Printf(" code: %v\n", emu.Code())

	if depth := st.StackDepth(); depth > 0 {
		fmt.Println("stack:")
		fmt.Print(st.Dump(st.Sp, min(depth, 4*width), width))
	}

	fmt.Println("memory:")
	base := st.Pc &^ uint16(width-1)
	fmt.Print(st.Dump(base, 4*width, width))
}

// writeImage writes the assembled image to a file, or to stdout for "-".
func writeImage(output string, image []uint16) (err error) {
	if output == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			err = ErrImageTerminal
			return
		}
		return cpu.WriteImage(os.Stdout, image)
	}

	ouf, err := os.Create(output)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = cpu.WriteImage(ouf, image)
	return
}

// parseDefine adds a NAME=VALUE assembler predefine to defines.
func parseDefine(text string, defines map[string]string) (err error) {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		err = ErrDefineSyntax
		return
	}

	defines[name] = value
	return
}

func main() {
	var compile string
	var binary string
	var output string
	var limit int
	var start uint16
	var verbose bool
	var showDump bool
	defines := map[string]string{}

	flag.StringVar(&compile, "c", "", ".dasm file to assemble")
	flag.StringVar(&binary, "f", "", "big-endian binary image to load")
	flag.StringVar(&output, "o", "", "Write the assembled image, do not execute")
	flag.IntVar(&limit, "l", 0, "Maximum instructions to execute (0 for no limit)")
	flag.Func("s", "Start address (default 0)", func(text string) error {
		value, err := strconv.ParseUint(text, 0, 16)
		if err != nil {
			return err
		}
		start = uint16(value)
		return nil
	})
	flag.Func("D", "Predefine NAME=VALUE for the assembler", func(text string) error {
		return parseDefine(text, defines)
	})
	flag.BoolVar(&showDump, "dump", false, "Dump the machine state on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(binary) == 0) {
		log.Fatalf("%v: exactly one of -c or -f is required", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		for name, value := range defines {
			asm.Predefine(name, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		emu.Program = prog

		err = emu.Reset()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		inf, err := os.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		defer inf.Close()

		err = emu.Load(inf)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	if len(output) != 0 {
		if len(compile) == 0 {
			log.Fatalf("%v: -o requires -c", os.Args[0])
		}
		err := writeImage(output, emu.Program.Binary())
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu.Cpu.Pc = start
	done, err := emu.Run(ctx, limit)

	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("interrupted after %v instructions", emu.Ticks())
		err = nil
	case err != nil:
		log.Printf("halt: %v", err)
	case done:
		if verbose {
			log.Printf("halted after %v instructions", emu.Ticks())
		}
	default:
		log.Printf("instruction limit %v reached", limit)
	}

	if err != nil || showDump {
		dump(emu)
	}

	if err != nil {
		stop()
		os.Exit(2)
	}
}
