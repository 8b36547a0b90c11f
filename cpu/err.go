package cpu

import (
	"errors"

	"github.com/ezrec/dcpu16/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrOpcodeUnsupported = errors.New(f("unsupported instruction"))
	ErrStackOverflow     = errors.New(f("stack overflow"))

	// Image errors
	ErrImageOdd  = errors.New(f("image has an odd number of bytes"))
	ErrImageSize = errors.New(f("image larger than memory"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrEquateRecursive    = errors.New(f(".equ recursive"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrSourceInvalid      = errors.New(f("source invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrStringUnterminated = errors.New(f("string unterminated"))
	ErrProgramSize        = errors.New(f("program larger than memory"))
)

// ErrFault is a fatal execution error. It carries the address and word of
// the faulting instruction, and the register state at the time of the fault.
type ErrFault struct {
	Ip        uint16    // Address of the faulting instruction.
	Word      uint16    // Instruction word at Ip.
	Registers Registers // Register snapshot after operand resolution.
	Err       error
}

func (err *ErrFault) Error() string {
	return f("pc 0x%04x word 0x%04x: %v", err.Ip, err.Word, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
