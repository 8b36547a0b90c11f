// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("%#x", STACK_TOP),
}

// Assembler is a single pass macro assembler for the DCPU-16.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]CodeRegister{
	"A": REG_A,
	"B": REG_B,
	"C": REG_C,
	"X": REG_X,
	"Y": REG_Y,
	"Z": REG_Z,
	"I": REG_I,
	"J": REG_J,
}

// keywords cannot be used as labels.
var keywords = []string{
	"A", "B", "C", "X", "Y", "Z", "I", "J",
	"SP", "PC", "EX", "O", "POP", "PUSH", "PEEK", "PICK",
}

var labelRe = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// validLabel returns true if the word can name a label.
func validLabel(word string) bool {
	return labelRe.MatchString(word) && !slices.Contains(keywords, strings.ToUpper(word))
}

// lookup follows equates until the word is no longer an equate.
func (asm *Assembler) lookup(word string) (value string, err error) {
	value = word
	for range 16 {
		equate, ok := asm.Equate[value]
		if !ok {
			return
		}
		value = equate
	}

	err = ErrEquateRecursive
	return
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	invert := false
	if len(word) > 0 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)

	if invert {
		value = ^value
	}

	return
}

// term is a single element of an operand: a register, SP, a value or a label.
type term struct {
	reg    CodeRegister
	is_reg bool
	is_sp  bool
	value  uint16
	label  string
}

// parseTerm evaluates a single operand element.
func (asm *Assembler) parseTerm(word string) (t term, err error) {
	word, err = asm.lookup(word)
	if err != nil {
		return
	}

	upper := strings.ToUpper(word)
	if reg, ok := regMap[upper]; ok {
		t.reg = reg
		t.is_reg = true
		return
	}
	if upper == "SP" {
		t.is_sp = true
		return
	}

	value, verr := asm.valueOf(word)
	if verr == nil {
		t.value = value
		return
	}

	if validLabel(word) {
		t.label = word
		return
	}

	err = ErrParseValue(word)
	return
}

// operand is an encoded addressing mode with its extra word.
type operand struct {
	mode CodeMode
	imms []uint16
	link string // Label to patch into imms[0].
}

// parseIndirect encodes a [...] operand.
func (asm *Assembler) parseIndirect(inner string) (opr operand, err error) {
	inner = strings.Join(strings.Fields(inner), "")
	parts := strings.Split(inner, "+")
	if len(parts) > 2 {
		err = ErrParseValue(inner)
		return
	}

	var base *term
	var offset *term
	for _, part := range parts {
		if len(part) == 0 {
			err = ErrParseValue(inner)
			return
		}
		var t term
		t, err = asm.parseTerm(part)
		if err != nil {
			return
		}
		if t.is_reg || t.is_sp {
			if base != nil {
				err = ErrParseValue(inner)
				return
			}
			base = &t
		} else {
			if offset != nil {
				err = ErrParseValue(inner)
				return
			}
			offset = &t
		}
	}

	switch {
	case offset == nil && base.is_sp:
		opr.mode = MODE_PEEK
	case offset == nil:
		opr.mode = ModeReg(MODE_REG_MEM, base.reg)
	case base == nil:
		opr.mode = MODE_NEXT_MEM
	case base.is_sp:
		opr.mode = MODE_PICK
	default:
		opr.mode = ModeReg(MODE_REG_NEXT_MEM, base.reg)
	}

	if offset != nil {
		opr.imms = []uint16{offset.value}
		opr.link = offset.label
	}

	return
}

// parseOperand encodes an operand as the destination (b) or source (a).
func (asm *Assembler) parseOperand(text string, is_a bool) (opr operand, err error) {
	text, err = asm.lookup(strings.TrimSpace(text))
	if err != nil {
		return
	}
	if len(text) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		return asm.parseIndirect(text[1 : len(text)-1])
	}

	fields := strings.Fields(text)
	if len(fields) == 2 && strings.ToUpper(fields[0]) == "PICK" {
		var t term
		t, err = asm.parseTerm(fields[1])
		if err != nil {
			return
		}
		if t.is_reg || t.is_sp {
			err = ErrParseValue(text)
			return
		}
		opr = operand{mode: MODE_PICK, imms: []uint16{t.value}, link: t.label}
		return
	}
	if len(fields) != 1 {
		err = ErrParseValue(text)
		return
	}

	switch strings.ToUpper(text) {
	case "POP":
		if !is_a {
			err = ErrTargetInvalid
			return
		}
		opr.mode = MODE_PUSH_POP
	case "PUSH":
		if is_a {
			err = ErrSourceInvalid
			return
		}
		opr.mode = MODE_PUSH_POP
	case "PEEK":
		opr.mode = MODE_PEEK
	case "SP":
		opr.mode = MODE_SP
	case "PC":
		opr.mode = MODE_PC
	case "EX", "O":
		opr.mode = MODE_EX
	default:
		var t term
		t, err = asm.parseTerm(text)
		if err != nil {
			return
		}
		switch {
		case t.is_reg:
			opr.mode = ModeReg(MODE_REG, t.reg)
		case len(t.label) != 0:
			opr = operand{mode: MODE_NEXT, imms: []uint16{0}, link: t.label}
		case is_a && t.value <= 31:
			// Inline literals only fit in the 6-bit a field.
			opr.mode = ModeLiteral(t.value)
		default:
			opr = operand{mode: MODE_NEXT, imms: []uint16{t.value}}
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	// Labels defined so far are visible to expressions.
	for key, ip := range asm.Label {
		if _, ok := pred[key]; !ok {
			pred[key] = starlark.MakeInt(ip)
		}
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffff || st_int64 < -0x8000 {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// stripComment removes a ';' comment that is not inside a string.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			if !quoted {
				if loc := charRe.FindStringIndex(text[n:]); loc != nil && loc[0] == 0 {
					n += loc[1] - 1
				}
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}

	return text
}

// splitArgs splits comma separated operands, honouring strings.
func splitArgs(text string) (args []string, err error) {
	if len(strings.TrimSpace(text)) == 0 {
		return
	}

	quoted := false
	start := 0
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				args = append(args, strings.TrimSpace(text[start:n]))
				start = n + 1
			}
		}
	}

	if quoted {
		err = ErrStringUnterminated
		return
	}

	args = append(args, strings.TrimSpace(text[start:]))
	return
}

var charRe = regexp.MustCompile(`'\\?[^']'`)
var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// charValue converts a 'x' character literal to its decimal value.
func charValue(word string) string {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		str = str[1:]
		switch str {
		case "\\":
			str = "\\"
		case "n":
			str = "\n"
		case "r":
			str = "\r"
		case "e":
			str = "\033"
		case "0":
			str = "\000"
		default:
			return word
		}
	} else if len(str) != 1 {
		return word
	}
	return fmt.Sprintf("%v", str[0])
}

// parenEnd returns the index just past the ')' closing the '$(' at the
// start of text, or len(text) if it is never closed.
func parenEnd(text string) int {
	depth := 0
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '"':
			quoted = !quoted
		case '(':
			if !quoted {
				depth++
			}
		case ')':
			if !quoted {
				depth--
				if depth == 0 {
					return n + 1
				}
			}
		}
	}

	return len(text)
}

// unquoted applies fn to the parts of text outside of "..." strings.
// Character literals and $(...) expressions are kept whole, so quotes
// inside them do not start a string.
func unquoted(text string, fn func(string) string) string {
	var sb strings.Builder

	quoted := false
	start := 0
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			if !quoted {
				if loc := charRe.FindStringIndex(text[n:]); loc != nil && loc[0] == 0 {
					n += loc[1] - 1
				}
			}
		case '$':
			if !quoted && strings.HasPrefix(text[n:], "$(") {
				n += parenEnd(text[n+1:])
			}
		case '"':
			if quoted {
				sb.WriteString(text[start : n+1])
				start = n + 1
			} else {
				sb.WriteString(fn(text[start:n]))
				start = n
			}
			quoted = !quoted
		}
	}

	if quoted {
		sb.WriteString(text[start:])
	} else {
		sb.WriteString(fn(text[start:]))
	}

	return sb.String()
}

// parseLine parses a single line into a mnemonic and its operands.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' and $() evaluations, outside of strings.
	line = unquoted(line, func(text string) string {
		text = charRe.ReplaceAllStringFunc(text, charValue)
		return parenRe.ReplaceAllStringFunc(text, func(str string) string {
			value, _err := asm.parenEval(str[2 : len(str)-1])
			if _err != nil {
				err = _err
			}
			return fmt.Sprintf("%#x", value)
		})
	})
	if err != nil {
		return
	}

	text := strings.TrimSpace(line)
	fields := strings.Fields(text)

	if len(fields) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(fields[0]) == ".equ" {
		if len(fields) < 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[fields[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[fields[1]] = strings.Join(fields[2:], " ")
		return
	}

	// Labels, as either 'name:' or ':name'
	for len(fields) > 0 {
		word := fields[0]
		var label string
		switch {
		case strings.HasSuffix(word, ":"):
			label = word[:len(word)-1]
		case strings.HasPrefix(word, ":"):
			label = word[1:]
		default:
		}
		if len(label) == 0 {
			break
		}
		if !validLabel(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentIp()
		text = strings.TrimSpace(text[strings.Index(text, word)+len(word):])
		fields = fields[1:]
	}

	if len(fields) == 0 {
		return
	}

	mnemonic := fields[0]
	args, err := splitArgs(text[len(mnemonic):])
	if err != nil {
		return
	}
	words = append([]string{mnemonic}, args...)

	// .macro processing
	macro, ok := asm.Macro[mnemonic]
	if ok {
		name := mnemonic

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		unique := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", unique)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the address of the next generated word.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + last.Len()
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = nil
	asm.Macro = make(map[string](*Macro))
	asm.expansion = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = strings.FieldsFunc(strings.Join(words[2:], " "), func(r rune) bool {
					return r == ',' || unicode.IsSpace(r)
				})
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}

		if asm.currentIp() > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			word := op.word(link.Offset)
			if word == nil {
				log.Fatalf("Unable to link label '%s' to line %d: %v", link.Label, op.LineNo, op.Words)
			}
			*word = uint16(ip)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Label:   maps.Clone(asm.Label),
	}

	return
}

// opMap maps basic opcode mnemonics.
var opMap = map[string]CodeOp{
	"SET": OP_SET,
	"ADD": OP_ADD,
	"SUB": OP_SUB,
	"MUL": OP_MUL,
	"MLI": OP_MLI,
	"DIV": OP_DIV,
	"DVI": OP_DVI,
	"MOD": OP_MOD,
	"MDI": OP_MDI,
	"AND": OP_AND,
	"BOR": OP_BOR,
	"XOR": OP_XOR,
	"SHR": OP_SHR,
	"ASR": OP_ASR,
	"SHL": OP_SHL,
	"IFB": OP_IFB,
	"IFC": OP_IFC,
	"IFE": OP_IFE,
	"IFN": OP_IFN,
	"IFG": OP_IFG,
	"IFA": OP_IFA,
	"IFL": OP_IFL,
	"IFU": OP_IFU,
}

// specialMap maps special opcode mnemonics.
var specialMap = map[string]CodeSpecialOp{
	"JSR": SOP_JSR,
}

// parseData encodes DAT arguments: numbers, labels and strings.
func (asm *Assembler) parseData(args []string) (codes []Code, links []Link, err error) {
	if len(args) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	for _, arg := range args {
		if strings.HasPrefix(arg, "\"") {
			var str string
			str, err = strconv.Unquote(arg)
			if err != nil {
				err = ErrStringUnterminated
				return
			}
			for _, c := range []byte(str) {
				codes = append(codes, Code{Word: uint16(c)})
			}
			continue
		}

		var t term
		t, err = asm.parseTerm(arg)
		if err != nil {
			return
		}
		if t.is_reg || t.is_sp {
			err = ErrParseValue(arg)
			return
		}
		if len(t.label) != 0 {
			links = append(links, Link{Label: t.label, Offset: len(codes)})
		}
		codes = append(codes, Code{Word: t.value})
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Links: links}
		if asm.Verbose {
			for _, code := range codes {
				log.Printf("asm: %04x: %v", opcode.Ip, code)
			}
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	// Alternate syntax substitutions
	switch {
	case mnemonic == "RET" && len(args) == 0:
		// RET => SET PC, POP
		mnemonic, args = "SET", []string{"PC", "POP"}
	case mnemonic == "JMP" && len(args) == 1:
		// JMP x => SET PC, x
		mnemonic, args = "SET", []string{"PC", args[0]}
	case mnemonic == "HLT" && len(args) == 0:
		// HLT => SUB PC, 1
		mnemonic, args = "SUB", []string{"PC", "1"}
	case mnemonic == "NOP" && len(args) == 0:
		// NOP => SET A, A
		mnemonic, args = "SET", []string{"A", "A"}
	case mnemonic == "PUSH" && len(args) == 1:
		// PUSH x => SET PUSH, x
		mnemonic, args = "SET", []string{"PUSH", args[0]}
	case mnemonic == "POP" && len(args) == 1:
		// POP x => SET x, POP
		mnemonic, args = "SET", []string{args[0], "POP"}
	default:
		// unchanged
	}

	if mnemonic == "DAT" || mnemonic == ".DAT" {
		codes, links, err = asm.parseData(args)
		return
	}

	if sop, ok := specialMap[mnemonic]; ok {
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var a operand
		a, err = asm.parseOperand(args[0], true)
		if err != nil {
			return
		}
		if len(a.link) != 0 {
			links = append(links, Link{Label: a.link, Offset: 1})
		}
		codes = append(codes, MakeCodeSpecial(sop, a.mode, a.imms...))
		return
	}

	op, ok := opMap[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	if len(args) < 2 {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > 2 {
		err = ErrOpcodeExtraArgs
		return
	}

	b, err := asm.parseOperand(args[0], false)
	if err != nil {
		return
	}
	a, err := asm.parseOperand(args[1], true)
	if err != nil {
		return
	}

	if len(b.link) != 0 {
		links = append(links, Link{Label: b.link, Offset: 1})
	}
	if len(a.link) != 0 {
		links = append(links, Link{Label: a.link, Offset: 1 + len(b.imms)})
	}

	imms := append(slices.Clone(b.imms), a.imms...)
	codes = append(codes, MakeCode(op, b.mode, a.mode, imms...))

	return
}
