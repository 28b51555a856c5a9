// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

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
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the interpreter's
// instruction set. It accepts the same syntax that Code.String() emits.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Origin  uint16   // Load address; PROGRAM_BASE if zero.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// PredefineAll predefines all of the equates of a defines iterator.
func (asm *Assembler) PredefineAll(defines iter.Seq2[string, string]) {
	for equ, value := range defines {
		asm.Predefine(equ, value)
	}
}

// origin returns the effective load address.
func (asm *Assembler) origin() uint16 {
	if asm.Origin == 0 {
		return PROGRAM_BASE
	}
	return asm.Origin
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
		if len(word) == 0 {
			err = ErrParseNumber("~")
			return
		}
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	}

	if invert {
		value = ^value
	}

	return
}

// immediate returns a value that must fit in the given number of bits,
// either as an unsigned or as a negative two's complement number.
func (asm *Assembler) immediate(word string, width uint) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := uint32(1) << width
	if v32 >= limit && v32 < -(limit>>1) {
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
		return
	}

	value = uint16(v32 & (limit - 1))
	return
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// address returns a 12-bit address operand, or a label to be linked.
func (asm *Assembler) address(word string) (addr uint16, label string, err error) {
	addr, err = asm.immediate(word, 12)
	if _, ok := err.(ErrParseNumber); ok && labelRegexp.MatchString(word) {
		label = word
		err = nil
	}
	return
}

// register returns the index of a V0-VF register name.
func register(word string) (reg uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'V' && word[0] != 'v') {
		return
	}

	n, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(n), true
}

// special returns true if the word names the special operand.
func special(word string, name string) bool {
	return strings.EqualFold(word, name)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
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
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// splitWords splits a line into words, treating commas as spaces.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

var (
	charRegexp = regexp.MustCompile(`'\\?[^']'`)
	exprRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
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
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = exprRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' makes labels local to this expansion.
		local := fmt.Sprintf("%v_%v_", name, lineno)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
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

// currentIp gets the current load address.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return int(asm.origin())
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + last.Size()
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

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, _cpu_defines)
	maps.Copy(asm.Equate, asm.predefine)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
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
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
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
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if ip > 0xfff {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = fmt.Errorf("%w: %v", ErrValueRange, label)
			return
		}
		if len(op.Codes) < 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		linked := &op.Codes[len(op.Codes)-1]
		*linked |= Code(ip & 0xfff)
	}

	prog = &Program{
		Origin:  asm.origin(),
		Opcodes: append([]Opcode(nil), asm.Opcode...),
	}

	return
}

// aluMap maps register to register ALU opcode names to their sub-opcode.
var aluMap = map[string]uint8{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xe,
}

// fxMap maps the single register 'ld' and 'add' forms of class F to their sub-opcode.
// The key is the mnemonic followed by the special operand, and the position
// of the register operand.
var fxMap = map[string]uint8{
	"ld v dt":  0x07,
	"ld v k":   0x0a,
	"ld dt v":  0x15,
	"ld st v":  0x18,
	"add i v":  0x1e,
	"ld f v":   0x29,
	"ld b v":   0x33,
	"ld [i] v": 0x55,
	"ld v [i]": 0x65,
}

// fxKey returns the fxMap key for a two operand instruction, and the register.
func fxKey(mnemonic string, a, b string) (key string, reg uint8, ok bool) {
	if reg, ok = register(a); ok {
		key = mnemonic + " v " + strings.ToLower(b)
		_, ok = fxMap[key]
		return
	}
	if reg, ok = register(b); ok {
		key = mnemonic + " " + strings.ToLower(a) + " v"
		_, ok = fxMap[key]
		return
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 && len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Alternate syntax substitutions
	switch mnemonic {
	case "jump":
		mnemonic = "jp"
	case "return":
		mnemonic = "ret"
	case "db":
		mnemonic = ".byte"
	case "dw":
		mnemonic = ".word"
	default:
		// unchanged
	}

	argc := func(least, most int) error {
		if len(args) < least {
			return ErrOpcodeValueMissing
		}
		if len(args) > most {
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	regs := func(words ...string) (out []uint8, err error) {
		for _, word := range words {
			reg, ok := register(word)
			if !ok {
				err = fmt.Errorf("%w: %v", ErrRegisterInvalid, word)
				return
			}
			out = append(out, reg)
		}
		return
	}

	switch mnemonic {
	case "cls", "ret":
		if err = argc(0, 0); err != nil {
			return
		}
		if mnemonic == "cls" {
			codes = append(codes, 0x00e0)
		} else {
			codes = append(codes, 0x00ee)
		}
	case "sys", "call":
		if err = argc(1, 1); err != nil {
			return
		}
		var addr uint16
		addr, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		class := uint8(0x0)
		if mnemonic == "call" {
			class = 0x2
		}
		codes = append(codes, MakeCodeAddr(class, addr))
	case "jp":
		if err = argc(1, 2); err != nil {
			return
		}
		class := uint8(0x1)
		target := args[0]
		if len(args) == 2 {
			if reg, ok := register(args[0]); !ok || reg != 0 {
				err = fmt.Errorf("%w: %v", ErrRegisterInvalid, args[0])
				return
			}
			class = 0xb
			target = args[1]
		}
		var addr uint16
		addr, label, err = asm.address(target)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeAddr(class, addr))
	case "se", "sne":
		if err = argc(2, 2); err != nil {
			return
		}
		var r []uint8
		r, err = regs(args[0])
		if err != nil {
			return
		}
		if ry, ok := register(args[1]); ok {
			class := uint8(0x5)
			if mnemonic == "sne" {
				class = 0x9
			}
			codes = append(codes, MakeCodeReg(class, r[0], ry, 0))
			break
		}
		var imm uint16
		imm, err = asm.immediate(args[1], 8)
		if err != nil {
			return
		}
		class := uint8(0x3)
		if mnemonic == "sne" {
			class = 0x4
		}
		codes = append(codes, MakeCodeImm(class, r[0], uint8(imm)))
	case "ld", "add":
		if err = argc(2, 2); err != nil {
			return
		}
		if key, reg, ok := fxKey(mnemonic, args[0], args[1]); ok {
			codes = append(codes, MakeCodeImm(0xf, reg, fxMap[key]))
			break
		}
		if mnemonic == "ld" && special(args[0], "I") {
			var addr uint16
			addr, label, err = asm.address(args[1])
			if err != nil {
				return
			}
			codes = append(codes, MakeCodeAddr(0xa, addr))
			break
		}
		var r []uint8
		r, err = regs(args[0])
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrTargetInvalid, args[0])
			return
		}
		if ry, ok := register(args[1]); ok {
			sub := uint8(0x0)
			if mnemonic == "add" {
				sub = 0x4
			}
			codes = append(codes, MakeCodeReg(0x8, r[0], ry, sub))
			break
		}
		var imm uint16
		imm, err = asm.immediate(args[1], 8)
		if err != nil {
			return
		}
		class := uint8(0x6)
		if mnemonic == "add" {
			class = 0x7
		}
		codes = append(codes, MakeCodeImm(class, r[0], uint8(imm)))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		least := 2
		if mnemonic == "shr" || mnemonic == "shl" {
			// 'shl Vx' is 'shl Vx, Vx'
			least = 1
		}
		if err = argc(least, 2); err != nil {
			return
		}
		var r []uint8
		r, err = regs(args...)
		if err != nil {
			return
		}
		if len(r) == 1 {
			r = append(r, r[0])
		}
		codes = append(codes, MakeCodeReg(0x8, r[0], r[1], aluMap[mnemonic]))
	case "rnd":
		if err = argc(2, 2); err != nil {
			return
		}
		var r []uint8
		r, err = regs(args[0])
		if err != nil {
			return
		}
		var imm uint16
		imm, err = asm.immediate(args[1], 8)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeImm(0xc, r[0], uint8(imm)))
	case "drw":
		if err = argc(3, 3); err != nil {
			return
		}
		var r []uint8
		r, err = regs(args[0], args[1])
		if err != nil {
			return
		}
		var n uint16
		n, err = asm.immediate(args[2], 4)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeReg(0xd, r[0], r[1], uint8(n)))
	case "skp", "sknp":
		if err = argc(1, 1); err != nil {
			return
		}
		var r []uint8
		r, err = regs(args[0])
		if err != nil {
			return
		}
		imm := uint8(0x9e)
		if mnemonic == "sknp" {
			imm = 0xa1
		}
		codes = append(codes, MakeCodeImm(0xe, r[0], imm))
	case ".byte":
		if err = argc(1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.immediate(arg, 8)
			if err != nil {
				return
			}
			data = append(data, byte(value))
		}
	case ".word":
		if err = argc(1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value uint16
			value, err = asm.immediate(arg, 16)
			if err != nil {
				return
			}
			codes = append(codes, Code(value))
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
