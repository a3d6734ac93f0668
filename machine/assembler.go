// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

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

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass assembler for the vnsim instruction set.
//
// Source syntax follows the classic three-register style:
//
//	START:  LOAD A, #15     ; immediate
//	        LOAD B, 27      ; direct address
//	        ADD C, A, B
//	        STORE C, RESULT
//	        JZ DONE
//	        HALT
//	RESULT: DB 0
//
// Comments begin with ';'. Labels resolve to addresses at link time.
// '.equ NAME VALUE' defines an equate, '.org N' sets the load origin,
// and '$( ... )' evaluates a compile-time expression over the equates.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	Origin int // Load origin; set by .org, default 0.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to memory addresses.
	Equate    map[string]string // Map of equates.
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
var regMap = map[string]Reg{
	"A": REG_A,
	"B": REG_B,
	"C": REG_C,
}

// labelRe matches a valid label name.
var labelRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// valueOf returns the numeric value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 17)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// byteOf returns the value of a word as a memory cell, two's-complement
// for negative inputs.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < -128 || v64 > 255 {
		err = ErrDataInvalid
		return
	}

	value = uint8(v64)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "RC=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["RC"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine normalizes a source line into words: comment stripping,
// $() evaluation, equate handling and substitution, label definitions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	// Operand commas are decorative.
	line = strings.ReplaceAll(line, ",", " ")

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .EQU CONST VALUE
	if words[0] == ".EQU" {
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

	// .ORG ADDRESS - before any generated code.
	if words[0] == ".ORG" {
		if len(words) != 2 || len(asm.Opcode) != 0 {
			err = ErrOriginSyntax
			return
		}
		var origin int64
		origin, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		asm.Origin = int(origin)
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next, looking behind an immediate marker.
		prefix := ""
		if strings.HasPrefix(word, "#") {
			prefix = "#"
			word = word[1:]
		}
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = prefix + equate
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
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the address the next opcode will be placed at.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return asm.Origin
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + last.size()
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Origin = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.ToUpper(strings.TrimSpace(text_comment[0]))

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		if addr < 0 || addr > 0xff {
			err = ErrOperandInvalid
			return
		}
		op.Code = (op.Code &^ 0xff) | Code(addr)
	}

	prog = &Program{
		Origin:  asm.Origin,
		Entry:   asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// opFormat describes the operand shape of each mnemonic.
type opFormat struct {
	op       Op
	operands int
}

// opMap maps mnemonics to opcodes and operand counts.
var opMap = map[string]opFormat{
	"NOP":    {OP_NOP, 0},
	"HALT":   {OP_HALT, 0},
	"LOAD":   {OP_LOAD, 2},
	"STORE":  {OP_STORE, 2},
	"ADD":    {OP_ADD, 3},
	"SUB":    {OP_SUB, 3},
	"MUL":    {OP_MUL, 3},
	"DIV":    {OP_DIV, 3},
	"JUMP":   {OP_JUMP, 1},
	"JZ":     {OP_JUMPZ, 1},
	"JNZ":    {OP_JUMPNZ, 1},
	"JUMPZ":  {OP_JUMPZ, 1},
	"JUMPNZ": {OP_JUMPNZ, 1},
	"INPUT":  {OP_INPUT, 1},
	"OUTPUT": {OP_OUTPUT, 1},
}

// getRegister parses a register operand.
func (asm *Assembler) getRegister(word string) (reg Reg, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}

	return
}

// getAddress parses an address operand: a number or a label reference.
// A label reference returns the label for deferred linking.
func (asm *Assembler) getAddress(word string) (addr uint8, label string, err error) {
	if _, isReg := regMap[word]; !isReg && labelRe.MatchString(word) {
		label = word
		return
	}

	var v64 int64
	v64, err = asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < 0 || v64 > 0xff {
		err = ErrOperandInvalid
		return
	}

	addr = uint8(v64)

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: slices.Clone(words)}

	defer func() {
		if err == nil {
			asm.Opcode = append(asm.Opcode, opcode)
		}
	}()

	// DB VALUE... - raw data cells.
	if words[0] == "DB" {
		if len(words) < 2 {
			err = ErrOperandCount
			return
		}
		for _, word := range words[1:] {
			var value uint8
			value, err = asm.byteOf(word)
			if err != nil {
				return
			}
			opcode.Data = append(opcode.Data, value)
		}
		return
	}

	format, ok := opMap[words[0]]
	if !ok {
		err = ErrMnemonicInvalid
		return
	}
	if len(words) != format.operands+1 {
		err = ErrOperandCount
		return
	}

	switch format.op {
	case OP_NOP:
		opcode.Code = MakeCode(OP_NOP, MODE_IMM, REG_A, 0)
	case OP_HALT:
		opcode.Code = MakeCodeHalt()
	case OP_LOAD:
		var reg Reg
		reg, err = asm.getRegister(words[1])
		if err != nil {
			return
		}
		operand := words[2]
		src, isReg := regMap[operand]
		switch {
		case strings.HasPrefix(operand, "#"):
			var value uint8
			value, err = asm.byteOf(operand[1:])
			if err != nil {
				return
			}
			opcode.Code = MakeCodeImm(OP_LOAD, reg, value)
		case isReg:
			opcode.Code = MakeCodeReg(OP_LOAD, reg, src)
		default:
			var addr uint8
			addr, opcode.LinkLabel, err = asm.getAddress(operand)
			if err != nil {
				return
			}
			opcode.Code = MakeCodeDir(OP_LOAD, reg, addr)
		}
	case OP_STORE:
		var reg Reg
		reg, err = asm.getRegister(words[1])
		if err != nil {
			return
		}
		var addr uint8
		addr, opcode.LinkLabel, err = asm.getAddress(words[2])
		if err != nil {
			return
		}
		opcode.Code = MakeCodeDir(OP_STORE, reg, addr)
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		var dst, src1, src2 Reg
		dst, err = asm.getRegister(words[1])
		if err != nil {
			return
		}
		src1, err = asm.getRegister(words[2])
		if err != nil {
			return
		}
		src2, err = asm.getRegister(words[3])
		if err != nil {
			return
		}
		opcode.Code = MakeCodeReg3(format.op, dst, src1, src2)
	case OP_JUMP, OP_JUMPZ, OP_JUMPNZ:
		var addr uint8
		addr, opcode.LinkLabel, err = asm.getAddress(words[1])
		if err != nil {
			return
		}
		opcode.Code = MakeCodeJump(format.op, addr)
	case OP_INPUT, OP_OUTPUT:
		var reg Reg
		reg, err = asm.getRegister(words[1])
		if err != nil {
			return
		}
		opcode.Code = MakeCodeReg(format.op, reg, REG_A)
	}

	return
}
