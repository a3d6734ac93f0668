package machine

import (
	"fmt"
)

// Instruction word layout, 16 bits over CODE_WIDTH consecutive memory
// cells, big-endian:
//
//	15        12 11     10 9       8 7              0
//	[ opcode    ][ mode   ][ reg     ][ operand       ]
//
// opcode selects the operation; mode selects how operand is interpreted;
// reg names the primary register (destination for LOAD/ALU/INPUT, source
// for STORE/OUTPUT). For three-operand ALU instructions in MODE_REG the
// operand byte packs the two source registers as src1<<4 | src2.
const (
	CODE_WIDTH = 2 // Width of an instruction word in memory cells.
)

// Op is an operation code.
type Op int

const (
	OP_NOP    = Op(0)  // NOP
	OP_LOAD   = Op(1)  // LOAD
	OP_STORE  = Op(2)  // STORE
	OP_ADD    = Op(3)  // ADD
	OP_SUB    = Op(4)  // SUB
	OP_MUL    = Op(5)  // MUL
	OP_DIV    = Op(6)  // DIV
	OP_JUMP   = Op(7)  // JUMP
	OP_JUMPZ  = Op(8)  // JZ
	OP_JUMPNZ = Op(9)  // JNZ
	OP_INPUT  = Op(10) // INPUT
	OP_OUTPUT = Op(11) // OUTPUT
	OP_HALT   = Op(12) // HALT
)

var _opName = map[Op]string{
	OP_NOP:    "NOP",
	OP_LOAD:   "LOAD",
	OP_STORE:  "STORE",
	OP_ADD:    "ADD",
	OP_SUB:    "SUB",
	OP_MUL:    "MUL",
	OP_DIV:    "DIV",
	OP_JUMP:   "JUMP",
	OP_JUMPZ:  "JZ",
	OP_JUMPNZ: "JNZ",
	OP_INPUT:  "INPUT",
	OP_OUTPUT: "OUTPUT",
	OP_HALT:   "HALT",
}

func (op Op) String() string {
	name, ok := _opName[op]
	if !ok {
		return fmt.Sprintf("OP(%d)", int(op))
	}
	return name
}

// Mode is the operand addressing mode.
type Mode int

const (
	MODE_IMM = Mode(0) // immediate
	MODE_DIR = Mode(1) // direct
	MODE_REG = Mode(2) // register
)

var _modeName = map[Mode]string{
	MODE_IMM: "immediate",
	MODE_DIR: "direct",
	MODE_REG: "register",
}

func (mode Mode) String() string {
	name, ok := _modeName[mode]
	if !ok {
		return fmt.Sprintf("MODE(%d)", int(mode))
	}
	return name
}

// Code is a raw 16-bit instruction word.
type Code uint16

// MakeCode assembles an instruction word from its fields.
func MakeCode(op Op, mode Mode, reg Reg, operand uint8) Code {
	return Code((uint16(op) << 12) | (uint16(mode)&0x3)<<10 | (uint16(reg)&0x3)<<8 | uint16(operand))
}

// MakeCodeImm creates a register-immediate instruction.
func MakeCodeImm(op Op, reg Reg, value uint8) Code {
	return MakeCode(op, MODE_IMM, reg, value)
}

// MakeCodeDir creates a register-memory instruction.
func MakeCodeDir(op Op, reg Reg, addr uint8) Code {
	return MakeCode(op, MODE_DIR, reg, addr)
}

// MakeCodeReg creates a register-register instruction.
func MakeCodeReg(op Op, dst, src Reg) Code {
	return MakeCode(op, MODE_REG, dst, uint8(src))
}

// MakeCodeReg3 creates a three-operand ALU instruction.
func MakeCodeReg3(op Op, dst, src1, src2 Reg) Code {
	return MakeCode(op, MODE_REG, dst, uint8(src1)<<4|uint8(src2)&0xf)
}

// MakeCodeJump creates a control-transfer instruction.
func MakeCodeJump(op Op, addr uint8) Code {
	return MakeCode(op, MODE_DIR, REG_A, addr)
}

// MakeCodeHalt creates a HALT instruction.
func MakeCodeHalt() Code {
	return MakeCode(OP_HALT, MODE_IMM, REG_A, 0)
}

// Op returns the opcode field.
func (code Code) Op() Op {
	return Op((uint16(code) >> 12) & 0xf)
}

// Mode returns the addressing mode field.
func (code Code) Mode() Mode {
	return Mode((uint16(code) >> 10) & 0x3)
}

// Reg returns the primary register field.
func (code Code) Reg() Reg {
	return Reg((uint16(code) >> 8) & 0x3)
}

// Operand returns the operand byte.
func (code Code) Operand() uint8 {
	return uint8(code)
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op      Op
	Mode    Mode
	Reg     Reg   // Primary register.
	Operand uint8 // Immediate value or direct address.
	Src1    Reg   // First source in MODE_REG.
	Src2    Reg   // Second source for three-operand ALU instructions.
}

// _opModes is the set of addressing modes each opcode accepts.
var _opModes = map[Op][]Mode{
	OP_NOP:    {MODE_IMM},
	OP_LOAD:   {MODE_IMM, MODE_DIR, MODE_REG},
	OP_STORE:  {MODE_DIR},
	OP_ADD:    {MODE_REG},
	OP_SUB:    {MODE_REG},
	OP_MUL:    {MODE_REG},
	OP_DIV:    {MODE_REG},
	OP_JUMP:   {MODE_DIR},
	OP_JUMPZ:  {MODE_DIR},
	OP_JUMPNZ: {MODE_DIR},
	OP_INPUT:  {MODE_REG},
	OP_OUTPUT: {MODE_REG},
	OP_HALT:   {MODE_IMM},
}

// isThreeOperand returns true for ALU instructions that pack two source
// registers into the operand byte.
func (op Op) isThreeOperand() bool {
	switch op {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		return true
	}
	return false
}

// Decode splits a raw word into its instruction fields, validating the
// opcode, the addressing mode, and every register reference.
func (code Code) Decode() (inst Instruction, err error) {
	inst = Instruction{
		Op:      code.Op(),
		Mode:    code.Mode(),
		Reg:     code.Reg(),
		Operand: code.Operand(),
	}

	modes, known := _opModes[inst.Op]
	if !known {
		err = ErrInvalidOpcode
		return
	}

	valid := false
	for _, mode := range modes {
		if inst.Mode == mode {
			valid = true
			break
		}
	}
	if !valid {
		err = ErrInvalidOpcode
		return
	}

	if !inst.Reg.Valid() {
		err = ErrInvalidOpcode
		return
	}

	if inst.Mode == MODE_REG {
		if inst.Op.isThreeOperand() {
			inst.Src1 = Reg(inst.Operand >> 4)
			inst.Src2 = Reg(inst.Operand & 0xf)
			if !inst.Src1.Valid() || !inst.Src2.Valid() {
				err = ErrInvalidOpcode
				return
			}
		} else {
			inst.Src1 = Reg(inst.Operand & 0xf)
			if !inst.Src1.Valid() {
				err = ErrInvalidOpcode
				return
			}
		}
	}

	return
}

// String returns the assembly representation of the instruction word.
func (code Code) String() (out string) {
	inst, err := code.Decode()
	if err != nil {
		return fmt.Sprintf("DW %#04x", uint16(code))
	}

	return inst.String()
}

// String returns the assembly representation of the instruction.
func (inst Instruction) String() (out string) {
	switch inst.Op {
	case OP_NOP, OP_HALT:
		out = inst.Op.String()
	case OP_LOAD:
		switch inst.Mode {
		case MODE_IMM:
			out = fmt.Sprintf("%v %v, #%d", inst.Op, inst.Reg, inst.Operand)
		case MODE_DIR:
			out = fmt.Sprintf("%v %v, %d", inst.Op, inst.Reg, inst.Operand)
		case MODE_REG:
			out = fmt.Sprintf("%v %v, %v", inst.Op, inst.Reg, inst.Src1)
		}
	case OP_STORE:
		out = fmt.Sprintf("%v %v, %d", inst.Op, inst.Reg, inst.Operand)
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		out = fmt.Sprintf("%v %v, %v, %v", inst.Op, inst.Reg, inst.Src1, inst.Src2)
	case OP_JUMP, OP_JUMPZ, OP_JUMPNZ:
		out = fmt.Sprintf("%v %d", inst.Op, inst.Operand)
	case OP_INPUT, OP_OUTPUT:
		out = fmt.Sprintf("%v %v", inst.Op, inst.Reg)
	}

	return
}
