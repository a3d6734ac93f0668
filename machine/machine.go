// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/vnsim/iodev"
)

// Port is the I/O port interface consumed by INPUT/OUTPUT instructions.
type Port = iodev.Port

// State is a control unit state.
type State int

const (
	STATE_FETCH     = State(0) // fetch
	STATE_DECODE    = State(1) // decode
	STATE_EXECUTE   = State(2) // execute
	STATE_WRITEBACK = State(3) // writeback
	STATE_HALTED    = State(4) // halted
	STATE_FAULTED   = State(5) // faulted
)

var _stateName = map[State]string{
	STATE_FETCH:     "fetch",
	STATE_DECODE:    "decode",
	STATE_EXECUTE:   "execute",
	STATE_WRITEBACK: "writeback",
	STATE_HALTED:    "halted",
	STATE_FAULTED:   "faulted",
}

func (st State) String() string {
	return _stateName[st]
}

// Terminal returns true for the halted and faulted states.
func (st State) Terminal() bool {
	return st == STATE_HALTED || st == STATE_FAULTED
}

var _machine_defines = map[string]string{
	"CODE_WIDTH": fmt.Sprintf("%v", CODE_WIDTH),
}

// writeback is the register commit pending between Execute and Writeback.
type writeback struct {
	valid    bool
	reg      Reg
	value    uint8
	setFlags bool
	flags    Flags
}

// Machine is the simulation context: bus-owned memory, the register file,
// an optional I/O port, and the control unit state. The control unit is
// the sole writer of memory and registers; everything else observes
// between ticks.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Bus  *Bus      // Single memory access path.
	Reg  Registers // Register file.
	Port Port      // I/O port for INPUT/OUTPUT; may be nil.

	state State
	fault error

	instAddr uint16 // Address of the instruction being executed.
	code     Code   // Fetched instruction word.
	inst     Instruction
	wb       writeback
}

// NewMachine creates a machine with the given memory capacity in cells.
// A size of 0 selects DEFAULT_MEMORY_SIZE.
func NewMachine(size int) (m *Machine) {
	m = &Machine{
		Bus: NewBus(NewMemory(size)),
	}

	return
}

// Defines returns an iterator over the machine's assembler predefines.
func (m *Machine) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_machine_defines)
	defines["MEMORY_SIZE"] = fmt.Sprintf("%v", m.Bus.Memory.Size())

	return maps.All(defines)
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text = fmt.Sprintf("   pc: %#04x (%v)\n", m.Reg.PC, m.state)
	for reg := REG_A; reg < REG_COUNT; reg++ {
		text += fmt.Sprintf("%5v: %#02x\n", reg, m.Reg.Get(reg))
	}
	text += fmt.Sprintf("flags: zero=%v negative=%v overflow=%v\n",
		m.Reg.Flags.Zero, m.Reg.Flags.Negative, m.Reg.Flags.Overflow)
	text += fmt.Sprintf("cycle: %v\n", m.Bus.Cycles())

	return
}

// State returns the current control unit state.
func (m *Machine) State() State {
	return m.state
}

// Fault returns the fault reason, or nil if the machine has not faulted.
func (m *Machine) Fault() error {
	return m.fault
}

// InstAddr returns the address of the instruction currently in flight.
func (m *Machine) InstAddr() uint16 {
	return m.instAddr
}

// Reset returns the machine to its power-on state: zeroed memory and
// registers, cleared cycle counter, control unit at Fetch. The attached
// port, if any, is rewound.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("machine: reset")
	}

	m.Bus.Memory.Reset()
	m.Bus.ResetCycles()
	m.Reg.Reset()

	m.state = STATE_FETCH
	m.fault = nil
	m.instAddr = 0
	m.code = 0
	m.inst = Instruction{}
	m.wb = writeback{}

	if m.Port != nil {
		m.Port.Rewind()
	}
}

// enterFault transitions to the terminal faulted state.
func (m *Machine) enterFault(reason error) error {
	m.state = STATE_FAULTED
	m.fault = reason

	if m.Verbose {
		log.Printf("machine: fault at %#04x: %v", m.instAddr, reason)
	}

	return reason
}

// Tick advances the control unit by exactly one state transition.
// Ticking a halted machine returns ErrMachineHalted; ticking a faulted
// machine returns the fault wrapped in ErrMachineFaulted. Neither
// changes any state.
func (m *Machine) Tick() (err error) {
	switch m.state {
	case STATE_FETCH:
		m.instAddr = m.Reg.PC
		var word uint16
		word, err = m.Bus.Transact(Transaction{
			Source: BUS_FETCH,
			Dir:    BUS_READ,
			Addr:   int(m.Reg.PC),
		})
		if err != nil {
			return m.enterFault(err)
		}
		m.code = Code(word)
		// PC advances past the word unconditionally; jumps override
		// it during Execute.
		m.Reg.PC += CODE_WIDTH
		m.state = STATE_DECODE

	case STATE_DECODE:
		m.inst, err = m.code.Decode()
		if err != nil {
			return m.enterFault(errors.Join(err, ErrCode(m.code)))
		}
		if m.Verbose {
			log.Printf("%04x: %v", m.instAddr, m.inst)
		}
		m.state = STATE_EXECUTE

	case STATE_EXECUTE:
		err = m.execute()
		if err != nil {
			return m.enterFault(err)
		}

	case STATE_WRITEBACK:
		if m.wb.valid {
			m.Reg.Set(m.wb.reg, m.wb.value)
		}
		if m.wb.setFlags {
			m.Reg.Flags = m.wb.flags
		}
		m.wb = writeback{}
		m.state = STATE_FETCH

	case STATE_HALTED:
		err = ErrMachineHalted

	case STATE_FAULTED:
		err = errors.Join(ErrMachineFaulted, m.fault)
	}

	return
}

// jump validates a control-transfer target and redirects the PC.
// A target equal to the current instruction's own address is a legal
// tight loop, bounded only by the caller's cycle budget.
func (m *Machine) jump(target uint8) (err error) {
	err = m.Bus.Memory.Check(int(target))
	if err != nil {
		return
	}

	m.Reg.PC = uint16(target)

	return
}

// execute dispatches the decoded instruction. Memory-operand
// instructions issue exactly one additional bus transaction, so they
// cost a second cycle on top of their fetch.
func (m *Machine) execute() (err error) {
	inst := m.inst
	m.state = STATE_WRITEBACK

	switch inst.Op {
	case OP_NOP:
		// pass

	case OP_LOAD:
		var value uint8
		switch inst.Mode {
		case MODE_IMM:
			value = inst.Operand
		case MODE_DIR:
			var data uint16
			data, err = m.Bus.Transact(Transaction{
				Source: BUS_DATA,
				Dir:    BUS_READ,
				Addr:   int(inst.Operand),
			})
			if err != nil {
				return
			}
			value = uint8(data)
		case MODE_REG:
			value = m.Reg.Get(inst.Src1)
		}
		flags := resultFlags(value, m.Reg.Flags.Overflow)
		m.wb = writeback{valid: true, reg: inst.Reg, value: value, setFlags: true, flags: flags}

	case OP_STORE:
		_, err = m.Bus.Transact(Transaction{
			Source: BUS_DATA,
			Dir:    BUS_WRITE,
			Addr:   int(inst.Operand),
			Data:   uint16(m.Reg.Get(inst.Reg)),
		})
		if err != nil {
			return
		}

	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		a := m.Reg.Get(inst.Src1)
		b := m.Reg.Get(inst.Src2)
		var value uint8
		var flags Flags
		switch inst.Op {
		case OP_ADD:
			value, flags = AluAdd(a, b)
		case OP_SUB:
			value, flags = AluSub(a, b)
		case OP_MUL:
			value, flags = AluMul(a, b)
		case OP_DIV:
			value, flags, err = AluDiv(a, b)
			if err != nil {
				return
			}
		}
		m.wb = writeback{valid: true, reg: inst.Reg, value: value, setFlags: true, flags: flags}

	case OP_JUMP:
		err = m.jump(inst.Operand)
		if err != nil {
			return
		}

	case OP_JUMPZ:
		if m.Reg.Flags.Zero {
			err = m.jump(inst.Operand)
			if err != nil {
				return
			}
		}

	case OP_JUMPNZ:
		if !m.Reg.Flags.Zero {
			err = m.jump(inst.Operand)
			if err != nil {
				return
			}
		}

	case OP_INPUT:
		if m.Port == nil {
			err = ErrIOUnavailable
			return
		}
		var value uint8
		value, err = m.Port.ReadValue()
		if err != nil {
			err = errors.Join(ErrIOUnavailable, err)
			return
		}
		flags := resultFlags(value, m.Reg.Flags.Overflow)
		m.wb = writeback{valid: true, reg: inst.Reg, value: value, setFlags: true, flags: flags}

	case OP_OUTPUT:
		if m.Port == nil {
			err = ErrIOUnavailable
			return
		}
		err = m.Port.WriteValue(m.Reg.Get(inst.Reg))
		if err != nil {
			err = errors.Join(ErrIOUnavailable, err)
			return
		}

	case OP_HALT:
		m.state = STATE_HALTED
		m.wb = writeback{}
	}

	return
}

// Step runs the control unit through one complete instruction: from Fetch
// back around to Fetch, or into a terminal state. Executing HALT is not
// an error; faults are.
func (m *Machine) Step() (state State, err error) {
	if m.state.Terminal() {
		err = m.Tick()
		state = m.state
		return
	}

	for {
		err = m.Tick()
		state = m.state
		if err != nil || state == STATE_FETCH || state.Terminal() {
			return
		}
	}
}
