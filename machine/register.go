package machine

// Reg names a general-purpose register.
type Reg int

const (
	REG_A = Reg(0) // A
	REG_B = Reg(1) // B
	REG_C = Reg(2) // C

	REG_COUNT = 3
)

var _regName = map[Reg]string{
	REG_A: "A",
	REG_B: "B",
	REG_C: "C",
}

func (reg Reg) String() string {
	name, ok := _regName[reg]
	if !ok {
		return "?"
	}
	return name
}

// Valid returns true if the register index names a real register.
func (reg Reg) Valid() bool {
	return reg >= REG_A && reg < REG_COUNT
}

// Flags is the ALU status flag set.
type Flags struct {
	Zero     bool // Last result was zero.
	Negative bool // Bit 7 of the last result was set.
	Overflow bool // Last result wrapped around the register width.
}

// Registers is the machine register file: the program counter, three 8-bit
// two's-complement general-purpose registers, and the status flags.
// Only the control unit mutates it, during Execute/Writeback.
type Registers struct {
	PC    uint16
	GP    [REG_COUNT]uint8
	Flags Flags
}

// Get returns the value of a general-purpose register.
func (r *Registers) Get(reg Reg) uint8 {
	return r.GP[reg]
}

// Set replaces the value of a general-purpose register.
func (r *Registers) Set(reg Reg, value uint8) {
	r.GP[reg] = value
}

// Reset returns the register file to its power-on state.
func (r *Registers) Reset() {
	r.PC = 0
	clear(r.GP[:])
	r.Flags = Flags{}
}

// RegisterDump is an immutable snapshot of the register file for
// inspection by external observers.
type RegisterDump struct {
	PC      uint16
	A, B, C uint8
	Flags   Flags
	Halted  bool
}
