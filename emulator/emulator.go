// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/vnsim/internal"
	"github.com/ezrec/vnsim/iodev"
	"github.com/ezrec/vnsim/machine"
)

const (
	MEMORY_SIZE          = 256    // Memory capacity in cells.
	DEFAULT_CYCLE_BUDGET = 100000 // Default watchdog budget for Run.
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
}

// Outcome is the result of a bounded Run.
type Outcome int

const (
	OUTCOME_HALTED    = Outcome(0) // halted
	OUTCOME_FAULTED   = Outcome(1) // faulted
	OUTCOME_SUSPENDED = Outcome(2) // suspended
)

var _outcomeName = map[Outcome]string{
	OUTCOME_HALTED:    "halted",
	OUTCOME_FAULTED:   "faulted",
	OUTCOME_SUSPENDED: "suspended",
}

func (oc Outcome) String() string {
	return _outcomeName[oc]
}

// Emulator wires the machine to its I/O ports and keeps the assembled
// program listing for source-level diagnostics. It is the surface the
// terminal UI consumes: load, step, bounded run, and read-only
// inspection between steps.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.

	*machine.Machine                  // The simulated machine.
	Program          *machine.Program // Currently loaded program listing.

	Queue   iodev.Queue   // Default in-memory I/O port.
	Console iodev.Console // Optional stream I/O port.
	Tape    iodev.Tape    // Optional record/replay I/O port.
}

// NewEmulator creates a new emulator with the queue port attached.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewMachine(MEMORY_SIZE),
		Program: &machine.Program{},
	}

	emu.Machine.Port = &emu.Queue

	return
}

// UseConsole switches the machine's I/O port to the stream console.
func (emu *Emulator) UseConsole() {
	emu.Machine.Port = &emu.Console
}

// UseTape switches the machine's I/O port to the record/replay tape.
func (emu *Emulator) UseTape() {
	emu.Machine.Port = &emu.Tape
}

// Defines returns an iterator over all of the assembler predefines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
		emu.Queue.Defines(),
		emu.Tape.Defines(),
	)
}

// Load places the program in memory after a full reset and leaves the
// machine ready to fetch from the entry address.
func (emu *Emulator) Load(prog *machine.Program) (entry uint16, err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Program = prog
	entry, err = emu.Machine.Load(prog)

	return
}

// LineNo returns the source line number for the executing instruction,
// or 0 when no listing covers it.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(int(emu.Machine.InstAddr()))
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// CycleCount returns the number of bus cycles since the last load/reset.
func (emu *Emulator) CycleCount() int {
	return emu.Machine.Bus.Cycles()
}

// DumpRegisters returns an immutable snapshot of the register file.
func (emu *Emulator) DumpRegisters() (dump machine.RegisterDump) {
	reg := &emu.Machine.Reg

	dump = machine.RegisterDump{
		PC:     reg.PC,
		A:      reg.Get(machine.REG_A),
		B:      reg.Get(machine.REG_B),
		C:      reg.Get(machine.REG_C),
		Flags:  reg.Flags,
		Halted: emu.Machine.State() == machine.STATE_HALTED,
	}

	return
}

// DumpMemory returns a copy of the memory cells in [start, start+length).
func (emu *Emulator) DumpMemory(start, length int) (cells []uint8, err error) {
	mem := emu.Machine.Bus.Memory

	err = mem.Check(start)
	if err != nil {
		return
	}
	if length > 0 {
		err = mem.Check(start + length - 1)
		if err != nil {
			return
		}
	}

	cells = slices.Clone(mem.Cell[start : start+length])

	return
}

// Step executes one complete instruction and returns the resulting
// control unit state. Errors carry the source line number when the
// listing covers the faulting instruction.
func (emu *Emulator) Step() (state machine.State, err error) {
	emu.Machine.Verbose = emu.Verbose

	state, err = emu.Machine.Step()
	if err != nil {
		err = &ErrRuntime{LineNo: emu.LineNo(), Err: err}
	}

	return
}

// Run executes instructions until the machine halts, faults, or the
// cycle budget is exhausted. A budget of 0 selects the default.
//
// Suspension is not a fault: the machine state is preserved and a
// further Run or Step resumes where this one stopped. The budget is
// checked at instruction boundaries, so no instruction is ever
// interrupted mid-cycle.
func (emu *Emulator) Run(cycleBudget int) (outcome Outcome, err error) {
	if cycleBudget == 0 {
		cycleBudget = DEFAULT_CYCLE_BUDGET
	}

	start := emu.CycleCount()

	for {
		switch emu.Machine.State() {
		case machine.STATE_HALTED:
			outcome = OUTCOME_HALTED
			return
		case machine.STATE_FAULTED:
			outcome = OUTCOME_FAULTED
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: emu.Machine.Fault()}
			return
		}

		if emu.CycleCount()-start >= cycleBudget {
			outcome = OUTCOME_SUSPENDED
			return
		}

		_, err = emu.Step()
		if err != nil {
			outcome = OUTCOME_FAULTED
			return
		}
	}
}
