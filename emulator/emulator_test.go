package emulator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vnsim/machine"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Machine)
	assert.Equal(MEMORY_SIZE, emu.Machine.Bus.Memory.Size())
}

func assemble(t *testing.T, emu *Emulator, program []string) (prog *machine.Program) {
	assert := assert.New(t)

	asm := &machine.Assembler{}
	for attr, val := range emu.Defines() {
		asm.Predefine(attr, val)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulatorEndToEnd(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        LOAD A, #15",
		"        LOAD B, #27",
		"        ADD C, A, B",
		"        STORE C, 2",
		"        HALT",
	}

	entry, err := emu.Load(assemble(t, emu, program))
	assert.NoError(err)
	assert.Equal(uint16(0), entry)

	outcome, err := emu.Run(0)
	assert.NoError(err)
	assert.Equal(OUTCOME_HALTED, outcome)

	dump := emu.DumpRegisters()
	assert.Equal(uint8(42), dump.C)
	assert.True(dump.Halted)

	cells, err := emu.DumpMemory(2, 1)
	assert.NoError(err)
	assert.Equal(uint8(42), cells[0])

	assert.Equal(6, emu.CycleCount())
}

func TestEmulatorDeterminism(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"        LOAD A, #10",
		"        LOAD B, #1",
		"LOOP:   SUB A, A, B",
		"        OUTPUT A",
		"        JNZ LOOP",
		"        HALT",
	}

	// Run to completion in one bounded call.
	ran := NewEmulator()
	_, err := ran.Load(assemble(t, ran, program))
	assert.NoError(err)
	outcome, err := ran.Run(0)
	assert.NoError(err)
	assert.Equal(OUTCOME_HALTED, outcome)

	// Run the same program one Step at a time.
	stepped := NewEmulator()
	_, err = stepped.Load(assemble(t, stepped, program))
	assert.NoError(err)
	for stepped.Machine.State() != machine.STATE_HALTED {
		_, err = stepped.Step()
		assert.NoError(err)
	}

	// Identical registers, memory, cycle count, and output.
	assert.Equal(ran.DumpRegisters(), stepped.DumpRegisters())
	assert.Equal(ran.Machine.Bus.Memory.Cell, stepped.Machine.Bus.Memory.Cell)
	assert.Equal(ran.CycleCount(), stepped.CycleCount())
	assert.Equal(ran.Queue.TakeOutput(), stepped.Queue.TakeOutput())
}

func TestEmulatorSuspend(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"LOOP:   JUMP LOOP",
	}

	_, err := emu.Load(assemble(t, emu, program))
	assert.NoError(err)

	outcome, err := emu.Run(1000)
	assert.NoError(err)
	assert.Equal(OUTCOME_SUSPENDED, outcome)
	assert.Equal(1000, emu.CycleCount())

	// Suspension is resumable, not a restart.
	outcome, err = emu.Run(1000)
	assert.NoError(err)
	assert.Equal(OUTCOME_SUSPENDED, outcome)
	assert.Equal(2000, emu.CycleCount())
}

func TestEmulatorQueueIO(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	// Echo input until a zero arrives.
	program := []string{
		"LOOP:   INPUT A",
		"        JZ DONE",
		"        OUTPUT A",
		"        JUMP LOOP",
		"DONE:   HALT",
	}

	_, err := emu.Load(assemble(t, emu, program))
	assert.NoError(err)
	emu.Queue.AddInput('H', 'I', 0)

	outcome, err := emu.Run(0)
	assert.NoError(err)
	assert.Equal(OUTCOME_HALTED, outcome)
	assert.Equal([]uint8{'H', 'I'}, emu.Queue.TakeOutput())
}

func TestEmulatorConsoleIO(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.UseConsole()

	program := []string{
		"        INPUT A",
		"        INPUT B",
		"        ADD C, A, B",
		"        OUTPUT C",
		"        HALT",
	}

	_, err := emu.Load(assemble(t, emu, program))
	assert.NoError(err)

	emu.Console.Input = bytes.NewReader([]byte{30, 12})
	output := &bytes.Buffer{}
	emu.Console.Output = output

	outcome, err := emu.Run(0)
	assert.NoError(err)
	assert.Equal(OUTCOME_HALTED, outcome)
	assert.Equal([]byte{42}, output.Bytes())
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	// INPUT with an empty queue faults with a source line number.
	program := []string{
		"        NOP",
		"        INPUT A",
		"        HALT",
	}

	_, err := emu.Load(assemble(t, emu, program))
	assert.NoError(err)

	outcome, err := emu.Run(0)
	assert.Equal(OUTCOME_FAULTED, outcome)
	assert.ErrorIs(err, machine.ErrIOUnavailable)

	var runtime *ErrRuntime
	assert.ErrorAs(err, &runtime)
	assert.Equal(2, runtime.LineNo)

	// The fault is sticky until a reload.
	outcome, err = emu.Run(0)
	assert.Equal(OUTCOME_FAULTED, outcome)
	assert.ErrorIs(err, machine.ErrIOUnavailable)

	_, err = emu.Load(emu.Program)
	assert.NoError(err)
	assert.Equal(machine.STATE_FETCH, emu.Machine.State())
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        LOAD A, #1",
		"        LOAD B, #2",
		"        HALT",
	}

	prog := assemble(t, emu, program)
	_, err := emu.Load(prog)
	assert.NoError(err)

	for _, op := range prog.Opcodes {
		assert.Equal(uint16(op.Addr), emu.Machine.Reg.PC)
		state, err := emu.Step()
		assert.NoError(err)
		assert.Equal(op.LineNo, emu.LineNo())
		if state == machine.STATE_HALTED {
			break
		}
	}
}

func TestEmulatorDumpMemory(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	_, err := emu.DumpMemory(0, MEMORY_SIZE)
	assert.NoError(err)

	_, err = emu.DumpMemory(MEMORY_SIZE, 1)
	assert.ErrorIs(err, machine.ErrOutOfBounds)

	_, err = emu.DumpMemory(MEMORY_SIZE-8, 16)
	assert.ErrorIs(err, machine.ErrOutOfBounds)

	// Snapshots are copies, not live references.
	cells, err := emu.DumpMemory(0, 4)
	assert.NoError(err)
	cells[0] = 0xaa
	fresh, err := emu.DumpMemory(0, 4)
	assert.NoError(err)
	assert.Equal(uint8(0), fresh[0])
}
