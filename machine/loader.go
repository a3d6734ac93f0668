package machine

import (
	"iter"
	"log"
)

// Opcode represents a line of assembled source with its location and
// generated output: either a single instruction word or raw data bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Code      Code
	Data      []uint8 // Raw bytes for DB lines; nil for instructions.
	LinkLabel string
}

// size returns the number of memory cells the opcode occupies.
func (op *Opcode) size() int {
	if op.Data != nil {
		return len(op.Data)
	}

	return CODE_WIDTH
}

// Program is an assembled program: instruction words and data bytes to be
// placed contiguously in memory from Origin, with execution starting at
// Entry. There is no enforced instruction/data separation; DB bytes and
// code share the one address space.
type Program struct {
	Origin  int
	Entry   int
	Opcodes []Opcode
}

// Size returns the program footprint in memory cells.
func (prog *Program) Size() (size int) {
	for n := range prog.Opcodes {
		size += prog.Opcodes[n].size()
	}

	return
}

// Binary flattens the program to its memory image, instruction words
// big-endian.
func (prog *Program) Binary() (bin []uint8) {
	for _, op := range prog.Opcodes {
		if op.Data != nil {
			bin = append(bin, op.Data...)
			continue
		}
		bin = append(bin, uint8(op.Code>>8), uint8(op.Code))
	}

	return
}

// Codes iterates over the program's instruction words by address,
// skipping data bytes.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(addr int, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Data != nil {
				continue
			}
			if !yield(op.Addr, op.Code) {
				return
			}
		}
	}
}

// Debug maps a memory address back to the assembled line covering it.
type Debug struct {
	*Opcode
}

func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+op.size() {
			dbg = Debug{Opcode: &prog.Opcodes[n]}
			break
		}
	}

	return
}

// Load fully re-initializes the machine and places the program in memory.
// The whole image must fit; there are no partial or incremental loads.
// Returns the entry address the PC was set to.
func (m *Machine) Load(prog *Program) (entry uint16, err error) {
	return m.LoadBinary(prog.Origin, prog.Entry, prog.Binary())
}

// LoadBinary is the raw form of Load: place a memory image at origin and
// set the PC to entry.
func (m *Machine) LoadBinary(origin int, entry int, bin []uint8) (addr uint16, err error) {
	if origin+len(bin) > m.Bus.Memory.Size() {
		err = ErrProgramTooLarge
		return
	}
	err = m.Bus.Memory.Check(entry)
	if err != nil {
		return
	}

	m.Reset()

	err = m.Bus.Memory.LoadBlock(origin, bin)
	if err != nil {
		return
	}

	m.Reg.PC = uint16(entry)
	addr = uint16(entry)

	if m.Verbose {
		log.Printf("machine: loaded %v cells at %#04x, entry %#04x", len(bin), origin, entry)
	}

	return
}
