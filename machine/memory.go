package machine

import (
	"errors"
)

const (
	DEFAULT_MEMORY_SIZE = 256 // Default memory capacity in cells.
)

// Memory is the flat byte-addressable store shared by code and data.
// There is no instruction/data separation; the loader, the control unit's
// fetch, and data accesses all address the same cells.
//
// All access during execution goes through the Bus, which serializes
// requests into one transaction per cycle.
type Memory struct {
	Cell []uint8
}

// NewMemory creates a zero-filled memory with the given capacity in cells.
// A size of 0 selects DEFAULT_MEMORY_SIZE.
func NewMemory(size int) (mem *Memory) {
	if size == 0 {
		size = DEFAULT_MEMORY_SIZE
	}
	mem = &Memory{
		Cell: make([]uint8, size),
	}

	return
}

// Size returns the memory capacity in cells.
func (mem *Memory) Size() int {
	return len(mem.Cell)
}

// Check validates an address against the memory capacity.
// Addresses never wrap; any address outside [0, size) is a fault.
func (mem *Memory) Check(addr int) (err error) {
	if addr < 0 || addr >= len(mem.Cell) {
		err = errors.Join(ErrOutOfBounds, ErrAddress(addr))
	}

	return
}

// Read returns the cell at addr.
func (mem *Memory) Read(addr int) (value uint8, err error) {
	err = mem.Check(addr)
	if err != nil {
		return
	}

	value = mem.Cell[addr]

	return
}

// Write replaces the cell at addr.
func (mem *Memory) Write(addr int, value uint8) (err error) {
	err = mem.Check(addr)
	if err != nil {
		return
	}

	mem.Cell[addr] = value

	return
}

// LoadBlock copies data into memory starting at start.
// The whole block must fit; a partial write never occurs.
func (mem *Memory) LoadBlock(start int, data []uint8) (err error) {
	err = mem.Check(start)
	if err != nil {
		return
	}
	if len(data) > 0 {
		err = mem.Check(start + len(data) - 1)
		if err != nil {
			return
		}
	}

	copy(mem.Cell[start:], data)

	return
}

// Reset zero-fills all cells.
func (mem *Memory) Reset() {
	clear(mem.Cell)
}
