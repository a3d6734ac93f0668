package iodev

import (
	"io"
	"iter"
	"maps"
)

const (
	// TAPE_DEFAULT_CAPACITY is the default capacity in values for a new tape.
	TAPE_DEFAULT_CAPACITY = 65536
)

var _tape_defines = map[string]string{
	"TAPE_CAPACITY": "65536",
}

// Tape is a record/replay port with separate read and write positions
// over one backing store. A program's OUTPUT appends at the write
// position; INPUT replays from the read position. The whole tape can be
// marshaled to and from a file.
type Tape struct {
	Capacity int

	ReadIndex  int
	WriteIndex int
	Data       []uint8
}

var _ Port = (*Tape)(nil)

// Defines returns an iter of assembler predefines for the port.
func (tape *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(_tape_defines)
}

// Rewind resets the read position to the start and the write position to
// the end of existing data.
func (tape *Tape) Rewind() {
	if tape.Capacity == 0 {
		tape.Capacity = TAPE_DEFAULT_CAPACITY
	}

	tape.ReadIndex = 0
	tape.WriteIndex = len(tape.Data)
}

// Unmarshal loads tape data from a reader, replacing any existing data.
func (tape *Tape) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	tape.Data = data
	tape.ReadIndex = 0
	tape.WriteIndex = len(tape.Data)

	return
}

// Marshal writes the tape's data to a writer up to the current write position.
func (tape *Tape) Marshal(file io.Writer) (err error) {
	_, err = file.Write(tape.Data[0:tape.WriteIndex])

	return
}

// ReadValue replays the next value from the read position.
func (tape *Tape) ReadValue() (value uint8, err error) {
	if tape.ReadIndex >= len(tape.Data) {
		err = ErrNoInput
		return
	}

	value = tape.Data[tape.ReadIndex]
	tape.ReadIndex++

	return
}

// WriteValue records a value at the write position.
func (tape *Tape) WriteValue(value uint8) (err error) {
	capacity := tape.Capacity
	if capacity == 0 {
		capacity = TAPE_DEFAULT_CAPACITY
	}
	if tape.WriteIndex >= capacity {
		err = ErrPortFull
		return
	}

	if tape.WriteIndex < len(tape.Data) {
		tape.Data[tape.WriteIndex] = value
	} else {
		tape.Data = append(tape.Data, value)
	}
	tape.WriteIndex++

	return
}
