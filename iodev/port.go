// Package iodev provides I/O port implementations for the vnsim machine.
// A port is the sink for OUTPUT instructions and the source for INPUT
// instructions; the machine core knows nothing about where the values go.
package iodev

import (
	"iter"
)

// Port defines the interface for all I/O ports attached to the machine.
type Port interface {
	// Rewind resets the port to its initial state.
	Rewind()
	// ReadValue produces the next input value for an INPUT instruction.
	// ErrNoInput means the port has nothing to offer.
	ReadValue() (value uint8, err error)
	// WriteValue consumes a value emitted by an OUTPUT instruction.
	WriteValue(value uint8) error
	// Defines returns an iterator of assembler predefines for the port.
	Defines() iter.Seq2[string, string]
}
