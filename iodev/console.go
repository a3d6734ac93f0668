package iodev

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"
)

// Console is a stream port wrapping an io.Reader for INPUT and an
// io.Writer for OUTPUT. In the default character mode each value is one
// raw byte. In numeric mode INPUT parses a whitespace-delimited number
// (0x/0o/0b prefixes accepted) and OUTPUT prints the value in decimal,
// one per line.
type Console struct {
	Numeric bool

	Input  io.Reader
	Output io.Writer
}

var _ Port = (*Console)(nil)

// Defines returns an iter of assembler predefines for the port.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Rewind is not possible on a stream.
func (con *Console) Rewind() {
}

// ReadValue reads the next value from the input stream.
func (con *Console) ReadValue() (value uint8, err error) {
	if con.Input == nil {
		err = ErrNoInput
		return
	}

	if con.Numeric {
		return con.readNumber()
	}

	var one [1]byte
	_, err = io.ReadFull(con.Input, one[:])
	if err != nil {
		err = ErrNoInput
		return
	}

	value = one[0]

	return
}

// readNumber scans a whitespace-delimited token and parses it with the
// usual base prefixes. Two's-complement for negative inputs.
func (con *Console) readNumber() (value uint8, err error) {
	var token string
	_, err = fmt.Fscan(con.Input, &token)
	if err != nil {
		err = ErrNoInput
		return
	}

	v64, err := strconv.ParseInt(token, 0, 16)
	if err != nil || v64 < -128 || v64 > 255 {
		err = ErrInputInvalid
		return
	}

	value = uint8(v64)

	return
}

// WriteValue writes one value to the output stream.
func (con *Console) WriteValue(value uint8) (err error) {
	if con.Output == nil {
		err = ErrPortFull
		return
	}

	if con.Numeric {
		_, err = fmt.Fprintf(con.Output, "%d\n", value)
		return
	}

	_, err = con.Output.Write([]byte{value})

	return
}
