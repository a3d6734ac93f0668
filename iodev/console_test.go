package iodev

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := &Console{
		Input:  bytes.NewReader([]byte{10, 20}),
		Output: output,
	}

	value, err := con.ReadValue()
	assert.NoError(err)
	assert.Equal(uint8(10), value)

	value, err = con.ReadValue()
	assert.NoError(err)
	assert.Equal(uint8(20), value)

	// End of stream reads as no input, not a stream error.
	_, err = con.ReadValue()
	assert.ErrorIs(err, ErrNoInput)

	assert.NoError(con.WriteValue('x'))
	assert.Equal([]byte{'x'}, output.Bytes())
}

func TestConsoleNumeric(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := &Console{
		Numeric: true,
		Input:   bytes.NewReader([]byte("42 0x2a\n-1 bogus")),
		Output:  output,
	}

	for _, expect := range []uint8{42, 42, 255} {
		value, err := con.ReadValue()
		assert.NoError(err)
		assert.Equal(expect, value)
	}

	_, err := con.ReadValue()
	assert.ErrorIs(err, ErrInputInvalid)

	assert.NoError(con.WriteValue(42))
	assert.Equal("42\n", output.String())
}

func TestConsoleUnattached(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}

	_, err := con.ReadValue()
	assert.ErrorIs(err, ErrNoInput)

	assert.ErrorIs(con.WriteValue(1), ErrPortFull)
}
