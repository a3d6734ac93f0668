package iodev

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTapeRecordReplay(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	tape.Rewind()

	for _, value := range []uint8{3, 1, 4, 1, 5} {
		assert.NoError(tape.WriteValue(value))
	}

	// A fresh rewind replays from the start while keeping the data.
	tape.Rewind()
	for _, expect := range []uint8{3, 1, 4, 1, 5} {
		value, err := tape.ReadValue()
		assert.NoError(err)
		assert.Equal(expect, value)
	}

	_, err := tape.ReadValue()
	assert.ErrorIs(err, ErrNoInput)
}

func TestTapeCapacity(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Capacity: 2}
	tape.Rewind()

	assert.NoError(tape.WriteValue(1))
	assert.NoError(tape.WriteValue(2))
	assert.ErrorIs(tape.WriteValue(3), ErrPortFull)
}

func TestTapeMarshal(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	tape.Rewind()
	for _, value := range []uint8{7, 8, 9} {
		assert.NoError(tape.WriteValue(value))
	}

	saved := &bytes.Buffer{}
	assert.NoError(tape.Marshal(saved))
	assert.Equal([]byte{7, 8, 9}, saved.Bytes())

	restored := &Tape{}
	assert.NoError(restored.Unmarshal(bytes.NewReader(saved.Bytes())))
	restored.Rewind()

	value, err := restored.ReadValue()
	assert.NoError(err)
	assert.Equal(uint8(7), value)
}
