package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryDefaults(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(0)
	assert.Equal(DEFAULT_MEMORY_SIZE, mem.Size())

	mem = NewMemory(16)
	assert.Equal(16, mem.Size())
}

func TestMemoryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(64)

	for addr := range 64 {
		err := mem.Write(addr, uint8(addr*3))
		assert.NoError(err)
	}

	for addr := range 64 {
		value, err := mem.Read(addr)
		assert.NoError(err)
		assert.Equal(uint8(addr*3), value)
	}
}

func TestMemoryOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(16)

	_, err := mem.Read(16)
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.ErrorIs(err, ErrAddress(16))

	err = mem.Write(-1, 0)
	assert.ErrorIs(err, ErrOutOfBounds)

	err = mem.Write(100, 0)
	assert.ErrorIs(err, ErrOutOfBounds)
}

func TestMemoryLoadBlock(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(8)

	err := mem.LoadBlock(2, []uint8{1, 2, 3})
	assert.NoError(err)
	assert.Equal([]uint8{0, 0, 1, 2, 3, 0, 0, 0}, mem.Cell)

	// The whole block must fit.
	err = mem.LoadBlock(6, []uint8{1, 2, 3})
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.Equal([]uint8{0, 0, 1, 2, 3, 0, 0, 0}, mem.Cell)

	mem.Reset()
	assert.Equal(make([]uint8, 8), mem.Cell)
}
