package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFetchWord(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus(NewMemory(16))
	bus.Memory.Cell[4] = 0x12
	bus.Memory.Cell[5] = 0x34

	// A fetch moves one full word in a single transaction.
	data, err := bus.Transact(Transaction{Source: BUS_FETCH, Dir: BUS_READ, Addr: 4})
	assert.NoError(err)
	assert.Equal(uint16(0x1234), data)
	assert.Equal(1, bus.Cycles())
}

func TestBusDataAccess(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus(NewMemory(16))

	_, err := bus.Transact(Transaction{Source: BUS_DATA, Dir: BUS_WRITE, Addr: 7, Data: 0x42})
	assert.NoError(err)

	data, err := bus.Transact(Transaction{Source: BUS_DATA, Dir: BUS_READ, Addr: 7})
	assert.NoError(err)
	assert.Equal(uint16(0x42), data)

	assert.Equal(2, bus.Cycles())
}

func TestBusFault(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus(NewMemory(16))

	// A faulted transaction never completed: no cycle is consumed.
	_, err := bus.Transact(Transaction{Source: BUS_DATA, Dir: BUS_READ, Addr: 16})
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.Equal(0, bus.Cycles())

	// A fetch whose word straddles the end of memory faults too.
	_, err = bus.Transact(Transaction{Source: BUS_FETCH, Dir: BUS_READ, Addr: 15})
	assert.ErrorIs(err, ErrOutOfBounds)
	assert.Equal(0, bus.Cycles())
}

func TestBusResetCycles(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus(NewMemory(16))

	_, err := bus.Transact(Transaction{Source: BUS_DATA, Dir: BUS_READ, Addr: 0})
	assert.NoError(err)
	assert.Equal(1, bus.Cycles())

	bus.ResetCycles()
	assert.Equal(0, bus.Cycles())
}
