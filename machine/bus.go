package machine

// BusSource identifies who is asking for the transaction.
type BusSource int

const (
	BUS_FETCH = BusSource(0) // fetch
	BUS_DATA  = BusSource(1) // data
)

var _busSourceName = map[BusSource]string{
	BUS_FETCH: "fetch",
	BUS_DATA:  "data",
}

func (src BusSource) String() string {
	return _busSourceName[src]
}

// BusDir is the transfer direction of a transaction.
type BusDir int

const (
	BUS_READ  = BusDir(0) // read
	BUS_WRITE = BusDir(1) // write
)

var _busDirName = map[BusDir]string{
	BUS_READ:  "read",
	BUS_WRITE: "write",
}

func (dir BusDir) String() string {
	return _busDirName[dir]
}

// Transaction is a single read-or-write request on the bus.
//
// A BUS_FETCH read moves one full instruction word (CODE_WIDTH consecutive
// cells, big-endian); a BUS_DATA transfer moves one cell, with the payload
// in the low byte of Data.
type Transaction struct {
	Source BusSource
	Dir    BusDir
	Addr   int
	Data   uint16
}

// Bus is the single channel between the control unit and memory.
// Exactly one transaction completes per simulated cycle, so an instruction
// that needs both its own fetch and a data-operand access spans two cycles.
// That contention is the Von Neumann bottleneck, and the cycle counter is
// where it becomes observable.
type Bus struct {
	Memory *Memory

	cycles int
}

// NewBus creates a bus owning the given memory.
func NewBus(mem *Memory) (bus *Bus) {
	bus = &Bus{
		Memory: mem,
	}

	return
}

// Cycles returns the number of completed transactions since the last reset.
func (bus *Bus) Cycles() int {
	return bus.cycles
}

// ResetCycles zeroes the cycle counter.
func (bus *Bus) ResetCycles() {
	bus.cycles = 0
}

// Transact completes a single transaction and consumes one cycle.
// Out-of-bounds addresses return the fault without consuming the cycle;
// the transaction never completed.
func (bus *Bus) Transact(tr Transaction) (data uint16, err error) {
	switch {
	case tr.Source == BUS_FETCH && tr.Dir == BUS_READ:
		var hi, lo uint8
		hi, err = bus.Memory.Read(tr.Addr)
		if err != nil {
			return
		}
		lo, err = bus.Memory.Read(tr.Addr + 1)
		if err != nil {
			return
		}
		data = (uint16(hi) << 8) | uint16(lo)
	case tr.Source == BUS_DATA && tr.Dir == BUS_READ:
		var value uint8
		value, err = bus.Memory.Read(tr.Addr)
		if err != nil {
			return
		}
		data = uint16(value)
	case tr.Source == BUS_DATA && tr.Dir == BUS_WRITE:
		err = bus.Memory.Write(tr.Addr, uint8(tr.Data))
		if err != nil {
			return
		}
	default:
		// Instruction words are never written back; only the control
		// unit builds transactions, so this is unreachable.
		panic("fetch transactions are read-only")
	}

	bus.cycles++

	return
}
