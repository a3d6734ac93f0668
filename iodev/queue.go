package iodev

import (
	"iter"
	"maps"
	"slices"
)

const (
	// QUEUE_DEFAULT_CAPACITY is the default output capacity in values.
	QUEUE_DEFAULT_CAPACITY = 1024
)

var _queue_defines = map[string]string{
	"QUEUE_CAPACITY": "1024",
}

// Queue is an in-memory FIFO port. INPUT pops from the front of In;
// OUTPUT appends to Out. The host seeds In before a run and collects Out
// afterwards.
type Queue struct {
	Capacity int // Output capacity in values; 0 selects the default.

	In  []uint8
	Out []uint8
}

var _ Port = (*Queue)(nil)

// Defines returns an iter of assembler predefines for the port.
func (q *Queue) Defines() iter.Seq2[string, string] {
	return maps.All(_queue_defines)
}

// Rewind discards all queued input and captured output.
func (q *Queue) Rewind() {
	q.In = nil
	q.Out = nil
}

// AddInput appends values to the input queue.
func (q *Queue) AddInput(values ...uint8) {
	q.In = append(q.In, values...)
}

// ReadValue pops the next input value.
func (q *Queue) ReadValue() (value uint8, err error) {
	if len(q.In) == 0 {
		err = ErrNoInput
		return
	}

	value = q.In[0]
	q.In = q.In[1:]

	return
}

// WriteValue appends a value to the captured output.
func (q *Queue) WriteValue(value uint8) (err error) {
	capacity := q.Capacity
	if capacity == 0 {
		capacity = QUEUE_DEFAULT_CAPACITY
	}
	if len(q.Out) >= capacity {
		err = ErrPortFull
		return
	}

	q.Out = append(q.Out, value)

	return
}

// TakeOutput returns the captured output and clears it.
func (q *Queue) TakeOutput() (out []uint8) {
	out = slices.Clone(q.Out)
	q.Out = q.Out[:0]

	return
}
