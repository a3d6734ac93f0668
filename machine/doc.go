// Package machine implements a stored-program computer in the Von Neumann
// style: one flat byte-addressable memory shared by code and data, a single
// bus serializing every memory access, an arithmetic-logic unit, a small
// register file, and a control unit driving the fetch-decode-execute-writeback
// cycle as an explicit state machine.
//
// The package also provides the instruction word encoding, the program loader,
// and a single-pass assembler for the instruction set, supporting labels,
// equates, data bytes, and compile-time expression evaluation.
package machine
