package machine

import (
	"errors"

	"github.com/ezrec/vnsim/translate"
)

var f = translate.From

var (
	// Fault errors. All of these leave the machine in STATE_FAULTED,
	// which only Reset or Load can clear.
	ErrInvalidOpcode   = errors.New(f("invalid opcode"))
	ErrOutOfBounds     = errors.New(f("address out of bounds"))
	ErrIOUnavailable   = errors.New(f("i/o port unavailable"))
	ErrProgramTooLarge = errors.New(f("program exceeds memory capacity"))
	ErrDivideByZero    = errors.New(f("divide by zero"))

	// Control errors. Not faults; the machine state is unchanged.
	ErrMachineHalted  = errors.New(f("machine halted"))
	ErrMachineFaulted = errors.New(f("machine faulted"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrOriginSyntax    = errors.New(f(".org syntax"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOperandCount    = errors.New(f("wrong operand count"))
	ErrOperandInvalid  = errors.New(f("operand invalid"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrDataInvalid     = errors.New(f("data value invalid"))
	ErrMnemonicInvalid = errors.New(f("mnemonic invalid"))
)

// ErrAddress carries the offending memory address alongside ErrOutOfBounds.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address %#04x", int(ea))
}

// ErrCode carries the raw instruction word that failed to decode.
type ErrCode Code

func (ec ErrCode) Error() string {
	return f("bad instruction word %#04x", uint16(ec))
}

func (ec ErrCode) Is(err error) (ok bool) {
	_, ok = err.(ErrCode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
