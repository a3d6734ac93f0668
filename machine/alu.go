package machine

// The ALU is a set of pure functions over two 8-bit operands, producing a
// result and the flags it implies. It holds no state between calls.
//
// Arithmetic wraps modulo the register width and reports the wrap through
// the Overflow flag; wraparound is never a fault.

// resultFlags derives the Zero and Negative flags from a result.
func resultFlags(value uint8, overflow bool) (fl Flags) {
	fl.Zero = value == 0
	fl.Negative = (value & 0x80) != 0
	fl.Overflow = overflow

	return
}

// AluAdd returns a+b with two's-complement wraparound.
func AluAdd(a, b uint8) (out uint8, fl Flags) {
	sum := uint16(a) + uint16(b)
	out = uint8(sum)
	fl = resultFlags(out, sum > 0xff)

	return
}

// AluSub returns a-b, computed as the two's-complement addition of the
// negation. Overflow reports the borrow.
func AluSub(a, b uint8) (out uint8, fl Flags) {
	out = a + (^b + 1)
	fl = resultFlags(out, a < b)

	return
}

// AluMul returns a*b modulo the register width.
func AluMul(a, b uint8) (out uint8, fl Flags) {
	prod := uint16(a) * uint16(b)
	out = uint8(prod)
	fl = resultFlags(out, prod > 0xff)

	return
}

// AluDiv returns a/b, truncated. Division by zero is the one ALU fault.
func AluDiv(a, b uint8) (out uint8, fl Flags, err error) {
	if b == 0 {
		err = ErrDivideByZero
		return
	}

	out = a / b
	fl = resultFlags(out, false)

	return
}
