package chip8

import (
	"errors"
	"fmt"
)

var (
	/// ErrImageTooLarge is returned when an image would be written past the
	/// end of memory.
	///
	ErrImageTooLarge = errors.New("image too large")

	/// ErrStackUnderflow is returned by RET with an empty call stack.
	///
	ErrStackUnderflow = errors.New("stack underflow")

	/// ErrStackOverflow is returned by CALL with a full call stack.
	///
	ErrStackOverflow = errors.New("stack overflow")
)

/// UnsupportedOpcodeError is returned by Step when the fetched instruction
/// matches no known operation.
///
type UnsupportedOpcodeError struct {
	/// Opcode is the raw instruction word.
	///
	Opcode uint16

	/// Address is where the instruction was fetched from.
	///
	Address uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode %04X at %04X", e.Opcode, e.Address)
}
