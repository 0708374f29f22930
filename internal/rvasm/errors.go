package rvasm

import "errors"

var (
	// ErrCannotEncode indicates a statement could not be turned into a
	// 32-bit word, e.g. because an operand references a missing label.
	ErrCannotEncode = errors.New("rvasm: cannot encode instruction")

	// ErrOutOfRange indicates an immediate does not fit in the number of
	// bits its encoding allows.
	ErrOutOfRange = errors.New("rvasm: immediate out of range")

	// ErrUnknownMnemonic indicates a line's first token is not a
	// recognized instruction or directive name.
	ErrUnknownMnemonic = errors.New("rvasm: unknown mnemonic")

	// ErrUnknownRegister indicates an operand naming a register did not
	// match x0-x31 or one of the ABI aliases.
	ErrUnknownRegister = errors.New("rvasm: unknown register")

	// ErrBadOperands indicates a mnemonic received the wrong number or
	// shape of operands.
	ErrBadOperands = errors.New("rvasm: malformed operand list")
)
