package inst

import "errors"

var (
	errBadLength = errors.New("decoder requires exactly 4 bytes")
	errNot32Bit  = errors.New("bits [1:0] are not 0b11: only 32-bit encodings are supported")
)
