package rvasm

import (
	"strconv"
	"strings"
)

// abiNames maps the conventional RISC-V calling-convention register
// aliases to their xN index, so fixtures can read either "x10" or "a0".
var abiNames = map[string]uint32{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// parseRegister resolves name (either "xN" or an ABI alias) to a 0-31
// register index.
func parseRegister(name string) (uint32, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(name, "x") {
		n, err := strconv.ParseUint(name[1:], 10, 32)
		if err != nil || n > 31 {
			return 0, ErrUnknownRegister
		}
		return uint32(n), nil
	}
	if idx, ok := abiNames[name]; ok {
		return idx, nil
	}
	return 0, ErrUnknownRegister
}
