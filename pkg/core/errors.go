package core

import "errors"

var errUnclaimed = errors.New("no execution unit accepted this base opcode")
