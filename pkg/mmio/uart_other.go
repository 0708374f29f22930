//go:build !unix

package mmio

import "errors"

// NewTermUART is unavailable outside Unix build targets; use NewTCPUART
// instead.
func NewTermUART(name string) (*UART, error) {
	return nil, errors.New("mmio: raw-terminal UART backend requires a unix build target; use NewTCPUART")
}
