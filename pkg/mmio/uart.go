// Package mmio implements the concrete memory-mapped devices this
// emulator ships: a UART-style console and a CLINT-style timer, plus a
// Registry that assigns device instance IDs and checks API-compatibility
// declarations before a device is wired into a Memory.
package mmio

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"
)

// UART register layout, relative to the region's base address. One byte
// each, matching the donor SerialTTY's single-byte in/out/status
// registers.
const (
	RegIn     = 0 // byte: next received byte
	RegOut    = 1 // byte: next byte to transmit
	RegStatus = 2 // byte: status bits below
)

// Status bits, renamed from the donor's TTYIn/TTYOut but serving the same
// purpose: RegIn is valid / RegOut has been drained.
const (
	StatusInReady  = 1 << iota // a received byte is waiting in RegIn
	StatusOutEmpty             // the transmit register has been drained and can accept a new byte
)

// ErrDetach indicates the UART's backing transport went away. It wraps
// the donor's ErrTTYDetach naming.
var ErrDetach = errors.New("mmio: uart: backend detached")

// Backend is the transport a UART talks to: one byte in, one byte out,
// non-blocking enough to be polled from Poll without stalling the
// core for long.
type Backend interface {
	// TryRead returns a received byte if one is available.
	TryRead() (b byte, ok bool, err error)
	// TryWrite delivers b to the transport if it can accept one right now.
	TryWrite(b byte) (ok bool, err error)
	Close() error
}

// UART is a memory-mapped serial console: one input register, one output
// register, one status register, all one byte wide.
type UART struct {
	name    string
	backend Backend

	in     byte
	out    byte
	status byte
}

// NewUART wraps backend as a named MMIO device.
func NewUART(name string, backend Backend) *UART {
	return &UART{name: name, backend: backend, status: StatusOutEmpty}
}

func (u *UART) Name() string { return u.name }

// Poll drains one byte to the backend if one is pending, and pulls one
// byte from the backend if the input register is empty. It is meant to be
// called once per Core.Step from the driver loop, mirroring the donor's
// InterruptPending poll-the-connection pattern but without conflating
// polling with interrupt delivery (this core has no interrupt controller).
func (u *UART) Poll() error {
	if u.status&StatusOutEmpty == 0 {
		ok, err := u.backend.TryWrite(u.out)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrDetach, err)
		}
		if ok {
			u.status |= StatusOutEmpty
		}
	}
	if u.status&StatusInReady == 0 {
		b, ok, err := u.backend.TryRead()
		if err != nil {
			return fmt.Errorf("%w: %s", ErrDetach, err)
		}
		if ok {
			u.in = b
			u.status |= StatusInReady
		}
	}
	return nil
}

func (u *UART) Read(offset uint64, size int) ([]byte, error) {
	if size != 1 {
		return nil, fmt.Errorf("mmio: uart: only byte-sized access is supported")
	}
	switch offset {
	case RegIn:
		u.status &^= StatusInReady
		return []byte{u.in}, nil
	case RegOut:
		return []byte{u.out}, nil
	case RegStatus:
		return []byte{u.status}, nil
	default:
		return nil, fmt.Errorf("mmio: uart: no register at offset %d", offset)
	}
}

func (u *UART) Write(offset uint64, size int, data []byte) error {
	if size != 1 {
		return fmt.Errorf("mmio: uart: only byte-sized access is supported")
	}
	switch offset {
	case RegOut:
		u.out = data[0]
		u.status &^= StatusOutEmpty
		return nil
	case RegIn, RegStatus:
		return fmt.Errorf("mmio: uart: register at offset %d is read-only", offset)
	default:
		return fmt.Errorf("mmio: uart: no register at offset %d", offset)
	}
}

// Close releases the backing transport.
func (u *UART) Close() error { return u.backend.Close() }

// tcpBackend is a direct descendant of the donor's SerialTTY: a driver
// waits for a single controlling TCP connection to attach to the console,
// then every byte read/written on that connection is one guest byte.
type tcpBackend struct {
	conn net.Conn
}

// NewTCPUART waits for a controlling TCP connection on 127.0.0.1 (an
// ephemeral port, logged so the operator can attach) and returns a UART
// wired to it. This is the donor's TTYAcceptConn pattern, generalized
// from the RiSC-32 VM's single TTY device to the named-device model.
func NewTCPUART(name string) (*UART, error) {
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	log.Printf("mmio: %s: waiting for console to attach on %s/tcp...", name, nl.Addr())
	conn, err := nl.Accept()
	if err != nil {
		return nil, err
	}
	return NewUART(name, &tcpBackend{conn: conn}), nil
}

func (b *tcpBackend) TryRead() (byte, bool, error) {
	b.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	var c [1]byte
	if _, err := b.conn.Read(c[:]); err != nil {
		if strings.HasSuffix(err.Error(), "i/o timeout") {
			return 0, false, nil
		}
		return 0, false, err
	}
	return c[0], true, nil
}

func (b *tcpBackend) TryWrite(c byte) (bool, error) {
	b.conn.SetWriteDeadline(time.Now().Add(time.Millisecond))
	if _, err := b.conn.Write([]byte{c}); err != nil {
		if strings.HasSuffix(err.Error(), "i/o timeout") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *tcpBackend) Close() error { return b.conn.Close() }
