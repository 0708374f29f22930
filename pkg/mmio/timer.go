package mmio

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer register layout: two 64-bit little-endian registers, mtime at
// offset 0 and mtimecmp at offset 8, modeled on the RISC-V CLINT
// registers of the same names but not at the CLINT's offsets (without the
// interrupt-delivery half, which needs a CSR/interrupt controller this
// core does not have).
const (
	RegMTime     = 0
	RegMTimeCmp  = 8
	timerRegSize = 16
)

// Timer is a memory-mapped mtime/mtimecmp pair. mtime reflects an
// injected clock.Clock's elapsed time since the timer was created, scaled
// by tickHz; tests inject a clock.NewMock() to drive mtime deterministically
// instead of sleeping.
type Timer struct {
	name     string
	clock    clock.Clock
	started  time.Time
	tickHz   uint64
	mtimecmp uint64
}

// NewTimer constructs a Timer named name, ticking at tickHz ticks per
// second of clk's notion of time.
func NewTimer(name string, clk clock.Clock, tickHz uint64) *Timer {
	if tickHz == 0 {
		tickHz = 1_000_000 // 1 MHz, a common CLINT tick rate
	}
	return &Timer{name: name, clock: clk, started: clk.Now(), tickHz: tickHz}
}

func (t *Timer) Name() string { return t.name }

func (t *Timer) mtime() uint64 {
	elapsed := t.clock.Now().Sub(t.started)
	return uint64(elapsed.Seconds() * float64(t.tickHz))
}

func (t *Timer) Read(offset uint64, size int) ([]byte, error) {
	if size != 8 {
		return nil, fmt.Errorf("mmio: timer: only 8-byte access is supported")
	}
	buf := make([]byte, 8)
	switch offset {
	case RegMTime:
		binary.LittleEndian.PutUint64(buf, t.mtime())
	case RegMTimeCmp:
		binary.LittleEndian.PutUint64(buf, t.mtimecmp)
	default:
		return nil, fmt.Errorf("mmio: timer: no register at offset %d", offset)
	}
	return buf, nil
}

func (t *Timer) Write(offset uint64, size int, data []byte) error {
	if size != 8 {
		return fmt.Errorf("mmio: timer: only 8-byte access is supported")
	}
	switch offset {
	case RegMTime:
		return fmt.Errorf("mmio: timer: mtime is read-only")
	case RegMTimeCmp:
		t.mtimecmp = binary.LittleEndian.Uint64(data)
		return nil
	default:
		return fmt.Errorf("mmio: timer: no register at offset %d", offset)
	}
}

// Expired reports whether mtime has reached or passed mtimecmp. This core
// has no interrupt controller, so Expired is only useful for a program
// that polls it directly (or for a driver that wants to log a timeout),
// never for raising a trap on its own.
func (t *Timer) Expired() bool {
	return t.mtime() >= t.mtimecmp
}
