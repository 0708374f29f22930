package mmio_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/mmio"
)

type fakeBackend struct {
	toGuest   []byte
	fromGuest []byte
	closed    bool
}

func (b *fakeBackend) TryRead() (byte, bool, error) {
	if len(b.toGuest) == 0 {
		return 0, false, nil
	}
	c := b.toGuest[0]
	b.toGuest = b.toGuest[1:]
	return c, true, nil
}

func (b *fakeBackend) TryWrite(c byte) (bool, error) {
	b.fromGuest = append(b.fromGuest, c)
	return true, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func TestUARTPollDeliversReceivedByte(t *testing.T) {
	backend := &fakeBackend{toGuest: []byte{'x'}}
	u := mmio.NewUART("console0", backend)

	if err := u.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	status, err := u.Read(mmio.RegStatus, 1)
	if err != nil || status[0]&mmio.StatusInReady == 0 {
		t.Fatalf("status = (%v, %v), want StatusInReady set", status, err)
	}
	in, err := u.Read(mmio.RegIn, 1)
	if err != nil || in[0] != 'x' {
		t.Fatalf("RegIn = (%v, %v), want 'x'", in, err)
	}
	// Reading RegIn clears the ready bit.
	status, _ = u.Read(mmio.RegStatus, 1)
	if status[0]&mmio.StatusInReady != 0 {
		t.Fatal("StatusInReady should clear after RegIn is read")
	}
}

func TestUARTWriteDrainsToBackendOnPoll(t *testing.T) {
	backend := &fakeBackend{}
	u := mmio.NewUART("console0", backend)

	if err := u.Write(mmio.RegOut, 1, []byte{'y'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	status, _ := u.Read(mmio.RegStatus, 1)
	if status[0]&mmio.StatusOutEmpty != 0 {
		t.Fatal("StatusOutEmpty should clear immediately after a write")
	}
	if err := u.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(backend.fromGuest) != 1 || backend.fromGuest[0] != 'y' {
		t.Fatalf("backend received %v, want ['y']", backend.fromGuest)
	}
	status, _ = u.Read(mmio.RegStatus, 1)
	if status[0]&mmio.StatusOutEmpty == 0 {
		t.Fatal("StatusOutEmpty should be set again once the backend accepted the byte")
	}
}

func TestUARTRejectsNonByteSizedAccess(t *testing.T) {
	u := mmio.NewUART("console0", &fakeBackend{})
	if _, err := u.Read(mmio.RegIn, 4); err == nil {
		t.Fatal("expected a 4-byte read to be rejected")
	}
}

func TestUARTCloseClosesBackend(t *testing.T) {
	backend := &fakeBackend{}
	u := mmio.NewUART("console0", backend)
	if err := u.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !backend.closed {
		t.Fatal("expected Close to reach the backend")
	}
}

func TestTimerMTimeAdvancesWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	tm := mmio.NewTimer("mtimer0", mock, 1_000_000)

	v0, err := tm.Read(mmio.RegMTime, 8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if u64(v0) != 0 {
		t.Fatalf("mtime = %d, want 0 before any time passes", u64(v0))
	}

	mock.Add(2 * time.Second)
	v1, err := tm.Read(mmio.RegMTime, 8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if u64(v1) != 2_000_000 {
		t.Fatalf("mtime = %d, want 2000000 after 2s at 1MHz", u64(v1))
	}
}

func TestTimerExpiredComparesAgainstMTimeCmp(t *testing.T) {
	mock := clock.NewMock()
	tm := mmio.NewTimer("mtimer0", mock, 1_000_000)

	cmp := make([]byte, 8)
	cmp[0] = 0x40 // 0x40 == 64 ticks
	if err := tm.Write(mmio.RegMTimeCmp, 8, cmp); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if tm.Expired() {
		t.Fatal("timer should not be expired before mtimecmp ticks elapse")
	}
	mock.Add(time.Second)
	if !tm.Expired() {
		t.Fatal("timer should be expired once mtime passes mtimecmp")
	}
}

func TestTimerMTimeIsReadOnly(t *testing.T) {
	tm := mmio.NewTimer("mtimer0", clock.NewMock(), 1_000_000)
	if err := tm.Write(mmio.RegMTime, 8, make([]byte, 8)); err == nil {
		t.Fatal("expected mtime write to be rejected")
	}
}

func u64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

type fakeDevice struct{ name string }

func (d *fakeDevice) Name() string                                     { return d.name }
func (d *fakeDevice) Read(offset uint64, size int) ([]byte, error)     { return make([]byte, size), nil }
func (d *fakeDevice) Write(offset uint64, size int, data []byte) error { return nil }

func TestRegistryAcceptsCompatibleDevice(t *testing.T) {
	r, err := mmio.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	reg, err := r.Register(&fakeDevice{name: "dev0"}, mmio.Manifest{Requires: ">= 1.0.0, < 2.0.0"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.ID.String() == "" {
		t.Fatal("expected a non-empty instance ID")
	}
	if len(r.Devices()) != 1 {
		t.Fatalf("Devices() = %d entries, want 1", len(r.Devices()))
	}
}

func TestRegistryRejectsIncompatibleDevice(t *testing.T) {
	r, err := mmio.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	_, err = r.Register(&fakeDevice{name: "dev0"}, mmio.Manifest{Requires: ">= 2.0.0"})
	if !errors.Is(err, mmio.ErrIncompatibleDevice) {
		t.Fatalf("err = %v, want ErrIncompatibleDevice", err)
	}
}

func TestRegistryAddToWiresRegionIntoMemory(t *testing.T) {
	mem, err := memory.New(0, 0x10000, 0x1000)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	r, err := mmio.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	dev := &fakeDevice{name: "dev0"}
	if _, err := r.AddTo(mem, 0x2000, 0x100, dev, mmio.Manifest{}); err != nil {
		t.Fatalf("AddTo: %v", err)
	}
	if _, err := mem.ReadByte(0x2000); err != nil {
		t.Fatalf("ReadByte through the wired MMIO region: %v", err)
	}
}
