package regfile_test

import (
	"encoding/binary"
	"testing"

	"github.com/rv32lab/rv32sim/pkg/regfile"
)

func TestWriteValueAndReadValueRoundTrip(t *testing.T) {
	f, err := regfile.New(32, 32, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.WriteValue(5, 0xFFFFFFFE); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	unsigned, err := f.ReadValue(5, false)
	if err != nil || unsigned != 0xFFFFFFFE {
		t.Fatalf("ReadValue(unsigned) = (0x%x, %v), want (0xFFFFFFFE, nil)", unsigned, err)
	}
	signed, err := f.ReadValueSigned(5)
	if err != nil || signed != -2 {
		t.Fatalf("ReadValueSigned = (%d, %v), want (-2, nil)", signed, err)
	}
}

func TestWriteSignExtendsShortBuffer(t *testing.T) {
	f, err := regfile.New(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Write(1, []byte{0xFF}, true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := f.ReadValue(1, false)
	if err != nil || v != 0xFFFFFFFF {
		t.Fatalf("ReadValue = (0x%x, %v), want (0xFFFFFFFF, nil)", v, err)
	}
}

func TestWriteZeroExtendsShortBufferWhenUnsigned(t *testing.T) {
	f, err := regfile.New(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Write(1, []byte{0xFF}, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := f.ReadValue(1, false)
	if err != nil || v != 0x000000FF {
		t.Fatalf("ReadValue = (0x%x, %v), want (0xFF, nil)", v, err)
	}
}

func TestIndexOutOfRangeFails(t *testing.T) {
	f, err := regfile.New(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Read(4); err == nil {
		t.Fatal("expected out-of-range read to fail")
	}
	if _, err := f.Read(-1); err == nil {
		t.Fatal("expected negative index read to fail")
	}
}

func TestWriteTooLongFails(t *testing.T) {
	f, err := regfile.New(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Write(0, []byte{1, 2, 3, 4, 5}, false); err == nil {
		t.Fatal("expected overlong write to fail")
	}
}

func TestIntRegFilePCDefaultsToLastIndex(t *testing.T) {
	f, err := regfile.NewInt(32, 32, binary.LittleEndian)
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	if f.PCIndex() != 31 {
		t.Fatalf("PCIndex() = %d, want 31", f.PCIndex())
	}
	if err := f.SetPCValue(0x80000000); err != nil {
		t.Fatalf("SetPCValue: %v", err)
	}
	v, err := f.GetPCValue()
	if err != nil || v != 0x80000000 {
		t.Fatalf("GetPCValue = (0x%x, %v), want (0x80000000, nil)", v, err)
	}
}

func TestCopyRegisterIsByteExact(t *testing.T) {
	f, err := regfile.New(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.WriteValue(0, 0x12345678); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	if err := f.CopyRegister(1, 0); err != nil {
		t.Fatalf("CopyRegister: %v", err)
	}
	v, err := f.ReadValue(1, false)
	if err != nil || v != 0x12345678 {
		t.Fatalf("ReadValue(1) = (0x%x, %v), want (0x12345678, nil)", v, err)
	}
}
