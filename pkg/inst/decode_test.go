package inst_test

import (
	"encoding/binary"
	"testing"

	"github.com/rv32lab/rv32sim/pkg/inst"
)

func encodeLE(word uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, word)
	return b
}

// addi x1, x2, -1 : imm=-1 (0xFFF), rs1=x2, funct3=000, rd=x1, opcode=0010011
func TestDecodeADDI(t *testing.T) {
	var word uint32
	word |= inst.OpImm << 2
	word |= 0b11
	word |= 1 << 7    // rd = x1
	word |= 0b000 << 12 // funct3 = ADDI
	word |= 2 << 15    // rs1 = x2
	word |= 0xFFF << 20 // imm = -1

	d := inst.New(nil)
	in, err := d.Decode(0x1000, encodeLE(word))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.BaseOp != inst.OpImm || in.Rd != 1 || in.Rs1 != 2 || in.Funct3 != 0b000 {
		t.Fatalf("unexpected decode: %+v", in)
	}
	if in.ImmI != -1 {
		t.Fatalf("ImmI = %d, want -1", in.ImmI)
	}
}

func TestDecodeRejectsNon32BitMarker(t *testing.T) {
	d := inst.New(nil)
	if _, err := d.Decode(0, encodeLE(0b00)); err == nil {
		t.Fatal("expected error for bits[1:0] != 0b11")
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	d := inst.New(nil)
	if _, err := d.Decode(0, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for a buffer that is not 4 bytes")
	}
}

// Branch immediate with bits set in the imm[11], imm[10:5] and imm[4:1]
// slices (imm[12] clear), verifying the OR
// (not AND) composition the decoder uses.
func TestDecodeBranchImmediateBitPlacement(t *testing.T) {
	// Encode a branch with target offset +4094 (0b111111111110, 12 low
	// bits of a 13-bit signed immediate, bit 0 always zero).
	offset := int32(4094)
	u := uint32(offset)
	var word uint32
	word |= inst.OpBranch << 2
	word |= 0b11
	word |= ((u >> 11) & 0x1) << 7
	word |= ((u >> 1) & 0xF) << 8
	word |= inst.Funct3BEQ << 12
	word |= 1 << 15
	word |= 2 << 20
	word |= ((u >> 5) & 0x3F) << 25
	word |= ((u >> 12) & 0x1) << 31

	d := inst.New(nil)
	in, err := d.Decode(0, encodeLE(word))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.ImmB != offset {
		t.Fatalf("ImmB = %d, want %d", in.ImmB, offset)
	}
}

// JAL immediate with a representative offset, verifying bit placement.
func TestDecodeJALImmediateBitPlacement(t *testing.T) {
	offset := int32(-1048576) // minimum representable 21-bit signed offset
	u := uint32(offset)
	var word uint32
	word |= inst.OpJAL << 2
	word |= 0b11
	word |= 5 << 7 // rd = x5
	word |= ((u >> 12) & 0xFF) << 12
	word |= ((u >> 11) & 0x1) << 20
	word |= ((u >> 1) & 0x3FF) << 21
	word |= ((u >> 20) & 0x1) << 31

	d := inst.New(nil)
	in, err := d.Decode(0, encodeLE(word))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.ImmJ != offset {
		t.Fatalf("ImmJ = %d, want %d", in.ImmJ, offset)
	}
	if in.Rd != 5 {
		t.Fatalf("Rd = %d, want 5", in.Rd)
	}
}

func TestDecodeLUIImmediateIsPreShifted(t *testing.T) {
	var word uint32
	word |= inst.OpLUI << 2
	word |= 0b11
	word |= 10 << 7     // rd = x10
	word |= 0x12345 << 12 // imm[31:12]

	d := inst.New(nil)
	in, err := d.Decode(0, encodeLE(word))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.ImmU != int32(0x12345000) {
		t.Fatalf("ImmU = 0x%x, want 0x12345000", uint32(in.ImmU))
	}
}
