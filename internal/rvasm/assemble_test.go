package rvasm_test

import (
	"strings"
	"testing"

	"github.com/rv32lab/rv32sim/internal/rvasm"
	"github.com/rv32lab/rv32sim/pkg/inst"
)

func decode(t *testing.T, word uint32) *inst.Instruction {
	t.Helper()
	buf := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	in, err := inst.New(nil).Decode(0, buf)
	if err != nil {
		t.Fatalf("Decode(0x%08x): %v", word, err)
	}
	return in
}

func TestAssembleADDI(t *testing.T) {
	words, err := rvasm.Assemble(strings.NewReader("addi a0, zero, 41\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
	in := decode(t, words[0])
	if in.BaseOp != inst.OpImm || in.Rd != 10 || in.Rs1 != 0 || in.ImmI != 41 {
		t.Fatalf("unexpected decode: %+v", in)
	}
}

func TestAssembleResolvesForwardBranchLabel(t *testing.T) {
	src := `
	bne a0, zero, skip
	addi a1, zero, 1
skip:
	addi a2, zero, 2
`
	words, err := rvasm.Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("len(words) = %d, want 3", len(words))
	}
	in := decode(t, words[0])
	if in.BaseOp != inst.OpBranch || in.ImmB != 8 {
		t.Fatalf("branch target = %d, want +8 (skip is two instructions ahead)", in.ImmB)
	}
}

func TestAssembleResolvesBackwardJumpLabel(t *testing.T) {
	src := `
loop:
	addi a0, a0, -1
	bne a0, zero, loop
	ebreak
`
	words, err := rvasm.Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("len(words) = %d, want 3", len(words))
	}
	in := decode(t, words[1])
	if in.BaseOp != inst.OpBranch || in.ImmB != -4 {
		t.Fatalf("branch target = %d, want -4 (loop is one instruction back)", in.ImmB)
	}
}

func TestAssembleLoadStoreMemOperand(t *testing.T) {
	words, err := rvasm.Assemble(strings.NewReader("sw a0, 8(sp)\nlw a1, 8(sp)\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	sw := decode(t, words[0])
	if sw.BaseOp != inst.OpStore || sw.Rs1 != 2 || sw.Rs2 != 10 || sw.ImmS != 8 {
		t.Fatalf("unexpected SW decode: %+v", sw)
	}
	lw := decode(t, words[1])
	if lw.BaseOp != inst.OpLoad || lw.Rd != 11 || lw.Rs1 != 2 || lw.ImmI != 8 {
		t.Fatalf("unexpected LW decode: %+v", lw)
	}
}

func TestAssembleWordDirective(t *testing.T) {
	words, err := rvasm.Assemble(strings.NewReader(".word 0xCAFEBABE\n"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 1 || words[0] != 0xCAFEBABE {
		t.Fatalf("words = %v, want [0xCAFEBABE]", words)
	}
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := rvasm.Assemble(strings.NewReader("frobnicate a0\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestAssembleRejectsUndefinedLabel(t *testing.T) {
	_, err := rvasm.Assemble(strings.NewReader("jal ra, nowhere\n"))
	if err == nil {
		t.Fatal("expected an error for a reference to an undefined label")
	}
}

func TestAssembleSkipsCommentsAndBlankLines(t *testing.T) {
	src := "# a full-line comment\n\naddi a0, zero, 1 # trailing comment\n"
	words, err := rvasm.Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1", len(words))
	}
}

func TestAssembleBytesIsLittleEndian(t *testing.T) {
	raw, err := rvasm.AssembleBytes(strings.NewReader(".word 0x01020304\n"))
	if err != nil {
		t.Fatalf("AssembleBytes: %v", err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if string(raw) != string(want) {
		t.Fatalf("AssembleBytes = % x, want % x", raw, want)
	}
}
