package core_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/rv32lab/rv32sim/internal/rvasm"
	"github.com/rv32lab/rv32sim/pkg/core"
	"github.com/rv32lab/rv32sim/pkg/execrv32i"
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/regfile"
)

func assembleInto(t *testing.T, mem *memory.Memory, base memory.Address, src string) {
	t.Helper()
	words, err := rvasm.Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for i, w := range words {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, w)
		if err := mem.WriteWord(base.Add(uint64(i*4)), buf); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
}

func newCore(t *testing.T) (*core.Core, *regfile.IntRegFile) {
	t.Helper()
	mem, err := memory.New(0, 0x10000, 0x1000)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	regs, err := regfile.NewInt(32, 32, binary.LittleEndian)
	if err != nil {
		t.Fatalf("regfile.NewInt: %v", err)
	}
	c := core.New(mem, regs, inst.New(nil), execrv32i.New())
	return c, regs
}

func TestStepRetiresADDI(t *testing.T) {
	c, regs := newCore(t)
	assembleInto(t, c.Mem, 0, "addi a0, zero, 5\n")
	outcome := c.Step()
	if outcome.Status != core.Retired {
		t.Fatalf("Status = %v, want Retired (err=%v)", outcome.Status, outcome.Err)
	}
	v, err := regs.ReadValueSigned(10)
	if err != nil || v != 5 {
		t.Fatalf("a0 = (%d, %v), want (5, nil)", v, err)
	}
}

func TestStepRunsSmallLoop(t *testing.T) {
	c, regs := newCore(t)
	// a0 counts down from 3 to 0, then EBREAKs.
	src := `
	addi a0, zero, 3
loop:
	addi a0, a0, -1
	bne a0, zero, loop
	ebreak
`
	assembleInto(t, c.Mem, 0, src)
	var last core.Outcome
	for i := 0; i < 100; i++ {
		last = c.Step()
		if last.Status != core.Retired {
			break
		}
	}
	if last.Status != core.Trapped {
		t.Fatalf("Status = %v, want Trapped (err=%v)", last.Status, last.Err)
	}
	v, err := regs.ReadValueSigned(10)
	if err != nil || v != 0 {
		t.Fatalf("a0 = (%d, %v), want (0, nil)", v, err)
	}
}

func TestStepFaultsOnUndecodableWord(t *testing.T) {
	c, _ := newCore(t)
	if err := c.Mem.WriteWord(0, []byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	outcome := c.Step()
	if outcome.Status != core.Faulted {
		t.Fatalf("Status = %v, want Faulted", outcome.Status)
	}
}

func TestStepPCUnchangedAfterTrap(t *testing.T) {
	c, regs := newCore(t)
	assembleInto(t, c.Mem, 0, "ecall\n")
	outcome := c.Step()
	if outcome.Status != core.Trapped {
		t.Fatalf("Status = %v, want Trapped", outcome.Status)
	}
	pc, _ := regs.GetPCValue()
	if pc != 0 {
		t.Fatalf("pc = %d, want 0 (unchanged by the trap)", pc)
	}
}

func TestStepWithNoUnitsFaultsAsIllegal(t *testing.T) {
	mem, err := memory.New(0, 0x1000, 0x1000)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	regs, err := regfile.NewInt(32, 4, binary.LittleEndian)
	if err != nil {
		t.Fatalf("regfile.NewInt: %v", err)
	}
	assembleInto(t, mem, 0, "addi x0, x0, 0\n")
	c := core.New(mem, regs, inst.New(nil))
	outcome := c.Step()
	if outcome.Status != core.Faulted {
		t.Fatalf("Status = %v, want Faulted when no unit claims the opcode", outcome.Status)
	}
}
