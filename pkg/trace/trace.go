// Package trace provides donor-style human-readable dumps of core state
// and a fast content hash of a memory region, for verbose/step-debug
// output in the drivers.
package trace

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/regfile"
)

// RegFileString renders a register file the way the donor VM's String
// method rendered its GPR array: "{PC:<pc> GPR:[...]}".
func RegFileString(regs *regfile.IntRegFile) string {
	pc, err := regs.GetPCValue()
	if err != nil {
		return fmt.Sprintf("{PC:<error: %s>}", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "{PC:%d GPR:[", pc)
	for i := 0; i < regs.Count(); i++ {
		if i == regs.PCIndex() {
			continue
		}
		v, err := regs.ReadValue(i, false)
		if err != nil {
			continue
		}
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "x%d:%d", i, v)
	}
	b.WriteString("]}")
	return b.String()
}

// Disassemble renders a minimal mnemonic form of in, for verbose tracing.
// It is not a full disassembler (no pseudo-instruction folding, no symbol
// resolution), in the role the donor's vm.Disassemble played for its flat
// opcode space. Neither driver calls it; rv32run's -v trace prints the
// register file only.
func Disassemble(in *inst.Instruction) string {
	switch in.BaseOp {
	case inst.OpImm:
		return fmt.Sprintf("op-imm x%d, x%d, %d (funct3=%03b)", in.Rd, in.Rs1, in.ImmI, in.Funct3)
	case inst.OpLUI:
		return fmt.Sprintf("lui x%d, %d", in.Rd, in.ImmU)
	case inst.OpAUIPC:
		return fmt.Sprintf("auipc x%d, %d", in.Rd, in.ImmU)
	case inst.OpOp:
		return fmt.Sprintf("op x%d, x%d, x%d (funct3=%03b funct7=%07b)", in.Rd, in.Rs1, in.Rs2, in.Funct3, in.Funct7)
	case inst.OpJAL:
		return fmt.Sprintf("jal x%d, %d", in.Rd, in.ImmJ)
	case inst.OpJALR:
		return fmt.Sprintf("jalr x%d, x%d, %d", in.Rd, in.Rs1, in.ImmI)
	case inst.OpBranch:
		return fmt.Sprintf("branch x%d, x%d, %d (funct3=%03b)", in.Rs1, in.Rs2, in.ImmB, in.Funct3)
	case inst.OpLoad:
		return fmt.Sprintf("load x%d, %d(x%d) (funct3=%03b)", in.Rd, in.ImmI, in.Rs1, in.Funct3)
	case inst.OpStore:
		return fmt.Sprintf("store x%d, %d(x%d) (funct3=%03b)", in.Rs2, in.ImmS, in.Rs1, in.Funct3)
	case inst.OpMiscMem:
		return "fence"
	case inst.OpSystem:
		if in.ImmI == 0 {
			return "ecall"
		}
		return "ebreak"
	default:
		return fmt.Sprintf("<unknown baseOpcode=0x%02x raw=0x%08x>", in.BaseOp, in.Raw)
	}
}

// RegionHash returns the xxhash64 of size bytes of region starting at
// addr, so a dump can identify a region's contents without printing them
// all; rv32dump -m prints it for each region.
func RegionHash(region memory.MemoryRegion, addr memory.Address, size int) (uint64, error) {
	data, err := region.Read(addr, size)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
