package execrv32i

import (
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/regfile"
	"github.com/rv32lab/rv32sim/pkg/rverr"
)

// execFence handles MISC_MEM (FENCE): a no-op in this single-hart,
// strictly sequential core, but it still advances the PC like any other
// retired instruction.
func (u *RV32I) execFence(regs *regfile.IntRegFile, in *inst.Instruction) error {
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

// execSystem handles ECALL (imm_i == 0) and EBREAK (imm_i == 1). Both
// raise a Trap rather than mutating state; per the distilled spec, the PC
// is NOT advanced when a trap escapes — the write-back that every other
// opcode performs at the end of Execute simply never happens here.
func (u *RV32I) execSystem(in *inst.Instruction) error {
	switch in.ImmI {
	case 0:
		return &rverr.Trap{Kind: rverr.ECALLTrap, Addr: uint64(in.Addr), Raw: in.Raw}
	case 1:
		return &rverr.Trap{Kind: rverr.EBREAKTrap, Addr: uint64(in.Addr), Raw: in.Raw}
	default:
		return illegal(in.Addr, "SYSTEM requires imm_i in {0, 1} (ECALL, EBREAK); CSR instructions are out of scope")
	}
}
