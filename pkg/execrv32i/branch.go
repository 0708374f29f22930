package execrv32i

import (
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/regfile"
)

func (u *RV32I) execJAL(regs *regfile.IntRegFile, in *inst.Instruction) error {
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	if err := writeRd(regs, in, uint32(pc)+4); err != nil {
		return err
	}
	nextPC := uint32(pc) + uint32(in.ImmJ)
	return regs.SetPCValue(uint64(nextPC))
}

func (u *RV32I) execJALR(regs *regfile.IntRegFile, in *inst.Instruction) error {
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	nextPC := (rs1 + uint32(in.ImmI)) &^ uint32(1)
	if err := writeRd(regs, in, uint32(pc)+4); err != nil {
		return err
	}
	return regs.SetPCValue(uint64(nextPC))
}

func (u *RV32I) execBranch(regs *regfile.IntRegFile, in *inst.Instruction) error {
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	rs2, err := rv32(regs, in.Rs2)
	if err != nil {
		return err
	}
	var taken bool
	switch in.Funct3 {
	case inst.Funct3BEQ:
		taken = rs1 == rs2
	case inst.Funct3BNE:
		taken = rs1 != rs2
	case inst.Funct3BLT:
		taken = int32(rs1) < int32(rs2)
	case inst.Funct3BGE:
		taken = int32(rs1) >= int32(rs2)
	case inst.Funct3BLTU:
		taken = rs1 < rs2
	case inst.Funct3BGEU:
		taken = rs1 >= rs2
	default:
		return illegal(in.Addr, "unrecognized BRANCH funct3")
	}
	next := uint32(pc) + 4
	if taken {
		next = uint32(pc) + uint32(in.ImmB)
	}
	return regs.SetPCValue(uint64(next))
}
