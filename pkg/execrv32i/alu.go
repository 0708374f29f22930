package execrv32i

import (
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/regfile"
)

func (u *RV32I) execOpImm(regs *regfile.IntRegFile, in *inst.Instruction) error {
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	imm := uint32(in.ImmI)
	var result uint32
	switch in.Funct3 {
	case inst.Funct3ADDI:
		result = rs1 + imm
	case inst.Funct3SLTI:
		result = boolToU32(int32(rs1) < in.ImmI)
	case inst.Funct3SLTIU:
		result = boolToU32(rs1 < imm)
	case inst.Funct3XORI:
		result = rs1 ^ imm
	case inst.Funct3ORI:
		result = rs1 | imm
	case inst.Funct3ANDI:
		result = rs1 & imm
	case inst.Funct3SLLI:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "SLLI requires imm[11:5] == 0")
		}
		result = rs1 << (in.Rs2 & 0x1F)
	case inst.Funct3SRxI:
		shamt := in.Rs2 & 0x1F
		switch in.Funct7 {
		case inst.Funct7Zero: // SRLI
			result = rs1 >> shamt
		case inst.Funct7Alt: // SRAI
			result = uint32(int32(rs1) >> shamt)
		default:
			return illegal(in.Addr, "SRLI/SRAI require imm[11:5] in {0000000, 0100000}")
		}
	default:
		return illegal(in.Addr, "unrecognized OP-IMM funct3")
	}
	if err := writeRd(regs, in, result); err != nil {
		return err
	}
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

func (u *RV32I) execLUI(regs *regfile.IntRegFile, in *inst.Instruction) error {
	if err := writeRd(regs, in, uint32(in.ImmU)); err != nil {
		return err
	}
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

func (u *RV32I) execAUIPC(regs *regfile.IntRegFile, in *inst.Instruction) error {
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	if err := writeRd(regs, in, uint32(pc)+uint32(in.ImmU)); err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

func (u *RV32I) execOp(regs *regfile.IntRegFile, in *inst.Instruction) error {
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	rs2, err := rv32(regs, in.Rs2)
	if err != nil {
		return err
	}
	var result uint32
	switch in.Funct3 {
	case inst.Funct3ADDSUB:
		switch in.Funct7 {
		case inst.Funct7Zero:
			result = rs1 + rs2
		case inst.Funct7Alt:
			result = rs1 - rs2
		default:
			return illegal(in.Addr, "ADD/SUB require funct7 in {0000000, 0100000}")
		}
	case inst.Funct3SLL:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "SLL requires funct7 == 0000000")
		}
		result = rs1 << (rs2 & 0x1F)
	case inst.Funct3SLT:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "SLT requires funct7 == 0000000")
		}
		result = boolToU32(int32(rs1) < int32(rs2))
	case inst.Funct3SLTU:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "SLTU requires funct7 == 0000000")
		}
		result = boolToU32(rs1 < rs2)
	case inst.Funct3XOR:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "XOR requires funct7 == 0000000")
		}
		result = rs1 ^ rs2
	case inst.Funct3SRx:
		switch in.Funct7 {
		case inst.Funct7Zero: // SRL
			result = rs1 >> (rs2 & 0x1F)
		case inst.Funct7Alt: // SRA
			result = uint32(int32(rs1) >> (rs2 & 0x1F))
		default:
			return illegal(in.Addr, "SRL/SRA require funct7 in {0000000, 0100000}")
		}
	case inst.Funct3OR:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "OR requires funct7 == 0000000")
		}
		result = rs1 | rs2
	case inst.Funct3AND:
		if in.Funct7 != inst.Funct7Zero {
			return illegal(in.Addr, "AND requires funct7 == 0000000")
		}
		result = rs1 & rs2
	default:
		return illegal(in.Addr, "unrecognized OP funct3")
	}
	if err := writeRd(regs, in, result); err != nil {
		return err
	}
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
