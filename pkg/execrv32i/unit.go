// Package execrv32i implements the RV32I execution unit: given a decoded
// Instruction, it either claims and executes it (mutating the register
// file and/or memory and computing the next PC) or declines it, leaving
// all state unchanged.
package execrv32i

import (
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/regfile"
	"github.com/rv32lab/rv32sim/pkg/rverr"
)

// Unit is the execution-unit contract the core dispatches against. An
// implementation inspects Instruction.BaseOp; if it handles it, it returns
// accepted=true having already mutated state (or returns a non-nil err
// for an unhandled sub-encoding within a claimed opcode, or a *rverr.Trap
// for ECALL/EBREAK); if it does not recognize the opcode, it returns
// accepted=false, nil, leaving all state untouched.
type Unit interface {
	Execute(regs *regfile.IntRegFile, mem *memory.Memory, in *inst.Instruction) (accepted bool, err error)
}

// RV32I is the sole execution unit needed for the base integer ISA. It is
// the expected single-unit configuration the distilled spec anticipates;
// additional units (M, A, F, D, C, Zicsr extensions) can be added to the
// core's unit list without changing this one.
type RV32I struct{}

// New constructs the RV32I execution unit.
func New() *RV32I { return &RV32I{} }

func (u *RV32I) Execute(regs *regfile.IntRegFile, mem *memory.Memory, in *inst.Instruction) (bool, error) {
	switch in.BaseOp {
	case inst.OpImm:
		return true, u.execOpImm(regs, in)
	case inst.OpLUI:
		return true, u.execLUI(regs, in)
	case inst.OpAUIPC:
		return true, u.execAUIPC(regs, in)
	case inst.OpOp:
		return true, u.execOp(regs, in)
	case inst.OpJAL:
		return true, u.execJAL(regs, in)
	case inst.OpJALR:
		return true, u.execJALR(regs, in)
	case inst.OpBranch:
		return true, u.execBranch(regs, in)
	case inst.OpLoad:
		return true, u.execLoad(regs, mem, in)
	case inst.OpStore:
		return true, u.execStore(regs, mem, in)
	case inst.OpMiscMem:
		return true, u.execFence(regs, in)
	case inst.OpSystem:
		return true, u.execSystem(in)
	default:
		return false, nil
	}
}

// writeRd writes v to in.Rd, discarding writes to x0 per the RISC-V
// convention this abstraction's register file does not itself enforce
// (RegisterFile has no notion of a hardwired-zero register; the
// execution unit is responsible for honoring it, as the distilled spec's
// design notes require).
func writeRd(regs *regfile.IntRegFile, in *inst.Instruction, v uint32) error {
	if in.Rd == 0 {
		return nil
	}
	return regs.WriteValue(int(in.Rd), uint64(v))
}

func rv32(regs *regfile.IntRegFile, i uint32) (uint32, error) {
	v, err := regs.ReadValue(int(i), false)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// advancePC writes pc+4 as the default next-PC; callers that compute a
// different next PC call regs.SetPCValue themselves instead.
func advancePC(regs *regfile.IntRegFile, pc uint32) error {
	return regs.SetPCValue(uint64(pc + 4))
}

func illegal(addr memory.Address, msg string) error {
	return rverr.NewIllegalInst(uint64(addr), errString(msg))
}

type errString string

func (e errString) Error() string { return string(e) }
