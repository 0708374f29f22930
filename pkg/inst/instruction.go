// Package inst implements the RV32I instruction record and decoder: a pure
// function from (PC, 4 raw bytes) to a structured Instruction, with no
// side effects and no dependency on register file or memory state.
package inst

import "github.com/rv32lab/rv32sim/pkg/memory"

// Base opcodes, i.e. bits [6:2] of a 32-bit RISC-V encoding, after
// verifying bits [1:0] == 0b11. Values match the standard RISC-V base
// opcode map (the same table the LMMilewski-riscv-emu decoder in this
// project's reference pack keys off of).
const (
	OpLoad     = uint32(0x00)
	OpMiscMem  = uint32(0x03)
	OpImm      = uint32(0x04)
	OpAUIPC    = uint32(0x05)
	OpStore    = uint32(0x08)
	OpOp       = uint32(0x0C)
	OpLUI      = uint32(0x0D)
	OpBranch   = uint32(0x18)
	OpJALR     = uint32(0x19)
	OpJAL      = uint32(0x1B)
	OpSystem   = uint32(0x1C)
)

// Funct3 values used by more than one opcode group below.
const (
	Funct3ADDI  = uint32(0b000)
	Funct3SLTI  = uint32(0b010)
	Funct3SLTIU = uint32(0b011)
	Funct3XORI  = uint32(0b100)
	Funct3ORI   = uint32(0b110)
	Funct3ANDI  = uint32(0b111)
	Funct3SLLI  = uint32(0b001)
	Funct3SRxI  = uint32(0b101) // SRLI or SRAI, disambiguated by funct7

	Funct3ADDSUB = uint32(0b000)
	Funct3SLL    = uint32(0b001)
	Funct3SLT    = uint32(0b010)
	Funct3SLTU   = uint32(0b011)
	Funct3XOR    = uint32(0b100)
	Funct3SRx    = uint32(0b101) // SRL or SRA, disambiguated by funct7
	Funct3OR     = uint32(0b110)
	Funct3AND    = uint32(0b111)

	Funct3BEQ  = uint32(0b000)
	Funct3BNE  = uint32(0b001)
	Funct3BLT  = uint32(0b100)
	Funct3BGE  = uint32(0b101)
	Funct3BLTU = uint32(0b110)
	Funct3BGEU = uint32(0b111)
)

// Funct7 values that disambiguate ADD/SUB and SRL/SRA.
const (
	Funct7Zero = uint32(0b0000000)
	Funct7Alt  = uint32(0b0100000) // SUB, SRA, SRAI
)

// Instruction is the immutable, decoded form of one 32-bit RV32I word.
type Instruction struct {
	Addr    memory.Address
	Raw     uint32
	BaseOp  uint32
	Rd      uint32
	Rs1     uint32
	Rs2     uint32
	Funct3  uint32
	Funct7  uint32
	ImmI    int32
	ImmS    int32
	ImmB    int32
	ImmU    int32
	ImmJ    int32
}
