package execrv32i

import (
	"encoding/binary"
	"errors"

	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/regfile"
	"github.com/rv32lab/rv32sim/pkg/rverr"
)

// widthFromFunct3 decodes the access width in bytes from the low two bits
// of funct3, per "read/write 2^(funct3 & 0x3) bytes". A width code greater
// than 2 (i.e. an attempted 64-bit access) is illegal in RV32I.
func widthFromFunct3(funct3 uint32) (size int, ok bool) {
	code := funct3 & 0x3
	if code > 2 {
		return 0, false
	}
	return 1 << code, true
}

func targetAddress(rs1 uint32, imm int32) memory.Address {
	return memory.Address(uint64(rs1 + uint32(imm)))
}

// asInstError translates a misaligned-access MemoryError into the
// architectural MemMisalignedException; every other memory failure
// (out-of-range, write-allocation failure) propagates unchanged, per the
// distilled spec's propagation policy.
func asInstError(addr memory.Address, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, memory.ErrMisaligned) {
		return rverr.NewMemMisaligned(uint64(addr), err)
	}
	return err
}

func (u *RV32I) execLoad(regs *regfile.IntRegFile, mem *memory.Memory, in *inst.Instruction) error {
	size, ok := widthFromFunct3(in.Funct3)
	if !ok {
		return illegal(in.Addr, "LOAD width code > 2 is illegal in RV32I")
	}
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	addr := targetAddress(rs1, in.ImmI)
	data, err := mem.Read(addr, size)
	if err != nil {
		return asInstError(addr, err)
	}
	signed := (in.Funct3>>2)&1 == 0
	v := zeroPad(data, signed)
	if err := writeRd(regs, in, v); err != nil {
		return err
	}
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

func (u *RV32I) execStore(regs *regfile.IntRegFile, mem *memory.Memory, in *inst.Instruction) error {
	size, ok := widthFromFunct3(in.Funct3)
	if !ok {
		return illegal(in.Addr, "STORE width code > 2 is illegal in RV32I")
	}
	rs1, err := rv32(regs, in.Rs1)
	if err != nil {
		return err
	}
	rs2, err := rv32(regs, in.Rs2)
	if err != nil {
		return err
	}
	// STORE uses ImmS, not ImmI: the donor's immediate-field choice here
	// was a bug the distilled spec's design notes call out explicitly.
	addr := targetAddress(rs1, in.ImmS)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, rs2)
	if err := mem.Write(addr, size, buf[:size]); err != nil {
		return asInstError(addr, err)
	}
	pc, err := regs.GetPCValue()
	if err != nil {
		return err
	}
	return advancePC(regs, uint32(pc))
}

// zeroPad interprets a little-endian byte slice shorter than 4 bytes as a
// 32-bit value, sign- or zero-extending per signed.
func zeroPad(data []byte, signed bool) uint32 {
	if len(data) == 4 {
		return binary.LittleEndian.Uint32(data)
	}
	var buf [4]byte
	copy(buf[:], data)
	v := binary.LittleEndian.Uint32(buf[:])
	bits := uint(len(data)) * 8
	mask := uint32(1)<<bits - 1
	v &= mask
	if signed && v&((mask+1)>>1) != 0 {
		v |= ^mask
	}
	return v
}
