package inst

import (
	"encoding/binary"

	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/rverr"
)

// Decoder turns a 4-byte buffer into an Instruction. It is stateless and
// pure: the same bytes always yield the same record. The only
// configuration is the byte order used to interpret the 32-bit word,
// little-endian by default per the external instruction format.
type Decoder struct {
	order binary.ByteOrder
}

// New constructs a Decoder using order to interpret the raw 32-bit word.
// A nil order defaults to little-endian.
func New(order binary.ByteOrder) *Decoder {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Decoder{order: order}
}

// Decode decodes the 4 bytes in b, fetched from pc, into an Instruction. A
// buffer that isn't 4 bytes long is a fetch-side fault, not something the
// executed program did, so it surfaces as a DecoderError rather than an
// architectural exception. Decode fails with an IllegalInstException if
// bits [1:0] are not 0b11: this simulator supports only 32-bit encodings.
func (d *Decoder) Decode(pc memory.Address, b []byte) (*Instruction, error) {
	if len(b) != 4 {
		return nil, &rverr.DecoderError{Addr: uint64(pc), Err: errBadLength}
	}
	raw := d.order.Uint32(b)
	if raw&0b11 != 0b11 {
		return nil, rverr.NewIllegalInst(uint64(pc), errNot32Bit)
	}

	in := &Instruction{
		Addr:   pc,
		Raw:    raw,
		BaseOp: (raw >> 2) & 0b11111,
		Rd:     (raw >> 7) & 0b11111,
		Funct3: (raw >> 12) & 0b111,
		Rs1:    (raw >> 15) & 0b11111,
		Rs2:    (raw >> 20) & 0b11111,
		Funct7: (raw >> 25) & 0b1111111,
	}
	in.ImmI = decodeImmI(raw)
	in.ImmS = decodeImmS(raw)
	in.ImmB = decodeImmB(raw)
	in.ImmU = decodeImmU(raw)
	in.ImmJ = decodeImmJ(raw)
	return in, nil
}

func signExtend(v uint32, signBit uint) int32 {
	shift := 31 - signBit
	return int32(v<<shift) >> shift
}

// decodeImmI decodes the I-type immediate: imm[11:0] = raw[31:20].
func decodeImmI(raw uint32) int32 {
	v := raw >> 20
	return signExtend(v, 11)
}

// decodeImmS decodes the S-type immediate: imm[11:5]=raw[31:25],
// imm[4:0]=raw[11:7].
func decodeImmS(raw uint32) int32 {
	v := ((raw >> 25) << 5) | ((raw >> 7) & 0b11111)
	return signExtend(v, 11)
}

// decodeImmB decodes the B-type immediate:
// imm[12]=raw[31], imm[11]=raw[7], imm[10:5]=raw[30:25], imm[4:1]=raw[11:8],
// imm[0]=0. The bit slices are OR'd together, not AND'd: the donor source's
// use of AND here was almost certainly a bug (see design notes).
func decodeImmB(raw uint32) int32 {
	v := (((raw >> 31) & 0x1) << 12) |
		(((raw >> 7) & 0x1) << 11) |
		(((raw >> 25) & 0x3F) << 5) |
		(((raw >> 8) & 0xF) << 1)
	return signExtend(v, 12)
}

// decodeImmU decodes the U-type immediate: imm[31:12]=raw[31:12],
// imm[11:0]=0.
func decodeImmU(raw uint32) int32 {
	return int32(raw &^ 0xFFF)
}

// decodeImmJ decodes the J-type immediate:
// imm[20]=raw[31], imm[19:12]=raw[19:12], imm[11]=raw[20],
// imm[10:1]=raw[30:21], imm[0]=0.
func decodeImmJ(raw uint32) int32 {
	v := (((raw >> 31) & 0x1) << 20) |
		(raw & 0xFF000) |
		(((raw >> 20) & 0x1) << 11) |
		(((raw >> 21) & 0x3FF) << 1)
	return signExtend(v, 20)
}
