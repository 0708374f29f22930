// Package regfile implements a typed, endianness-aware register file: a
// contiguous byte buffer presenting both a byte-array view and an integer
// value view over the same storage, with sign/zero extension.
package regfile

import "encoding/binary"

// RegisterFile is a fixed set of equal-width integer registers backed by
// one contiguous byte buffer.
type RegisterFile struct {
	width int // in bits: 32 or 64
	count int
	order binary.ByteOrder
	bytes []byte
}

// New constructs a RegisterFile with count registers of the given width
// (32 or 64 bits), using order to interpret bytes as integers.
func New(width, count int, order binary.ByteOrder) (*RegisterFile, error) {
	if width != 32 && width != 64 {
		return nil, &RegisterFileError{Op: "new", Err: ErrInvalidWidth}
	}
	if count <= 0 {
		return nil, &RegisterFileError{Op: "new", Err: ErrInvalidCount}
	}
	return &RegisterFile{
		width: width,
		count: count,
		order: order,
		bytes: make([]byte, count*width/8),
	}, nil
}

// Width returns the register width in bits.
func (f *RegisterFile) Width() int { return f.width }

// Count returns the number of registers.
func (f *RegisterFile) Count() int { return f.count }

// bytesPerReg is the register width in bytes.
func (f *RegisterFile) bytesPerReg() int { return f.width / 8 }

func (f *RegisterFile) checkIndex(i int) error {
	if i < 0 || i >= f.count {
		return &RegisterFileError{Op: "index", Err: ErrInvalidIndex}
	}
	return nil
}

func (f *RegisterFile) slot(i int) []byte {
	n := f.bytesPerReg()
	return f.bytes[i*n : i*n+n]
}

// Read returns a defensive copy of register i's bytes.
func (f *RegisterFile) Read(i int) ([]byte, error) {
	if err := f.checkIndex(i); err != nil {
		return nil, err
	}
	out := make([]byte, f.bytesPerReg())
	copy(out, f.slot(i))
	return out, nil
}

// Write copies data into register i. If data is shorter than the register
// width, the remaining high-order bytes are filled per signed: 0xFF
// (replicating the sign bit of data's most significant byte) when
// signed is true, 0x00 otherwise. Buffers longer than the register width
// fail with RegisterError.
func (f *RegisterFile) Write(i int, data []byte, signed bool) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	n := f.bytesPerReg()
	if len(data) > n {
		return &RegisterError{Op: "write", Err: ErrBufferTooLong}
	}
	ext := byte(0x00)
	if signed && len(data) > 0 {
		msbIndex := 0
		if f.order == binary.LittleEndian {
			msbIndex = len(data) - 1
		}
		if data[msbIndex]&0x80 != 0 {
			ext = 0xFF
		}
	}
	slot := f.slot(i)
	for k := range slot {
		slot[k] = ext
	}
	if f.order == binary.LittleEndian {
		copy(slot, data)
	} else {
		copy(slot[n-len(data):], data)
	}
	return nil
}

// ReadValue interprets register i as a 32- or 64-bit integer in the file's
// byte order and returns its bits as a uint64. For a 32-bit file the
// result is the 32-bit value sign-extended to 64 bits when signed is true
// and zero-extended otherwise; for a 64-bit file it is the raw 64-bit
// value.
func (f *RegisterFile) ReadValue(i int, signed bool) (uint64, error) {
	b, err := f.Read(i)
	if err != nil {
		return 0, err
	}
	if f.width == 32 {
		v := f.order.Uint32(b)
		if signed {
			return uint64(int64(int32(v))), nil
		}
		return uint64(v), nil
	}
	return f.order.Uint64(b), nil
}

// ReadValueSigned is a convenience wrapper returning the signed
// interpretation as an int64.
func (f *RegisterFile) ReadValueSigned(i int) (int64, error) {
	if f.width == 32 {
		v, err := f.ReadValue(i, true)
		if err != nil {
			return 0, err
		}
		return int64(int32(uint32(v))), nil
	}
	v, err := f.ReadValue(i, true)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// WriteValue stores v (truncated to the file's width) into register i as
// a raw bit pattern. It takes no sign flag: signedness is chosen when the
// value is read back with ReadValue or ReadValueSigned.
func (f *RegisterFile) WriteValue(i int, v uint64) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	slot := f.slot(i)
	if f.width == 32 {
		f.order.PutUint32(slot, uint32(v))
		return nil
	}
	f.order.PutUint64(slot, v)
	return nil
}

// RawBytes returns a defensive copy of the entire backing buffer, in
// register-index order. Used by pkg/snapshot to serialize register state.
func (f *RegisterFile) RawBytes() []byte {
	out := make([]byte, len(f.bytes))
	copy(out, f.bytes)
	return out
}

// LoadRawBytes overwrites the entire backing buffer with b, which must be
// exactly Count()*Width()/8 bytes long. Used by pkg/snapshot to restore
// register state.
func (f *RegisterFile) LoadRawBytes(b []byte) error {
	if len(b) != len(f.bytes) {
		return &RegisterFileError{Op: "load", Err: ErrInvalidCount}
	}
	copy(f.bytes, b)
	return nil
}

// CopyRegister performs a byte-exact transfer from src to dst within f.
func (f *RegisterFile) CopyRegister(dst, src int) error {
	b, err := f.Read(src)
	if err != nil {
		return err
	}
	return f.Write(dst, b, false)
}
