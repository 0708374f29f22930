package regfile

import "encoding/binary"

// IntRegFile is a RegisterFile with one designated PC slot. The PC slot
// defaults to the last register index, matching the convention that x31
// (or the equivalent high-index register) is reserved for the program
// counter in this abstraction's numbering.
type IntRegFile struct {
	*RegisterFile
	pcIndex int
}

// NewInt constructs an IntRegFile with count general-purpose-sized slots
// (the PC occupies the last index by default).
func NewInt(width, count int, order binary.ByteOrder) (*IntRegFile, error) {
	rf, err := New(width, count, order)
	if err != nil {
		return nil, err
	}
	return &IntRegFile{RegisterFile: rf, pcIndex: count - 1}, nil
}

// SetPCIndex overrides which register slot holds the PC.
func (f *IntRegFile) SetPCIndex(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	f.pcIndex = i
	return nil
}

// PCIndex returns the register slot currently designated as the PC.
func (f *IntRegFile) PCIndex() int { return f.pcIndex }

// GetPC returns the PC register's raw bytes.
func (f *IntRegFile) GetPC() ([]byte, error) {
	return f.Read(f.pcIndex)
}

// SetPC overwrites the PC register's raw bytes.
func (f *IntRegFile) SetPC(data []byte) error {
	return f.Write(f.pcIndex, data, false)
}

// GetPCValue returns the PC as an unsigned integer value.
func (f *IntRegFile) GetPCValue() (uint64, error) {
	return f.ReadValue(f.pcIndex, false)
}

// SetPCValue overwrites the PC with v.
func (f *IntRegFile) SetPCValue(v uint64) error {
	return f.WriteValue(f.pcIndex, v)
}
