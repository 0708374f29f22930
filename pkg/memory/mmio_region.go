package memory

// MMIORegion is a fixed, non-resizable, non-mergeable region backed by an
// implementation-supplied Device. Its Read/Write have side effects outside
// the emulator.
type MMIORegion struct {
	baseRegion
	device Device
}

// NewMMIORegion wraps device as a memory region spanning
// [start, start+size).
func NewMMIORegion(start Address, size uint64, device Device) *MMIORegion {
	return &MMIORegion{
		baseRegion: baseRegion{start: start, size: size},
		device:     device,
	}
}

// Name returns the backing device's name.
func (r *MMIORegion) Name() string { return r.device.Name() }

func (r *MMIORegion) Resizable() bool   { return false }
func (r *MMIORegion) Relocatable() bool { return false }
func (r *MMIORegion) Mergeable() bool   { return false }

func (r *MMIORegion) Read(addr Address, size int) ([]byte, error) {
	off, ok := r.offsetRange(addr, size)
	if !ok {
		return nil, newRegionError("read", ErrOutOfRange)
	}
	data, err := r.device.Read(off, size)
	if err != nil {
		return nil, newRegionError("read", err)
	}
	return data, nil
}

func (r *MMIORegion) Write(addr Address, size int, data []byte) error {
	off, ok := r.offsetRange(addr, size)
	if !ok {
		return newRegionError("write", ErrOutOfRange)
	}
	if err := r.device.Write(off, size, data); err != nil {
		return newRegionError("write", err)
	}
	return nil
}

func (r *MMIORegion) Resize(uint64) error {
	return newRegionError("resize", ErrNotResizable)
}

func (r *MMIORegion) Relocate(Address) error {
	return newRegionError("relocate", ErrNotRelocatable)
}

func (r *MMIORegion) Merge(MemoryRegion) error {
	return newRegionError("merge", ErrNotMergeable)
}
