package memory

// NormalRegion is a RAM region backed by a contiguous, zero-filled byte
// buffer. It is resizable (grow-only) and mergeable, but never relocatable.
type NormalRegion struct {
	baseRegion
	bytes []byte
}

// NewNormalRegion creates an empty, zero-filled RAM region of the given
// size starting at start.
func NewNormalRegion(start Address, size uint64) *NormalRegion {
	return &NormalRegion{
		baseRegion: baseRegion{start: start, size: size},
		bytes:      make([]byte, size),
	}
}

func (r *NormalRegion) Resizable() bool   { return true }
func (r *NormalRegion) Relocatable() bool { return false }
func (r *NormalRegion) Mergeable() bool   { return true }

func (r *NormalRegion) Read(addr Address, size int) ([]byte, error) {
	off, ok := r.offsetRange(addr, size)
	if !ok {
		return nil, newRegionError("read", ErrOutOfRange)
	}
	out := make([]byte, size)
	copy(out, r.bytes[off:off+uint64(size)])
	return out, nil
}

func (r *NormalRegion) Write(addr Address, size int, data []byte) error {
	off, ok := r.offsetRange(addr, size)
	if !ok {
		return newRegionError("write", ErrOutOfRange)
	}
	if len(data) != size {
		return newRegionError("write", ErrInvalidSize)
	}
	copy(r.bytes[off:off+uint64(size)], data)
	return nil
}

// Resize grows the region in place to newSize bytes. Shrinking always
// fails, per the design: NormalRegion.expandRegion always succeeds,
// shrinkRegion always fails.
func (r *NormalRegion) Resize(newSize uint64) error {
	if newSize < r.size {
		return newRegionError("resize", ErrShrinkNotAllowed)
	}
	if newSize == r.size {
		return nil
	}
	grown := make([]byte, newSize)
	copy(grown, r.bytes)
	r.bytes = grown
	r.size = newSize
	return nil
}

// RawBytes returns a defensive copy of the region's backing buffer. Used
// by pkg/snapshot to serialize RAM contents.
func (r *NormalRegion) RawBytes() []byte {
	out := make([]byte, len(r.bytes))
	copy(out, r.bytes)
	return out
}

// LoadRawBytes overwrites the region's backing buffer with b, which must
// be exactly Size() bytes long. Used by pkg/snapshot to restore RAM
// contents.
func (r *NormalRegion) LoadRawBytes(b []byte) error {
	if uint64(len(b)) != r.size {
		return newRegionError("load", ErrInvalidSize)
	}
	copy(r.bytes, b)
	return nil
}

// Relocate always fails: NormalRegion is not relocatable in this design.
func (r *NormalRegion) Relocate(Address) error {
	return newRegionError("relocate", ErrNotRelocatable)
}

// Merge absorbs other's bytes onto the end of r and extends r.size. Both
// regions must be mergeable and other must be immediately adjacent.
func (r *NormalRegion) Merge(other MemoryRegion) error {
	if !r.Mergeable() || !other.Mergeable() {
		return newRegionError("merge", ErrNotMergeable)
	}
	if !r.IsAlignLower(other) {
		return newRegionError("merge", ErrNoRegion)
	}
	// Only NormalRegion is ever mergeable, so other must be one too.
	tail, ok := other.(*NormalRegion)
	if !ok {
		return newRegionError("merge", ErrNotMergeable)
	}
	r.bytes = append(r.bytes, tail.bytes...)
	r.size += other.Size()
	return nil
}
