package memory

import "sort"

// Memory is the synthesized physical address space: an ordered, sorted,
// non-overlapping list of MemoryRegion instances spanning a sub-range of
// [Start, Start+Size).
type Memory struct {
	start             Address
	size              uint64
	defaultRegionSize uint64
	regions           []MemoryRegion
}

// New constructs an empty Memory. start must be a multiple of
// defaultRegionSize, defaultRegionSize must be a power of two, and size
// must be a positive multiple of defaultRegionSize.
func New(start Address, size, defaultRegionSize uint64) (*Memory, error) {
	if size == 0 || defaultRegionSize == 0 {
		return nil, newMemoryError("new", ErrInvalidMemory)
	}
	if !IsPowerOfTwo(defaultRegionSize) {
		return nil, newMemoryError("new", ErrInvalidMemory)
	}
	if !start.IsAligned(defaultRegionSize) {
		return nil, newMemoryError("new", ErrInvalidMemory)
	}
	if size%defaultRegionSize != 0 {
		return nil, newMemoryError("new", ErrInvalidMemory)
	}
	return &Memory{
		start:             start,
		size:              size,
		defaultRegionSize: defaultRegionSize,
	}, nil
}

func (m *Memory) Start() Address             { return m.start }
func (m *Memory) Size() uint64               { return m.size }
func (m *Memory) End() Address               { return m.start.Add(m.size) }
func (m *Memory) DefaultRegionSize() uint64  { return m.defaultRegionSize }
func (m *Memory) RegionCount() int           { return len(m.regions) }
func (m *Memory) Regions() []MemoryRegion {
	out := make([]MemoryRegion, len(m.regions))
	copy(out, m.regions)
	return out
}

// isRegionValid reports whether r lies entirely within [Start, Start+Size)
// and whose start is aligned to DefaultRegionSize. The donor's equivalent
// check compared region.regionStart against memorySize alone, which is
// wrong whenever memoryStart != 0; this compares against the half-open
// range [Start, Start+Size) as the corrected specification requires.
func (m *Memory) isRegionValid(r MemoryRegion) bool {
	if !r.Start().IsAligned(m.defaultRegionSize) {
		return false
	}
	return r.Start() >= m.start && r.End() <= m.End()
}

// indexOf returns the index where r.Start() sits (or would sit) in the
// sorted region list.
func (m *Memory) indexOf(start Address) int {
	return sort.Search(len(m.regions), func(i int) bool {
		return m.regions[i].Start() >= start
	})
}

// AddRegion inserts r maintaining the sorted/non-overlapping/aligned
// invariants. If r directly follows a mergeable region and both are
// mergeable, that region absorbs r and r is discarded. If r is a
// NormalRegion directly preceding a mergeable region, r absorbs that
// region and takes its place in the list, and the existing object is the
// one discarded.
func (m *Memory) AddRegion(r MemoryRegion) error {
	if !m.isRegionValid(r) {
		return newRegionError("add-region", ErrOutOfRange)
	}
	idx := m.indexOf(r.Start())
	if idx > 0 && m.regions[idx-1].IsOverlap(r) {
		return newRegionError("add-region", ErrOverlap)
	}
	if idx < len(m.regions) && m.regions[idx].IsOverlap(r) {
		return newRegionError("add-region", ErrOverlap)
	}

	// Merge with the region immediately below, if possible.
	if idx > 0 {
		below := m.regions[idx-1]
		if below.Mergeable() && r.Mergeable() && below.IsAlignLower(r) {
			if err := below.Merge(r); err == nil {
				return m.mergeForward(idx - 1)
			}
		}
	}
	// Merge with the region immediately above, if possible: rebuild it as
	// r absorbing above, then replace.
	if idx < len(m.regions) {
		above := m.regions[idx]
		if above.Mergeable() && r.Mergeable() && r.IsAlignLower(above) {
			if nr, ok := r.(*NormalRegion); ok {
				if err := nr.Merge(above); err == nil {
					m.regions[idx] = nr
					return nil
				}
			}
		}
	}

	m.regions = append(m.regions, nil)
	copy(m.regions[idx+1:], m.regions[idx:])
	m.regions[idx] = r
	return nil
}

// mergeForward checks whether, after merging into m.regions[idx], the
// region now also abuts its successor and should absorb it too.
func (m *Memory) mergeForward(idx int) error {
	for idx+1 < len(m.regions) {
		cur := m.regions[idx]
		next := m.regions[idx+1]
		if !cur.Mergeable() || !next.Mergeable() || !cur.IsAlignLower(next) {
			break
		}
		if err := cur.Merge(next); err != nil {
			break
		}
		m.regions = append(m.regions[:idx+1], m.regions[idx+2:]...)
	}
	return nil
}

// FindRegion returns the unique region fully containing [addr, addr+size).
func (m *Memory) FindRegion(addr Address, size uint64) (MemoryRegion, error) {
	idx := sort.Search(len(m.regions), func(i int) bool {
		return m.regions[i].End() > addr
	})
	if idx >= len(m.regions) {
		return nil, newRegionError("find-region", ErrNoRegion)
	}
	r := m.regions[idx]
	if !r.Contains(addr, size) {
		return nil, newRegionError("find-region", ErrNoRegion)
	}
	return r, nil
}

func validSize(size int) bool {
	switch size {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// Read reads size bytes (one of 1, 2, 4, 8) from addr, which must be
// aligned to size.
func (m *Memory) Read(addr Address, size int) ([]byte, error) {
	if !validSize(size) {
		return nil, newMemoryError("read", ErrInvalidSize)
	}
	if !addr.IsAligned(uint64(size)) {
		return nil, newMemoryError("read", ErrMisaligned)
	}
	r, err := m.FindRegion(addr, uint64(size))
	if err != nil {
		return nil, err
	}
	return r.Read(addr, size)
}

// Write writes data (size bytes, one of 1, 2, 4, 8) to addr, which must be
// aligned to size. If no region contains the target, Write write-allocates
// a new NormalRegion so the write can proceed.
func (m *Memory) Write(addr Address, size int, data []byte) error {
	if !validSize(size) {
		return newMemoryError("write", ErrInvalidSize)
	}
	if len(data) != size {
		return newMemoryError("write", ErrInvalidSize)
	}
	if !addr.IsAligned(uint64(size)) {
		return newMemoryError("write", ErrMisaligned)
	}
	r, err := m.FindRegion(addr, uint64(size))
	if err != nil {
		if err := m.writeAllocate(addr); err != nil {
			return err
		}
		r, err = m.FindRegion(addr, uint64(size))
		if err != nil {
			return err
		}
	}
	return r.Write(addr, size, data)
}

// writeAllocate implements the five-step allocation policy: compute the
// aligned region start, then try (in order) the empty-list case, the
// extend-closest-resizable-region case, and the shrink-and-maybe-merge
// case, failing only if none of those can produce a valid insertion.
func (m *Memory) writeAllocate(addr Address) error {
	alignedStart := addr.AlignDown(m.defaultRegionSize)

	if len(m.regions) == 0 {
		nr := NewNormalRegion(alignedStart, m.defaultRegionSize)
		if err := m.AddRegion(nr); err != nil {
			return newMemoryError("write-allocate", ErrAllocationFailed)
		}
		return nil
	}

	// Step 3: find the closest region below addr whose end is within
	// defaultRegionSize of addr, and try to extend it.
	idx := sort.Search(len(m.regions), func(i int) bool {
		return m.regions[i].Start() > addr
	})
	if idx > 0 {
		below := m.regions[idx-1]
		if below.End() <= addr && addr.Sub(below.End()) < m.defaultRegionSize && below.Resizable() {
			target := alignedStart.Add(m.defaultRegionSize)
			newSize := target.Sub(below.Start())
			if err := below.Resize(newSize); err == nil {
				return nil
			}
		}
	}

	// Step 4: tentatively create a default-size region at alignedStart;
	// shrink it if it would overrun the next region, then try to merge.
	wantEnd := alignedStart.Add(m.defaultRegionSize)
	size := m.defaultRegionSize
	if idx < len(m.regions) {
		next := m.regions[idx]
		if wantEnd > next.Start() {
			if alignedStart >= next.Start() {
				return newMemoryError("write-allocate", ErrAllocationFailed)
			}
			size = next.Start().Sub(alignedStart)
		}
	}
	if size == 0 {
		return newMemoryError("write-allocate", ErrAllocationFailed)
	}
	nr := NewNormalRegion(alignedStart, size)
	if err := m.AddRegion(nr); err != nil {
		return newMemoryError("write-allocate", ErrAllocationFailed)
	}
	return nil
}

// Convenience forms fixing size.

func (m *Memory) ReadByte(addr Address) (uint8, error) {
	b, err := m.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Memory) ReadHalfWord(addr Address) ([]byte, error) { return m.Read(addr, 2) }
func (m *Memory) ReadWord(addr Address) ([]byte, error)     { return m.Read(addr, 4) }
func (m *Memory) ReadDoubleWord(addr Address) ([]byte, error) { return m.Read(addr, 8) }

func (m *Memory) WriteByte(addr Address, v uint8) error {
	return m.Write(addr, 1, []byte{v})
}

func (m *Memory) WriteHalfWord(addr Address, data []byte) error {
	return m.Write(addr, 2, data)
}

func (m *Memory) WriteWord(addr Address, data []byte) error {
	return m.Write(addr, 4, data)
}

func (m *Memory) WriteDoubleWord(addr Address, data []byte) error {
	return m.Write(addr, 8, data)
}
