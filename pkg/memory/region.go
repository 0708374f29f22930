package memory

// Device is the contract an MMIO backend must satisfy to be wrapped in an
// MMIORegion. Implementations live in package mmio; this package only
// depends on the interface, never on a concrete device, to keep the
// dependency edge pointing from mmio -> memory and not the other way
// around.
type Device interface {
	// Name identifies the device, e.g. "uart0" or "clint.mtime".
	Name() string

	// Read returns size bytes read from the device at the given offset
	// relative to the region's start address.
	Read(offset uint64, size int) ([]byte, error)

	// Write delivers size bytes to the device at the given offset
	// relative to the region's start address.
	Write(offset uint64, size int, data []byte) error
}

// MemoryRegion is a contiguous, typed span of the physical address space.
// NormalRegion and MMIORegion are the two variants; the capability flags
// (Resizable, Relocatable, Mergeable) are fixed per variant, not mutable
// fields, per the tagged-variant redesign of the donor's class hierarchy.
type MemoryRegion interface {
	Start() Address
	Size() uint64
	End() Address

	Resizable() bool
	Relocatable() bool
	Mergeable() bool

	Read(addr Address, size int) ([]byte, error)
	Write(addr Address, size int, data []byte) error

	// Resize grows the region to newSize bytes. Shrinking always fails.
	Resize(newSize uint64) error

	// Relocate moves the region to a new start address. Both concrete
	// variants in this design always fail; the method exists so a future
	// variant can support it without changing the interface.
	Relocate(newStart Address) error

	// Merge absorbs other onto the end of this region. Both regions must
	// be mergeable and other must be immediately adjacent.
	Merge(other MemoryRegion) error

	// Geometric predicates, defined on half-open interval semantics
	// [Start, Start+Size).
	IsOverlap(other MemoryRegion) bool
	IsHigherThan(other MemoryRegion) bool
	IsLowerThan(other MemoryRegion) bool
	IsAlignLower(other MemoryRegion) bool
	IsAlignHigher(other MemoryRegion) bool
	IsAddressHigher(addr Address) bool
	IsAddressLower(addr Address) bool

	// Contains reports whether [addr, addr+size) lies entirely within
	// this region.
	Contains(addr Address, size uint64) bool
}

// baseRegion factors out the geometric predicates shared by every variant,
// mirroring the donor's BaseMemoryRegion but as embedding rather than
// inheritance.
type baseRegion struct {
	start Address
	size  uint64
}

func (b *baseRegion) Start() Address { return b.start }
func (b *baseRegion) Size() uint64   { return b.size }
func (b *baseRegion) End() Address   { return b.start.Add(b.size) }

func (b *baseRegion) Contains(addr Address, size uint64) bool {
	if size == 0 {
		return false
	}
	end := addr.Add(size)
	return addr >= b.start && end <= b.End() && end > addr
}

func (b *baseRegion) IsOverlap(other MemoryRegion) bool {
	return b.start < other.End() && other.Start() < b.End()
}

func (b *baseRegion) IsHigherThan(other MemoryRegion) bool {
	return b.start >= other.End()
}

func (b *baseRegion) IsLowerThan(other MemoryRegion) bool {
	return b.End() <= other.Start()
}

func (b *baseRegion) IsAlignLower(other MemoryRegion) bool {
	return b.End() == other.Start()
}

func (b *baseRegion) IsAlignHigher(other MemoryRegion) bool {
	return b.start == other.End()
}

func (b *baseRegion) IsAddressHigher(addr Address) bool {
	return b.start >= addr
}

func (b *baseRegion) IsAddressLower(addr Address) bool {
	return b.End() <= addr
}

func (b *baseRegion) offsetRange(addr Address, size int) (off uint64, ok bool) {
	if size <= 0 {
		return 0, false
	}
	if !b.Contains(addr, uint64(size)) {
		return 0, false
	}
	return addr.Sub(b.start), true
}
