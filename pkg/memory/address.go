// Package memory implements the RV32I physical address space: a sparse,
// growable, region-based byte store that mixes write-allocated RAM regions
// with fixed MMIO regions.
//
// The design is inspired by the flat memory array of the RiSC-32 VM this
// package grew out of, generalized from a single fixed-size word array into
// an ordered list of typed regions so that the emulator can approximate an
// unbounded address space without actually allocating one.
package memory

import "fmt"

// AddressBits is the width of a physical address in this simulator.
const AddressBits = 48

// AddressMask masks a uint64 down to the AddressBits low bits.
const AddressMask = (uint64(1) << AddressBits) - 1

// Address is a 48-bit physical address. All arithmetic on addresses is
// carried out using full 64-bit precision; AddressMask is applied only
// where a value must be proven to fit.
type Address uint64

// String renders the address in the conventional 0x-prefixed hex form.
func (a Address) String() string {
	return fmt.Sprintf("0x%010x", uint64(a))
}

// Add returns a + delta.
func (a Address) Add(delta uint64) Address {
	return Address(uint64(a) + delta)
}

// Sub returns the distance from b to a, i.e. a - b, assuming a >= b.
func (a Address) Sub(b Address) uint64 {
	return uint64(a) - uint64(b)
}

// AlignDown rounds a down to the nearest multiple of align, which must be
// a power of two.
func (a Address) AlignDown(align uint64) Address {
	return Address(uint64(a) &^ (align - 1))
}

// IsAligned reports whether a is a multiple of align.
func (a Address) IsAligned(align uint64) bool {
	return uint64(a)%align == 0
}

// IsPowerOfTwo reports whether v is a nonzero power of two.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
