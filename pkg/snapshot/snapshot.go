// Package snapshot serializes and restores a core's complete machine
// state: register file contents and every RAM region's bytes. It
// deliberately does not capture MMIO device state, which is owned by
// whatever backend (TCP socket, terminal, mock clock) the device wraps and
// cannot be meaningfully replayed across a process boundary.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/regfile"
)

// ErrCorrupt indicates a snapshot stream failed to decode, either because
// it was truncated, produced by an incompatible version, or damaged in
// transit.
var ErrCorrupt = errors.New("snapshot: corrupt or incompatible snapshot data")

// regionRecord captures one NormalRegion's geometry and contents. MMIO
// regions are skipped entirely on Dump and must be re-attached by the
// caller after Load, since their backing devices have no portable byte
// representation.
type regionRecord struct {
	Start uint64
	Size  uint64
	Bytes []byte
}

type registerRecord struct {
	Width   int
	Count   int
	PCIndex int
	Bytes   []byte
}

// record is the gob-encoded payload, wrapped with zstd at rest.
type record struct {
	MemoryStart             uint64
	MemorySize              uint64
	MemoryDefaultRegionSize uint64
	Regions                 []regionRecord
	Registers               registerRecord
}

// Dump serializes mem's NormalRegion contents and regs' register state to
// w, compressed with zstd. Any MMIORegion present in mem is silently
// omitted.
func Dump(w io.Writer, mem *memory.Memory, regs *regfile.IntRegFile) error {
	rec := record{
		MemoryStart:             uint64(mem.Start()),
		MemorySize:              mem.Size(),
		MemoryDefaultRegionSize: mem.DefaultRegionSize(),
		Registers: registerRecord{
			Width:   regs.Width(),
			Count:   regs.Count(),
			PCIndex: regs.PCIndex(),
			Bytes:   regs.RawBytes(),
		},
	}
	for _, r := range mem.Regions() {
		nr, ok := r.(*memory.NormalRegion)
		if !ok {
			continue
		}
		rec.Regions = append(rec.Regions, regionRecord{
			Start: uint64(nr.Start()),
			Size:  nr.Size(),
			Bytes: nr.RawBytes(),
		})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: open compressor: %w", err)
	}
	if _, err := zw.Write(buf.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return zw.Close()
}

// Load decompresses and decodes a snapshot produced by Dump, reconstructing
// a Memory (populated only with the NormalRegions that were live at Dump
// time) and an IntRegFile with the original register contents. The caller
// is responsible for re-attaching any MMIO devices the running system
// needs.
func Load(r io.Reader, order binary.ByteOrder) (*memory.Memory, *regfile.IntRegFile, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()

	var rec record
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	mem, err := memory.New(memory.Address(rec.MemoryStart), rec.MemorySize, rec.MemoryDefaultRegionSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, rr := range rec.Regions {
		region := memory.NewNormalRegion(memory.Address(rr.Start), rr.Size)
		if err := region.LoadRawBytes(rr.Bytes); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if err := mem.AddRegion(region); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	regs, err := regfile.NewInt(rec.Registers.Width, rec.Registers.Count, order)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := regs.SetPCIndex(rec.Registers.PCIndex); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := regs.LoadRawBytes(rec.Registers.Bytes); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return mem, regs, nil
}
