// Command rv32dump prints the register and memory-region contents of a
// snapshot written by pkg/snapshot.
package main

import (
	"encoding/binary"
	"flag"
	"log"
	"os"

	"github.com/rv32lab/rv32sim/pkg/snapshot"
	"github.com/rv32lab/rv32sim/pkg/trace"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "snapshot file to dump")
	dumpMemory := flag.Bool("m", false, "also print each RAM region's first bytes and their xxhash64")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rv32dump [-m] -f <snapshot-file>")
	}

	fp, err := os.Open(*filename)
	if err != nil {
		log.Fatal(err)
	}
	defer fp.Close()

	mem, regs, err := snapshot.Load(fp, binary.LittleEndian)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("rv32dump: %s", trace.RegFileString(regs))
	pc, _ := regs.GetPCValue()
	log.Printf("rv32dump: pc=0x%08x", pc)
	log.Printf("rv32dump: address space [0x%x, 0x%x), %d region(s)", mem.Start(), mem.End(), mem.RegionCount())

	for _, r := range mem.Regions() {
		log.Printf("rv32dump: region [0x%x, 0x%x) resizable=%v mergeable=%v",
			r.Start(), r.End(), r.Resizable(), r.Mergeable())
		if !*dumpMemory {
			continue
		}
		data, err := r.Read(r.Start(), int(min64(r.Size(), 4)))
		if err != nil {
			continue
		}
		hash, err := trace.RegionHash(r, r.Start(), len(data))
		if err == nil {
			log.Printf("rv32dump:   first bytes=% x xxhash64=%016x", data, hash)
		}
	}
}

func min64(a uint64, b int) int {
	if a < uint64(b) {
		return int(a)
	}
	return b
}
