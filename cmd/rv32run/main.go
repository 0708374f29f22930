// Command rv32run loads a flat RV32I binary or ELF executable into a
// simulated address space and steps the core until it traps, faults, or
// an EBREAK/ECALL halts execution.
package main

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rv32lab/rv32sim/pkg/config"
	"github.com/rv32lab/rv32sim/pkg/core"
	"github.com/rv32lab/rv32sim/pkg/execrv32i"
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/metrics"
	"github.com/rv32lab/rv32sim/pkg/mmio"
	"github.com/rv32lab/rv32sim/pkg/regfile"
	"github.com/rv32lab/rv32sim/pkg/trace"
)

func main() {
	log.SetFlags(0)
	filename := flag.String("f", "", "program file to run (flat binary or ELF)")
	verbose := flag.Bool("v", false, "print a trace of every retired instruction")
	debug := flag.Bool("d", false, "pause for input before every instruction")
	watch := flag.Bool("watch", false, "re-run the simulation whenever the program file changes")
	flag.Parse()
	if *filename == "" {
		log.Fatal("usage: rv32run [-v] [-d] [-watch] -f <program-file>")
	}

	cfg := config.FromEnv()

	promReg := prometheus.NewRegistry()
	counters := metrics.New(promReg)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		go func() {
			log.Printf("rv32run: serving metrics on http://%s/metrics", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
				log.Printf("rv32run: metrics server stopped: %v", err)
			}
		}()
	}

	if err := runOnce(*filename, cfg, counters, *verbose, *debug); err != nil {
		log.Fatal(err)
	}
	if !*watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(err)
	}
	defer watcher.Close()
	if err := watcher.Add(*filename); err != nil {
		log.Fatal(err)
	}
	log.Printf("rv32run: watching %s for changes...", *filename)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Printf("rv32run: %s changed, re-running", *filename)
			if err := runOnce(*filename, cfg, counters, *verbose, *debug); err != nil {
				log.Printf("rv32run: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("rv32run: watch error: %v", err)
		}
	}
}

func runOnce(filename string, cfg config.Config, counters *metrics.Counters, verbose, debug bool) error {
	mem, err := memory.New(memory.Address(cfg.MemoryStart), cfg.MemorySize, cfg.DefaultRegionSize)
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}

	registry, err := mmio.NewRegistry()
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}
	uart, err := newUARTBackend(cfg.UARTMode)
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}
	if uart != nil {
		defer uart.Close()
		// The UART occupies the top defaultRegionSize of the address space
		// rather than anything past mem.End(): a region's own end must fall
		// within [Start, Start+Size), so the device has to live inside the
		// space mem was actually built with, not past it.
		uartBase := memory.Address(cfg.MemoryStart + cfg.MemorySize - cfg.DefaultRegionSize)
		if _, err := registry.AddTo(mem, uartBase, cfg.DefaultRegionSize, uart, mmio.Manifest{Requires: ">= 1.0.0, < 2.0.0"}); err != nil {
			return fmt.Errorf("rv32run: %w", err)
		}
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}
	entry, err := loadProgram(mem, memory.Address(cfg.MemoryStart), raw)
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}

	regs, err := regfile.NewInt(32, 32, binary.LittleEndian)
	if err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}
	if err := regs.SetPCValue(uint64(entry)); err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}

	c := core.New(mem, regs, inst.New(nil), execrv32i.New())
	c.Metrics = counters

	for {
		if uart != nil {
			if err := uart.Poll(); err != nil {
				log.Printf("rv32run: console detached: %v", err)
				uart = nil
			}
		}
		if verbose {
			pc, _ := regs.GetPCValue()
			log.Printf("rv32run: pc=0x%08x %s", pc, trace.RegFileString(regs))
		}
		if debug {
			log.Printf("rv32run: paused...")
			fmt.Scanln()
		}
		outcome := c.Step()
		switch outcome.Status {
		case core.Retired:
			continue
		case core.Trapped:
			log.Printf("rv32run: trap: %v", outcome.Trap)
			return nil
		case core.Faulted:
			return fmt.Errorf("rv32run: fault: %v", outcome.Err)
		}
	}
}

// loadProgram writes raw into mem at base and returns the entry point:
// raw's own ELF header entry address if it parses as an ELF executable,
// or base itself for a flat binary.
func loadProgram(mem *memory.Memory, base memory.Address, raw []byte) (memory.Address, error) {
	if len(raw) >= 4 && raw[0] == 0x7f && raw[1] == 'E' && raw[2] == 'L' && raw[3] == 'F' {
		return loadELF(mem, raw)
	}
	for i, b := range raw {
		if err := mem.WriteByte(base.Add(uint64(i)), b); err != nil {
			return 0, err
		}
	}
	return base, nil
}

func loadELF(mem *memory.Memory, raw []byte) (memory.Address, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("parse ELF: %w", err)
	}
	defer f.Close()
	if f.Machine != elf.EM_RISCV || f.Class != elf.ELFCLASS32 {
		return 0, fmt.Errorf("not a 32-bit RISC-V ELF executable")
	}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return 0, fmt.Errorf("read segment: %w", err)
		}
		addr := memory.Address(prog.Vaddr)
		for i, b := range data {
			if err := mem.WriteByte(addr.Add(uint64(i)), b); err != nil {
				return 0, fmt.Errorf("load segment at 0x%x: %w", prog.Vaddr, err)
			}
		}
	}
	return memory.Address(f.Entry), nil
}

func newUARTBackend(mode string) (*mmio.UART, error) {
	switch mode {
	case "", "tcp":
		return mmio.NewTCPUART("console0")
	case "term":
		return mmio.NewTermUART("console0")
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown RV32_UART_MODE %q", mode)
	}
}
