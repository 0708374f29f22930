// Package config collects the environment-variable knobs that the cmd/
// drivers expose for shaping the simulated address space and its
// observability surface, without pulling that policy into pkg/core,
// pkg/memory, or pkg/regfile themselves.
package config

import (
	"github.com/xyproto/env/v2"
)

// Defaults mirror what cmd/rv32run uses when the corresponding
// environment variable is unset.
const (
	DefaultMemoryStart = 0x8000_0000
	DefaultMemorySize  = 64 * 1024 * 1024
	DefaultRegionSize  = 64 * 1024
	DefaultMetricsAddr = ""
	DefaultUARTMode    = "none"
)

// Config is the full set of environment-derived settings for a simulator
// run.
type Config struct {
	// MemoryStart is the base address of the simulated physical address
	// space, set via RV32_MEMORY_START.
	MemoryStart uint64
	// MemorySize is the total size in bytes of the simulated address
	// space, set via RV32_MEMORY_SIZE.
	MemorySize uint64
	// DefaultRegionSize is the granularity new write-allocated RAM
	// regions are created at, set via RV32_DEFAULT_REGION_SIZE.
	DefaultRegionSize uint64
	// MetricsAddr, if non-empty, is the "host:port" the Prometheus
	// handler listens on, set via RV32_METRICS_ADDR.
	MetricsAddr string
	// UARTMode selects the console backend: "none" (default), "tcp", or
	// "term", set via RV32_UART_MODE. "tcp" blocks at startup until a
	// console attaches and "term" switches the terminal to raw mode, so
	// both are opt-in.
	UARTMode string
}

// FromEnv reads a Config from the process environment, falling back to
// the package's Default* constants for anything unset.
func FromEnv() Config {
	return Config{
		MemoryStart:       uint64(env.Int("RV32_MEMORY_START", DefaultMemoryStart)),
		MemorySize:        uint64(env.Int("RV32_MEMORY_SIZE", DefaultMemorySize)),
		DefaultRegionSize: uint64(env.Int("RV32_DEFAULT_REGION_SIZE", DefaultRegionSize)),
		MetricsAddr:       env.Str("RV32_METRICS_ADDR", DefaultMetricsAddr),
		UARTMode:          env.Str("RV32_UART_MODE", DefaultUARTMode),
	}
}
