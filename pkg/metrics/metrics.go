// Package metrics exposes the emulator's step counters as Prometheus
// collectors, so a driver can serve them over HTTP without the core
// package ever importing net/http itself.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counters groups the four step-level counters Core increments once per
// Step call. A nil *Counters disables counting entirely; Core checks for
// nil before touching any field.
type Counters struct {
	InstructionsRetired prometheus.Counter
	TrapsTaken          prometheus.Counter
	IllegalInstructions prometheus.Counter
	Faults              prometheus.Counter
}

// New constructs a Counters registered against reg. Passing a fresh
// prometheus.NewRegistry() keeps emulator metrics isolated from the
// default global registry, which matters when more than one Core runs in
// the same process (e.g. in tests).
func New(reg prometheus.Registerer) *Counters {
	c := &Counters{
		InstructionsRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rv32sim",
			Name:      "instructions_retired_total",
			Help:      "Number of instructions retired by the core.",
		}),
		TrapsTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rv32sim",
			Name:      "traps_total",
			Help:      "Number of ECALL/EBREAK traps raised by the core.",
		}),
		IllegalInstructions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rv32sim",
			Name:      "illegal_instructions_total",
			Help:      "Number of IllegalInstException faults raised by the core.",
		}),
		Faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rv32sim",
			Name:      "faults_total",
			Help:      "Number of non-illegal-instruction faults raised by the core (memory, exec configuration).",
		}),
	}
	reg.MustRegister(c.InstructionsRetired, c.TrapsTaken, c.IllegalInstructions, c.Faults)
	return c
}
