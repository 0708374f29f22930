// Package core implements the fetch-decode-execute loop: one Step reads
// the PC from the register file, reads a 4-byte word from memory, decodes
// it, and offers it to each registered execution unit in order.
package core

import (
	"github.com/rv32lab/rv32sim/pkg/execrv32i"
	"github.com/rv32lab/rv32sim/pkg/inst"
	"github.com/rv32lab/rv32sim/pkg/memory"
	"github.com/rv32lab/rv32sim/pkg/metrics"
	"github.com/rv32lab/rv32sim/pkg/regfile"
	"github.com/rv32lab/rv32sim/pkg/rverr"
)

// Status classifies the result of one Step.
type Status int

const (
	// Retired means the instruction executed normally and the PC was
	// advanced (or redirected) by the execution unit.
	Retired Status = iota
	// Trapped means the instruction raised ECALL or EBREAK; the PC was
	// NOT advanced.
	Trapped
	// Faulted means the instruction could not be decoded or executed;
	// the PC was NOT advanced.
	Faulted
)

// Outcome is the tagged result of Core.Step, replacing the
// exceptions-as-control-flow style of the donor VM with an explicit
// result value, per the distilled spec's design notes.
type Outcome struct {
	Status Status
	Trap   *rverr.Trap // set iff Status == Trapped
	Err    error       // set iff Status == Faulted
}

// Core owns a memory, an integer register file, a decoder, and an ordered
// list of execution units.
type Core struct {
	Mem     *memory.Memory
	Regs    *regfile.IntRegFile
	Decoder *inst.Decoder
	Units   []execrv32i.Unit
	Metrics *metrics.Counters // optional; nil disables metrics
}

// New constructs a Core. units must contain at least one execution unit;
// for RV32I that is execrv32i.New().
func New(mem *memory.Memory, regs *regfile.IntRegFile, decoder *inst.Decoder, units ...execrv32i.Unit) *Core {
	return &Core{Mem: mem, Regs: regs, Decoder: decoder, Units: units}
}

// Step fetches, decodes, and executes exactly one instruction.
func (c *Core) Step() Outcome {
	pc, err := c.Regs.GetPCValue()
	if err != nil {
		c.countFault()
		return Outcome{Status: Faulted, Err: err}
	}
	addr := memory.Address(pc)

	word, err := c.Mem.Read(addr, 4)
	if err != nil {
		c.countFault()
		return Outcome{Status: Faulted, Err: err}
	}

	in, err := c.Decoder.Decode(addr, word)
	if err != nil {
		c.countIllegal()
		return Outcome{Status: Faulted, Err: err}
	}

	var (
		acceptedBy = -1
		execErr    error
	)
	for i, unit := range c.Units {
		accepted, err := unit.Execute(c.Regs, c.Mem, in)
		if !accepted {
			continue
		}
		if acceptedBy >= 0 {
			fault := &rverr.ExecError{Err: &rverr.ExecDuplicatedUnitError{Opcode: in.BaseOp}}
			c.countFault()
			return Outcome{Status: Faulted, Err: fault}
		}
		acceptedBy = i
		execErr = err
	}
	if acceptedBy < 0 {
		c.countIllegal()
		return Outcome{Status: Faulted, Err: rverr.NewIllegalInst(uint64(addr), errUnclaimed)}
	}

	if execErr != nil {
		if trap, ok := execErr.(*rverr.Trap); ok {
			c.countTrap()
			return Outcome{Status: Trapped, Trap: trap}
		}
		c.countFault()
		return Outcome{Status: Faulted, Err: execErr}
	}

	c.countRetired()
	return Outcome{Status: Retired}
}

func (c *Core) countRetired() {
	if c.Metrics != nil {
		c.Metrics.InstructionsRetired.Inc()
	}
}

func (c *Core) countTrap() {
	if c.Metrics != nil {
		c.Metrics.TrapsTaken.Inc()
	}
}

func (c *Core) countIllegal() {
	if c.Metrics != nil {
		c.Metrics.IllegalInstructions.Inc()
	}
}

func (c *Core) countFault() {
	if c.Metrics != nil {
		c.Metrics.Faults.Inc()
	}
}
