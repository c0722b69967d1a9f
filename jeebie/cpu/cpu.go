// Package cpu implements the SM83 instruction engine: fetch, decode and
// execute over the register file and the memory bus, with interrupt dispatch
// and HALT handling at step boundaries.
package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/interrupt"
)

// Bus is the memory the CPU executes against.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Interrupts is the interrupt controller as seen by the CPU.
type Interrupts interface {
	Pending() uint8
	Service() (interrupt.Source, bool)
	EnableMaster()
	DisableMaster()
	MasterEnabled() bool
}

const (
	// dispatchCycles is the cost of jumping to an interrupt vector.
	dispatchCycles = 20
	// haltCycles is consumed by every step spent halted.
	haltCycles = 4
)

// CPU is the main struct holding SM83 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	eiPending bool // EI delay: interrupts enable after next instruction
	halted    bool
	// haltBug makes the next fetch skip the PC increment past the opcode.
	haltBug bool

	cycles uint64
	err    error

	bus        Bus
	interrupts Interrupts
}

// New returns a CPU with registers set as the boot ROM leaves them.
func New(bus Bus, interrupts Interrupts) *CPU {
	c := &CPU{
		bus:        bus,
		interrupts: interrupts,
	}

	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100

	return c
}

// Step runs one unit of work: a halted idle slot, an interrupt dispatch or a
// single instruction. It returns the T-cycles consumed.
//
// A decode error stops the CPU; every later call returns the same error.
func (c *CPU) Step() (int, error) {
	if c.err != nil {
		return 0, c.err
	}

	pending := c.interrupts.Pending() != 0

	if c.halted {
		if !pending {
			c.cycles += haltCycles
			return haltCycles, nil
		}
		c.halted = false
	}

	if pending && c.interrupts.MasterEnabled() {
		if source, ok := c.interrupts.Service(); ok {
			ret := c.pc
			if c.haltBug {
				// EI; HALT with a request pending: the handler returns to the HALT
				c.haltBug = false
				ret--
			}
			c.pushStack(ret)
			c.pc = source.Vector()
			c.cycles += dispatchCycles
			return dispatchCycles, nil
		}
	}

	return c.execute()
}

func (c *CPU) execute() (int, error) {
	in, err := decode(c.bus, c.pc, c.haltBug)
	if err != nil {
		c.err = err
		return 0, err
	}

	advance := uint16(in.Length)
	if c.haltBug {
		advance--
		c.haltBug = false
	}
	c.pc += advance

	// EI takes effect after the instruction that follows it
	enableInterrupts := c.eiPending

	cycles := in.Cycles + in.exec(c, in)
	c.cycles += uint64(cycles)

	if enableInterrupts && c.eiPending {
		c.eiPending = false
		c.interrupts.EnableMaster()
	}

	return cycles, nil
}

// Next decodes the instruction at PC without executing it.
func (c *CPU) Next() (Instruction, error) {
	return Decode(c.bus, c.pc)
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}

// Cycles returns the total T-cycles executed so far.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Err returns the error that stopped the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}
