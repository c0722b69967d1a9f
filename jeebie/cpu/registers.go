package cpu

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Registers is a read-only snapshot of the register file.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

func (r Registers) AF() uint16 { return bit.Combine(r.A, r.F) }
func (r Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

// FlagString returns the flags as "ZNHC", with '-' for cleared ones.
func (r Registers) FlagString() string {
	out := []byte("----")
	for i, f := range []Flag{zeroFlag, subFlag, halfCarryFlag, carryFlag} {
		if r.F&uint8(f) != 0 {
			out[i] = "ZNHC"[i]
		}
	}
	return string(out)
}

func (r Registers) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X [%s]",
		r.AF(), r.BC(), r.DE(), r.HL(), r.SP, r.PC, r.FlagString())
}

// Registers returns a snapshot of the current register values.
func (c *CPU) Registers() Registers {
	return Registers{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP: c.sp,
		PC: c.pc,
	}
}

// SetRegisters overwrites the register file. The low nibble of F is dropped.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.f = r.A, r.F&0xF0
	c.b, c.c = r.B, r.C
	c.d, c.e = r.D, r.E
	c.h, c.l = r.H, r.L
	c.sp = r.SP
	c.pc = r.PC
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// register indexes as encoded in opcode bits
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// reg8 returns the register for an opcode index. (HL) has no backing
// register and must go through read8/write8/modify8.
func (c *CPU) reg8(index uint8) *uint8 {
	switch index {
	case regB:
		return &c.b
	case regC:
		return &c.c
	case regD:
		return &c.d
	case regE:
		return &c.e
	case regH:
		return &c.h
	case regL:
		return &c.l
	case regA:
		return &c.a
	}
	panic(fmt.Sprintf("cpu: no register for index %d", index))
}

func (c *CPU) read8(index uint8) uint8 {
	if index == regHLIndirect {
		return c.bus.Read(c.getHL())
	}
	return *c.reg8(index)
}

func (c *CPU) write8(index, value uint8) {
	if index == regHLIndirect {
		c.bus.Write(c.getHL(), value)
		return
	}
	*c.reg8(index) = value
}

// modify8 applies op in place to a register, or read-modify-writes (HL).
func (c *CPU) modify8(index uint8, op func(*uint8)) {
	if index == regHLIndirect {
		address := c.getHL()
		value := c.bus.Read(address)
		op(&value)
		c.bus.Write(address, value)
		return
	}
	op(c.reg8(index))
}

// 16 bit register pair indexes as encoded in opcode bits 4-5
const (
	pairBC uint8 = iota
	pairDE
	pairHL
	pairSP // AF for PUSH/POP
)

var pairNames = [4]string{"BC", "DE", "HL", "SP"}
var stackPairNames = [4]string{"BC", "DE", "HL", "AF"}

func (c *CPU) read16(index uint8) uint16 {
	switch index {
	case pairBC:
		return c.getBC()
	case pairDE:
		return c.getDE()
	case pairHL:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) write16(index uint8, value uint16) {
	switch index {
	case pairBC:
		c.setBC(value)
	case pairDE:
		c.setDE(value)
	case pairHL:
		c.setHL(value)
	default:
		c.sp = value
	}
}
