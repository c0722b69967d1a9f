package cpu

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// opcode is a table entry. A nil exec marks an illegal opcode.
type opcode struct {
	mnemonic string
	mode     AddressingMode
	cycles   int
	exec     execFunc
}

var (
	opcodes   [256]opcode
	opcodesCB [256]opcode
)

func init() {
	buildOpcodes()
	buildOpcodesCB()
}

// extra cycles taken by a conditional branch when the condition holds
const (
	jrTaken   = 4
	jpTaken   = 4
	callTaken = 12
	retTaken  = 12
)

// indirect addressing modes of the LD (rr),A / LD A,(rr) block
var indirectNames = [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}

func (c *CPU) indirectAddress(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		hl := c.getHL()
		c.setHL(hl + 1)
		return hl
	default:
		hl := c.getHL()
		c.setHL(hl - 1)
		return hl
	}
}

func cost(index uint8, register, indirect int) int {
	if index == regHLIndirect {
		return indirect
	}
	return register
}

func buildOpcodes() {
	def := func(code uint8, mnemonic string, mode AddressingMode, cycles int, exec execFunc) {
		opcodes[code] = opcode{mnemonic: mnemonic, mode: mode, cycles: cycles, exec: exec}
	}

	// misc / control
	def(0x00, "NOP", Implied, 4, nop)
	def(0x10, "STOP", Immediate8, 4, nop)
	def(0x76, "HALT", Implied, 4, halt)
	def(0xF3, "DI", Implied, 4, func(c *CPU, _ Instruction) int {
		c.eiPending = false
		c.interrupts.DisableMaster()
		return 0
	})
	def(0xFB, "EI", Implied, 4, func(c *CPU, _ Instruction) int {
		c.eiPending = true
		return 0
	})
	def(0x27, "DAA", Implied, 4, func(c *CPU, _ Instruction) int {
		c.daa()
		return 0
	})
	def(0x2F, "CPL", Implied, 4, func(c *CPU, _ Instruction) int {
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
		return 0
	})
	def(0x37, "SCF", Implied, 4, func(c *CPU, _ Instruction) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
		return 0
	})
	def(0x3F, "CCF", Implied, 4, func(c *CPU, _ Instruction) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
		return 0
	})

	// RLCA, RRCA, RLA, RRA always clear Z
	for op := range uint8(4) {
		def(op<<3|0x07, rotateNames[op]+"A", Implied, 4, func(c *CPU, _ Instruction) int {
			c.rotate(op, &c.a)
			c.resetFlag(zeroFlag)
			return 0
		})
	}

	// 16 bit loads and arithmetic
	for p := range uint8(4) {
		row := p << 4
		def(row|0x01, "LD "+pairNames[p]+",d16", Immediate16, 12, func(c *CPU, in Instruction) int {
			c.write16(p, in.nn())
			return 0
		})
		def(row|0x03, "INC "+pairNames[p], Implied, 8, func(c *CPU, _ Instruction) int {
			c.write16(p, c.read16(p)+1)
			return 0
		})
		def(row|0x0B, "DEC "+pairNames[p], Implied, 8, func(c *CPU, _ Instruction) int {
			c.write16(p, c.read16(p)-1)
			return 0
		})
		def(row|0x09, "ADD HL,"+pairNames[p], Implied, 8, func(c *CPU, _ Instruction) int {
			c.addToHL(c.read16(p))
			return 0
		})
		def(row|0x02, "LD "+indirectNames[p]+",A", Implied, 8, func(c *CPU, _ Instruction) int {
			c.bus.Write(c.indirectAddress(p), c.a)
			return 0
		})
		def(row|0x0A, "LD A,"+indirectNames[p], Implied, 8, func(c *CPU, _ Instruction) int {
			c.a = c.bus.Read(c.indirectAddress(p))
			return 0
		})
		def(0xC5|row, "PUSH "+stackPairNames[p], Implied, 16, func(c *CPU, _ Instruction) int {
			if p == pairSP {
				c.pushStack(c.getAF())
			} else {
				c.pushStack(c.read16(p))
			}
			return 0
		})
		def(0xC1|row, "POP "+stackPairNames[p], Implied, 12, func(c *CPU, _ Instruction) int {
			if p == pairSP {
				c.setAF(c.popStack())
			} else {
				c.write16(p, c.popStack())
			}
			return 0
		})
	}

	// 8 bit INC/DEC/LD r,d8
	for r := range uint8(8) {
		name := registerNames[r]
		def(r<<3|0x04, "INC "+name, Implied, cost(r, 4, 12), func(c *CPU, _ Instruction) int {
			c.modify8(r, c.inc)
			return 0
		})
		def(r<<3|0x05, "DEC "+name, Implied, cost(r, 4, 12), func(c *CPU, _ Instruction) int {
			c.modify8(r, c.dec)
			return 0
		})
		def(r<<3|0x06, "LD "+name+",d8", Immediate8, cost(r, 8, 12), func(c *CPU, in Instruction) int {
			c.write8(r, in.n())
			return 0
		})
	}

	// LD r,r' block, 0x76 is HALT
	for dst := range uint8(8) {
		for src := range uint8(8) {
			code := 0x40 | dst<<3 | src
			if code == 0x76 {
				continue
			}
			cycles := 4
			if dst == regHLIndirect || src == regHLIndirect {
				cycles = 8
			}
			def(code, "LD "+registerNames[dst]+","+registerNames[src], Implied, cycles, func(c *CPU, _ Instruction) int {
				c.write8(dst, c.read8(src))
				return 0
			})
		}
	}

	// ALU block and immediate variants
	for op := range uint8(8) {
		for src := range uint8(8) {
			def(0x80|op<<3|src, aluNames[op]+registerNames[src], Implied, cost(src, 4, 8), func(c *CPU, _ Instruction) int {
				c.alu(op, c.read8(src))
				return 0
			})
		}
		def(0xC6|op<<3, aluNames[op]+"d8", Immediate8, 8, func(c *CPU, in Instruction) int {
			c.alu(op, in.n())
			return 0
		})
		vector := uint16(op) << 3
		def(0xC7|op<<3, fmt.Sprintf("RST $%02X", vector), Implied, 16, func(c *CPU, _ Instruction) int {
			c.pushStack(c.pc)
			c.pc = vector
			return 0
		})
	}

	// jumps, calls and returns
	def(0x18, "JR r8", Relative8, 12, func(c *CPU, in Instruction) int {
		c.jr(in.e())
		return 0
	})
	def(0xC3, "JP a16", Immediate16, 16, func(c *CPU, in Instruction) int {
		c.pc = in.nn()
		return 0
	})
	def(0xE9, "JP HL", Implied, 4, func(c *CPU, _ Instruction) int {
		c.pc = c.getHL()
		return 0
	})
	def(0xCD, "CALL a16", Immediate16, 24, func(c *CPU, in Instruction) int {
		c.call(in.nn())
		return 0
	})
	def(0xC9, "RET", Implied, 16, func(c *CPU, _ Instruction) int {
		c.pc = c.popStack()
		return 0
	})
	def(0xD9, "RETI", Implied, 16, func(c *CPU, _ Instruction) int {
		c.pc = c.popStack()
		c.interrupts.EnableMaster()
		return 0
	})

	for cc := range uint8(4) {
		name := conditionNames[cc]
		def(0x20|cc<<3, "JR "+name+",r8", Relative8, 8, func(c *CPU, in Instruction) int {
			if !c.condition(cc) {
				return 0
			}
			c.jr(in.e())
			return jrTaken
		})
		def(0xC2|cc<<3, "JP "+name+",a16", Immediate16, 12, func(c *CPU, in Instruction) int {
			if !c.condition(cc) {
				return 0
			}
			c.pc = in.nn()
			return jpTaken
		})
		def(0xC4|cc<<3, "CALL "+name+",a16", Immediate16, 12, func(c *CPU, in Instruction) int {
			if !c.condition(cc) {
				return 0
			}
			c.call(in.nn())
			return callTaken
		})
		def(0xC0|cc<<3, "RET "+name, Implied, 8, func(c *CPU, _ Instruction) int {
			if !c.condition(cc) {
				return 0
			}
			c.pc = c.popStack()
			return retTaken
		})
	}

	// memory and stack pointer loads
	def(0x08, "LD (a16),SP", Immediate16, 20, func(c *CPU, in Instruction) int {
		address := in.nn()
		c.bus.Write(address, bit.Low(c.sp))
		c.bus.Write(address+1, bit.High(c.sp))
		return 0
	})
	def(0xE0, "LDH (a8),A", Immediate8, 12, func(c *CPU, in Instruction) int {
		c.bus.Write(0xFF00|uint16(in.n()), c.a)
		return 0
	})
	def(0xF0, "LDH A,(a8)", Immediate8, 12, func(c *CPU, in Instruction) int {
		c.a = c.bus.Read(0xFF00 | uint16(in.n()))
		return 0
	})
	def(0xE2, "LD (C),A", Implied, 8, func(c *CPU, _ Instruction) int {
		c.bus.Write(0xFF00|uint16(c.c), c.a)
		return 0
	})
	def(0xF2, "LD A,(C)", Implied, 8, func(c *CPU, _ Instruction) int {
		c.a = c.bus.Read(0xFF00 | uint16(c.c))
		return 0
	})
	def(0xEA, "LD (a16),A", Immediate16, 16, func(c *CPU, in Instruction) int {
		c.bus.Write(in.nn(), c.a)
		return 0
	})
	def(0xFA, "LD A,(a16)", Immediate16, 16, func(c *CPU, in Instruction) int {
		c.a = c.bus.Read(in.nn())
		return 0
	})
	def(0xE8, "ADD SP,r8", Relative8, 16, func(c *CPU, in Instruction) int {
		c.sp = c.addSP(in.e())
		return 0
	})
	def(0xF8, "LD HL,SP+r8", Relative8, 12, func(c *CPU, in Instruction) int {
		c.setHL(c.addSP(in.e()))
		return 0
	})
	def(0xF9, "LD SP,HL", Implied, 8, func(c *CPU, _ Instruction) int {
		c.sp = c.getHL()
		return 0
	})
}

func buildOpcodesCB() {
	for code := range 256 {
		r := uint8(code) & 0x07
		index := uint8(code) >> 3 & 0x07
		target := registerNames[r]

		var entry opcode
		switch code >> 6 {
		case 0:
			entry = opcode{
				mnemonic: rotateNames[index] + " " + target,
				cycles:   cost(r, 8, 16),
				exec: func(c *CPU, _ Instruction) int {
					c.modify8(r, func(v *uint8) { c.rotate(index, v) })
					return 0
				},
			}
		case 1:
			entry = opcode{
				mnemonic: fmt.Sprintf("BIT %d,%s", index, target),
				cycles:   cost(r, 8, 12),
				exec: func(c *CPU, _ Instruction) int {
					c.bit(index, c.read8(r))
					return 0
				},
			}
		case 2:
			entry = opcode{
				mnemonic: fmt.Sprintf("RES %d,%s", index, target),
				cycles:   cost(r, 8, 16),
				exec: func(c *CPU, _ Instruction) int {
					c.modify8(r, func(v *uint8) { c.res(index, v) })
					return 0
				},
			}
		default:
			entry = opcode{
				mnemonic: fmt.Sprintf("SET %d,%s", index, target),
				cycles:   cost(r, 8, 16),
				exec: func(c *CPU, _ Instruction) int {
					c.modify8(r, func(v *uint8) { c.set(index, v) })
					return 0
				},
			}
		}
		opcodesCB[code] = entry
	}
}

func nop(_ *CPU, _ Instruction) int {
	return 0
}

// halt stops fetching until an interrupt is pending. With IME off and an
// interrupt already pending the CPU does not halt; instead the next opcode
// byte is read twice (the HALT bug).
func halt(c *CPU, _ Instruction) int {
	if !c.interrupts.MasterEnabled() && c.interrupts.Pending() != 0 {
		c.haltBug = true
		return 0
	}
	c.halted = true
	return 0
}

// jr performs a relative jump from the address after the instruction.
func (c *CPU) jr(offset int8) {
	c.pc = bit.AddSigned(c.pc, offset)
}

func (c *CPU) call(address uint16) {
	c.pushStack(c.pc)
	c.pc = address
}
