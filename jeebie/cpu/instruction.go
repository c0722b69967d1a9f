package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// AddressingMode describes the operand bytes following an opcode.
type AddressingMode uint8

const (
	// Implied instructions have no operand bytes.
	Implied AddressingMode = iota
	// Immediate8 takes one unsigned byte (d8, a8).
	Immediate8
	// Immediate16 takes a little endian word (d16, a16).
	Immediate16
	// Relative8 takes one signed byte (r8).
	Relative8
)

// operandBytes returns the number of operand bytes for the mode.
func (m AddressingMode) operandBytes() uint8 {
	switch m {
	case Immediate8, Relative8:
		return 1
	case Immediate16:
		return 2
	default:
		return 0
	}
}

// execFunc runs an instruction whose operands are already fetched and PC
// already moved past it. It returns the cycles taken on top of the base cost,
// i.e. the extra cost of a taken branch.
type execFunc func(c *CPU, in Instruction) int

// Instruction is a decoded instruction. It is produced fresh for every step
// and never retained by the CPU.
type Instruction struct {
	// Opcode is the opcode byte, or 0xCBxx for prefixed instructions.
	Opcode   uint16
	Operands [2]byte
	Length   uint8
	Mode     AddressingMode
	// Cycles is the base cost, in T-cycles.
	Cycles   int
	Mnemonic string

	exec execFunc
}

// Prefixed reports whether the instruction comes from the 0xCB table.
func (in Instruction) Prefixed() bool {
	return bit.High(in.Opcode) == 0xCB
}

func (in Instruction) n() uint8 {
	return in.Operands[0]
}

func (in Instruction) nn() uint16 {
	return bit.Combine(in.Operands[1], in.Operands[0])
}

func (in Instruction) e() int8 {
	return int8(in.Operands[0])
}

// String returns the disassembled instruction, with operands filled in.
func (in Instruction) String() string {
	if in.exec == nil {
		return fmt.Sprintf("DB $%02X", in.Opcode)
	}

	r := strings.NewReplacer(
		"d16", fmt.Sprintf("$%04X", in.nn()),
		"a16", fmt.Sprintf("$%04X", in.nn()),
		"d8", fmt.Sprintf("$%02X", in.n()),
		"a8", fmt.Sprintf("$%02X", in.n()),
		"r8", fmt.Sprintf("%+d", in.e()),
	)
	return r.Replace(in.Mnemonic)
}

// Decode reads the instruction at pc without modifying any state.
func Decode(bus Bus, pc uint16) (Instruction, error) {
	return decode(bus, pc, false)
}

// decode builds the instruction at pc. With haltBug set the byte after the
// opcode is not skipped, so the first operand (or the CB sub-opcode) is the
// opcode byte itself.
func decode(bus Bus, pc uint16, haltBug bool) (Instruction, error) {
	code := bus.Read(pc)
	entry := opcodes[code]
	opcode := uint16(code)
	prefixLength := uint8(1)

	if code == 0xCB {
		sub := pc + 1
		if haltBug {
			sub = pc
		}
		cb := bus.Read(sub)
		entry = opcodesCB[cb]
		opcode = bit.Combine(0xCB, cb)
		prefixLength = 2
	}

	if entry.exec == nil {
		return Instruction{Opcode: opcode}, &DecodeError{Opcode: opcode, PC: pc}
	}

	in := Instruction{
		Opcode:   opcode,
		Length:   prefixLength + entry.mode.operandBytes(),
		Mode:     entry.mode,
		Cycles:   entry.cycles,
		Mnemonic: entry.mnemonic,
		exec:     entry.exec,
	}

	operands := pc + uint16(prefixLength)
	if haltBug {
		operands--
	}
	for i := range entry.mode.operandBytes() {
		in.Operands[i] = bus.Read(operands + uint16(i))
	}

	return in, nil
}
