// Package trace reads reference execution logs and compares them with the
// live register state, one record per step.
//
// A record is a line of space separated KEY:VALUE fields:
//
//	CY:1234 A:01 F:B0 BC:0013 DE:00D8 HL:014D SP:FFFE PC:0100
//
// CY is decimal and optional, everything else is hex. Single registers
// (B:00 C:13 ...) are accepted in place of the pairs, unknown keys are
// ignored so logs carrying extra columns (PCMEM and friends) still parse.
package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/cpu"
)

// Record is one register snapshot.
type Record struct {
	Cycles    uint64
	HasCycles bool

	A, F uint8
	BC   uint16
	DE   uint16
	HL   uint16
	SP   uint16
	PC   uint16
}

// FromRegisters builds a record from a CPU snapshot.
func FromRegisters(cycles uint64, r cpu.Registers) Record {
	return Record{
		Cycles:    cycles,
		HasCycles: true,
		A:         r.A,
		F:         r.F,
		BC:        r.BC(),
		DE:        r.DE(),
		HL:        r.HL(),
		SP:        r.SP,
		PC:        r.PC,
	}
}

func (r Record) String() string {
	regs := fmt.Sprintf("A:%02X F:%02X BC:%04X DE:%04X HL:%04X SP:%04X PC:%04X",
		r.A, r.F, r.BC, r.DE, r.HL, r.SP, r.PC)
	if !r.HasCycles {
		return regs
	}
	return fmt.Sprintf("CY:%d %s", r.Cycles, regs)
}

const (
	fieldA = 1 << iota
	fieldF
	fieldBC
	fieldDE
	fieldHL
	fieldSP
	fieldPC

	required = fieldA | fieldF | fieldBC | fieldDE | fieldHL | fieldSP | fieldPC
)

var fieldNames = []string{"A", "F", "BC", "DE", "HL", "SP", "PC"}

// ParseRecord parses a single trace line.
func ParseRecord(line string) (Record, error) {
	var (
		r    Record
		seen int
		// single register halves, combined at the end
		halves [6]uint8
		hseen  [6]bool
	)

	for _, field := range strings.Fields(line) {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}

		if key == "CY" {
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Record{}, fmt.Errorf("invalid CY %q: %w", value, err)
			}
			r.Cycles, r.HasCycles = n, true
			continue
		}

		var bits int
		switch key {
		case "A", "F", "B", "C", "D", "E", "H", "L":
			bits = 8
		case "BC", "DE", "HL", "SP", "PC", "AF":
			bits = 16
		default:
			continue
		}

		n, err := strconv.ParseUint(value, 16, bits)
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}

		switch key {
		case "A":
			r.A, seen = uint8(n), seen|fieldA
		case "F":
			r.F, seen = uint8(n), seen|fieldF
		case "AF":
			r.A, r.F, seen = bit.High(uint16(n)), bit.Low(uint16(n)), seen|fieldA|fieldF
		case "BC":
			r.BC, seen = uint16(n), seen|fieldBC
		case "DE":
			r.DE, seen = uint16(n), seen|fieldDE
		case "HL":
			r.HL, seen = uint16(n), seen|fieldHL
		case "SP":
			r.SP, seen = uint16(n), seen|fieldSP
		case "PC":
			r.PC, seen = uint16(n), seen|fieldPC
		default:
			i := strings.Index("BCDEHL", key)
			halves[i], hseen[i] = uint8(n), true
		}
	}

	pairs := []struct {
		field int
		dst   *uint16
	}{{fieldBC, &r.BC}, {fieldDE, &r.DE}, {fieldHL, &r.HL}}
	for i, p := range pairs {
		if seen&p.field == 0 && hseen[i*2] && hseen[i*2+1] {
			*p.dst = bit.Combine(halves[i*2], halves[i*2+1])
			seen |= p.field
		}
	}

	if missing := required &^ seen; missing != 0 {
		var names []string
		for i, name := range fieldNames {
			if missing&(1<<i) != 0 {
				names = append(names, name)
			}
		}
		return Record{}, fmt.Errorf("missing fields %s in %q", strings.Join(names, ","), line)
	}

	return r, nil
}
