package trace

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// MismatchError describes the first record that differs from the reference.
type MismatchError struct {
	Line     int // 1-based line in the reference log, 0 if unknown
	Expected Record
	Got      Record
}

func (e *MismatchError) Error() string {
	var where string
	if e.Line > 0 {
		where = fmt.Sprintf(" (line %d)", e.Line)
	}
	return fmt.Sprintf("trace mismatch at PC=%04X%s: %s differ",
		e.Expected.PC, where, strings.Join(e.Fields(), ", "))
}

type row struct {
	name          string
	expected, got string
}

func (e *MismatchError) rows() []row {
	rows := []row{
		{"A", fmt.Sprintf("%02X", e.Expected.A), fmt.Sprintf("%02X", e.Got.A)},
		{"F", fmt.Sprintf("%02X", e.Expected.F), fmt.Sprintf("%02X", e.Got.F)},
		{"BC", fmt.Sprintf("%04X", e.Expected.BC), fmt.Sprintf("%04X", e.Got.BC)},
		{"DE", fmt.Sprintf("%04X", e.Expected.DE), fmt.Sprintf("%04X", e.Got.DE)},
		{"HL", fmt.Sprintf("%04X", e.Expected.HL), fmt.Sprintf("%04X", e.Got.HL)},
		{"SP", fmt.Sprintf("%04X", e.Expected.SP), fmt.Sprintf("%04X", e.Got.SP)},
		{"PC", fmt.Sprintf("%04X", e.Expected.PC), fmt.Sprintf("%04X", e.Got.PC)},
	}
	if e.Expected.HasCycles {
		rows = append([]row{{"CY", fmt.Sprint(e.Expected.Cycles), fmt.Sprint(e.Got.Cycles)}}, rows...)
	}
	return rows
}

// Fields lists the names of the differing fields.
func (e *MismatchError) Fields() []string {
	var out []string
	for _, r := range e.rows() {
		if r.expected != r.got {
			out = append(out, r.name)
		}
	}
	return out
}

// Table renders expected and actual values side by side, marking the
// differing rows.
//
//	REG  EXPECTED  GOT
//	A    01        01
//	F    B0        80    <
func (e *MismatchError) Table() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REG\tEXPECTED\tGOT\t")
	for _, r := range e.rows() {
		mark := ""
		if r.expected != r.got {
			mark = "<"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.name, r.expected, r.got, mark)
	}
	w.Flush()
	return sb.String()
}

// Compare returns a *MismatchError when got differs from expected. Cycles
// are only compared when the expected record carries them.
func Compare(expected, got Record) error {
	g := got
	if !expected.HasCycles {
		g.Cycles, g.HasCycles = 0, false
	} else {
		g.HasCycles = true
	}
	if expected == g {
		return nil
	}
	return &MismatchError{Expected: expected, Got: got}
}
