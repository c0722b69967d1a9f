package cpu

import "fmt"

// DecodeError is returned when the byte at PC does not name a valid
// instruction. Execution cannot continue past it.
type DecodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}
