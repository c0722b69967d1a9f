package jeebie

import (
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// Emulator is what frontends drive.
type Emulator interface {
	Step() (int, error)
	RunUntilFrame() error
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
	Registers() cpu.Registers
	Next() (cpu.Instruction, error)
	Frames() uint64
}

var _ Emulator = (*DMG)(nil)
