package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

var joypadKeyNames = [...]string{"Right", "Left", "Up", "Down", "A", "B", "Select", "Start"}

func (k JoypadKey) String() string {
	if int(k) < len(joypadKeyNames) {
		return joypadKeyNames[k]
	}
	return "Unknown"
}

// Joypad is the P1 register device.
//
// The register is a selector: bits 4-5 choose which key group is mapped to
// bits 0-3, where 0 means pressed.
//   - bit 4 clear selects the d-pad
//   - bit 5 clear selects A, B, Select, Start
//   - both clear ANDs the two groups
//   - neither returns 0x0F
//
// Bits 6-7 always read as 1.
type Joypad struct {
	buttons   uint8
	dpad      uint8
	selection uint8

	irq func()
}

// NewJoypad creates a joypad with all keys released. irq is called when a
// key goes from released to pressed.
func NewJoypad(irq func()) *Joypad {
	return &Joypad{
		buttons:   0x0F,
		dpad:      0x0F,
		selection: 0x30,
		irq:       irq,
	}
}

func (j *Joypad) Read(address uint16) byte {
	if address != addr.P1 {
		return OpenBus
	}

	result := uint8(0b11000000) | j.selection

	selectDpad := !bit.IsSet(4, j.selection)
	selectButtons := !bit.IsSet(5, j.selection)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons
	case selectDpad && !selectButtons:
		result |= j.dpad
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad
	default:
		result |= 0x0F
	}

	return result
}

// Write only latches the selection bits.
func (j *Joypad) Write(address uint16, value byte) {
	if address == addr.P1 {
		j.selection = value & 0b00110000
	}
}

func (j *Joypad) group(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}

// Press marks a key as held down.
func (j *Joypad) Press(key JoypadKey) {
	if key > JoypadStart {
		return
	}
	line, index := j.group(key)
	wasReleased := bit.IsSet(index, *line)
	*line = bit.Clear(index, *line)

	if wasReleased && j.irq != nil {
		j.irq()
	}
}

// Release marks a key as no longer held.
func (j *Joypad) Release(key JoypadKey) {
	if key > JoypadStart {
		return
	}
	line, index := j.group(key)
	*line = bit.Set(index, *line)
}
