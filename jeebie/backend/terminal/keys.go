package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// Terminals report key presses and repeats but never releases, so a key
// counts as held until keyTimeout passes without a repeat.
const keyTimeout = 100 * time.Millisecond

var keyMapping = map[tcell.Key]memory.JoypadKey{
	tcell.KeyUp:         memory.JoypadUp,
	tcell.KeyDown:       memory.JoypadDown,
	tcell.KeyLeft:       memory.JoypadLeft,
	tcell.KeyRight:      memory.JoypadRight,
	tcell.KeyEnter:      memory.JoypadStart,
	tcell.KeyBackspace:  memory.JoypadSelect,
	tcell.KeyBackspace2: memory.JoypadSelect,
}

var runeMapping = map[rune]memory.JoypadKey{
	'z': memory.JoypadA,
	'x': memory.JoypadB,
	'w': memory.JoypadUp,
	's': memory.JoypadDown,
	'a': memory.JoypadLeft,
	'd': memory.JoypadRight,
}

// joypadKey maps a terminal key event to a DMG key.
func joypadKey(ev *tcell.EventKey) (memory.JoypadKey, bool) {
	if ev.Key() == tcell.KeyRune {
		k, ok := runeMapping[ev.Rune()]
		return k, ok
	}
	k, ok := keyMapping[ev.Key()]
	return k, ok
}

func isDirection(k memory.JoypadKey) bool {
	return k <= memory.JoypadDown
}

// Joypad is where held keys are applied.
type Joypad interface {
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

// heldKeys turns the press-only terminal stream into press and release calls.
// It belongs to the emulation goroutine.
type heldKeys struct {
	lastSeen map[memory.JoypadKey]time.Time
}

func newHeldKeys() *heldKeys {
	return &heldKeys{lastSeen: make(map[memory.JoypadKey]time.Time)}
}

// press records a key event. Directions are exclusive: a new one releases
// any other held direction.
func (h *heldKeys) press(pad Joypad, k memory.JoypadKey, now time.Time) {
	if isDirection(k) {
		for other := range h.lastSeen {
			if other != k && isDirection(other) {
				pad.Release(other)
				delete(h.lastSeen, other)
			}
		}
	}
	if _, held := h.lastSeen[k]; !held {
		pad.Press(k)
	}
	h.lastSeen[k] = now
}

// expire releases keys not seen within keyTimeout.
func (h *heldKeys) expire(pad Joypad, now time.Time) {
	for k, seen := range h.lastSeen {
		if now.Sub(seen) >= keyTimeout {
			pad.Release(k)
			delete(h.lastSeen, k)
		}
	}
}
