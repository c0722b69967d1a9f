// Package timer implements the DIV/TIMA/TMA/TAC timer peripheral.
package timer

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// divisors maps TAC input clock select (bits 1-0) to the number of cycles
// between two TIMA increments.
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var divisors = [4]uint16{1024, 16, 64, 256}

// maxWindow is the largest batch that can be expressed as a (previous, next)
// divider pair without the window wrapping onto itself.
const maxWindow = 0xFFFF

// Timer encapsulates the Game Boy timer/DIV/TIMA/TMA/TAC behavior.
type Timer struct {
	divider uint16 // internal 16-bit counter, DIV is the upper 8 bits

	tima byte
	tma  byte
	tac  byte

	// TimerInterruptHandler is called once per TIMA overflow.
	TimerInterruptHandler func()
}

// New returns a timer that calls onOverflow on every TIMA overflow.
func New(onOverflow func()) *Timer {
	return &Timer{TimerInterruptHandler: onOverflow}
}

// SetSeed initializes the internal divider counter.
func (t *Timer) SetSeed(seed uint16) {
	t.divider = seed
}

// Divider returns the full 16-bit internal counter.
func (t *Timer) Divider() uint16 {
	return t.divider
}

func (t *Timer) enabled() bool {
	return bit.IsSet(2, t.tac)
}

func (t *Timer) divisor() uint16 {
	return divisors[t.tac&0x03]
}

// Advance moves the timer forward by the given amount of cycles.
// The divider always runs; TIMA only counts while TAC enables it. The result
// is the same whether cycles are applied one at a time or in a single batch.
func (t *Timer) Advance(cycles int) {
	for cycles > 0 {
		step := min(cycles, maxWindow)
		prev := t.divider
		t.divider += uint16(step)

		if t.enabled() {
			t.increment(TimesToIncrement(prev, t.divider, t.divisor()))
		}

		cycles -= step
	}
}

// TimesToIncrement returns how many multiples of divisor the divider crosses
// going from prev to next, i.e. the count of boundaries in (prev, next].
// A next value lower than prev is treated as having wrapped through zero.
func TimesToIncrement(prev, next, divisor uint16) int {
	start := uint32(prev)
	end := uint32(next)
	if end < start {
		end += 0x10000
	}

	d := uint32(divisor)
	return int(end/d - start/d)
}

// increment bumps TIMA n times. Every overflow reloads TMA and raises the
// interrupt, so several overflows can happen in one batch.
func (t *Timer) increment(n int) {
	for range n {
		if t.tima == 0xFF {
			t.tima = t.tma
			if t.TimerInterruptHandler != nil {
				t.TimerInterruptHandler()
			}
			continue
		}
		t.tima++
	}
}

// Read implements the bus device for the timer registers.
func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return bit.High(t.divider)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write implements the bus device for the timer registers.
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// Resetting the counter drops the selected bit; if it was high that
		// is a falling edge and TIMA counts once.
		if t.enabled() && t.divider&(t.divisor()/2) != 0 {
			t.increment(1)
		}
		t.divider = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
