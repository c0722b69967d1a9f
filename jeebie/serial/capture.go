package serial

import (
	"strings"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// startInternal is the SC value test ROMs write to send SB with the internal clock.
const startInternal = 0x81

// Reader is the part of the bus the capture needs.
type Reader interface {
	Read(address uint16) byte
}

// Capture is a bus interceptor that collects every byte sent over serial.
// Test ROMs print their results this way; the written values are never altered.
type Capture struct {
	memory.PassThrough

	bus Reader
	out strings.Builder
}

// NewCapture returns a capture reading SB from bus.
func NewCapture(bus Reader) *Capture {
	return &Capture{bus: bus}
}

// OnWrite records SB when a transfer is started. It runs before the write is
// committed, so SB still holds the outgoing byte.
func (c *Capture) OnWrite(address uint16, value byte) byte {
	if address == addr.SC && value == startInternal {
		c.out.WriteByte(c.bus.Read(addr.SB))
	}
	return value
}

// Output returns everything captured so far.
func (c *Capture) Output() string {
	return c.out.String()
}

func (c *Capture) Passed() bool {
	return strings.Contains(c.out.String(), "Passed")
}

func (c *Capture) Failed() bool {
	return strings.Contains(c.out.String(), "Failed")
}
