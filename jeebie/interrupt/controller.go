// Package interrupt implements the interrupt controller: the IF request
// register, the IE enable register and the master enable flag (IME).
package interrupt

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/addr"
)

// Source is one of the five interrupt sources. The value is the bit index in
// IF and IE, which is also the dispatch priority (lower wins).
type Source uint8

const (
	// VBlank is requested when the PPU enters vertical blank.
	VBlank Source = iota
	// LCDStat is requested on the STAT conditions selected in the STAT register.
	LCDStat
	// Timer is requested when TIMA overflows.
	Timer
	// Serial is requested when a serial transfer completes.
	Serial
	// Joypad is requested when a selected input line goes from high to low.
	Joypad
)

const (
	sourceMask  uint8  = 0x1F
	vectorBase  uint16 = 0x40
	vectorShift        = 3
)

// Vector returns the fixed handler address for the source:
// 0x40, 0x48, 0x50, 0x58, 0x60.
func (s Source) Vector() uint16 {
	return vectorBase + uint16(s)<<vectorShift
}

// Mask returns the bit for this source in IF/IE.
func (s Source) Mask() uint8 {
	return 1 << s
}

func (s Source) String() string {
	switch s {
	case VBlank:
		return "VBlank"
	case LCDStat:
		return "LCDStat"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Controller owns the interrupt state. Peripherals raise requests through
// Request, the CPU consumes them through Service at step boundaries.
type Controller struct {
	flag   uint8 // IF, only the low 5 bits are stored
	enable uint8 // IE, all 8 bits are stored but only 5 take part in dispatch
	ime    bool
}

// New returns a controller with no requests, nothing enabled and IME off.
func New() *Controller {
	return &Controller{}
}

// Request sets the request bit for the source.
func (c *Controller) Request(s Source) {
	c.flag |= s.Mask()
}

// Pending returns the requested and enabled sources, regardless of IME.
// A non-zero value wakes the CPU from HALT.
func (c *Controller) Pending() uint8 {
	return c.flag & c.enable & sourceMask
}

// Service selects the highest priority pending source when IME is set, clears
// its request bit and IME, and returns it. It does nothing and returns false
// when IME is off or nothing is pending. At most one source is serviced per call.
func (c *Controller) Service() (Source, bool) {
	if !c.ime {
		return 0, false
	}

	pending := c.Pending()
	if pending == 0 {
		return 0, false
	}

	for s := VBlank; s <= Joypad; s++ {
		if pending&s.Mask() != 0 {
			c.flag &^= s.Mask()
			c.ime = false
			return s, true
		}
	}

	return 0, false
}

// EnableMaster sets IME. Called by EI (after its delay) and RETI.
func (c *Controller) EnableMaster() {
	c.ime = true
}

// DisableMaster clears IME. Called by DI.
func (c *Controller) DisableMaster() {
	c.ime = false
}

// MasterEnabled reports the IME flag.
func (c *Controller) MasterEnabled() bool {
	return c.ime
}

// Read implements the bus device for IF and IE.
// The upper 3 bits of IF are unused and always read as 1.
func (c *Controller) Read(address uint16) byte {
	switch address {
	case addr.IF:
		return c.flag | ^sourceMask
	case addr.IE:
		return c.enable
	default:
		return 0xFF
	}
}

// Write implements the bus device for IF and IE.
func (c *Controller) Write(address uint16, value byte) {
	switch address {
	case addr.IF:
		c.flag = value & sourceMask
	case addr.IE:
		c.enable = value
	}
}
