// Package video implements the DMG picture processing unit: the per-line mode
// state machine, the LCD registers and the background, window and object
// renderer that feeds finished lines to a Sink.
package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/interrupt"
)

// Mode is the PPU mode, valued as in STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModePixelTransfer
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBlank"
	case ModeVBlank:
		return "VBlank"
	case ModeOAMScan:
		return "OAMScan"
	case ModePixelTransfer:
		return "PixelTransfer"
	}
	return "Unknown"
}

const (
	oamScanCycles       = 80
	pixelTransferCycles = 172
	hblankCycles        = 204

	// LineCycles is the length of every line, visible or not.
	LineCycles = oamScanCycles + pixelTransferCycles + hblankCycles
	// LinesPerFrame counts the 144 visible lines and the 10 VBlank lines.
	LinesPerFrame = 154
	// FrameCycles is the length of a full frame.
	FrameCycles = LineCycles * LinesPerFrame
)

// LCDC bits
const (
	lcdcBGEnable     uint8 = 0
	lcdcSpriteEnable uint8 = 1
	lcdcSpriteSize   uint8 = 2
	lcdcBGMap        uint8 = 3
	lcdcTileData     uint8 = 4
	lcdcWindowEnable uint8 = 5
	lcdcWindowMap    uint8 = 6
	lcdcDisplay      uint8 = 7
)

// STAT bits
const (
	statCoincidence uint8 = 2
	statHBlankIRQ   uint8 = 3
	statVBlankIRQ   uint8 = 4
	statOAMIRQ      uint8 = 5
	statLYCIRQ      uint8 = 6

	statWritable uint8 = 0x78
)

// Interrupts receives the PPU's VBlank and LCD-status requests.
type Interrupts interface {
	Request(s interrupt.Source)
}

// PPU owns the LCD registers and produces one Scanline per visible line.
type PPU struct {
	vram VRAM
	irq  Interrupts
	sink Sink
	oam  *OAM

	lcdc, stat   uint8
	scy, scx     uint8
	ly, lyc      uint8
	bgp          uint8
	obp0, obp1   uint8
	wy, wx       uint8
	mode         Mode
	dots         int
	windowLine   int
	statLine     bool
	frames       uint64
	priority     SpritePriorityBuffer
	bgIndex      [FramebufferWidth]uint8
	spriteIndex  [FramebufferWidth]uint8
	spriteSource [FramebufferWidth]*Sprite
}

// New returns a PPU with the LCD on, in OAMScan of line 0, registers as the
// boot ROM leaves them. A nil sink is replaced with NopSink.
func New(vram VRAM, irq Interrupts, sink Sink) *PPU {
	if sink == nil {
		sink = NopSink{}
	}
	return &PPU{
		vram: vram,
		irq:  irq,
		sink: sink,
		oam:  NewOAM(vram),
		lcdc: 0x91,
		bgp:  0xFC,
		obp0: 0xFF,
		obp1: 0xFF,
		mode: ModeOAMScan,
	}
}

// SetSink replaces the output sink.
func (p *PPU) SetSink(s Sink) {
	if s == nil {
		s = NopSink{}
	}
	p.sink = s
}

func (p *PPU) Mode() Mode { return p.mode }

func (p *PPU) LY() uint8 { return p.ly }

// Frames counts VBlank entries since power on.
func (p *PPU) Frames() uint64 { return p.frames }

// Enabled reports LCDC bit 7.
func (p *PPU) Enabled() bool { return bit.IsSet(lcdcDisplay, p.lcdc) }

// Advance runs the mode state machine for the given number of cycles.
// Nothing progresses while the LCD is off.
func (p *PPU) Advance(cycles int) {
	if !p.Enabled() {
		return
	}

	p.dots += cycles
	for {
		switch p.mode {
		case ModeOAMScan:
			if p.dots < oamScanCycles {
				return
			}
			p.dots -= oamScanCycles
			p.setMode(ModePixelTransfer)

		case ModePixelTransfer:
			if p.dots < pixelTransferCycles {
				return
			}
			p.dots -= pixelTransferCycles
			p.drawScanline()
			p.setMode(ModeHBlank)

		case ModeHBlank:
			if p.dots < hblankCycles {
				return
			}
			p.dots -= hblankCycles
			p.setLY(p.ly + 1)
			if int(p.ly) == FramebufferHeight {
				p.enterVBlank()
			} else {
				p.setMode(ModeOAMScan)
			}

		case ModeVBlank:
			if p.dots < LineCycles {
				return
			}
			p.dots -= LineCycles
			if int(p.ly) == LinesPerFrame-1 {
				p.windowLine = 0
				p.setLY(0)
				p.setMode(ModeOAMScan)
			} else {
				p.setLY(p.ly + 1)
			}
		}
	}
}

func (p *PPU) enterVBlank() {
	p.setMode(ModeVBlank)
	p.irq.Request(interrupt.VBlank)
	p.frames++
	p.sink.Flush()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.updateStatLine()
}

func (p *PPU) setLY(ly uint8) {
	p.ly = ly
	p.updateStatLine()
}

// updateStatLine ORs the enabled STAT conditions together and requests
// LCDStat only on a low to high transition of the result.
func (p *PPU) updateStatLine() {
	line := p.Enabled() &&
		(bit.IsSet(statHBlankIRQ, p.stat) && p.mode == ModeHBlank ||
			bit.IsSet(statVBlankIRQ, p.stat) && p.mode == ModeVBlank ||
			bit.IsSet(statOAMIRQ, p.stat) && p.mode == ModeOAMScan ||
			bit.IsSet(statLYCIRQ, p.stat) && p.ly == p.lyc)

	if line && !p.statLine {
		p.irq.Request(interrupt.LCDStat)
	}
	p.statLine = line
}

func (p *PPU) setLCDC(value uint8) {
	wasOn := p.Enabled()
	p.lcdc = value
	isOn := p.Enabled()

	switch {
	case wasOn && !isOn:
		p.ly = 0
		p.dots = 0
		p.mode = ModeHBlank
		p.statLine = false
		p.sink.Disable()
	case !wasOn && isOn:
		p.ly = 0
		p.dots = 0
		p.windowLine = 0
		p.sink.Enable()
		p.setMode(ModeOAMScan)
	}
}

// Read implements memory.Device for FF40-FF45 and FF47-FF4B.
func (p *PPU) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		v := 0x80 | p.stat&statWritable | uint8(p.mode)
		if p.ly == p.lyc {
			v = bit.Set(statCoincidence, v)
		}
		return v
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	}
	return 0xFF
}

// Write implements memory.Device. LY is read-only.
func (p *PPU) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		p.setLCDC(value)
	case addr.STAT:
		p.stat = value & statWritable
		p.updateStatLine()
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LYC:
		p.lyc = value
		p.updateStatLine()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

func (p *PPU) drawScanline() {
	var line Scanline
	p.bgIndex = [FramebufferWidth]uint8{}

	if bit.IsSet(lcdcBGEnable, p.lcdc) {
		p.drawBackground(&line)
		if bit.IsSet(lcdcWindowEnable, p.lcdc) && p.ly >= p.wy && p.wx <= 166 {
			p.drawWindow(&line)
		}
	}
	if bit.IsSet(lcdcSpriteEnable, p.lcdc) {
		p.drawSprites(&line)
	}

	p.sink.DrawLine(int(p.ly), line)
}

func (p *PPU) mapBase(bitIndex uint8) uint16 {
	if bit.IsSet(bitIndex, p.lcdc) {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// tileRow fetches row y of the map tile at (tx, ty).
func (p *PPU) tileRow(mapBase uint16, tx, ty, y int) TileRow {
	tile := p.vram.Peek(mapBase + uint16(ty*32+tx))
	return fetchRow(p.vram, tileAddress(tile, bit.IsSet(lcdcTileData, p.lcdc)), y)
}

func (p *PPU) drawBackground(line *Scanline) {
	mapBase := p.mapBase(lcdcBGMap)
	y := int(p.ly+p.scy) & 0xFF

	var row TileRow
	for x := 0; x < FramebufferWidth; x++ {
		bx := (x + int(p.scx)) & 0xFF
		if x == 0 || bx%8 == 0 {
			row = p.tileRow(mapBase, bx/8, y/8, y%8)
		}
		idx := row.GetPixel(bx % 8)
		p.bgIndex[x] = idx
		line[x] = shade(p.bgp, idx)
	}
}

// drawWindow overlays the window from screen column WX-7. The window keeps
// its own line counter, which only advances on lines where it was drawn.
func (p *PPU) drawWindow(line *Scanline) {
	mapBase := p.mapBase(lcdcWindowMap)
	start := int(p.wx) - 7
	y := p.windowLine

	var row TileRow
	for x := max(start, 0); x < FramebufferWidth; x++ {
		wx := x - start
		if x == max(start, 0) || wx%8 == 0 {
			row = p.tileRow(mapBase, wx/8, y/8, y%8)
		}
		idx := row.GetPixel(wx % 8)
		p.bgIndex[x] = idx
		line[x] = shade(p.bgp, idx)
	}
	p.windowLine++
}

func (p *PPU) spriteHeight() int {
	if bit.IsSet(lcdcSpriteSize, p.lcdc) {
		return 16
	}
	return 8
}

func (p *PPU) drawSprites(line *Scanline) {
	height := p.spriteHeight()
	sprites := p.oam.SpritesForLine(int(p.ly), height)
	p.priority.Clear()

	for i := range sprites {
		s := &sprites[i]
		tile := s.TileIndex
		if height == 16 {
			tile &= 0xFE
		}
		y := int(p.ly) - s.Y
		if s.FlipY {
			y = height - 1 - y
		}
		row := fetchRow(p.vram, addr.TileData0+uint16(tile)*16, y)

		for px := range 8 {
			var idx uint8
			if s.FlipX {
				idx = row.GetPixelFlipped(px)
			} else {
				idx = row.GetPixel(px)
			}
			if idx == 0 {
				continue
			}
			x := s.X + px
			if p.priority.TryClaimPixel(x, s.OAMIndex, s.X) {
				p.spriteIndex[x] = idx
				p.spriteSource[x] = s
			}
		}
	}

	for x := range FramebufferWidth {
		if p.priority.GetOwner(x) < 0 {
			continue
		}
		s := p.spriteSource[x]
		if s.BehindBG && p.bgIndex[x] != 0 {
			continue
		}
		palette := p.obp0
		if s.PaletteOBP1 {
			palette = p.obp1
		}
		line[x] = shade(palette, p.spriteIndex[x])
	}
}
