package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

const (
	spriteCount   = 40
	spritesPerRow = 10
)

// Sprite is one decoded OAM entry. X and Y are screen coordinates with the
// hardware offsets (8 and 16) removed, so they can be negative.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int

	PaletteOBP1 bool
	FlipX       bool
	FlipY       bool
	BehindBG    bool
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// OAM reads object attributes out of 0xFE00-0xFE9F.
type OAM struct {
	vram   VRAM
	buffer [spritesPerRow]Sprite
}

func NewOAM(vram VRAM) *OAM {
	return &OAM{vram: vram}
}

// SpritesForLine returns the first ten objects, in OAM order, whose rows
// cover the line. X is not considered, so objects off the sides still count
// toward the limit. The returned slice is reused by the next call.
func (o *OAM) SpritesForLine(line, height int) []Sprite {
	sprites := o.buffer[:0]
	for i := range spriteCount {
		y := int(o.vram.Peek(addr.OAMStart+uint16(i*4))) - 16
		if line < y || line >= y+height {
			continue
		}
		sprites = append(sprites, o.Sprite(i))
		if len(sprites) == spritesPerRow {
			break
		}
	}
	return sprites
}

// Sprite decodes entry index (0-39).
func (o *OAM) Sprite(index int) Sprite {
	base := addr.OAMStart + uint16(index*4)
	s := Sprite{
		Y:         int(o.vram.Peek(base)) - 16,
		X:         int(o.vram.Peek(base+1)) - 8,
		TileIndex: o.vram.Peek(base + 2),
		Flags:     o.vram.Peek(base + 3),
		OAMIndex:  index,
	}
	s.parseFlags()
	return s
}
