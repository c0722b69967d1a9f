package video

// GBColor is a display colour, 0xAARRGGBB.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// Palette maps a shade (0 lightest, 3 darkest) to a display colour.
type Palette [4]GBColor

// GreyPalette is the plain four level grey ramp.
var GreyPalette = Palette{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// GreenPalette resembles the original DMG screen.
var GreenPalette = Palette{0xFF9BBC0F, 0xFF8BAC0F, 0xFF306230, 0xFF0F380F}

func (p Palette) Color(shade uint8) GBColor {
	return p[shade&0x03]
}

// RGBA converts a frame to colours, row by row.
func (p Palette) RGBA(f *Frame) []uint32 {
	out := make([]uint32, 0, FramebufferWidth*FramebufferHeight)
	for _, line := range f {
		for _, shade := range line {
			out = append(out, uint32(p.Color(shade)))
		}
	}
	return out
}

// shade maps a 2 bit colour index through a BGP/OBPx register.
//
//	bits 7-6: shade for index 3
//	bits 5-4: shade for index 2
//	bits 3-2: shade for index 1
//	bits 1-0: shade for index 0
func shade(register, colorIndex uint8) uint8 {
	return (register >> (colorIndex * 2)) & 0x03
}
