package video

import "github.com/cespare/xxhash"

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// Scanline holds the shades (0-3, after palette mapping) of one visible line.
// It is passed by value, so a sink always owns the pixels it receives.
type Scanline [FramebufferWidth]uint8

// Frame is a complete picture, one Scanline per visible line.
type Frame [FramebufferHeight]Scanline

// Digest returns a 64 bit hash of the frame contents.
func (f *Frame) Digest() uint64 {
	d := xxhash.New()
	for i := range f {
		d.Write(f[i][:])
	}
	return d.Sum64()
}

// Sink receives the PPU output.
//
// DrawLine is called once per visible line, in increasing order, Flush once
// when the frame is complete. Disable and Enable follow LCDC bit 7.
type Sink interface {
	DrawLine(index int, pixels Scanline)
	Flush()
	Enable()
	Disable()
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) DrawLine(int, Scanline) {}
func (NopSink) Flush()                 {}
func (NopSink) Enable()                {}
func (NopSink) Disable()               {}
