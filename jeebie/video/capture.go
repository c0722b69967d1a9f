package video

// CaptureSink keeps the PPU output in memory for tests and headless runs.
type CaptureSink struct {
	current Frame
	pending []int

	last      Frame
	lastLines []int
	digests   []uint64

	enabled  bool
	disables int
}

func NewCaptureSink() *CaptureSink {
	return &CaptureSink{enabled: true}
}

func (c *CaptureSink) DrawLine(index int, pixels Scanline) {
	if index >= 0 && index < FramebufferHeight {
		c.current[index] = pixels
	}
	c.pending = append(c.pending, index)
}

// Flush completes the frame: it becomes Last and its digest is recorded.
func (c *CaptureSink) Flush() {
	c.last = c.current
	c.lastLines = c.pending
	c.pending = nil
	c.digests = append(c.digests, c.last.Digest())
}

func (c *CaptureSink) Enable() { c.enabled = true }

func (c *CaptureSink) Disable() {
	c.enabled = false
	c.disables++
	c.pending = nil
}

// Line returns line index of the frame being drawn.
func (c *CaptureSink) Line(index int) Scanline { return c.current[index] }

// Last returns a copy of the most recently flushed frame.
func (c *CaptureSink) Last() Frame { return c.last }

// Lines returns the line indices drawn for the last flushed frame, in order.
func (c *CaptureSink) Lines() []int { return c.lastLines }

// Pending returns the lines drawn since the last flush.
func (c *CaptureSink) Pending() []int { return c.pending }

// Digests returns one xxhash digest per flushed frame.
func (c *CaptureSink) Digests() []uint64 { return c.digests }

func (c *CaptureSink) Flushes() int { return len(c.digests) }

func (c *CaptureSink) Enabled() bool { return c.enabled }

func (c *CaptureSink) Disables() int { return c.disables }
