package terminal

import "github.com/valerio/jeebie-core/jeebie/video"

// Sink collects lines on the emulation goroutine and hands every finished
// frame to the render goroutine. The channel holds a single frame: when the
// renderer falls behind, the stale frame is replaced by the newer one.
type Sink struct {
	frame  video.Frame
	frames chan video.Frame
}

func NewSink() *Sink {
	return &Sink{frames: make(chan video.Frame, 1)}
}

// Frames delivers completed frames. Each value is a copy owned by the receiver.
func (s *Sink) Frames() <-chan video.Frame {
	return s.frames
}

func (s *Sink) DrawLine(index int, pixels video.Scanline) {
	if index >= 0 && index < video.FramebufferHeight {
		s.frame[index] = pixels
	}
}

func (s *Sink) Flush() {
	s.send(s.frame)
}

func (s *Sink) Enable() {}

// Disable blanks the screen, as the LCD shows nothing while off.
func (s *Sink) Disable() {
	s.frame = video.Frame{}
	s.send(s.frame)
}

func (s *Sink) send(f video.Frame) {
	select {
	case s.frames <- f:
		return
	default:
	}

	// drop the frame nobody picked up yet
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- f:
	default:
	}
}
