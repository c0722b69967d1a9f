// Package serial implements the SB/SC serial port with no link partner, plus a
// bus interceptor that captures what test ROMs print over it.
package serial

import (
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

const (
	scInternalClock uint8 = 0
	scStart         uint8 = 7

	// scUnused are the SC bits that always read back as 1.
	scUnused = 0x7E

	// disconnected is what a missing partner shifts in.
	disconnected = 0xFF

	// transferCycles is one byte at 8192 Hz.
	transferCycles = 8 * 512
)

// LogSink is a serial port whose partner is a logger: every byte shifted out
// is collected into text lines and logged, and every byte shifted in is 0xFF.
type LogSink struct {
	requestIRQ func()
	logger     *slog.Logger
	fixed      bool

	sb, sc    byte
	remaining int // cycles left in the running transfer, 0 when idle
	pending   []byte
}

// Option configures a LogSink.
type Option func(*LogSink)

// WithFixedTiming makes transfers take transferCycles instead of completing
// on the write that starts them.
func WithFixedTiming() Option { return func(s *LogSink) { s.fixed = true } }

// WithLogger sets the logger completed lines go to.
func WithLogger(l *slog.Logger) Option { return func(s *LogSink) { s.logger = l } }

// NewLogSink returns an idle port. irq runs on every completed transfer.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{requestIRQ: irq, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | scUnused
	}
	return 0xFF
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		if s.remaining == 0 && bit.IsSet(scStart, value) && bit.IsSet(scInternalClock, value) {
			s.start()
		}
	}
}

// Tick advances a running transfer. Transfers clocked externally never
// progress, there being no partner to drive the clock.
func (s *LogSink) Tick(cycles int) {
	if s.remaining == 0 {
		return
	}
	s.remaining -= cycles
	if s.remaining <= 0 {
		s.finish()
	}
}

func (s *LogSink) start() {
	s.record(s.sb)
	if !s.fixed {
		s.finish()
		return
	}
	s.remaining = transferCycles
}

// record buffers printable output and logs it a line at a time.
func (s *LogSink) record(b byte) {
	switch b {
	case 0, '\n', '\r':
		if len(s.pending) > 0 {
			s.logger.Info("Serial output", "line", string(s.pending))
			s.pending = s.pending[:0]
		}
	default:
		s.pending = append(s.pending, b)
	}
}

func (s *LogSink) finish() {
	s.remaining = 0
	s.sb = disconnected
	s.sc = bit.Clear(scStart, s.sc)
	if s.requestIRQ != nil {
		s.requestIRQ()
	}
}
