package jeebie

import (
	"io"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

type config struct {
	sink          video.Sink
	interceptors  []memory.Interceptor
	serialCapture bool
	trace         io.Reader
	logger        *slog.Logger
}

// Option configures a DMG at construction.
type Option func(*config)

// WithSink sets where finished lines and frames go. The default discards them.
func WithSink(s video.Sink) Option { return func(c *config) { c.sink = s } }

// WithInterceptor attaches a bus interceptor. Interceptors run in the order
// they are given.
func WithInterceptor(i memory.Interceptor) Option {
	return func(c *config) { c.interceptors = append(c.interceptors, i) }
}

// WithSerialCapture records every byte sent over serial, see SerialOutput.
func WithSerialCapture() Option { return func(c *config) { c.serialCapture = true } }

// WithTrace compares the register state before every step against the
// reference log read from r.
func WithTrace(r io.Reader) Option { return func(c *config) { c.trace = r } }

// WithLogger sets the logger for the core and its devices.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }
