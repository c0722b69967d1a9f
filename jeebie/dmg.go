// Package jeebie wires the CPU, bus, timer, PPU and interrupt controller into
// a DMG and steps them in lockstep.
package jeebie

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/interrupt"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/timer"
	"github.com/valerio/jeebie-core/jeebie/trace"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// dividerSeed is the internal divider value left by the boot ROM.
const dividerSeed = 0xABCC

// DMG is a complete machine. It is not safe for concurrent use.
type DMG struct {
	bus        *memory.Bus
	cpu        *cpu.CPU
	interrupts *interrupt.Controller
	timer      *timer.Timer
	ppu        *video.PPU
	serial     *serial.LogSink
	joypad     *memory.Joypad
	capture    *serial.Capture
	tracer     *trace.Checker

	header memory.Header
	logger *slog.Logger
	err    error
}

// NewWithFile reads a ROM image from path and builds a DMG around it.
func NewWithFile(path string, opts ...Option) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	return New(data, opts...)
}

// New builds a DMG with rom loaded and every register in its post-boot state.
func New(rom []byte, opts ...Option) (*DMG, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &DMG{
		bus:        memory.New(),
		interrupts: interrupt.New(),
		logger:     cfg.logger,
	}

	if err := d.bus.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	header, err := memory.ParseHeader(rom)
	if err != nil {
		d.logger.Warn("No cartridge header", "error", err)
	} else {
		d.header = header
		d.logger.Info("Loaded ROM", "title", header.Title, "type", header.TypeName(), "bytes", len(rom))
		if !header.ChecksumValid {
			d.logger.Warn("Header checksum mismatch", "title", header.Title)
		}
	}

	d.timer = timer.New(func() { d.interrupts.Request(interrupt.Timer) })
	d.timer.SetSeed(dividerSeed)
	d.ppu = video.New(d.bus, d.interrupts, cfg.sink)
	d.serial = serial.NewLogSink(func() { d.interrupts.Request(interrupt.Serial) }, serial.WithLogger(d.logger))
	d.joypad = memory.NewJoypad(func() { d.interrupts.Request(interrupt.Joypad) })

	d.bus.MapIO(addr.P1, addr.P1, d.joypad)
	d.bus.MapIO(addr.SB, addr.SC, d.serial)
	d.bus.MapIO(addr.DIV, addr.TAC, d.timer)
	d.bus.MapIO(addr.IF, addr.IF, d.interrupts)
	d.bus.MapIO(addr.LCDC, addr.LYC, d.ppu)
	d.bus.MapIO(addr.BGP, addr.WX, d.ppu)
	d.bus.MapIO(addr.IE, addr.IE, d.interrupts)

	// the boot ROM leaves the VBlank request set
	d.interrupts.Write(addr.IF, 0xE1)

	for _, i := range cfg.interceptors {
		d.bus.Attach(i)
	}
	if cfg.serialCapture {
		d.capture = serial.NewCapture(d.bus)
		d.bus.Attach(d.capture)
	}
	if cfg.trace != nil {
		d.tracer = trace.NewChecker(cfg.trace)
	}

	d.cpu = cpu.New(d.bus, d.interrupts)
	return d, nil
}

// Step executes one CPU step and advances the timer, PPU and serial port by
// the cycles it took, in that order.
//
// Decode and bus mapping failures stop the machine: the error is returned now
// and on every later call. A trace mismatch is returned alongside the cycles
// of a completed step and does not stop anything; checking ends after the
// first mismatch.
func (d *DMG) Step() (cycles int, err error) {
	if d.err != nil {
		return 0, d.err
	}

	pc := d.cpu.Registers().PC
	defer func() {
		if r := recover(); r != nil {
			var mapping *memory.MappingError
			e, ok := r.(error)
			if !ok || !errors.As(e, &mapping) {
				panic(r)
			}
			d.logger.Error("Bus mapping failure", "pc", fmt.Sprintf("0x%04X", pc), "error", mapping)
			d.err = fmt.Errorf("step at PC=0x%04X: %w", pc, mapping)
			cycles, err = 0, d.err
		}
	}()

	traceErr := d.checkTrace()

	cycles, err = d.cpu.Step()
	if err != nil {
		d.logger.Error("CPU stopped", "pc", fmt.Sprintf("0x%04X", pc), "error", err)
		d.err = fmt.Errorf("step at PC=0x%04X: %w", pc, err)
		return 0, d.err
	}

	d.timer.Advance(cycles)
	d.ppu.Advance(cycles)
	d.serial.Tick(cycles)

	return cycles, traceErr
}

func (d *DMG) checkTrace() error {
	if d.tracer == nil {
		return nil
	}

	err := d.tracer.Check(trace.FromRegisters(d.cpu.Cycles(), d.cpu.Registers()))
	if err == nil {
		return nil
	}

	d.tracer = nil
	if errors.Is(err, io.EOF) {
		d.logger.Info("Reference trace exhausted", "cycles", d.cpu.Cycles())
		return nil
	}

	var mismatch *trace.MismatchError
	if errors.As(err, &mismatch) {
		d.logger.Warn("Trace mismatch", "line", mismatch.Line, "fields", mismatch.Fields())
	}
	return err
}

// RunUntilFrame steps until the PPU completes a frame. With the LCD off no
// frame ever completes, so it returns after a frame's worth of cycles.
func (d *DMG) RunUntilFrame() error {
	start := d.ppu.Frames()
	elapsed := 0
	for d.ppu.Frames() == start {
		cycles, err := d.Step()
		if err != nil {
			return err
		}
		elapsed += cycles
		if !d.ppu.Enabled() && elapsed >= video.FrameCycles {
			break
		}
	}
	return nil
}

func (d *DMG) Press(key memory.JoypadKey)   { d.joypad.Press(key) }
func (d *DMG) Release(key memory.JoypadKey) { d.joypad.Release(key) }

func (d *DMG) Registers() cpu.Registers { return d.cpu.Registers() }

// Next decodes the instruction at PC without executing it.
func (d *DMG) Next() (cpu.Instruction, error) { return d.cpu.Next() }

// Cycles returns the T-cycles executed since power on.
func (d *DMG) Cycles() uint64 { return d.cpu.Cycles() }

// Frames returns the number of completed frames.
func (d *DMG) Frames() uint64 { return d.ppu.Frames() }

func (d *DMG) Header() memory.Header { return d.header }

// Err returns the error that stopped the machine, if any.
func (d *DMG) Err() error { return d.err }

// SerialOutput returns the bytes captured from the serial port. It is empty
// unless the DMG was built WithSerialCapture.
func (d *DMG) SerialOutput() string {
	if d.capture == nil {
		return ""
	}
	return d.capture.Output()
}

// SerialPassed reports whether a test ROM printed "Passed" over serial.
func (d *DMG) SerialPassed() bool { return d.capture != nil && d.capture.Passed() }

// SerialFailed reports whether a test ROM printed "Failed" over serial.
func (d *DMG) SerialFailed() bool { return d.capture != nil && d.capture.Failed() }
