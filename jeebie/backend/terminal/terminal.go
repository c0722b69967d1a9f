// Package terminal is an interactive frontend drawing the LCD with half-block
// characters in a tcell screen.
//
// The emulator only ever runs on the goroutine that calls Run. Frames reach
// the render goroutine through the Sink, register snapshots through a status
// channel, and key events travel back from the input goroutine on a channel
// drained between frames.
package terminal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/trace"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	// two LCD rows per terminal cell
	screenRows = video.FramebufferHeight / 2
	panelX     = video.FramebufferWidth + 3

	minTermWidth  = 80
	minTermHeight = 24

	logLines = 12
)

var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

type input struct {
	key   memory.JoypadKey
	pause bool
}

// status is what the debug panel shows, captured on the emulation goroutine.
type status struct {
	regs   string
	next   string
	frames uint64
	paused bool
}

// Backend owns the tcell screen and the goroutines around the emulator.
type Backend struct {
	screen  tcell.Screen
	sink    *Sink
	logs    *LogBuffer
	limiter timing.Limiter

	inputs   chan input
	status   chan status
	quit     chan struct{}
	quitOnce sync.Once

	showDebug atomic.Bool
}

// New wraps screen, or the terminal's own screen when nil.
func New(screen tcell.Screen, limiter timing.Limiter) *Backend {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	b := &Backend{
		screen:  screen,
		sink:    NewSink(),
		logs:    NewLogBuffer(100),
		limiter: limiter,
		inputs:  make(chan input, 16),
		status:  make(chan status, 1),
		quit:    make(chan struct{}),
	}
	b.showDebug.Store(true)
	return b
}

// Sink is the video output to pass to the emulator.
func (b *Backend) Sink() *Sink { return b.sink }

// Logs holds what the log panel displays.
func (b *Backend) Logs() *LogBuffer { return b.logs }

// Logger writes into the log panel. Once the screen is up, anything written
// to stderr corrupts the display, so all logging should go through it.
func (b *Backend) Logger(level slog.Level) *slog.Logger {
	return slog.New(NewLogBufferHandler(b.logs, level))
}

// Init sets up the screen and the signal handler.
func (b *Backend) Init() error {
	if b.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		b.screen = screen
	}
	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	b.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	b.screen.Clear()

	w, h := b.screen.Size()
	if w < minTermWidth || h < minTermHeight {
		slog.Warn("Terminal is smaller than recommended", "width", w, "height", h,
			"min_width", minTermWidth, "min_height", minTermHeight)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			b.Stop()
		case <-b.quit:
		}
		signal.Stop(sigs)
	}()

	return nil
}

// Stop ends Run. Safe to call more than once and from any goroutine.
func (b *Backend) Stop() {
	b.quitOnce.Do(func() { close(b.quit) })
}

// Run drives emu one frame at a time until the user quits or the emulator
// fails. Trace mismatches are logged and do not stop the run.
func (b *Backend) Run(emu jeebie.Emulator) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.pollEvents()
	}()
	go func() {
		defer wg.Done()
		b.renderLoop()
	}()

	err := b.emulate(emu)

	b.Stop()
	b.screen.Fini()
	wg.Wait()
	return err
}

func (b *Backend) emulate(emu jeebie.Emulator) error {
	keys := newHeldKeys()
	paused := false

	for {
		select {
		case <-b.quit:
			return nil
		default:
		}

		now := time.Now()
	drain:
		for {
			select {
			case in := <-b.inputs:
				if in.pause {
					paused = !paused
					b.limiter.Reset()
					slog.Info("Pause toggled", "paused", paused)
					continue
				}
				keys.press(emu, in.key, now)
			default:
				break drain
			}
		}
		keys.expire(emu, now)

		if !paused {
			if err := emu.RunUntilFrame(); err != nil {
				var mismatch *trace.MismatchError
				if !errors.As(err, &mismatch) {
					slog.Error("Emulation stopped", "error", err)
					return err
				}
				slog.Warn("Trace mismatch", "error", mismatch)
			}
		}

		b.publish(emu, paused)
		b.limiter.WaitForNextFrame()
	}
}

func (b *Backend) publish(emu jeebie.Emulator, paused bool) {
	st := status{
		regs:   emu.Registers().String(),
		frames: emu.Frames(),
		paused: paused,
	}
	if in, err := emu.Next(); err == nil {
		st.next = in.String()
	} else {
		st.next = err.Error()
	}

	select {
	case <-b.status:
	default:
	}
	select {
	case b.status <- st:
	default:
	}
}

// pollEvents returns once the screen is finalized.
func (b *Backend) pollEvents() {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			b.handleKey(ev)
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

func (b *Backend) handleKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
		ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		b.Stop()
		return
	case ev.Key() == tcell.KeyF10:
		b.showDebug.Store(!b.showDebug.Load())
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
		b.send(input{pause: true})
		return
	}

	if k, ok := joypadKey(ev); ok {
		b.send(input{key: k})
	}
}

// send drops the event when the emulation goroutine is too far behind.
func (b *Backend) send(in input) {
	select {
	case b.inputs <- in:
	default:
	}
}

func (b *Backend) renderLoop() {
	var st status
	for {
		select {
		case <-b.quit:
			return
		case st = <-b.status:
		case f := <-b.sink.Frames():
			b.draw(&f, st)
		}
	}
}

func (b *Backend) draw(f *video.Frame, st status) {
	b.screen.Clear()
	drawBorder(b.screen, 0, 0, video.FramebufferWidth+2, screenRows+2)
	drawFrame(b.screen, f, 1, 1)
	if b.showDebug.Load() {
		b.drawPanel(st)
	}
	b.screen.Show()
}

func (b *Backend) drawPanel(st status) {
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	y := 1
	drawText(b.screen, panelX, y, title, "REGISTERS")
	y++
	drawText(b.screen, panelX, y, text, st.regs)
	y += 2
	drawText(b.screen, panelX, y, title, "NEXT")
	y++
	drawText(b.screen, panelX, y, text, st.next)
	y += 2
	state := "running"
	if st.paused {
		state = "paused"
	}
	drawText(b.screen, panelX, y, text, fmt.Sprintf("Frame %d (%s)", st.frames, state))
	y += 2

	drawText(b.screen, panelX, y, title, "LOGS")
	y++
	for _, entry := range b.logs.GetRecent(logLines) {
		drawText(b.screen, panelX, y, logStyle(entry.Level), FormatLogEntry(entry))
		y++
	}
}

func logStyle(level slog.Level) tcell.Style {
	switch {
	case level >= slog.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case level >= slog.LevelWarn:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case level < slog.LevelInfo:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorWhite)
}

// halfBlock packs two vertically adjacent shades into one cell.
func halfBlock(top, bottom uint8) (rune, tcell.Style) {
	if top == bottom {
		return '█', tcell.StyleDefault.Foreground(shadeColors[top&3])
	}
	return '▀', tcell.StyleDefault.Foreground(shadeColors[top&3]).Background(shadeColors[bottom&3])
}

func drawFrame(s tcell.Screen, f *video.Frame, ox, oy int) {
	for row := range screenRows {
		top, bottom := &f[row*2], &f[row*2+1]
		for x := range video.FramebufferWidth {
			ch, style := halfBlock(top[x], bottom[x])
			s.SetContent(ox+x, oy+row, ch, nil, style)
		}
	}
}

func drawBorder(s tcell.Screen, x, y, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, '─', nil, style)
		s.SetContent(i, y+h-1, '─', nil, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, '│', nil, style)
		s.SetContent(x+w-1, j, '│', nil, style)
	}
	s.SetContent(x, y, '┌', nil, style)
	s.SetContent(x+w-1, y, '┐', nil, style)
	s.SetContent(x, y+h-1, '└', nil, style)
	s.SetContent(x+w-1, y+h-1, '┘', nil, style)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
