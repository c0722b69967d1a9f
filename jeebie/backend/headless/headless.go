// Package headless runs an emulator for a fixed number of frames without a
// display, optionally writing text snapshots of the picture.
package headless

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/video"
)

// Emulator is the part of the DMG the runner drives.
type Emulator interface {
	RunUntilFrame() error
	SerialPassed() bool
	SerialFailed() bool
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// Result summarizes a headless run.
type Result struct {
	Frames     int
	LastDigest uint64
	Passed     bool
	Failed     bool
}

// Runner drives an emulator frame by frame. Frames are read back from the
// capture sink the emulator was built with.
type Runner struct {
	maxFrames   int
	untilSerial bool
	snapshots   SnapshotConfig
	sink        *video.CaptureSink
}

// New returns a runner for maxFrames frames. With untilSerial set it stops
// early once the program reports a verdict over serial.
func New(maxFrames int, sink *video.CaptureSink, snapshots SnapshotConfig, untilSerial bool) *Runner {
	return &Runner{
		maxFrames:   maxFrames,
		untilSerial: untilSerial,
		snapshots:   snapshots,
		sink:        sink,
	}
}

func (r *Runner) Run(emu Emulator) (Result, error) {
	slog.Info("Running headless mode",
		"frames", r.maxFrames,
		"snapshot_interval", r.snapshots.Interval,
		"snapshot_dir", r.snapshots.Directory)

	var res Result
	for res.Frames < r.maxFrames {
		if err := emu.RunUntilFrame(); err != nil {
			return res, fmt.Errorf("frame %d: %w", res.Frames+1, err)
		}
		res.Frames++

		if r.snapshots.Enabled && res.Frames%r.snapshots.Interval == 0 {
			r.saveSnapshot(res.Frames)
		}
		if res.Frames%10 == 0 {
			slog.Info("Frame progress", "completed", res.Frames, "total", r.maxFrames)
		}

		res.Passed, res.Failed = emu.SerialPassed(), emu.SerialFailed()
		if r.untilSerial && (res.Passed || res.Failed) {
			slog.Info("Serial verdict reached", "frame", res.Frames, "passed", res.Passed)
			break
		}
	}

	if digests := r.sink.Digests(); len(digests) > 0 {
		res.LastDigest = digests[len(digests)-1]
	}
	slog.Info("Headless execution completed", "frames", res.Frames, "digest", fmt.Sprintf("%016x", res.LastDigest))
	return res, nil
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

func (r *Runner) saveSnapshot(frameNo int) {
	name := filepath.Join(r.snapshots.Directory, fmt.Sprintf("%s_frame_%d.txt", r.snapshots.ROMName, frameNo))

	f, err := os.Create(name)
	if err != nil {
		slog.Error("Failed to save snapshot", "frame", frameNo, "error", err)
		return
	}
	defer f.Close()

	frame := r.sink.Last()
	if err := WriteSnapshot(f, &frame, frameNo); err != nil {
		slog.Error("Failed to save snapshot", "frame", frameNo, "error", err)
		return
	}
	slog.Info("Saved frame snapshot", "frame", frameNo, "path", name)
}

// shadeChars maps shade 0 (lightest) to 3 (darkest).
var shadeChars = [4]rune{'░', '▒', '▓', '█'}

// WriteSnapshot writes a frame as text, one character per pixel.
func WriteSnapshot(w io.Writer, f *video.Frame, frameNo int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Game Boy Frame Snapshot\n")
	fmt.Fprintf(bw, "# Frame: %d, Digest: %016x\n", frameNo, f.Digest())
	fmt.Fprintf(bw, "# Resolution: %dx%d pixels\n", video.FramebufferWidth, video.FramebufferHeight)
	fmt.Fprintf(bw, "# Legend: █=black ▓=dark ▒=light ░=white\n")
	fmt.Fprintf(bw, "#\n")

	for _, line := range f {
		for _, shade := range line {
			bw.WriteRune(shadeChars[shade&0x03])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
