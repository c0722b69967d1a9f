package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/backend/terminal"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/trace"
	"github.com/valerio/jeebie-core/jeebie/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A cycle-accurate DMG emulator core"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file",
			EnvVar: "JEEBIE_ROM",
		},
		cli.BoolFlag{
			Name:   "headless",
			Usage:  "Run the emulator without a display",
			EnvVar: "JEEBIE_HEADLESS",
		},
		cli.IntFlag{
			Name:   "frames",
			Usage:  "Number of frames to run in headless mode (required for headless)",
			EnvVar: "JEEBIE_FRAMES",
		},
		cli.BoolFlag{
			Name:   "until-serial",
			Usage:  "In headless mode, stop as soon as the ROM prints Passed or Failed over serial",
			EnvVar: "JEEBIE_UNTIL_SERIAL",
		},
		cli.StringFlag{
			Name:   "trace",
			Usage:  "Reference trace log to compare CPU state against before every instruction",
			EnvVar: "JEEBIE_TRACE",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "JEEBIE_LOG_LEVEL",
		},
		cli.IntFlag{
			Name:   "snapshot-interval",
			Usage:  "Save frame snapshots every N frames in headless mode (0 = disabled)",
			EnvVar: "JEEBIE_SNAPSHOT_INTERVAL",
		},
		cli.StringFlag{
			Name:   "snapshot-dir",
			Usage:  "Directory to save frame snapshots (default: temp directory)",
			EnvVar: "JEEBIE_SNAPSHOT_DIR",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	var opts []jeebie.Option
	if path := c.String("trace"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		opts = append(opts, jeebie.WithTrace(f))
	}

	if c.Bool("headless") {
		return runHeadless(c, romPath, level, opts)
	}
	return runTerminal(romPath, level, opts)
}

func runHeadless(c *cli.Context, romPath string, level slog.Level, opts []jeebie.Option) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return err
	}

	sink := video.NewCaptureSink()
	opts = append(opts, jeebie.WithSink(sink), jeebie.WithSerialCapture(), jeebie.WithLogger(logger))
	emu, err := jeebie.NewWithFile(romPath, opts...)
	if err != nil {
		return err
	}

	untilSerial := c.Bool("until-serial")
	res, err := headless.New(frames, sink, snapshots, untilSerial).Run(emu)
	if out := emu.SerialOutput(); out != "" {
		fmt.Print(out)
	}
	if err != nil {
		var mismatch *trace.MismatchError
		if errors.As(err, &mismatch) {
			fmt.Fprintln(os.Stderr, mismatch.Table())
		}
		return err
	}

	switch {
	case res.Failed:
		return cli.NewExitError("ROM reported failure over serial", 2)
	case untilSerial && !res.Passed:
		return cli.NewExitError(fmt.Sprintf("no serial verdict after %d frames", res.Frames), 3)
	}
	return nil
}

func runTerminal(romPath string, level slog.Level, opts []jeebie.Option) error {
	backend := terminal.New(nil, timing.NewAdaptiveLimiter())
	logger := backend.Logger(level)

	opts = append(opts, jeebie.WithSink(backend.Sink()), jeebie.WithLogger(logger))
	emu, err := jeebie.NewWithFile(romPath, opts...)
	if err != nil {
		return err
	}

	// stderr belongs to the screen until Run returns
	defer slog.SetDefault(slog.Default())
	slog.SetDefault(logger)
	if err := backend.Init(); err != nil {
		return err
	}
	return backend.Run(emu)
}
