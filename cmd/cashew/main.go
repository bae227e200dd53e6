package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/valerio/go-cashew/cashew"
	"github.com/valerio/go-cashew/cashew/backend"
	"github.com/valerio/go-cashew/cashew/backend/headless"
	"github.com/valerio/go-cashew/cashew/backend/terminal"
	"github.com/valerio/go-cashew/cashew/cart"
	"github.com/valerio/go-cashew/cashew/link"
	"github.com/valerio/go-cashew/cashew/serial"
	"github.com/valerio/go-cashew/cashew/timing"
	"github.com/valerio/go-cashew/cashew/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "cashew"
	app.Description = "A Game Boy and Game Boy Color emulator"
	app.Usage = "cashew [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file (.gb, .gbc, .zip or .7z)",
		},
		cli.BoolFlag{
			Name:  "dmg",
			Usage: "Run color cartridges in monochrome mode",
		},
		cli.BoolFlag{
			Name:  "fast-sprites",
			Usage: "Skip the per line sprite limit and X ordering",
		},
		cli.BoolFlag{
			Name:  "frame-skip",
			Usage: "Render every other frame",
		},
		cli.BoolFlag{
			Name:  "interlace",
			Usage: "Render alternate lines on alternate frames",
		},
		cli.BoolFlag{
			Name:  "tagged-palette",
			Usage: "Tag monochrome pixels with the palette they came from",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Boot ROM dump to run before the cartridge",
		},
		cli.Float64Flag{
			Name:  "speed",
			Usage: "Emulation speed multiplier",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "Battery save file (default: the ROM path with a .sav extension)",
		},
		cli.BoolFlag{
			Name:  "no-save",
			Usage: "Neither load nor write the battery save file",
		},
		cli.BoolFlag{
			Name:  "serial-log",
			Usage: "Log the bytes sent over the serial port",
		},
		cli.StringFlag{
			Name:  "link-listen",
			Usage: "Wait for a link cable peer on this address, e.g. :8765",
		},
		cli.StringFlag{
			Name:  "link-dial",
			Usage: "Connect the link cable to a peer, e.g. ws://host:8765/",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "snapshot-scale",
			Usage: "Upscale factor of saved snapshots",
			Value: 2,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging and the register panel",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	img, err := cart.Load(romPath)
	if err != nil {
		return err
	}

	savePath := c.String("save")
	if savePath == "" {
		savePath = cart.SavePath(romPath)
	}
	if !c.Bool("no-save") {
		if err := cart.LoadSave(savePath, img); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fb := video.NewFrameBuffer()
	opts := []cashew.Option{cashew.WithLineDrawer(fb)}

	serialLink, err := openLink(ctx, c)
	if err != nil {
		return err
	}
	if serialLink != nil {
		opts = append(opts, cashew.WithSerialLink(serialLink))
		if closer, ok := serialLink.(io.Closer); ok {
			defer closer.Close()
		}
	}

	if path := c.String("boot-rom"); path != "" {
		boot, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading boot ROM: %w", err)
		}
		opts = append(opts, cashew.WithBootROM(cashew.BootImage(boot)))
	}

	cfg := cashew.DefaultConfig()
	cfg.Color = !c.Bool("dmg")
	cfg.AccurateSprites = !c.Bool("fast-sprites")
	cfg.FrameSkip = c.Bool("frame-skip")
	cfg.Interlace = c.Bool("interlace")
	cfg.TaggedPalette = c.Bool("tagged-palette")

	emu, err := cashew.New(img, cfg, opts...)
	if err != nil {
		return err
	}
	fb.SetColorTable(emu.ColorTable())

	var (
		b       backend.Backend
		limiter timing.Limiter
	)
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath, c.Int("snapshot-scale"))
		if err != nil {
			return err
		}
		b = headless.New(frames, snapshots)
		limiter = timing.NewNoOpLimiter()
	} else {
		b = terminal.New()
		limiter = timing.NewAdaptiveLimiter(c.Float64("speed"))
	}

	r := &runner{
		emu:       emu,
		backend:   b,
		limiter:   limiter,
		frame:     fb,
		romPath:   romPath,
		snapScale: c.Int("snapshot-scale"),
	}
	runErr := r.run(ctx, backend.Config{
		Title:     emu.Title(),
		ShowDebug: c.Bool("debug"),
		Debug:     emu,
	})

	if !c.Bool("no-save") {
		if err := cart.WriteSave(savePath, img); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

func openLink(ctx context.Context, c *cli.Context) (cashew.SerialLink, error) {
	switch {
	case c.String("link-listen") != "":
		return link.Listen(ctx, c.String("link-listen"))
	case c.String("link-dial") != "":
		return link.Dial(ctx, c.String("link-dial"))
	case c.Bool("serial-log"):
		return serial.NewLogSink(), nil
	}
	return nil, nil
}
