package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/valerio/go-cashew/cashew"
	"github.com/valerio/go-cashew/cashew/backend"
	"github.com/valerio/go-cashew/cashew/timing"
	"github.com/valerio/go-cashew/cashew/video"
)

// runner drives the emulator one frame at a time and hands every frame to
// the backend.
type runner struct {
	emu     *cashew.Emulator
	backend backend.Backend
	limiter timing.Limiter
	frame   *video.FrameBuffer

	romPath   string
	snapScale int
	frames    int
}

func (r *runner) run(ctx context.Context, config backend.Config) error {
	if err := r.backend.Init(config); err != nil {
		return err
	}
	defer r.backend.Cleanup()

	for ctx.Err() == nil {
		if err := r.emu.RunFrame(); err != nil {
			return err
		}
		r.frames++

		input, err := r.backend.Update(r.frame)
		if err != nil {
			return err
		}
		if input.Quit {
			slog.Info("Quit requested", "frames", r.frames)
			return nil
		}
		r.apply(input)

		r.limiter.WaitForNextFrame()
	}

	return nil
}

func (r *runner) apply(input backend.Input) {
	r.emu.SetJoypad(uint8(input.Buttons))

	if input.Snapshot {
		name := fmt.Sprintf("%s_%s.png", filepath.Base(r.romPath), time.Now().Format("20060102_150405"))
		if err := backend.SavePNG(r.frame.Image(), name, r.snapScale); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		} else {
			slog.Info("Saved snapshot", "path", name)
		}
	}

	if input.Reset {
		r.emu.Reset()
		r.frame.Clear()
		r.limiter.Reset()
	}
}
