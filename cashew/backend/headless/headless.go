package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valerio/go-cashew/cashew/backend"
	"github.com/valerio/go-cashew/cashew/video"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig

	// lastDigest is the digest of the last frame written to disk.
	lastDigest uint64
	saved      int
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMPath   string // ROM path, its base name prefixes snapshot files
	Scale     int
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config

	slog.Info("Running headless mode",
		"title", config.Title,
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update counts the frame and handles snapshots. It asks to quit once the
// frame budget is spent.
func (h *Backend) Update(frame *video.FrameBuffer) (backend.Input, error) {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames,
			"digest", fmt.Sprintf("%016x", frame.Digest()))
	}

	if h.frameCount < h.maxFrames {
		return backend.Input{}, nil
	}

	// Save final snapshot if enabled and we haven't just saved one
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		h.saveSnapshot(frame)
	}

	slog.Info("Headless execution completed",
		"frames", h.frameCount,
		"digest", fmt.Sprintf("%016x", frame.Digest()),
		"snapshots", h.saved,
		"snapshot_dir", h.snapshotConfig.Directory)

	return backend.Input{Quit: true}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames seen so far.
func (h *Backend) Frames() int {
	return h.frameCount
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string, scale int) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		ROMPath:  romPath,
		Scale:    scale,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "cashew-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current frame, unless it is
// identical to the previous one.
func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	digest := frame.Digest()
	if h.saved > 0 && digest == h.lastDigest {
		slog.Debug("Skipping unchanged frame", "frame", h.frameCount)
		return
	}

	path := filepath.Join(h.snapshotConfig.Directory, backend.SnapshotName(h.snapshotConfig.ROMPath, h.frameCount))
	if err := backend.SavePNG(frame.Image(), path, h.snapshotConfig.Scale); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}

	h.lastDigest = digest
	h.saved++
	slog.Info("Saved frame snapshot", "frame", h.frameCount, "path", path, "digest", fmt.Sprintf("%016x", digest))
}
