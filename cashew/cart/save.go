package cart

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SavePath returns the battery save path for a ROM: the ROM path with a .sav extension.
func SavePath(romPath string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".sav"
}

// LoadSave fills the image RAM from path. A missing file is not an error,
// the cartridge simply starts with blank RAM.
func LoadSave(path string, img *Image) error {
	if img.header.SaveSize() == 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No save file found", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading save file: %w", err)
	}

	if len(data) != img.header.SaveSize() {
		slog.Warn("Save file size mismatch", "path", path, "size", len(data), "expected", img.header.SaveSize())
	}

	img.LoadRAM(data)
	slog.Info("Loaded save file", "path", path, "size", len(data))
	return nil
}

// WriteSave persists the image RAM to path, if the cartridge has any.
func WriteSave(path string, img *Image) error {
	if img.header.SaveSize() == 0 {
		return nil
	}

	if err := os.WriteFile(path, img.RAM(), 0644); err != nil {
		return fmt.Errorf("writing save file: %w", err)
	}

	slog.Info("Wrote save file", "path", path, "size", img.header.SaveSize())
	return nil
}
