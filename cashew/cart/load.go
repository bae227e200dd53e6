package cart

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrEmptyArchive is returned when an archive has no ROM inside.
var ErrEmptyArchive = errors.New("archive contains no files")

// LoadFile reads a ROM from disk, decompressing .gz, .zip and .7z files.
// Archives yield their first .gb/.gbc entry, or their first entry if none match.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip ROM: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("opening zip ROM: %w", err)
		}
		files := make([]archiveEntry, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, f)
		}
		return readArchive(filename, files)
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("opening 7z ROM: %w", err)
		}
		files := make([]archiveEntry, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, f)
		}
		return readArchive(filename, files)
	default:
		return data, nil
	}
}

// Load reads a ROM file and parses it into an Image.
func Load(filename string) (*Image, error) {
	rom, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}

	img, err := NewImage(rom)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(filename), err)
	}

	slog.Info("Loaded ROM",
		"path", filename,
		"size", len(rom),
		"title", img.header.Title,
		"mbc", img.header.MBC.String(),
		"color", img.header.Color,
		"save_size", img.header.SaveSize())

	return img, nil
}

// archiveEntry is the subset of zip.File and sevenzip.File used to pick a ROM.
type archiveEntry interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

func readArchive(filename string, files []archiveEntry) ([]byte, error) {
	var chosen archiveEntry
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if chosen == nil {
			chosen = f
		}
		ext := strings.ToLower(filepath.Ext(f.FileInfo().Name()))
		if ext == ".gb" || ext == ".gbc" {
			chosen = f
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), ErrEmptyArchive)
	}

	rc, err := chosen.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in archive: %w", chosen.FileInfo().Name(), err)
	}
	defer rc.Close()

	slog.Debug("Extracting ROM from archive", "archive", filename, "entry", chosen.FileInfo().Name())
	return io.ReadAll(rc)
}
