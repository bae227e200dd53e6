package backend

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// SnapshotName builds the file name of a numbered frame snapshot.
func SnapshotName(romPath string, frame int) string {
	name := filepath.Base(romPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return fmt.Sprintf("%s_frame_%d.png", name, frame)
}

// Scale enlarges img by an integer factor, keeping hard pixel edges.
func Scale(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SavePNG writes img, scaled, to path. Missing directories are created.
func SavePNG(img image.Image, path string, scale int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, Scale(img, scale)); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
