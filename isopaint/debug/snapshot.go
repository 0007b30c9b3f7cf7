package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-isopaint/isopaint"
)

const snapshotScale = 4 // pixels per world tile axis step

// SaveScenePNG composites the arranged session into a top-down PNG: each
// drawable's map footprint is filled in chain order, so later (nearer)
// primitives paint over earlier ones exactly as the compositor would.
// Colors cycle with the quadrant index, which makes bucket boundaries and
// reorder pulls visible at a glance.
func SaveScenePNG(s *isopaint.Session, path string) error {
	chain := s.Arranged()

	maxX, maxY := 1, 1
	for _, ref := range chain {
		ps := s.Drawable(ref)
		if int(ps.MapX) >= maxX {
			maxX = int(ps.MapX) + 1
		}
		if int(ps.MapY) >= maxY {
			maxY = int(ps.MapY) + 1
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, (maxX+1)*snapshotScale, (maxY+1)*snapshotScale))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	for _, ref := range chain {
		ps := s.Drawable(ref)
		c := quadrantColor(ps.QuadrantIndex)
		x0 := int(ps.MapX) * snapshotScale
		y0 := int(ps.MapY) * snapshotScale
		for dy := 0; dy < snapshotScale; dy++ {
			for dx := 0; dx < snapshotScale; dx++ {
				img.Set(x0+dx, y0+dy, c)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveScenePNGToDir writes a timestamped snapshot into a directory,
// creating it if needed, and returns the written path.
func SaveScenePNGToDir(s *isopaint.Session, baseName, directory string) (string, error) {
	if directory != "" {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return "", fmt.Errorf("failed to create snapshot directory: %v", err)
		}
	}
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(directory, fmt.Sprintf("%s_%s.png", baseName, timestamp))
	if err := SaveScenePNG(s, path); err != nil {
		return "", err
	}
	return path, nil
}

// quadrantColor cycles a small palette by bucket so adjacent buckets
// contrast.
func quadrantColor(quadrant uint16) color.RGBA {
	palette := [...]color.RGBA{
		{0x1F, 0x77, 0xB4, 0xFF},
		{0xFF, 0x7F, 0x0E, 0xFF},
		{0x2C, 0xA0, 0x2C, 0xFF},
		{0xD6, 0x27, 0x28, 0xFF},
		{0x94, 0x67, 0xBD, 0xFF},
		{0x8C, 0x56, 0x4B, 0xFF},
		{0xE3, 0x77, 0xC2, 0xFF},
		{0x7F, 0x7F, 0x7F, 0xFF},
	}
	return palette[int(quadrant)%len(palette)]
}
