// Package inspect writes preprocessing artifacts to disk for visual
// debugging: one PNG per pipeline stage plus a color overlay of the candidate
// character boxes.
package inspect

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/captchakit/captcha-ocr/internal/preprocess"
)

// DumpStages writes every stage image from the artifacts into dir, numbered
// in pipeline order, plus a "boxes" overlay rendered from the character
// boxes. The directory is created if missing. Returns the list of files
// written, relative to dir.
func DumpStages(dir string, art *preprocess.Artifacts) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory: %w", err)
	}

	stages := []struct {
		name string
		img  *image.Gray
	}{
		{"gray", art.Gray},
		{"denoised", art.Denoised},
		{"binary", art.Binary},
		{"morph", art.Morph},
		{"deskew", art.Deskewed},
		{"resized", art.Resized},
	}

	var written []string
	for i, s := range stages {
		if s.img == nil {
			continue
		}
		name := fmt.Sprintf("%02d_%s.png", i, s.name)
		if err := writePNG(filepath.Join(dir, name), s.img); err != nil {
			return written, err
		}
		written = append(written, name)
	}

	if art.Deskewed != nil {
		name := fmt.Sprintf("%02d_boxes.png", len(stages))
		overlay := BoxOverlay(art.Deskewed, art.CharBoxes)
		if err := writePNG(filepath.Join(dir, name), overlay); err != nil {
			return written, err
		}
		written = append(written, name)
	}

	return written, nil
}

// BoxOverlay renders the mask in RGB with each character box outlined in a
// distinct color. Colors are assigned deterministically by walking the hue
// wheel in golden-angle steps, so box N is always the same color across runs.
func BoxOverlay(mask *image.Gray, boxes []preprocess.Box) *image.RGBA {
	out := image.NewRGBA(mask.Bounds())
	draw.Draw(out, out.Bounds(), mask, mask.Bounds().Min, draw.Src)

	for i, b := range boxes {
		drawRect(out, b, boxColor(i))
	}
	return out
}

func boxColor(i int) color.RGBA {
	hue := math.Mod(float64(i)*137.508, 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawRect outlines the box with a one pixel border, clipped to the image.
func drawRect(img *image.RGBA, b preprocess.Box, c color.RGBA) {
	bounds := img.Bounds()
	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.W-1, b.Y+b.H-1

	for x := x0; x <= x1; x++ {
		setClipped(img, bounds, x, y0, c)
		setClipped(img, bounds, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setClipped(img, bounds, x0, y, c)
		setClipped(img, bounds, x1, y, c)
	}
}

func setClipped(img *image.RGBA, bounds image.Rectangle, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(bounds) {
		img.SetRGBA(x, y, c)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
