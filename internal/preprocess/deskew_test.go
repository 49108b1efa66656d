package preprocess

import (
	"bytes"
	"testing"
)

func TestDeskew_EmptyMaskUnchanged(t *testing.T) {
	img := newGrayFilled(40, 20, 0)

	out := Deskew(img)

	if !bytes.Equal(out.Pix, img.Pix) {
		t.Error("empty mask should come back unchanged")
	}

	// The result must be a fresh buffer, not an alias of the input
	out.Pix[0] = 255
	if img.Pix[0] != 0 {
		t.Error("output aliases the input buffer")
	}
}

func TestDeskew_AxisAlignedUnchanged(t *testing.T) {
	img := newGrayFilled(40, 20, 0)
	fillGrayRect(img, 5, 8, 30, 12, 255)

	out := Deskew(img)
	if !bytes.Equal(out.Pix, img.Pix) {
		t.Error("axis-aligned content should not be rotated")
	}
}

func TestDeskew_PreservesDimensions(t *testing.T) {
	img := newGrayFilled(50, 30, 0)
	// Slanted bar
	for i := 0; i < 20; i++ {
		img.Pix[(5+i/2)*img.Stride+10+i] = 255
	}

	out := Deskew(img)
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 50x30", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestDeskew_RotatesSlantedContent(t *testing.T) {
	img := newGrayFilled(40, 40, 0)
	// Thick diagonal stroke
	for i := 5; i < 35; i++ {
		img.Pix[i*img.Stride+i] = 255
		img.Pix[i*img.Stride+i-1] = 255
	}

	out := Deskew(img)
	if bytes.Equal(out.Pix, img.Pix) {
		t.Error("diagonal content should be rotated")
	}
}

func TestDeskew_Deterministic(t *testing.T) {
	img := newGrayFilled(50, 30, 0)
	for i := 0; i < 20; i++ {
		img.Pix[(5+i/2)*img.Stride+10+i] = 255
	}

	a := Deskew(img)
	b := Deskew(img)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repeated runs on the same mask must be byte-identical")
	}
}
