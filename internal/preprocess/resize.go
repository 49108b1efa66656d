package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
)

// TargetHeight is the fixed row count of the normalized model input.
const TargetHeight = 32

// MinWidth is the smallest width the padded output may have.
const MinWidth = 64

// ResizeAndPad rescales a mask to the fixed target height of 32 pixels,
// preserving aspect ratio with area-based (box) interpolation, then pads the
// width with background (0) on the right so that the final width is at least
// 64 and a multiple of 4.
//
// A zero-width or zero-height input, or an aspect ratio so extreme that the
// scaled width collapses to zero, is a fatal DimensionError; nothing is
// written in that case.
func ResizeAndPad(mask *image.Gray) (*image.Gray, error) {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, &DimensionError{Stage: "resize", Width: w, Height: h}
	}

	scale := float64(TargetHeight) / float64(h)
	newW := int(float64(w) * scale)
	if newW == 0 {
		return nil, &DimensionError{Stage: "resize", Width: newW, Height: TargetHeight}
	}

	resized := grayFromNRGBA(imaging.Resize(mask, newW, TargetHeight, imaging.Box))

	finalW := newW
	if finalW < MinWidth {
		finalW = MinWidth
	}
	finalW += (4 - finalW%4) % 4

	out := image.NewGray(image.Rect(0, 0, finalW, TargetHeight))
	for y := 0; y < TargetHeight; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+newW], resized.Pix[y*resized.Stride:y*resized.Stride+newW])
	}
	return out, nil
}

// Normalize converts an 8-bit single-channel image to a float32 tensor in
// [0,1] with a leading channel dimension, producing shape (1, H, W).
func Normalize(mask *image.Gray) *Tensor {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	t := &Tensor{Channels: 1, Height: h, Width: w, Data: make([]float32, h*w)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.Data[y*w+x] = float32(mask.Pix[y*mask.Stride+x]) / 255
		}
	}
	return t
}
