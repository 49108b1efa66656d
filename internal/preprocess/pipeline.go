package preprocess

import "image"

// Options configures the pipeline. The zero value uses Otsu binarization.
type Options struct {
	Binarize Policy
}

// Artifacts holds every intermediate buffer the pipeline produced, in
// processing order, plus the normalized tensor and the diagnostic character
// boxes. Each buffer is freshly allocated and owned by the caller.
type Artifacts struct {
	Gray     *image.Gray
	Denoised *image.Gray
	Binary   *image.Gray
	Morph    *image.Gray
	Deskewed *image.Gray
	Resized  *image.Gray

	// Tensor is the (1, 32, W) float32 model input.
	Tensor *Tensor

	// CharBoxes are diagnostic boxes from the deskewed mask, sorted by x.
	CharBoxes []Box

	// Stages lists the names of the stages actually produced, in order.
	Stages []string
}

// Run executes the full preprocessing chain on a raw image and returns all
// intermediate artifacts. It is deterministic: the same image and options
// always yield byte-identical buffers.
//
// A failure at any stage aborts the whole call; no partial Artifacts value
// is returned.
func Run(img image.Image, opts Options) (*Artifacts, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &DimensionError{Stage: "gray", Width: bounds.Dx(), Height: bounds.Dy()}
	}

	gray := Grayscale(img)
	denoised := Denoise(gray)
	binary := Binarize(denoised, opts.Binarize)
	morph := Morphology(binary)
	deskewed := Deskew(morph)

	resized, err := ResizeAndPad(deskewed)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Gray:      gray,
		Denoised:  denoised,
		Binary:    binary,
		Morph:     morph,
		Deskewed:  deskewed,
		Resized:   resized,
		Tensor:    Normalize(resized),
		CharBoxes: Segment(deskewed),
		Stages:    []string{"gray", "denoised", "binary", "morph", "deskew", "resized"},
	}, nil
}
