package preprocess

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
)

// Policy selects the binarization strategy.
type Policy string

const (
	// Otsu computes a single global threshold that minimizes the combined
	// intra-class intensity variance of foreground and background pixels.
	// This is the default and works well for evenly lit CAPTCHAs.
	Otsu Policy = "otsu"

	// Adaptive thresholds each pixel against the mean of its 21x21
	// neighborhood minus a constant offset of 10. Use it when illumination
	// is uneven across the image.
	Adaptive Policy = "adaptive"
)

const (
	adaptiveBlockSize = 21
	adaptiveOffset    = 10
	medianKernel      = 3
)

// Grayscale converts a color image to a single-channel image using ITU-R
// BT.601 luminance weights (0.299*R + 0.587*G + 0.114*B). The source image
// is not modified.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.Pix[y*gray.Stride+x] = uint8(lum)
		}
	}

	return gray
}

// Denoise applies a median filter with kernel size 3, removing isolated-pixel
// (salt-and-pepper) noise while preserving stroke edges.
func Denoise(gray *image.Gray) *image.Gray {
	return grayFromRGBA(effect.Median(gray, medianKernel))
}

// Binarize thresholds a grayscale image to a binary mask according to the
// given policy. The output is inverted so text pixels become foreground
// (255) and the background becomes 0.
//
// An unknown policy falls back to Otsu.
func Binarize(gray *image.Gray, policy Policy) *image.Gray {
	if policy == Adaptive {
		return adaptiveThreshold(gray)
	}
	return otsuThreshold(gray)
}

// otsuThreshold binarizes with a global Otsu threshold, inverted.
//
// The threshold maximizes the between-class variance over the intensity
// histogram, which is equivalent to minimizing the combined intra-class
// variance. Pixels at or below the threshold become 255.
func otsuThreshold(gray *image.Gray) *image.Gray {
	// For a single-channel image every RGBA histogram channel carries the
	// same counts; the red channel stands in for the gray histogram.
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	total := 0
	var sum float64
	for i, n := range bins {
		total += n
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var bestVar float64
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(bins[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(bins[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			threshold = t
		}
	}

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if int(gray.Pix[y*gray.Stride+x]) > threshold {
				out.Pix[y*out.Stride+x] = 0
			} else {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// adaptiveThreshold binarizes against the local mean of a 21x21 window minus
// a constant offset, inverted. Windows are clipped at the image border.
func adaptiveThreshold(gray *image.Gray) *image.Gray {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	// Summed-area table with a zero row/column so window sums are O(1).
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(gray.Pix[y*gray.Stride+x])
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + rowSum
		}
	}

	half := adaptiveBlockSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x1, y1 := x-half, y-half
			x2, y2 := x+half, y+half
			if x1 < 0 {
				x1 = 0
			}
			if y1 < 0 {
				y1 = 0
			}
			if x2 >= w {
				x2 = w - 1
			}
			if y2 >= h {
				y2 = h - 1
			}
			count := int64((x2 - x1 + 1) * (y2 - y1 + 1))
			sum := integral[(y2+1)*(w+1)+(x2+1)] - integral[y1*(w+1)+(x2+1)] -
				integral[(y2+1)*(w+1)+x1] + integral[y1*(w+1)+x1]
			mean := float64(sum) / float64(count)

			if float64(gray.Pix[y*gray.Stride+x]) > mean-adaptiveOffset {
				out.Pix[y*out.Stride+x] = 0
			} else {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// Morphology cleans a binary mask with one iteration of opening (erosion
// then dilation, removing small noise blobs) followed by one iteration of
// closing (dilation then erosion, bridging small gaps in strokes). Both use
// a 2x2 square structuring element.
func Morphology(mask *image.Gray) *image.Gray {
	opened := dilate2x2(erode2x2(mask))
	return erode2x2(dilate2x2(opened))
}

// The 2x2 element is anchored at its bottom-right cell, so each output pixel
// looks at offsets {-1,0} on both axes. Out-of-bounds neighbors never
// constrain the result.

func erode2x2(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255)
			for dy := -1; dy <= 0; dy++ {
				for dx := -1; dx <= 0; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if p := mask.Pix[ny*mask.Stride+nx]; p < v {
						v = p
					}
				}
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

func dilate2x2(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			for dy := -1; dy <= 0; dy++ {
				for dx := -1; dx <= 0; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if p := mask.Pix[ny*mask.Stride+nx]; p > v {
						v = p
					}
				}
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

// grayFromRGBA extracts the red channel of an RGBA image whose channels are
// known to be equal (the image originated from a grayscale buffer).
func grayFromRGBA(img *image.RGBA) *image.Gray {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = img.Pix[y*img.Stride+x*4]
		}
	}
	return out
}

func cloneGray(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
	return out
}
