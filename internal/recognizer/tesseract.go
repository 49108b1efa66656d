package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/captchakit/captcha-ocr/internal/crnn"
	"github.com/captchakit/captcha-ocr/internal/preprocess"
)

// Tesseract recognizes text with the external Tesseract engine. It runs the
// same preprocessing pipeline as the local backend and hands the engine the
// deskewed mask, inverted back to dark-text-on-light, which is what the
// engine is trained on.
//
// The engine exposes no usable confidence on this path, so results carry a
// fixed placeholder confidence of 0.0; the downstream selector treats them
// accordingly.
type Tesseract struct {
	alphabet *crnn.Alphabet
	opts     preprocess.Options
}

// NewTesseract builds the Tesseract-backed recognizer. The alphabet is used
// to whitelist the engine's character set.
func NewTesseract(alphabet *crnn.Alphabet) *Tesseract {
	return &Tesseract{alphabet: alphabet}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Infer preprocesses the image and runs the engine on the inverted mask with
// single-line page segmentation and the alphabet as whitelist.
func (t *Tesseract) Infer(_ context.Context, data []byte) (*Result, error) {
	img, err := preprocess.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	art, err := preprocess.Run(img, t.opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, invert(art.Deskewed)); err != nil {
		return nil, fmt.Errorf("failed to encode mask for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetWhitelist(t.alphabet.String()); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return &Result{
		Text:       sanitizeText(text),
		Confidence: 0,
		Debug: &Debug{
			Stages:    art.Stages,
			CharBoxes: art.CharBoxes,
		},
	}, nil
}

// sanitizeText strips the whitespace Tesseract tends to insert around and
// inside short strings.
func sanitizeText(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

// invert flips a mask so foreground text becomes dark on a light background.
func invert(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = 255 - mask.Pix[y*mask.Stride+x]
		}
	}
	return out
}
