package recognizer

import (
	"context"

	"github.com/captchakit/captcha-ocr/internal/preprocess"
)

// Result is the common output contract of every recognition backend.
type Result struct {
	// Text is the predicted string, drawn only from the configured alphabet
	// for backends that can enforce it.
	Text string `json:"text"`

	// Confidence is in [0,1]. Backends without a native confidence report a
	// fixed placeholder of 0.0.
	Confidence float64 `json:"confidence"`

	// Debug carries diagnostic data for backends that run the local
	// preprocessing pipeline; nil otherwise.
	Debug *Debug `json:"debug,omitempty"`
}

// Debug is the diagnostic payload attached by pipeline-backed recognizers.
type Debug struct {
	// Stages lists the preprocessing stage names actually produced, in order.
	Stages []string `json:"stages"`

	// CharBoxes are the candidate character boxes, sorted ascending by x.
	CharBoxes []preprocess.Box `json:"char_boxes"`
}

// ImageToTextRecognizer converts a raw image byte buffer into a predicted
// string with a confidence score.
//
// Implementations must be safe for concurrent use: any shared state (such as
// loaded model parameters) is read-only after construction, and every call
// allocates its own working buffers.
type ImageToTextRecognizer interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string

	// Infer recognizes the text in the image. The context applies to
	// backends with an external surface (network, engine); the in-process
	// pipeline runs synchronously to completion.
	Infer(ctx context.Context, image []byte) (*Result, error)
}

// ChooseBest returns the result with the highest confidence, breaking ties
// by first-seen order. Nil entries are skipped. With no usable results it
// returns an empty zero-confidence result, never nil.
func ChooseBest(results []*Result) *Result {
	best := &Result{Text: "", Confidence: 0}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return best
}
