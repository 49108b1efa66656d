package recognizer

import (
	"context"

	"github.com/captchakit/captcha-ocr/internal/crnn"
	"github.com/captchakit/captcha-ocr/internal/preprocess"
)

// Local is the in-process recognizer: preprocessing pipeline, CRNN forward
// pass, greedy CTC decode. It holds only the immutable model, so one Local
// value can serve concurrent calls.
type Local struct {
	model *crnn.Model
	opts  preprocess.Options
}

// NewLocal builds a local recognizer around a loaded model using the default
// (Otsu) binarization policy.
func NewLocal(model *crnn.Model) *Local {
	return NewLocalWithOptions(model, preprocess.Options{})
}

// NewLocalWithOptions builds a local recognizer with an explicit
// preprocessing configuration.
func NewLocalWithOptions(model *crnn.Model, opts preprocess.Options) *Local {
	return &Local{model: model, opts: opts}
}

func (l *Local) Name() string { return "local" }

// Infer runs the full local inference path. The pipeline is synchronous and
// completes in bounded time, so the context is not consulted mid-flight.
func (l *Local) Infer(_ context.Context, data []byte) (*Result, error) {
	img, err := preprocess.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	art, err := preprocess.Run(img, l.opts)
	if err != nil {
		return nil, err
	}

	logits, err := l.model.Forward(art.Tensor)
	if err != nil {
		return nil, err
	}

	decoded := crnn.Decode(logits, l.model.Alphabet())
	return &Result{
		Text:       decoded.Text,
		Confidence: decoded.Confidence,
		Debug: &Debug{
			Stages:    art.Stages,
			CharBoxes: art.CharBoxes,
		},
	}, nil
}
