package crnn

import (
	"fmt"

	"github.com/captchakit/captcha-ocr/internal/preprocess"
)

// Architecture constants. The feature extractor reduces the 32-row input to
// a 4-row map through three pooling steps (2x2, 2x2, and 2x1), so each
// output column spans four input columns.
const (
	hiddenSize   = 128
	rnnLayers    = 2
	featHeight   = 4
	widthDivisor = 4
	rnnInputSize = 128 * featHeight
)

// convChannels is the channel chain of the four convolution blocks.
var convChannels = [...]int{1, 32, 64, 128, 128}

// Model is the CRNN sequence recognizer. Its parameters are immutable after
// construction, so a single Model may serve concurrent Forward calls; each
// call allocates its own intermediate buffers.
type Model struct {
	alphabet *Alphabet
	cp       *Checkpoint
}

// NewModel binds a validated checkpoint to an alphabet. A checkpoint whose
// shapes do not match the fixed architecture or the alphabet's class count
// is rejected with a wrapped ErrShapeMismatch.
func NewModel(cp *Checkpoint, alphabet *Alphabet) (*Model, error) {
	if err := cp.validate(alphabet.NumClasses()); err != nil {
		return nil, fmt.Errorf("failed to construct model: %w", err)
	}
	return &Model{alphabet: alphabet, cp: cp}, nil
}

// LoadModel reads a checkpoint file and constructs the model. This is the
// one externally-blocking operation of the package and is expected to run
// once per process lifetime, not per inference call.
func LoadModel(path string, alphabet *Alphabet) (*Model, error) {
	cp, err := LoadCheckpoint(path)
	if err != nil {
		return nil, err
	}
	return NewModel(cp, alphabet)
}

// Alphabet returns the shared read-only alphabet the model was built with.
func (m *Model) Alphabet() *Alphabet { return m.alphabet }

// Forward runs the network on a normalized (1, 32, W) tensor and returns raw
// logits as a T x C matrix, where T = W/4 timesteps and C is the class count
// (alphabet size + 1 blank, blank last). Batch size 1 is assumed throughout
// the inference path.
func (m *Model) Forward(t *preprocess.Tensor) ([][]float32, error) {
	if t.Channels != 1 || t.Height != preprocess.TargetHeight {
		return nil, fmt.Errorf("input tensor is (%d,%d,%d), want (1,%d,W)",
			t.Channels, t.Height, t.Width, preprocess.TargetHeight)
	}
	if t.Width < preprocess.MinWidth || t.Width%widthDivisor != 0 {
		return nil, fmt.Errorf("input width %d must be >= %d and a multiple of %d",
			t.Width, preprocess.MinWidth, widthDivisor)
	}

	fm := &featureMap{c: 1, h: t.Height, w: t.Width, data: t.Data}

	fm = conv3x3ReLU(fm, m.cp.Conv[0].Weight, m.cp.Conv[0].Bias, m.cp.Conv[0].Out)
	fm = maxPool(fm, 2, 2)
	fm = conv3x3ReLU(fm, m.cp.Conv[1].Weight, m.cp.Conv[1].Bias, m.cp.Conv[1].Out)
	fm = maxPool(fm, 2, 2)
	fm = conv3x3ReLU(fm, m.cp.Conv[2].Weight, m.cp.Conv[2].Bias, m.cp.Conv[2].Out)
	fm = conv3x3ReLU(fm, m.cp.Conv[3].Weight, m.cp.Conv[3].Bias, m.cp.Conv[3].Out)
	fm = maxPool(fm, 2, 1)

	seq := columnsToSequence(fm)
	for i := range m.cp.RNN {
		seq = biLSTM(seq, &m.cp.RNN[i])
	}

	logits := make([][]float32, len(seq))
	for i, v := range seq {
		logits[i] = linear(v, &m.cp.Output)
	}
	return logits, nil
}

// columnsToSequence flattens each feature-map column into one timestep
// vector, channel-major then row: index c*h + y.
func columnsToSequence(fm *featureMap) [][]float32 {
	seq := make([][]float32, fm.w)
	for x := 0; x < fm.w; x++ {
		v := make([]float32, fm.c*fm.h)
		for c := 0; c < fm.c; c++ {
			for y := 0; y < fm.h; y++ {
				v[c*fm.h+y] = fm.at(c, y, x)
			}
		}
		seq[x] = v
	}
	return seq
}
