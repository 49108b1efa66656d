package crnn

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
)

// checkpointVersion identifies the on-disk layout. Bump on any breaking
// change to the parameter structs below.
const checkpointVersion = 1

// ErrShapeMismatch reports a checkpoint whose parameter shapes do not match
// the fixed architecture. It is always wrapped with the offending layer.
var ErrShapeMismatch = errors.New("weight shape mismatch")

// ConvParams holds one convolutional layer: a 3x3 kernel per (out, in)
// channel pair, laid out [out][in][ky][kx], plus one bias per out channel.
type ConvParams struct {
	In     int
	Out    int
	Weight []float32
	Bias   []float32
}

// LSTMParams holds one LSTM direction. The stacked matrices follow the
// i, f, g, o gate order: WeightIH is [4*Hidden][Input], WeightHH is
// [4*Hidden][Hidden], and both biases have length 4*Hidden.
type LSTMParams struct {
	Input    int
	Hidden   int
	WeightIH []float32
	WeightHH []float32
	BiasIH   []float32
	BiasHH   []float32
}

// BiLSTMParams pairs the two directions of one bidirectional layer.
type BiLSTMParams struct {
	Forward  LSTMParams
	Backward LSTMParams
}

// LinearParams holds the output projection, Weight laid out [Out][In].
type LinearParams struct {
	In     int
	Out    int
	Weight []float32
	Bias   []float32
}

// Checkpoint is the complete serialized parameter set of the model. Once
// loaded it is treated as immutable shared state.
type Checkpoint struct {
	Version int
	Conv    []ConvParams
	RNN     []BiLSTMParams
	Output  LinearParams
}

// LoadCheckpoint reads and decodes a gob checkpoint file. Shape validation
// happens in NewModel, where the target alphabet is known.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights: %w", err)
	}
	defer f.Close()

	var cp Checkpoint
	if err := gob.NewDecoder(f).Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode weights %s: %w", path, err)
	}
	if cp.Version != checkpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d (want %d)", cp.Version, checkpointVersion)
	}
	return &cp, nil
}

// SaveCheckpoint writes a gob checkpoint file, stamping the current version.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	defer f.Close()

	stamped := *cp
	stamped.Version = checkpointVersion
	if err := gob.NewEncoder(f).Encode(&stamped); err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	return nil
}

// validate checks every parameter shape against the fixed architecture and
// the class count of the target alphabet.
func (cp *Checkpoint) validate(numClasses int) error {
	if len(cp.Conv) != len(convChannels)-1 {
		return fmt.Errorf("%w: have %d conv layers, want %d", ErrShapeMismatch, len(cp.Conv), len(convChannels)-1)
	}
	for i, c := range cp.Conv {
		in, out := convChannels[i], convChannels[i+1]
		if c.In != in || c.Out != out {
			return fmt.Errorf("%w: conv %d is %dx%d, want %dx%d", ErrShapeMismatch, i, c.In, c.Out, in, out)
		}
		if len(c.Weight) != out*in*9 || len(c.Bias) != out {
			return fmt.Errorf("%w: conv %d weight/bias length", ErrShapeMismatch, i)
		}
	}

	if len(cp.RNN) != rnnLayers {
		return fmt.Errorf("%w: have %d recurrent layers, want %d", ErrShapeMismatch, len(cp.RNN), rnnLayers)
	}
	for i, layer := range cp.RNN {
		in := rnnInputSize
		if i > 0 {
			in = 2 * hiddenSize
		}
		for dir, p := range [...]*LSTMParams{&layer.Forward, &layer.Backward} {
			if p.Input != in || p.Hidden != hiddenSize {
				return fmt.Errorf("%w: rnn %d dir %d is %dx%d, want %dx%d",
					ErrShapeMismatch, i, dir, p.Input, p.Hidden, in, hiddenSize)
			}
			if len(p.WeightIH) != 4*hiddenSize*in ||
				len(p.WeightHH) != 4*hiddenSize*hiddenSize ||
				len(p.BiasIH) != 4*hiddenSize ||
				len(p.BiasHH) != 4*hiddenSize {
				return fmt.Errorf("%w: rnn %d dir %d parameter length", ErrShapeMismatch, i, dir)
			}
		}
	}

	if cp.Output.In != 2*hiddenSize || cp.Output.Out != numClasses {
		return fmt.Errorf("%w: output is %dx%d, want %dx%d",
			ErrShapeMismatch, cp.Output.In, cp.Output.Out, 2*hiddenSize, numClasses)
	}
	if len(cp.Output.Weight) != cp.Output.Out*cp.Output.In || len(cp.Output.Bias) != cp.Output.Out {
		return fmt.Errorf("%w: output parameter length", ErrShapeMismatch)
	}
	return nil
}
