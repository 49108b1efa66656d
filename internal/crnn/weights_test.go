package crnn

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestCheckpoint builds a checkpoint with correctly shaped zero parameters
// for the default alphabet
func newTestCheckpoint() *Checkpoint {
	cp := &Checkpoint{Version: checkpointVersion}

	for i := 0; i < len(convChannels)-1; i++ {
		in, out := convChannels[i], convChannels[i+1]
		cp.Conv = append(cp.Conv, ConvParams{
			In:     in,
			Out:    out,
			Weight: make([]float32, out*in*9),
			Bias:   make([]float32, out),
		})
	}

	for i := 0; i < rnnLayers; i++ {
		in := rnnInputSize
		if i > 0 {
			in = 2 * hiddenSize
		}
		dir := func() LSTMParams {
			return LSTMParams{
				Input:    in,
				Hidden:   hiddenSize,
				WeightIH: make([]float32, 4*hiddenSize*in),
				WeightHH: make([]float32, 4*hiddenSize*hiddenSize),
				BiasIH:   make([]float32, 4*hiddenSize),
				BiasHH:   make([]float32, 4*hiddenSize),
			}
		}
		cp.RNN = append(cp.RNN, BiLSTMParams{Forward: dir(), Backward: dir()})
	}

	n := DefaultAlphabet().NumClasses()
	cp.Output = LinearParams{
		In:     2 * hiddenSize,
		Out:    n,
		Weight: make([]float32, n*2*hiddenSize),
		Bias:   make([]float32, n),
	}
	return cp
}

func TestSaveLoadCheckpoint_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.gob")

	cp := newTestCheckpoint()
	cp.Conv[0].Weight[0] = 0.5
	cp.Output.Bias[3] = -1.25

	if err := SaveCheckpoint(path, cp); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.Version != checkpointVersion {
		t.Errorf("version: got %d, want %d", loaded.Version, checkpointVersion)
	}
	if len(loaded.Conv) != len(cp.Conv) {
		t.Fatalf("conv layers: got %d, want %d", len(loaded.Conv), len(cp.Conv))
	}
	if loaded.Conv[0].Weight[0] != 0.5 {
		t.Errorf("conv weight: got %f, want 0.5", loaded.Conv[0].Weight[0])
	}
	if loaded.Output.Bias[3] != -1.25 {
		t.Errorf("output bias: got %f, want -1.25", loaded.Output.Bias[3])
	}
}

func TestLoadCheckpoint_MissingFile(t *testing.T) {
	if _, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadCheckpoint_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.gob")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadCheckpoint(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestLoadCheckpoint_WrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.gob")

	cp := newTestCheckpoint()
	cp.Version = 99

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	if err := gob.NewEncoder(f).Encode(cp); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	f.Close()

	if _, err := LoadCheckpoint(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestValidate_ShapeMismatches(t *testing.T) {
	numClasses := DefaultAlphabet().NumClasses()

	tests := []struct {
		name   string
		mutate func(*Checkpoint)
	}{
		{"missing conv layer", func(cp *Checkpoint) { cp.Conv = cp.Conv[:3] }},
		{"wrong conv channels", func(cp *Checkpoint) { cp.Conv[1].Out = 99 }},
		{"short conv weight", func(cp *Checkpoint) { cp.Conv[0].Weight = cp.Conv[0].Weight[:10] }},
		{"missing rnn layer", func(cp *Checkpoint) { cp.RNN = cp.RNN[:1] }},
		{"wrong rnn input", func(cp *Checkpoint) { cp.RNN[1].Forward.Input = 5 }},
		{"short rnn bias", func(cp *Checkpoint) { cp.RNN[0].Backward.BiasIH = nil }},
		{"wrong output classes", func(cp *Checkpoint) { cp.Output.Out = 3 }},
		{"short output weight", func(cp *Checkpoint) { cp.Output.Weight = cp.Output.Weight[:7] }},
	}

	for _, tt := range tests {
		cp := newTestCheckpoint()
		tt.mutate(cp)

		err := cp.validate(numClasses)
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("%s: got %v, want ErrShapeMismatch", tt.name, err)
		}
	}
}

func TestValidate_Accepts(t *testing.T) {
	if err := newTestCheckpoint().validate(DefaultAlphabet().NumClasses()); err != nil {
		t.Errorf("valid checkpoint rejected: %v", err)
	}
}
