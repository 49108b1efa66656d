package crnn

import (
	"math"
	"testing"
)

// timestep builds one logit row where the given class gets probability p and
// the remaining mass is spread uniformly, so the softmax recovers p exactly
func timestep(class int, p float64, numClasses int) []float32 {
	row := make([]float32, numClasses)
	rest := float32(math.Log((1 - p) / float64(numClasses-1)))
	for i := range row {
		row[i] = rest
	}
	row[class] = float32(math.Log(p))
	return row
}

func TestDecode_CollapsesRepeats(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')

	logits := [][]float32{
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.9, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "A" {
		t.Errorf("text: got %q, want %q", got.Text, "A")
	}
}

func TestDecode_BlankSeparatesRepeats(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')

	logits := [][]float32{
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(a.BlankIndex(), 0.99, a.NumClasses()),
		timestep(idxA, 0.9, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "AA" {
		t.Errorf("text: got %q, want %q", got.Text, "AA")
	}
}

func TestDecode_SymbolChangeWithoutBlank(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')
	idxB, _ := a.Index('B')

	logits := [][]float32{
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxB, 0.8, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "AB" {
		t.Errorf("text: got %q, want %q", got.Text, "AB")
	}
	if math.Abs(got.Confidence-0.85) > 1e-3 {
		t.Errorf("confidence: got %f, want 0.85", got.Confidence)
	}
}

func TestDecode_RepeatKeepsMaxProbability(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')

	logits := [][]float32{
		timestep(idxA, 0.7, a.NumClasses()),
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.6, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "A" {
		t.Fatalf("text: got %q, want %q", got.Text, "A")
	}
	if math.Abs(got.Confidence-0.9) > 1e-3 {
		t.Errorf("confidence: got %f, want 0.9", got.Confidence)
	}
}

func TestDecode_ConfidenceIsMeanOfRuns(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')
	idxB, _ := a.Index('B')

	logits := [][]float32{
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.7, a.NumClasses()), // same run, lower prob ignored
		timestep(a.BlankIndex(), 0.99, a.NumClasses()),
		timestep(idxB, 0.8, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "AB" {
		t.Fatalf("text: got %q, want %q", got.Text, "AB")
	}
	want := (0.9 + 0.8) / 2
	if math.Abs(got.Confidence-want) > 1e-3 {
		t.Errorf("confidence: got %f, want %f", got.Confidence, want)
	}
}

func TestDecode_SingleRunEndedByBlank(t *testing.T) {
	a := DefaultAlphabet()
	idxA, _ := a.Index('A')

	logits := [][]float32{
		timestep(idxA, 0.9, a.NumClasses()),
		timestep(idxA, 0.7, a.NumClasses()),
		timestep(idxA, 0.95, a.NumClasses()),
		timestep(idxA, 0.8, a.NumClasses()),
		timestep(a.BlankIndex(), 0.99, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "A" {
		t.Fatalf("text: got %q, want %q", got.Text, "A")
	}
	if math.Abs(got.Confidence-0.95) > 1e-3 {
		t.Errorf("confidence: got %f, want 0.95", got.Confidence)
	}
}

func TestDecode_AllBlank(t *testing.T) {
	a := DefaultAlphabet()

	logits := [][]float32{
		timestep(a.BlankIndex(), 0.99, a.NumClasses()),
		timestep(a.BlankIndex(), 0.99, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Text != "" || got.Confidence != 0 {
		t.Errorf("got %q/%f, want empty text with zero confidence", got.Text, got.Confidence)
	}
}

func TestDecode_NoTimesteps(t *testing.T) {
	got := Decode(nil, DefaultAlphabet())
	if got.Text != "" || got.Confidence != 0 {
		t.Errorf("got %q/%f, want empty text with zero confidence", got.Text, got.Confidence)
	}
}

func TestDecode_ConfidenceBounds(t *testing.T) {
	a := DefaultAlphabet()
	logits := [][]float32{
		timestep(0, 0.5, a.NumClasses()),
		timestep(5, 0.99, a.NumClasses()),
		timestep(a.BlankIndex(), 0.9, a.NumClasses()),
	}

	got := Decode(logits, a)
	if got.Confidence < 0 || got.Confidence > 1 {
		t.Errorf("confidence %f out of [0,1]", got.Confidence)
	}
}

func TestArgmaxProb(t *testing.T) {
	idx, p := argmaxProb(timestep(7, 0.9, 37))
	if idx != 7 {
		t.Errorf("argmax: got %d, want 7", idx)
	}
	if math.Abs(p-0.9) > 1e-3 {
		t.Errorf("probability: got %f, want 0.9", p)
	}
}

func TestArgmaxProb_Uniform(t *testing.T) {
	idx, p := argmaxProb(make([]float32, 4))
	if idx != 0 {
		t.Errorf("argmax on uniform logits: got %d, want first index", idx)
	}
	if math.Abs(p-0.25) > 1e-6 {
		t.Errorf("probability: got %f, want 0.25", p)
	}
}
