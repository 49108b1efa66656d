package crnn

import "math"

// DecodedResult is the terminal output of greedy CTC decoding.
type DecodedResult struct {
	// Text contains only symbols drawn from the alphabet.
	Text string

	// Confidence is the arithmetic mean of the per-character best
	// probabilities, in [0,1]. It is 0.0 when Text is empty.
	Confidence float64
}

// Decode collapses per-timestep logits into a character string with a
// confidence score, using greedy CTC decoding: softmax each timestep, take
// the arg-max class, collapse consecutive repeats of the same symbol, and
// drop blanks.
//
// A repeated symbol with no intervening blank is one logical character and
// keeps the highest probability observed during its run; a blank terminates
// the current run; a different symbol terminates the run and starts a new
// one. The confidence is the mean of the emitted runs' probabilities.
//
// Decode is total: an all-blank or empty sequence yields Text == "" with
// Confidence 0.0, which is a valid result, not an error.
func Decode(logits [][]float32, alphabet *Alphabet) DecodedResult {
	blank := alphabet.BlankIndex()

	var emitted []rune
	var probs []float64

	active := false
	var runSymbol rune
	var runProb float64

	emit := func() {
		emitted = append(emitted, runSymbol)
		probs = append(probs, runProb)
		active = false
	}

	for _, row := range logits {
		idx, p := argmaxProb(row)

		if idx == blank {
			if active {
				emit()
			}
			continue
		}

		sym, ok := alphabet.Symbol(idx)
		if !ok {
			// Class outside the alphabet: treat like a blank separator.
			if active {
				emit()
			}
			continue
		}

		switch {
		case !active:
			active = true
			runSymbol = sym
			runProb = p
		case sym == runSymbol:
			if p > runProb {
				runProb = p
			}
		default:
			emit()
			active = true
			runSymbol = sym
			runProb = p
		}
	}
	if active {
		emit()
	}

	if len(emitted) == 0 {
		return DecodedResult{Text: "", Confidence: 0}
	}

	var sum float64
	for _, p := range probs {
		sum += p
	}
	return DecodedResult{
		Text:       string(emitted),
		Confidence: sum / float64(len(probs)),
	}
}

// argmaxProb softmaxes one timestep's logits and returns the arg-max class
// index with its probability. The max-logit shift keeps the exponentials
// from overflowing.
func argmaxProb(logits []float32) (int, float64) {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	var sum float64
	best := 0
	bestExp := 0.0
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		sum += e
		if e > bestExp {
			bestExp = e
			best = i
		}
	}
	return best, bestExp / sum
}
