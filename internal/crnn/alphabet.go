package crnn

import "fmt"

// DefaultCharset is the symbol set common CAPTCHAs draw from.
const DefaultCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Alphabet is the fixed, ordered set of recognizable output symbols plus one
// reserved blank class used only by the CTC decoder. The blank occupies the
// last class index and is never part of the output text.
//
// An Alphabet is immutable once constructed. It is shared read-only
// configuration: construct it once and pass the same value to both the
// model's output layer and the decoder.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// NewAlphabet builds an alphabet from an ordered symbol string. Symbols must
// be unique; the blank class is implicit and must not be included.
func NewAlphabet(symbols string) (*Alphabet, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return nil, fmt.Errorf("alphabet must not be empty")
	}

	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, dup := index[r]; dup {
			return nil, fmt.Errorf("duplicate symbol %q in alphabet", r)
		}
		index[r] = i
	}

	return &Alphabet{symbols: runes, index: index}, nil
}

// DefaultAlphabet returns the digits 0-9 and uppercase A-Z alphabet.
func DefaultAlphabet() *Alphabet {
	a, err := NewAlphabet(DefaultCharset)
	if err != nil {
		panic(err) // unreachable: the default charset is valid
	}
	return a
}

// Size returns the number of real symbols, excluding the blank.
func (a *Alphabet) Size() int { return len(a.symbols) }

// NumClasses returns the model's class count: Size() + 1 for the blank.
func (a *Alphabet) NumClasses() int { return len(a.symbols) + 1 }

// BlankIndex returns the class index of the reserved blank symbol, which is
// always the last index.
func (a *Alphabet) BlankIndex() int { return len(a.symbols) }

// Symbol maps a class index back to its rune. Reports false for the blank
// index or any out-of-range index.
func (a *Alphabet) Symbol(i int) (rune, bool) {
	if i < 0 || i >= len(a.symbols) {
		return 0, false
	}
	return a.symbols[i], true
}

// Index maps a rune to its class index.
func (a *Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

// String returns the symbols in index order, blank excluded.
func (a *Alphabet) String() string { return string(a.symbols) }
