package crnn

import "testing"

func TestDefaultAlphabet(t *testing.T) {
	a := DefaultAlphabet()

	if a.Size() != 36 {
		t.Errorf("Size: got %d, want 36", a.Size())
	}
	if a.NumClasses() != 37 {
		t.Errorf("NumClasses: got %d, want 37", a.NumClasses())
	}
	if a.BlankIndex() != 36 {
		t.Errorf("BlankIndex: got %d, want 36", a.BlankIndex())
	}
	if a.String() != DefaultCharset {
		t.Errorf("String: got %q, want %q", a.String(), DefaultCharset)
	}
}

func TestAlphabet_SymbolRoundTrip(t *testing.T) {
	a := DefaultAlphabet()

	for i := 0; i < a.Size(); i++ {
		r, ok := a.Symbol(i)
		if !ok {
			t.Fatalf("Symbol(%d) not found", i)
		}
		j, ok := a.Index(r)
		if !ok || j != i {
			t.Errorf("Index(%q): got %d,%v, want %d,true", r, j, ok, i)
		}
	}
}

func TestAlphabet_BlankHasNoSymbol(t *testing.T) {
	a := DefaultAlphabet()

	if _, ok := a.Symbol(a.BlankIndex()); ok {
		t.Error("blank index must not map to a symbol")
	}
	if _, ok := a.Symbol(-1); ok {
		t.Error("negative index must not map to a symbol")
	}
}

func TestAlphabet_UnknownRune(t *testing.T) {
	a := DefaultAlphabet()

	if _, ok := a.Index('a'); ok {
		t.Error("lowercase runes are not in the default alphabet")
	}
}

func TestNewAlphabet_Rejects(t *testing.T) {
	if _, err := NewAlphabet(""); err == nil {
		t.Error("empty alphabet should be rejected")
	}
	if _, err := NewAlphabet("ABA"); err == nil {
		t.Error("duplicate symbols should be rejected")
	}
}

func TestNewAlphabet_PreservesOrder(t *testing.T) {
	a, err := NewAlphabet("ZX9")
	if err != nil {
		t.Fatalf("NewAlphabet failed: %v", err)
	}

	want := []rune{'Z', 'X', '9'}
	for i, r := range want {
		got, ok := a.Symbol(i)
		if !ok || got != r {
			t.Errorf("Symbol(%d): got %q, want %q", i, got, r)
		}
	}
}
