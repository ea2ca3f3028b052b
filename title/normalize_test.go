package title

import "testing"

func TestHalfWidthCollapsesFullWidthASCII(t *testing.T) {
	got := HalfWidth("ＡＢＣ１２３")
	if got != "ABC123" {
		t.Fatalf("HalfWidth = %q, want ABC123", got)
	}
}

func TestHalfWidthConvertsHiraganaViaKatakana(t *testing.T) {
	got := HalfWidth("ひらがな")
	want := "ﾋﾗｶﾞﾅ"
	if got != want {
		t.Fatalf("HalfWidth = %q, want %q", got, want)
	}
}

func TestHalfWidthConvertsKatakana(t *testing.T) {
	got := HalfWidth("カタカナ")
	want := "ｶﾀｶﾅ"
	if got != want {
		t.Fatalf("HalfWidth = %q, want %q", got, want)
	}
}

func TestHalfWidthDropsDiacriticsToBaseLetter(t *testing.T) {
	got := HalfWidth("café")
	if got != "cafe" {
		t.Fatalf("HalfWidth = %q, want cafe", got)
	}
}

func TestHalfWidthFallsBackToSpaceForUnrepresentable(t *testing.T) {
	got := HalfWidth("漢字")
	for _, r := range got {
		if r != ' ' {
			t.Fatalf("HalfWidth(%q) = %q, want all spaces for unrepresentable kanji", "漢字", got)
		}
	}
}

func TestFullWidthShiftsPrintableASCII(t *testing.T) {
	got := FullWidth("ABC123")
	want := "ＡＢＣ１２３"
	if got != want {
		t.Fatalf("FullWidth = %q, want %q", got, want)
	}
}

func TestFullWidthUsesIdeographicSpace(t *testing.T) {
	got := FullWidth("A B")
	want := "Ａ　Ｂ"
	if got != want {
		t.Fatalf("FullWidth = %q, want %q", got, want)
	}
}

func TestFullWidthTransliteratesUmlauts(t *testing.T) {
	got := FullWidth("Müller")
	want := FullWidth("Mueller")
	if got != want {
		t.Fatalf("FullWidth(%q) = %q, want it to transliterate the same as %q = %q", "Müller", got, "Mueller", want)
	}
}

func TestFullWidthPassesThroughExistingFullWidthRune(t *testing.T) {
	got := FullWidth("カ")
	if got != "カ" {
		t.Fatalf("FullWidth(%q) = %q, want it passed through unchanged", "カ", got)
	}
}

func TestSanitizeASCIIDropsNonASCII(t *testing.T) {
	got := SanitizeASCII("café 漢字")
	want := "cafe "
	if got != want {
		t.Fatalf("SanitizeASCII = %q, want %q", got, want)
	}
}

func TestEncodeDecodeShiftJISRoundTrips(t *testing.T) {
	b, err := EncodeShiftJIS("Hello")
	if err != nil {
		t.Fatalf("EncodeShiftJIS: %v", err)
	}
	s, err := DecodeShiftJIS(b)
	if err != nil {
		t.Fatalf("DecodeShiftJIS: %v", err)
	}
	if s != "Hello" {
		t.Fatalf("round trip = %q, want Hello", s)
	}
}
