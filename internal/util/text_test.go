package util

import "testing"

func TestNormalizeForMatchFoldsEquivalentForms(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"  Café  ", "cafe"},
		{"CAFÉ", "cafe"},
		{"cafe", "cafe"},
		{"Café", "cafe"}, // decomposed accent
		{"Поставь   Таймер", "поставь таймер"},
		{"\tmixed \n whitespace ", "mixed whitespace"},
	}

	for _, tc := range cases {
		if got := NormalizeForMatch(tc.input); got != tc.want {
			t.Fatalf("NormalizeForMatch(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokenizeSplitsOnNonAlphanumeric(t *testing.T) {
	got := Tokenize("привет, мир! timer-5")
	want := []string{"привет", "мир", "timer", "5"}

	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHasCyrillic(t *testing.T) {
	if !HasCyrillic("поставь таймер") {
		t.Fatal("expected Cyrillic text to be detected")
	}
	if HasCyrillic("set a timer") {
		t.Fatal("expected Latin text to not be detected as Cyrillic")
	}
	if !HasCyrillic("set таймер") {
		t.Fatal("expected mixed text with any Cyrillic rune to be detected")
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("таймер", "таймер"); got != 1.0 {
		t.Fatalf("identical strings: got %v, want 1.0", got)
	}
	if got := Similarity("", ""); got != 1.0 {
		t.Fatalf("empty strings are identical: got %v", got)
	}

	// One substitution over six runes.
	got := Similarity("kitten", "sitten")
	want := 1.0 - 1.0/6.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("Similarity(kitten, sitten) = %v, want %v", got, want)
	}

	if got := Similarity("abc", "xyz"); got != 0.0 {
		t.Fatalf("disjoint strings: got %v, want 0.0", got)
	}
}

func TestContainsWordRespectsTokenEdges(t *testing.T) {
	cases := []struct {
		text   string
		phrase string
		want   bool
	}{
		{"поставь таймер на 5", "таймер", true},
		{"поставь таймер на 5", "поставь таймер", true},
		{"таймеры сработали", "таймер", false}, // prefix of a longer word
		{"свет", "вет", false},                 // suffix of a longer word
		{"включи свет!", "свет", true},         // punctuation is a boundary
		{"set the timer", "timer", true},
		{"timers", "timer", false},
		{"anything", "", false},
	}

	for _, tc := range cases {
		if got := ContainsWord(tc.text, tc.phrase); got != tc.want {
			t.Fatalf("ContainsWord(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("короткий", 20); got != "короткий" {
		t.Fatalf("expected short string unchanged, got %q", got)
	}
	if got := TruncateString("поставь таймер", 7); got != "поставь..." {
		t.Fatalf("expected rune-based truncation, got %q", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.5, 0.0},
		{0.0, 0.0},
		{0.42, 0.42},
		{1.0, 1.0},
		{1.7, 1.0},
	}
	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Fatalf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCeilFraction(t *testing.T) {
	cases := []struct {
		n     int
		ratio float64
		want  int
	}{
		{5, 0.7, 4}, // ceil(3.5)
		{3, 0.7, 3}, // ceil(2.1)
		{4, 0.7, 3}, // ceil(2.8)
		{1, 0.7, 1},
		{0, 0.7, 0},
		{-2, 0.7, 0},
	}
	for _, tc := range cases {
		if got := CeilFraction(tc.n, tc.ratio); got != tc.want {
			t.Fatalf("CeilFraction(%d, %v) = %d, want %d", tc.n, tc.ratio, got, tc.want)
		}
	}
}
