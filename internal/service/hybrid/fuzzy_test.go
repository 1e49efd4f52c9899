package hybrid

import (
	"fmt"
	"testing"
)

func TestWeightedRatio(t *testing.T) {
	if got := weightedRatio("поставь таймер", "поставь таймер"); got != 1.0 {
		t.Fatalf("identical strings: got %v, want 1.0", got)
	}

	// Single-letter typo stays close to 1.
	if got := weightedRatio("паставь таймер", "поставь таймер"); got < 0.9 {
		t.Fatalf("one-typo score too low: %v", got)
	}

	// Substring-like hit is carried by the discounted partial ratio.
	if got := weightedRatio("тайм", "таймер"); got < 0.85 {
		t.Fatalf("substring score too low: %v", got)
	}

	if got := weightedRatio("совсем другое", "turn on light"); got > 0.5 {
		t.Fatalf("unrelated strings score too high: %v", got)
	}
}

func TestPartialRatioWindows(t *testing.T) {
	// The shorter string matches a window of the longer one exactly.
	if got := partialRatio("таймер", "поставь таймер на пять"); got != 1.0 {
		t.Fatalf("expected perfect window match, got %v", got)
	}
	if got := partialRatio("", "что-нибудь"); got != 0.0 {
		t.Fatalf("empty side: got %v, want 0.0", got)
	}
	// Symmetric in argument order.
	a, b := partialRatio("тайм", "таймер"), partialRatio("таймер", "тайм")
	if a != b {
		t.Fatalf("expected symmetry, got %v vs %v", a, b)
	}
}

func TestTokenSetRatioIgnoresOrder(t *testing.T) {
	if got := tokenSetRatio("set a timer", "timer set a"); got != 1.0 {
		t.Fatalf("reordered tokens: got %v, want 1.0", got)
	}
	if got := tokenSetRatio("set a timer", "set a timer please"); got < 0.9 {
		t.Fatalf("superset tokens score too low: %v", got)
	}
	if got := tokenSetRatio("", "timer"); got != 0.0 {
		t.Fatalf("empty side: got %v, want 0.0", got)
	}
}

func TestShortlistKeywordsCutoffLimitAndOrder(t *testing.T) {
	keywords := []string{"поставь таймер", "установи таймер", "выключи свет", "таймер"}

	shortlist := shortlistKeywords("поставь таймер", keywords, 0.60, 2)
	if len(shortlist) != 2 {
		t.Fatalf("expected the limit to cap the shortlist, got %d entries", len(shortlist))
	}
	if shortlist[0].keyword != "поставь таймер" || shortlist[0].score != 1.0 {
		t.Fatalf("expected the exact keyword first, got %+v", shortlist[0])
	}
	if shortlist[0].score < shortlist[1].score {
		t.Fatal("expected descending score order")
	}

	if got := shortlistKeywords("поставь таймер", keywords, 1.01, 10); len(got) != 0 {
		t.Fatalf("expected unreachable cutoff to empty the shortlist, got %v", got)
	}
	if got := shortlistKeywords("поставь таймер", nil, 0.60, 10); got != nil {
		t.Fatalf("expected nil for empty pool, got %v", got)
	}
}

func TestParallelScanMatchesSequentialScan(t *testing.T) {
	keywords := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		keywords = append(keywords, fmt.Sprintf("keyword number %d", i))
	}
	keywords = append(keywords, "set kitchen timer")

	sequential := shortlistKeywords("set kitchen timer", keywords[len(keywords)-4:], 0.60, 30)
	parallel := shortlistKeywords("set kitchen timer", keywords, 0.60, 30)

	if len(parallel) == 0 {
		t.Fatal("expected the parallel scan to find the planted keyword")
	}
	if parallel[0].keyword != "set kitchen timer" || parallel[0].score != 1.0 {
		t.Fatalf("expected the planted keyword first, got %+v", parallel[0])
	}
	if sequential[0].keyword != parallel[0].keyword {
		t.Fatalf("sequential and parallel best differ: %q vs %q",
			sequential[0].keyword, parallel[0].keyword)
	}
}
