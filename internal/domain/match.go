package domain

// MatchMethod identifies which matching strategy produced a result.
type MatchMethod string

const (
	MethodExactPattern    MatchMethod = "exact_pattern"
	MethodFlexiblePattern MatchMethod = "flexible_pattern"
	MethodPartialPattern  MatchMethod = "partial_pattern"
	MethodFuzzyMatch      MatchMethod = "fuzzy_match"
)

// MatchResult is the internal outcome of one keyword-matching pass, kept for
// confidence shaping and diagnostics before it becomes an Intent.
type MatchResult struct {
	IntentName      string      `json:"intent_name"`
	Confidence      float64     `json:"confidence"`
	Method          MatchMethod `json:"method"`
	MatchedPattern  string      `json:"matched_pattern,omitempty"`
	MatchedKeywords []string    `json:"matched_keywords,omitempty"`
	FuzzyScore      float64     `json:"fuzzy_score,omitempty"`
	Cached          bool        `json:"cached,omitempty"`
}
