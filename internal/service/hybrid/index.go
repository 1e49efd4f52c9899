package hybrid

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/torvik/intent-cascade/internal/config"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

// Language pools for the fuzzy index. Partitioning by script keeps the fuzzy
// scan on the relevant-language keywords only.
const (
	poolCyrillic = "cyrillic"
	poolLatin    = "latin"
)

type phrasePattern struct {
	text   string
	tokens []string
}

type intentPatterns struct {
	exact    []phrasePattern
	flexible [][]string
	partial  [][]string
	boost    float64
}

// keywordPool is one language partition of the global fuzzy index. A keyword
// maps to the set of every intent that donated it: keyword collisions are
// legitimate and must not drop data.
type keywordPool struct {
	keywords []string
	intents  map[string][]string
}

// Index holds every recognizer-ready structure compiled from donations. It is
// immutable after BuildIndex returns and is published by atomic swap, so
// concurrent readers never observe a partially-built index.
type Index struct {
	patterns      map[string]*intentPatterns
	fuzzyKeywords map[string][]string
	pools         map[string]*keywordPool
	parameters    map[string][]domain.ParameterSpec

	totalPatterns int
	totalKeywords int
}

// BuildIndex compiles donations into pattern tiers and the partitioned fuzzy
// keyword index. A donation failing validation fails the whole build (the
// caller excludes this recognizer from the active set); a donation with no
// phrases is skipped with a warning.
func BuildIndex(donations []domain.KeywordDonation, cfg config.HybridConfig, logger *zap.Logger) (*Index, error) {
	idx := &Index{
		patterns:      make(map[string]*intentPatterns),
		fuzzyKeywords: make(map[string][]string),
		pools: map[string]*keywordPool{
			poolCyrillic: {intents: make(map[string][]string)},
			poolLatin:    {intents: make(map[string][]string)},
		},
		parameters: make(map[string][]domain.ParameterSpec),
	}

	for i := range donations {
		donation := &donations[i]
		if len(donation.Phrases) == 0 {
			logger.Warn("No phrases in donation, skipping", zap.String("intent", donation.Intent))
			continue
		}
		if err := donation.Validate(); err != nil {
			return nil, fmt.Errorf("invalid donation: %w", err)
		}

		patterns := &intentPatterns{boost: donation.EffectiveBoost()}
		for _, phrase := range donation.Phrases {
			normalized := util.NormalizeForMatch(phrase)
			if len([]rune(normalized)) < cfg.MinPatternLength {
				continue
			}
			tokens := util.Tokenize(normalized)
			if len(tokens) == 0 {
				continue
			}
			patterns.exact = append(patterns.exact, phrasePattern{text: normalized, tokens: tokens})
			patterns.flexible = append(patterns.flexible, tokens)
			patterns.partial = append(patterns.partial, tokens)
		}
		if len(patterns.exact) == 0 {
			logger.Warn("No usable phrases in donation, skipping", zap.String("intent", donation.Intent))
			continue
		}

		idx.patterns[donation.Intent] = patterns
		idx.totalPatterns += len(patterns.exact)

		if len(donation.Parameters) > 0 {
			idx.parameters[donation.Intent] = donation.Parameters
		}

		if cfg.FuzzyEnabled {
			keywords := buildFuzzyKeywords(donation, cfg.MaxFuzzyKeywordsPerIntent)
			idx.fuzzyKeywords[donation.Intent] = keywords
			idx.totalKeywords += len(keywords)
			for _, keyword := range keywords {
				pool := idx.pools[poolLatin]
				if util.HasCyrillic(keyword) {
					pool = idx.pools[poolCyrillic]
				}
				pool.intents[keyword] = append(pool.intents[keyword], donation.Intent)
			}
		}
	}

	for _, pool := range idx.pools {
		pool.keywords = make([]string, 0, len(pool.intents))
		for keyword := range pool.intents {
			pool.keywords = append(pool.keywords, keyword)
		}
		sort.Strings(pool.keywords)
	}

	logger.Info("Hybrid index built",
		zap.Int("intents", len(idx.patterns)),
		zap.Int("patterns", idx.totalPatterns),
		zap.Int("fuzzy_keywords", idx.totalKeywords),
		zap.Int("cyrillic_pool", len(idx.pools[poolCyrillic].keywords)),
		zap.Int("latin_pool", len(idx.pools[poolLatin].keywords)),
	)

	return idx, nil
}

// poolFor selects the language partition for a query by the same script
// heuristic used at build time.
func (idx *Index) poolFor(text string) *keywordPool {
	if util.HasCyrillic(text) {
		return idx.pools[poolCyrillic]
	}
	return idx.pools[poolLatin]
}

// ParameterSpecs returns the donated parameter specifications for an intent.
func (idx *Index) ParameterSpecs(intentName string) []domain.ParameterSpec {
	return idx.parameters[intentName]
}

// Intents lists every intent the index can recognize.
func (idx *Index) Intents() []string {
	names := make([]string, 0, len(idx.patterns))
	for name := range idx.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildFuzzyKeywords assembles the per-intent fuzzy keyword set: phrases,
// lemmas, 2-/3-word sliding n-grams and training-example texts, de-duplicated
// and pruned down to the cap by signal score.
func buildFuzzyKeywords(donation *domain.KeywordDonation, maxKeywords int) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, len(donation.Phrases)*3)

	add := func(raw string) {
		normalized := util.NormalizeForMatch(raw)
		if normalized == "" {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}

	for _, phrase := range donation.Phrases {
		add(phrase)
	}
	for _, lemma := range donation.Lemmas {
		add(lemma)
	}
	for _, phrase := range donation.Phrases {
		words := util.Tokenize(util.NormalizeForMatch(phrase))
		for i := 0; i+1 < len(words); i++ {
			add(words[i] + " " + words[i+1])
		}
		for i := 0; i+2 < len(words); i++ {
			add(words[i] + " " + words[i+1] + " " + words[i+2])
		}
	}
	for _, example := range donation.Examples {
		add(example.Text)
	}

	if len(keywords) > maxKeywords {
		keywords = pruneKeywords(keywords, maxKeywords)
	}
	return keywords
}

// Stop words carry no fuzzy signal on their own; keywords made entirely of
// them are heavily penalized during pruning.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "with": {}, "by": {}, "a": {}, "an": {},
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "не": {}, "же": {},
	"а": {}, "но": {}, "или": {}, "у": {}, "о": {}, "за": {},
}

// pruneKeywords keeps the top-N keywords by a composite signal score:
// character entropy, a 2-3 word sweet-spot weight, a length penalty and a
// stop-word penalty. Truncating by raw string length alone would discard
// high-signal short keywords.
func pruneKeywords(keywords []string, maxKeywords int) []string {
	type scored struct {
		keyword string
		score   float64
	}

	ranked := make([]scored, 0, len(keywords))
	for _, keyword := range keywords {
		ranked = append(ranked, scored{keyword: keyword, score: keywordSignalScore(keyword)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	pruned := make([]string, 0, maxKeywords)
	for _, entry := range ranked[:maxKeywords] {
		pruned = append(pruned, entry.keyword)
	}
	return pruned
}

func keywordSignalScore(keyword string) float64 {
	entropy := charEntropy(keyword)

	wordCount := len(strings.Fields(keyword))
	wordScore := 0.6
	switch {
	case wordCount == 2 || wordCount == 3:
		wordScore = 1.0
	case wordCount == 1:
		wordScore = 0.8
	}

	lengthScore := 1.0
	runeLen := len([]rune(keyword))
	switch {
	case runeLen < 3:
		lengthScore = 0.9
	case runeLen > 50:
		lengthScore = 0.7
	}

	stopPenalty := 1.0
	if allStopWords(keyword) {
		stopPenalty = 0.3
	}

	return entropy * wordScore * lengthScore * stopPenalty
}

func charEntropy(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0.0
	}
	counts := make(map[rune]int)
	for _, r := range runes {
		counts[r]++
	}
	total := float64(len(runes))
	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func allStopWords(keyword string) bool {
	tokens := strings.Fields(keyword)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := stopWords[tok]; !ok {
			return false
		}
	}
	return true
}
