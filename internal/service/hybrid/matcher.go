package hybrid

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/torvik/intent-cascade/internal/config"
	"github.com/torvik/intent-cascade/internal/constants"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/service/params"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

// ProviderName identifies this recognizer in cascade configuration.
const ProviderName = "hybrid_keyword_matcher"

// Stats counts recognition outcomes for observability.
type Stats struct {
	TotalRecognitions int64 `json:"total_recognitions"`
	PatternMatches    int64 `json:"pattern_matches"`
	FuzzyMatches      int64 `json:"fuzzy_matches"`
	CacheHits         int64 `json:"cache_hits"`
}

// Matcher is the hybrid keyword recognizer: pattern tiers first, approximate
// fuzzy matching as the slower path. Safe for concurrent use; the index is
// republished atomically on reload.
type Matcher struct {
	cfg       config.HybridConfig
	extractor *params.Extractor
	logger    *zap.Logger

	index      atomic.Pointer[Index]
	fuzzyCache *scoreCache

	totalRecognitions atomic.Int64
	patternMatches    atomic.Int64
	fuzzyMatches      atomic.Int64
	cacheHits         atomic.Int64
}

// NewMatcher compiles the donation set and returns a ready recognizer. An
// index build failure is returned to the caller, which excludes this
// recognizer from the cascade's active set.
func NewMatcher(cfg config.HybridConfig, donations []domain.KeywordDonation, extractor *params.Extractor, logger *zap.Logger) (*Matcher, error) {
	idx, err := BuildIndex(donations, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("hybrid matcher init: %w", err)
	}

	m := &Matcher{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
	}
	if cfg.CacheFuzzyResults {
		m.fuzzyCache = newScoreCache(cfg.FuzzyCacheSize, constants.CacheLimits.FuzzyScoreEvictBatch)
	}
	m.index.Store(idx)
	return m, nil
}

// Reload rebuilds the index from a fresh donation set and swaps it in
// atomically; in-flight recognitions keep reading the old index.
func (m *Matcher) Reload(donations []domain.KeywordDonation) error {
	idx, err := BuildIndex(donations, m.cfg, m.logger)
	if err != nil {
		return fmt.Errorf("hybrid matcher reload: %w", err)
	}
	m.index.Store(idx)
	if m.fuzzyCache != nil {
		m.fuzzyCache.clear()
	}
	return nil
}

func (m *Matcher) ProviderName() string {
	return ProviderName
}

// IsAvailable reports whether the matcher has anything to match against.
func (m *Matcher) IsAvailable(_ context.Context) bool {
	idx := m.index.Load()
	return idx != nil && (len(idx.patterns) > 0 || idx.totalKeywords > 0)
}

// Recognize classifies text, returning nil when no candidate clears the
// recognizer's own confidence floor. Fuzzy matching only runs when no
// pattern tier matched at all.
func (m *Matcher) Recognize(_ context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error) {
	idx := m.index.Load()
	if idx == nil {
		return nil, fmt.Errorf("hybrid matcher has no index")
	}
	m.totalRecognitions.Add(1)

	normalized := util.NormalizeForMatch(text)
	if normalized == "" {
		return nil, nil
	}

	if result := m.patternMatch(idx, normalized); result != nil {
		m.patternMatches.Add(1)
		m.logger.Debug("Pattern match",
			zap.String("text", util.TruncateString(text, 30)),
			zap.String("intent", result.IntentName),
			zap.String("method", string(result.Method)),
			zap.Float64("confidence", result.Confidence),
		)
		return m.intentFromResult(result, text, convCtx), nil
	}

	if m.cfg.FuzzyEnabled && len([]rune(text)) <= m.cfg.MaxTextLengthForFuzzy {
		if result := m.fuzzyMatch(idx, normalized); result != nil {
			m.fuzzyMatches.Add(1)
			m.logger.Debug("Fuzzy match",
				zap.String("text", util.TruncateString(text, 30)),
				zap.String("intent", result.IntentName),
				zap.Float64("fuzzy_score", result.FuzzyScore),
				zap.Float64("confidence", result.Confidence),
			)
			return m.intentFromResult(result, text, convCtx), nil
		}
	}

	return nil, nil
}

// ExtractParameters runs the shared type-driven extractor against the
// donated specs for the intent.
func (m *Matcher) ExtractParameters(_ context.Context, text, intentName string, specs []domain.ParameterSpec) (map[string]any, error) {
	return m.extractor.Extract(text, intentName, specs)
}

// RecognizeWithParameters composes recognition and parameter extraction,
// merging extracted values into the intent's entities.
func (m *Matcher) RecognizeWithParameters(ctx context.Context, text string, convCtx *domain.ConversationContext) (*domain.Intent, error) {
	intent, err := m.Recognize(ctx, text, convCtx)
	if err != nil || intent == nil {
		return intent, err
	}

	specs := m.index.Load().ParameterSpecs(intent.Name)
	if len(specs) == 0 {
		return intent, nil
	}

	extracted, err := m.extractor.Extract(text, intent.Name, specs)
	if err != nil {
		return nil, fmt.Errorf("parameter extraction for %s: %w", intent.Name, err)
	}
	for name, value := range extracted {
		intent.Entities[name] = value
	}
	return intent, nil
}

// patternMatch walks the exact, flexible and partial tiers, aggregates the
// best raw score per intent, and shapes the winner's confidence against the
// runner-up intent.
func (m *Matcher) patternMatch(idx *Index, normalized string) *domain.MatchResult {
	textTokens := util.TokenSet(normalized)

	type hit struct {
		score   float64
		method  domain.MatchMethod
		pattern string
	}
	intentHits := make(map[string]hit)

	record := func(intent string, score float64, method domain.MatchMethod, pattern string) {
		if existing, ok := intentHits[intent]; !ok || score > existing.score {
			intentHits[intent] = hit{score: score, method: method, pattern: pattern}
		}
	}

	for intentName, patterns := range idx.patterns {
		for _, exact := range patterns.exact {
			if util.ContainsWord(normalized, exact.text) {
				record(intentName, m.cfg.PatternConfidence*m.cfg.ExactBoost*patterns.boost,
					domain.MethodExactPattern, exact.text)
			}
		}
		for i, tokens := range patterns.flexible {
			if countTokensPresent(textTokens, tokens) == len(tokens) {
				record(intentName, m.cfg.PatternConfidence*m.cfg.FlexibleBoost*patterns.boost,
					domain.MethodFlexiblePattern, patterns.exact[i].text)
			}
		}
		for i, tokens := range patterns.partial {
			required := util.CeilFraction(len(tokens), constants.PartialTier.TokenOverlapRatio)
			if countTokensPresent(textTokens, tokens) >= required {
				record(intentName, m.cfg.PatternConfidence*m.cfg.PartialBoost*patterns.boost,
					domain.MethodPartialPattern, patterns.exact[i].text)
			}
		}
	}

	if len(intentHits) == 0 {
		return nil
	}

	bestIntent, runnerUpScore := "", 0.0
	bestHit := hit{}
	for intentName, h := range intentHits {
		better := h.score > bestHit.score ||
			(h.score == bestHit.score && (bestIntent == "" || intentName < bestIntent))
		if better {
			if bestIntent != "" && bestHit.score > runnerUpScore {
				runnerUpScore = bestHit.score
			}
			bestIntent, bestHit = intentName, h
		} else if h.score > runnerUpScore {
			runnerUpScore = h.score
		}
	}

	confidence := scoreConfidence(bestHit.score, runnerUpScore, normalized,
		idx.fuzzyKeywords[bestIntent], bestHit.method)
	if confidence < m.cfg.ConfidenceThreshold {
		return nil
	}

	return &domain.MatchResult{
		IntentName:     bestIntent,
		Confidence:     confidence,
		Method:         bestHit.method,
		MatchedPattern: bestHit.pattern,
	}
}

// fuzzyMatch shortlists approximate keyword candidates from the query's
// language pool, fans each keyword out to every owning intent, and
// aggregates per-intent scores.
func (m *Matcher) fuzzyMatch(idx *Index, normalized string) *domain.MatchResult {
	cached := false
	var intentScores map[string]float64

	if m.fuzzyCache != nil {
		if scores, ok := m.fuzzyCache.get(normalized); ok {
			m.cacheHits.Add(1)
			intentScores, cached = scores, true
		}
	}

	if intentScores == nil {
		intentScores = m.intentScores(idx, normalized)
		if len(intentScores) == 0 {
			return nil
		}
		if m.fuzzyCache != nil {
			m.fuzzyCache.set(normalized, intentScores)
		}
	}

	bestIntent, bestScore, runnerUpScore := bestAndRunnerUp(intentScores)
	if bestIntent == "" || bestScore < m.cfg.FuzzyThreshold {
		return nil
	}

	confidence := scoreConfidence(bestScore, runnerUpScore, normalized,
		idx.fuzzyKeywords[bestIntent], domain.MethodFuzzyMatch)
	if confidence < m.cfg.ConfidenceThreshold {
		return nil
	}

	return &domain.MatchResult{
		IntentName:      bestIntent,
		Confidence:      confidence,
		Method:          domain.MethodFuzzyMatch,
		FuzzyScore:      bestScore,
		MatchedKeywords: m.matchedKeywords(normalized, idx.fuzzyKeywords[bestIntent]),
		Cached:          cached,
	}
}

// intentScores is the batch scoring pass: shortlist over the language pool,
// then per-intent aggregation of best keyword score, token-set affinity of
// the best keyword, and a capped coverage bonus.
func (m *Matcher) intentScores(idx *Index, normalized string) map[string]float64 {
	pool := idx.poolFor(normalized)
	shortlist := shortlistKeywords(normalized, pool.keywords,
		constants.FuzzyTuning.ShortlistCutoff, constants.FuzzyTuning.ShortlistLimit)
	if len(shortlist) == 0 {
		return nil
	}

	type candidate struct {
		bestKeyword string
		bestScore   float64
		count       int
	}
	perIntent := make(map[string]*candidate)

	for _, entry := range shortlist {
		for _, intentName := range pool.intents[entry.keyword] {
			c, ok := perIntent[intentName]
			if !ok {
				c = &candidate{}
				perIntent[intentName] = c
			}
			c.count++
			if entry.score > c.bestScore {
				c.bestScore = entry.score
				c.bestKeyword = entry.keyword
			}
		}
	}

	scores := make(map[string]float64, len(perIntent))
	for intentName, c := range perIntent {
		coverage := 0.0
		if total := len(idx.fuzzyKeywords[intentName]); total > 0 {
			coverage = float64(c.count) / float64(total)
			if coverage > constants.FuzzyTuning.CoverageBonusCap {
				coverage = constants.FuzzyTuning.CoverageBonusCap
			}
		}
		scores[intentName] = 0.6*c.bestScore + 0.3*tokenSetRatio(normalized, c.bestKeyword) + coverage
	}
	return scores
}

// matchedKeywords lists the intent keywords closest to the query, for
// diagnostics only.
func (m *Matcher) matchedKeywords(normalized string, keywords []string) []string {
	shortlist := shortlistKeywords(normalized, keywords,
		constants.FuzzyTuning.MatchedKeywordCutoff, 3)
	matched := make([]string, 0, len(shortlist))
	for _, entry := range shortlist {
		matched = append(matched, entry.keyword)
	}
	return matched
}

func (m *Matcher) intentFromResult(result *domain.MatchResult, text string, convCtx *domain.ConversationContext) *domain.Intent {
	sessionID := ""
	if convCtx != nil {
		sessionID = convCtx.SessionID
	}
	intent := domain.NewIntent(result.IntentName, text, sessionID, result.Confidence)

	metadata := map[string]any{
		"method":     string(result.Method),
		"confidence": result.Confidence,
		"provider":   ProviderName,
	}
	if result.MatchedPattern != "" {
		metadata["matched_pattern"] = result.MatchedPattern
	}
	if len(result.MatchedKeywords) > 0 {
		metadata["matched_keywords"] = result.MatchedKeywords
	}
	if result.Method == domain.MethodFuzzyMatch {
		metadata["fuzzy_score"] = result.FuzzyScore
	}
	if result.Cached {
		metadata["cached"] = true
	}
	intent.Entities[domain.EntityProviderMetadata] = metadata

	return intent
}

// Snapshot returns current recognition counters.
func (m *Matcher) Snapshot() Stats {
	return Stats{
		TotalRecognitions: m.totalRecognitions.Load(),
		PatternMatches:    m.patternMatches.Load(),
		FuzzyMatches:      m.fuzzyMatches.Load(),
		CacheHits:         m.cacheHits.Load(),
	}
}

func countTokensPresent(textTokens map[string]struct{}, tokens []string) int {
	present := 0
	for _, tok := range tokens {
		if _, ok := textTokens[tok]; ok {
			present++
		}
	}
	return present
}

func bestAndRunnerUp(scores map[string]float64) (string, float64, float64) {
	bestIntent, bestScore, runnerUp := "", 0.0, 0.0
	for intentName, score := range scores {
		better := score > bestScore ||
			(score == bestScore && (bestIntent == "" || intentName < bestIntent))
		if better {
			if bestIntent != "" && bestScore > runnerUp {
				runnerUp = bestScore
			}
			bestIntent, bestScore = intentName, score
		} else if score > runnerUp {
			runnerUp = score
		}
	}
	return bestIntent, bestScore, runnerUp
}
