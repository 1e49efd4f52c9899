package hybrid

import (
	"github.com/torvik/intent-cascade/internal/constants"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/util"
)

// methodPriors rank matching methods by strictness. A verbatim phrase hit is
// a stronger signal than an approximate one, so equivalent matches keep the
// ordering exact > flexible > partial > fuzzy.
var methodPriors = map[domain.MatchMethod]float64{
	domain.MethodExactPattern:    1.0,
	domain.MethodFlexiblePattern: 0.9,
	domain.MethodPartialPattern:  0.8,
	domain.MethodFuzzyMatch:      0.7,
}

// scoreConfidence folds heterogeneous match signals onto one [0,1] scale:
// raw score strength, separation from the runner-up intent, input-token
// coverage by the intent's keyword vocabulary, and the method prior. The
// separation term pulls confidence down when two intents are nearly tied,
// which is exactly when a single best guess is least trustworthy.
func scoreConfidence(best, runnerUp float64, normalizedText string, keywords []string, method domain.MatchMethod) float64 {
	separation := best - runnerUp
	if separation < 0 {
		separation = 0
	}

	prior, ok := methodPriors[method]
	if !ok {
		prior = methodPriors[domain.MethodFuzzyMatch]
	}

	w := constants.ConfidenceWeights
	confidence := w.Score*best +
		w.Separation*separation +
		w.Coverage*keywordCoverage(normalizedText, keywords) +
		w.MethodPrior*prior

	return util.Clamp01(confidence)
}

// keywordCoverage estimates the fraction of the input's tokens accounted for
// by the intent's keyword vocabulary.
func keywordCoverage(normalizedText string, keywords []string) float64 {
	textTokens := util.TokenSet(normalizedText)
	if len(textTokens) == 0 {
		return 0.0
	}

	vocabulary := make(map[string]struct{})
	for _, keyword := range keywords {
		for _, tok := range util.Tokenize(keyword) {
			vocabulary[tok] = struct{}{}
		}
	}

	covered := 0
	for tok := range textTokens {
		if _, ok := vocabulary[tok]; ok {
			covered++
		}
	}
	return float64(covered) / float64(len(textTokens))
}
