package constants

import "time"

var CacheLimits = struct {
	RecognitionMaxEntries int
	RecognitionEvictBatch int
	FuzzyScoreMaxEntries  int
	FuzzyScoreEvictBatch  int
}{
	RecognitionMaxEntries: 1000,
	RecognitionEvictBatch: 100,
	FuzzyScoreMaxEntries:  1000,
	FuzzyScoreEvictBatch:  100,
}

var FuzzyTuning = struct {
	ShortlistLimit       int     // top candidates kept from the global scan
	ShortlistCutoff      float64 // minimum weighted ratio to enter the shortlist
	MatchedKeywordCutoff float64 // floor for diagnostic matched-keyword listing
	CoverageBonusCap     float64
	ScanConcurrency      int
	MinPoolSizeParallel  int // below this the shortlist scan stays sequential
}{
	ShortlistLimit:       30,
	ShortlistCutoff:      0.60,
	MatchedKeywordCutoff: 0.70,
	CoverageBonusCap:     0.3,
	ScanConcurrency:      4,
	MinPoolSizeParallel:  256,
}

// ConfidenceWeights combine heterogeneous match signals onto one [0,1]
// scale; they sum to 1.0.
var ConfidenceWeights = struct {
	Score       float64
	Separation  float64
	Coverage    float64
	MethodPrior float64
}{
	Score:       0.55,
	Separation:  0.25,
	Coverage:    0.15,
	MethodPrior: 0.05,
}

var ExtractionLimits = struct {
	ChoiceSimilarityFloor float64
	MaxQueryLength        int
}{
	ChoiceSimilarityFloor: 0.75,
	MaxQueryLength:        500,
}

var PartialTier = struct {
	TokenOverlapRatio float64 // fraction of phrase tokens that must appear
}{
	TokenOverlapRatio: 0.7,
}

var CascadeDefaults = struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}{
	Timeout:  200 * time.Millisecond,
	CacheTTL: 300 * time.Second,
}
