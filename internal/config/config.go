package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Cascade   CascadeConfig
	Hybrid    HybridConfig
	RuleBased RuleBasedConfig
	Logging   LoggingConfig
}

// CascadeConfig drives the cascade coordinator.
type CascadeConfig struct {
	Order               []string
	MaxAttempts         int
	ConfidenceThreshold float64
	// ProviderThresholds overrides the global threshold per recognizer id.
	ProviderThresholds map[string]float64
	Timeout            time.Duration
	CacheEnabled       bool
	CacheTTL           time.Duration
	CacheMaxEntries    int
}

// HybridConfig drives the hybrid keyword/fuzzy recognizer.
type HybridConfig struct {
	PatternConfidence float64
	ExactBoost        float64
	FlexibleBoost     float64
	PartialBoost      float64

	FuzzyEnabled              bool
	FuzzyThreshold            float64
	MaxFuzzyKeywordsPerIntent int
	MaxTextLengthForFuzzy     int
	CacheFuzzyResults         bool
	FuzzyCacheSize            int

	ConfidenceThreshold float64
	MinPatternLength    int
}

type RuleBasedConfig struct {
	DefaultConfidence   float64
	ConfidenceThreshold float64
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Cascade: CascadeConfig{
			Order:               parseCommaSeparated(getEnv("NLU_CASCADE_ORDER", "hybrid_keyword_matcher,rule_based")),
			MaxAttempts:         getEnvInt("NLU_MAX_CASCADE_ATTEMPTS", 4),
			ConfidenceThreshold: getEnvFloat("NLU_CONFIDENCE_THRESHOLD", 0.7),
			ProviderThresholds:  parseThresholdOverrides(getEnv("NLU_PROVIDER_THRESHOLDS", "")),
			Timeout:             time.Duration(getEnvInt("NLU_CASCADE_TIMEOUT_MS", 200)) * time.Millisecond,
			CacheEnabled:        getEnvBool("NLU_CACHE_RECOGNITION_RESULTS", true),
			CacheTTL:            time.Duration(getEnvInt("NLU_CACHE_TTL_SECONDS", 300)) * time.Second,
			CacheMaxEntries:     getEnvInt("NLU_CACHE_MAX_ENTRIES", 1000),
		},
		Hybrid: HybridConfig{
			PatternConfidence:         getEnvFloat("HYBRID_PATTERN_CONFIDENCE", 0.9),
			ExactBoost:                getEnvFloat("HYBRID_EXACT_MATCH_BOOST", 1.2),
			FlexibleBoost:             getEnvFloat("HYBRID_FLEXIBLE_MATCH_BOOST", 0.9),
			PartialBoost:              getEnvFloat("HYBRID_PARTIAL_MATCH_BOOST", 0.8),
			FuzzyEnabled:              getEnvBool("HYBRID_FUZZY_ENABLED", true),
			FuzzyThreshold:            getEnvFloat("HYBRID_FUZZY_THRESHOLD", 0.8),
			MaxFuzzyKeywordsPerIntent: getEnvInt("HYBRID_MAX_FUZZY_KEYWORDS_PER_INTENT", 50),
			MaxTextLengthForFuzzy:     getEnvInt("HYBRID_MAX_TEXT_LENGTH_FOR_FUZZY", 100),
			CacheFuzzyResults:         getEnvBool("HYBRID_CACHE_FUZZY_RESULTS", true),
			FuzzyCacheSize:            getEnvInt("HYBRID_FUZZY_CACHE_SIZE", 1000),
			ConfidenceThreshold:       getEnvFloat("HYBRID_CONFIDENCE_THRESHOLD", 0.8),
			MinPatternLength:          getEnvInt("HYBRID_MIN_PATTERN_LENGTH", 2),
		},
		RuleBased: RuleBasedConfig{
			DefaultConfidence:   getEnvFloat("RULE_BASED_DEFAULT_CONFIDENCE", 0.8),
			ConfidenceThreshold: getEnvFloat("RULE_BASED_CONFIDENCE_THRESHOLD", 0.7),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Cascade.Order) == 0 {
		return fmt.Errorf("cascade order must name at least one recognizer")
	}
	if c.Cascade.MaxAttempts < 1 {
		return fmt.Errorf("max cascade attempts must be >= 1, got %d", c.Cascade.MaxAttempts)
	}
	if c.Cascade.Timeout <= 0 {
		return fmt.Errorf("cascade timeout must be positive")
	}
	if c.Cascade.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cascade.CacheMaxEntries < 1 {
		return fmt.Errorf("cache max entries must be >= 1")
	}
	for name, v := range map[string]float64{
		"NLU_CONFIDENCE_THRESHOLD":        c.Cascade.ConfidenceThreshold,
		"HYBRID_PATTERN_CONFIDENCE":       c.Hybrid.PatternConfidence,
		"HYBRID_FUZZY_THRESHOLD":          c.Hybrid.FuzzyThreshold,
		"HYBRID_CONFIDENCE_THRESHOLD":     c.Hybrid.ConfidenceThreshold,
		"RULE_BASED_DEFAULT_CONFIDENCE":   c.RuleBased.DefaultConfidence,
		"RULE_BASED_CONFIDENCE_THRESHOLD": c.RuleBased.ConfidenceThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	for id, v := range c.Cascade.ProviderThresholds {
		if v < 0 || v > 1 {
			return fmt.Errorf("provider threshold for %q must be within [0, 1], got %v", id, v)
		}
	}
	for name, v := range map[string]float64{
		"HYBRID_EXACT_MATCH_BOOST":    c.Hybrid.ExactBoost,
		"HYBRID_FLEXIBLE_MATCH_BOOST": c.Hybrid.FlexibleBoost,
		"HYBRID_PARTIAL_MATCH_BOOST":  c.Hybrid.PartialBoost,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	if c.Hybrid.MaxFuzzyKeywordsPerIntent < 1 {
		return fmt.Errorf("max fuzzy keywords per intent must be >= 1")
	}
	if c.Hybrid.MaxTextLengthForFuzzy < 1 {
		return fmt.Errorf("max text length for fuzzy must be >= 1")
	}
	if c.Hybrid.FuzzyCacheSize < 1 {
		return fmt.Errorf("fuzzy cache size must be >= 1")
	}
	if c.Hybrid.MinPatternLength < 1 {
		return fmt.Errorf("min pattern length must be >= 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseThresholdOverrides parses "id=0.8,other=0.6" pairs.
func parseThresholdOverrides(value string) map[string]float64 {
	overrides := make(map[string]float64)
	for _, pair := range parseCommaSeparated(value) {
		id, raw, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			overrides[strings.TrimSpace(id)] = parsed
		}
	}
	return overrides
}
