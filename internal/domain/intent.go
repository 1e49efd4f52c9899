package domain

import "strings"

// Entity keys stamped by the cascade for observability.
const (
	EntityOriginalText        = "original_text"
	EntityRecognitionProvider = "_recognition_provider"
	EntityCascadeAttempts     = "_cascade_attempts"
	EntityProviderMetadata    = "_provider_metadata"
)

// FallbackIntentName is returned when no recognizer produces a confident result.
const FallbackIntentName = "conversation.general"

// Intent is a classified user goal with a dotted "domain.action" name.
// Once returned to the caller it is not mutated, except for explicit entity
// merges during parameter extraction.
type Intent struct {
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	Action     string         `json:"action"`
	Entities   map[string]any `json:"entities"`
	Confidence float64        `json:"confidence"`
	RawText    string         `json:"raw_text"`
	SessionID  string         `json:"session_id"`
}

// ParseIntentName splits "domain.action" into its parts. Names without a dot
// fall into the "general" domain.
func ParseIntentName(name string) (string, string) {
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "general", name
}

// NewIntent builds an Intent for a recognized name, deriving domain and action.
func NewIntent(name, rawText, sessionID string, confidence float64) *Intent {
	intentDomain, action := ParseIntentName(name)
	return &Intent{
		Name:       name,
		Domain:     intentDomain,
		Action:     action,
		Entities:   make(map[string]any),
		Confidence: confidence,
		RawText:    rawText,
		SessionID:  sessionID,
	}
}

// NewFallbackIntent builds the deterministic default intent used when no
// recognizer is confident. Confidence is a fixed 1.0: the fallback is a
// deterministic routing decision, not a measurement.
func NewFallbackIntent(text, sessionID string) *Intent {
	intent := NewIntent(FallbackIntentName, text, sessionID, 1.0)
	intent.Entities[EntityOriginalText] = text
	return intent
}
