package domain

import "fmt"

// ParameterType enumerates the value types a parameter can be extracted as.
type ParameterType string

const (
	ParameterString   ParameterType = "string"
	ParameterInteger  ParameterType = "integer"
	ParameterFloat    ParameterType = "float"
	ParameterDuration ParameterType = "duration"
	ParameterDatetime ParameterType = "datetime"
	ParameterBoolean  ParameterType = "boolean"
	ParameterChoice   ParameterType = "choice"
	ParameterEntity   ParameterType = "entity"
)

func (t ParameterType) Valid() bool {
	switch t {
	case ParameterString, ParameterInteger, ParameterFloat, ParameterDuration,
		ParameterDatetime, ParameterBoolean, ParameterChoice, ParameterEntity:
		return true
	}
	return false
}

// IsNumeric reports whether min/max bounds are meaningful for the type.
func (t ParameterType) IsNumeric() bool {
	return t == ParameterInteger || t == ParameterFloat
}

// ParameterSpec describes one parameter that can be extracted from user input.
type ParameterSpec struct {
	Name         string        `json:"name"`
	Type         ParameterType `json:"type"`
	Required     bool          `json:"required"`
	DefaultValue any           `json:"default_value,omitempty"`
	Description  string        `json:"description,omitempty"`

	Choices  []string `json:"choices,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`

	ExtractionPatterns []string `json:"extraction_patterns,omitempty"`
	Aliases            []string `json:"aliases,omitempty"`
}

// Validate enforces the cross-field invariants of a spec: choices are present
// exactly for choice parameters, and bounds only apply to numeric types.
func (s *ParameterSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("parameter spec missing name")
	}
	if !s.Type.Valid() {
		return fmt.Errorf("parameter %q: unknown type %q", s.Name, s.Type)
	}
	if s.Type == ParameterChoice && len(s.Choices) == 0 {
		return fmt.Errorf("parameter %q: choices required for choice type", s.Name)
	}
	if s.Type != ParameterChoice && len(s.Choices) > 0 {
		return fmt.Errorf("parameter %q: choices only valid for choice type", s.Name)
	}
	if (s.MinValue != nil || s.MaxValue != nil) && !s.Type.IsNumeric() {
		return fmt.Errorf("parameter %q: min/max only valid for numeric types, got %s", s.Name, s.Type)
	}
	if s.MinValue != nil && s.MaxValue != nil && *s.MinValue > *s.MaxValue {
		return fmt.Errorf("parameter %q: min_value %v above max_value %v", s.Name, *s.MinValue, *s.MaxValue)
	}
	return nil
}

// TrainingExample is a sample utterance with its expected parameters.
type TrainingExample struct {
	Text       string         `json:"text"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// KeywordDonation is the pre-validated contribution of one intent: trigger
// phrases, lemmas, parameter specs and training examples. Produced by the
// external donation loader; consumed read-only by index building.
type KeywordDonation struct {
	Intent     string            `json:"intent"`
	Phrases    []string          `json:"phrases"`
	Lemmas     []string          `json:"lemmas,omitempty"`
	Parameters []ParameterSpec   `json:"parameters,omitempty"`
	Examples   []TrainingExample `json:"examples,omitempty"`
	Boost      float64           `json:"boost"`
}

// Validate checks the donation-level invariants before index building.
func (d *KeywordDonation) Validate() error {
	if d.Intent == "" {
		return fmt.Errorf("donation missing intent name")
	}
	if len(d.Phrases) == 0 {
		return fmt.Errorf("donation %q: at least one phrase required", d.Intent)
	}
	if d.Boost < 0 || d.Boost > 10 {
		return fmt.Errorf("donation %q: boost %v outside [0, 10]", d.Intent, d.Boost)
	}
	for i := range d.Parameters {
		if err := d.Parameters[i].Validate(); err != nil {
			return fmt.Errorf("donation %q: %w", d.Intent, err)
		}
	}
	return nil
}

// EffectiveBoost treats the zero value as the neutral multiplier so donations
// serialized without an explicit boost behave as boost=1.
func (d *KeywordDonation) EffectiveBoost() float64 {
	if d.Boost == 0 {
		return 1.0
	}
	return d.Boost
}
