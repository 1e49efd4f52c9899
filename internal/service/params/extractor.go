package params

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/torvik/intent-cascade/internal/constants"
	"github.com/torvik/intent-cascade/internal/domain"
	"github.com/torvik/intent-cascade/internal/util"
	"go.uber.org/zap"
)

var (
	integerPattern = regexp.MustCompile(`-?\d+`)
	floatPattern   = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
	quotedPattern  = regexp.MustCompile(`"([^"]+)"|'([^']+)'|«([^»]+)»`)
)

// durationUnits are tried in order; the first match wins. Values normalize
// to seconds.
var durationUnits = []struct {
	pattern *regexp.Regexp
	seconds int
}{
	{regexp.MustCompile(`(\d+)\s*(?:секунд[уы]?|сек|seconds?|sec)`), 1},
	{regexp.MustCompile(`(\d+)\s*(?:минут[уы]?|мин|minutes?|min)`), 60},
	{regexp.MustCompile(`(\d+)\s*(?:час(?:а|ов)?|hours?|hr)`), 3600},
	{regexp.MustCompile(`(\d+)\s*(?:дн(?:я|ей)|день|days?)`), 86400},
}

var (
	booleanTrueWords  = []string{"да", "yes", "true", "1", "включи", "enable", "on"}
	booleanFalseWords = []string{"нет", "no", "false", "0", "выключи", "disable", "off"}

	datetimeReferences = []string{
		"сейчас", "now", "сегодня", "today", "завтра", "tomorrow", "вчера", "yesterday",
	}

	stringLeadKeywords = []string{"сообщение", "message", "text", "текст", "название", "name"}
)

// Extractor performs type-driven parameter extraction against donated
// specifications. Stateless and safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract resolves each spec by trying strategies in order (explicit regex,
// type-specific extraction, alias lookup), converts the raw value to the
// declared type and validates it. A required parameter with no value and no
// default fails with ParameterExtractionError; an optional one with a
// default fills the default; otherwise the parameter is omitted.
func (e *Extractor) Extract(text, intentName string, specs []domain.ParameterSpec) (map[string]any, error) {
	extracted := make(map[string]any, len(specs))

	for i := range specs {
		spec := &specs[i]
		raw := e.extractSingle(text, spec)

		if raw == nil {
			if spec.DefaultValue != nil {
				extracted[spec.Name] = spec.DefaultValue
				continue
			}
			if spec.Required {
				return nil, &domain.ParameterExtractionError{
					Parameter: spec.Name,
					Reason:    fmt.Sprintf("required parameter not found in input for intent %s", intentName),
				}
			}
			continue
		}

		value, err := convertAndValidate(raw, spec)
		if err != nil {
			return nil, err
		}
		extracted[spec.Name] = value
	}

	return extracted, nil
}

func (e *Extractor) extractSingle(text string, spec *domain.ParameterSpec) any {
	if spec.Pattern != "" {
		if value := e.extractWithRegex(text, spec); value != nil {
			// A duration regex may capture the unit word rather than a
			// number; re-normalize the capture through the unit tables and
			// fall back to scanning the whole input.
			if spec.Type == domain.ParameterDuration {
				if s, ok := value.(string); ok {
					if seconds := parseDurationPhrase(util.NormalizeForMatch(s)); seconds != nil {
						return seconds
					}
				}
			} else {
				return value
			}
		}
	}
	if value := extractByType(text, spec); value != nil {
		return value
	}
	return extractByAliases(text, spec.Aliases)
}

func (e *Extractor) extractWithRegex(text string, spec *domain.ParameterSpec) any {
	re, err := regexp.Compile("(?i)" + spec.Pattern)
	if err != nil {
		e.logger.Debug("Invalid extraction pattern, skipping strategy",
			zap.String("parameter", spec.Name),
			zap.Error(err),
		)
		return nil
	}
	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	if len(match) > 1 && match[1] != "" {
		return match[1]
	}
	return match[0]
}

func extractByType(text string, spec *domain.ParameterSpec) any {
	normalized := util.NormalizeForMatch(text)

	switch spec.Type {
	case domain.ParameterInteger:
		if found := integerPattern.FindString(text); found != "" {
			return found
		}

	case domain.ParameterFloat:
		if found := floatPattern.FindString(text); found != "" {
			return strings.ReplaceAll(found, ",", ".")
		}

	case domain.ParameterBoolean:
		for _, word := range booleanTrueWords {
			if util.ContainsWord(normalized, word) {
				return true
			}
		}
		for _, word := range booleanFalseWords {
			if util.ContainsWord(normalized, word) {
				return false
			}
		}

	case domain.ParameterChoice:
		return extractChoice(normalized, spec.Choices)

	case domain.ParameterDuration:
		return parseDurationPhrase(normalized)

	case domain.ParameterDatetime:
		for _, ref := range datetimeReferences {
			if util.ContainsWord(normalized, ref) {
				return ref
			}
		}

	case domain.ParameterString:
		if match := quotedPattern.FindStringSubmatch(text); match != nil {
			for _, group := range match[1:] {
				if group != "" {
					return group
				}
			}
		}
		for _, keyword := range stringLeadKeywords {
			re := regexp.MustCompile(keyword + `[:\s]+(\S+(?:\s+\S+)*)`)
			if match := re.FindStringSubmatch(normalized); match != nil {
				return strings.TrimSpace(match[1])
			}
		}
	}

	return nil
}

// parseDurationPhrase finds the first number-with-unit mention and
// normalizes it to seconds. Returns nil when no unit phrase is present.
func parseDurationPhrase(normalized string) any {
	for _, unit := range durationUnits {
		if match := unit.pattern.FindStringSubmatch(normalized); match != nil {
			value, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			return value * unit.seconds
		}
	}
	return nil
}

// extractChoice matches choices first by token-edge containment, then by
// approximate similarity against the input's tokens with a fixed floor.
func extractChoice(normalized string, choices []string) any {
	for _, choice := range choices {
		if util.ContainsWord(normalized, util.NormalizeForMatch(choice)) {
			return choice
		}
	}

	tokens := util.Tokenize(normalized)
	bestChoice, bestScore := "", 0.0
	for _, choice := range choices {
		target := util.NormalizeForMatch(choice)
		for _, tok := range tokens {
			if score := util.Similarity(target, tok); score > bestScore {
				bestScore = score
				bestChoice = choice
			}
		}
	}
	if bestScore >= constants.ExtractionLimits.ChoiceSimilarityFloor {
		return bestChoice
	}
	return nil
}

func extractByAliases(text string, aliases []string) any {
	if len(aliases) == 0 {
		return nil
	}
	normalized := util.NormalizeForMatch(text)
	for _, alias := range aliases {
		aliasNorm := util.NormalizeForMatch(alias)
		if aliasNorm == "" || !strings.Contains(normalized, aliasNorm) {
			continue
		}
		re := regexp.MustCompile(regexp.QuoteMeta(aliasNorm) + `\s*[:=]?\s*(\S+)`)
		if match := re.FindStringSubmatch(normalized); match != nil {
			return match[1]
		}
	}
	return nil
}

// convertAndValidate coerces a raw extracted value to the spec's declared
// type and enforces numeric bounds and choice membership.
func convertAndValidate(raw any, spec *domain.ParameterSpec) (any, error) {
	value, err := convert(raw, spec.Type)
	if err != nil {
		return nil, &domain.ParameterExtractionError{
			Parameter: spec.Name,
			Reason:    fmt.Sprintf("cannot convert %v to %s", raw, spec.Type),
			Err:       err,
		}
	}

	if spec.Type.IsNumeric() {
		numeric := toFloat(value)
		if spec.MinValue != nil && numeric < *spec.MinValue {
			return nil, &domain.ParameterExtractionError{
				Parameter: spec.Name,
				Reason:    fmt.Sprintf("value %v below minimum %v", numeric, *spec.MinValue),
			}
		}
		if spec.MaxValue != nil && numeric > *spec.MaxValue {
			return nil, &domain.ParameterExtractionError{
				Parameter: spec.Name,
				Reason:    fmt.Sprintf("value %v above maximum %v", numeric, *spec.MaxValue),
			}
		}
	}

	if spec.Type == domain.ParameterChoice {
		choice, _ := value.(string)
		if !containsString(spec.Choices, choice) {
			return nil, &domain.ParameterExtractionError{
				Parameter: spec.Name,
				Reason:    fmt.Sprintf("value %q not in valid choices %v", choice, spec.Choices),
			}
		}
	}

	return value, nil
}

func convert(raw any, paramType domain.ParameterType) (any, error) {
	switch paramType {
	case domain.ParameterInteger, domain.ParameterDuration:
		switch v := raw.(type) {
		case int:
			return v, nil
		case float64:
			return int(v), nil
		case string:
			return strconv.Atoi(strings.TrimSpace(v))
		}
		return nil, fmt.Errorf("unsupported raw type %T", raw)

	case domain.ParameterFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
		return nil, fmt.Errorf("unsupported raw type %T", raw)

	case domain.ParameterBoolean:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			lowered := util.Normalize(v)
			return lowered == "true" || lowered == "1" || lowered == "да" || lowered == "yes", nil
		}
		return nil, fmt.Errorf("unsupported raw type %T", raw)

	case domain.ParameterString, domain.ParameterChoice, domain.ParameterDatetime:
		return fmt.Sprintf("%v", raw), nil

	default:
		return raw, nil
	}
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
