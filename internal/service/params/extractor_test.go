package params

import (
	"errors"
	"testing"

	"github.com/torvik/intent-cascade/internal/domain"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func TestExtractDurationWithUnitCapturingPattern(t *testing.T) {
	// The donated pattern captures the unit word, not the number; the value
	// must still come out normalized to seconds.
	specs := []domain.ParameterSpec{
		{
			Name:     "duration",
			Type:     domain.ParameterDuration,
			Required: true,
			Pattern:  `\d+\s*(минут|мин)`,
		},
	}

	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("поставь таймер на 5 минут", "timer.set", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["duration"] != 300 {
		t.Fatalf("expected 300 seconds, got %v", got["duration"])
	}
}

func TestExtractDurationUnits(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"таймер на 30 секунд", 30},
		{"напомни через 5 минут", 300},
		{"через 2 часа", 7200},
		{"timer for 10 minutes", 600},
		{"remind me in 3 hours", 10800},
	}

	extractor := NewExtractor(zap.NewNop())
	specs := []domain.ParameterSpec{
		{Name: "duration", Type: domain.ParameterDuration, Required: true},
	}
	for _, tc := range cases {
		got, err := extractor.Extract(tc.text, "timer.set", specs)
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", tc.text, err)
		}
		if got["duration"] != tc.want {
			t.Fatalf("%q: expected %d, got %v", tc.text, tc.want, got["duration"])
		}
	}
}

func TestExtractRequiredMissingFails(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	_, err := extractor.Extract("поставь таймер", "timer.set", []domain.ParameterSpec{
		{Name: "count", Type: domain.ParameterInteger, Required: true},
	})
	if err == nil {
		t.Fatal("expected an error for the missing required parameter")
	}

	var extractionErr *domain.ParameterExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ParameterExtractionError, got %T", err)
	}
	if extractionErr.Parameter != "count" {
		t.Fatalf("expected the failing parameter to be named, got %q", extractionErr.Parameter)
	}
}

func TestExtractOptionalDefaultAndOmission(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("поставь таймер", "timer.set", []domain.ParameterSpec{
		{Name: "duration", Type: domain.ParameterDuration, DefaultValue: 60},
		{Name: "label", Type: domain.ParameterString},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["duration"] != 60 {
		t.Fatalf("expected the default to fill in, got %v", got["duration"])
	}
	if _, ok := got["label"]; ok {
		t.Fatalf("expected the optional parameter without default to be omitted, got %v", got["label"])
	}
}

func TestExtractBoundsViolationFails(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	_, err := extractor.Extract("повтори 15 раз", "repeat", []domain.ParameterSpec{
		{Name: "times", Type: domain.ParameterInteger, MaxValue: floatPtr(10)},
	})
	if !domain.IsParameterExtractionError(err) {
		t.Fatalf("expected a bounds validation error, got %v", err)
	}

	_, err = extractor.Extract("повтори 2 раза", "repeat", []domain.ParameterSpec{
		{Name: "times", Type: domain.ParameterInteger, MinValue: floatPtr(5)},
	})
	if !domain.IsParameterExtractionError(err) {
		t.Fatalf("expected a minimum bound error, got %v", err)
	}

	got, err := extractor.Extract("повтори 7 раз", "repeat", []domain.ParameterSpec{
		{Name: "times", Type: domain.ParameterInteger, MinValue: floatPtr(5), MaxValue: floatPtr(10)},
	})
	if err != nil {
		t.Fatalf("expected an in-bounds value to pass, got %v", err)
	}
	if got["times"] != 7 {
		t.Fatalf("expected 7, got %v", got["times"])
	}
}

func TestExtractChoiceExactAndApproximate(t *testing.T) {
	specs := []domain.ParameterSpec{
		{Name: "color", Type: domain.ParameterChoice, Choices: []string{"красный", "синий"}},
	}

	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("включи красный свет", "light.color", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["color"] != "красный" {
		t.Fatalf("expected exact choice hit, got %v", got["color"])
	}

	// Misspelled choice resolves through similarity.
	got, err = extractor.Extract("включи красний свет", "light.color", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["color"] != "красный" {
		t.Fatalf("expected approximate choice hit, got %v", got["color"])
	}

	// Nothing close to a valid choice.
	got, err = extractor.Extract("включи зеленый свет", "light.color", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := got["color"]; ok {
		t.Fatalf("expected no choice extracted, got %v", got["color"])
	}
}

func TestExtractBooleanWords(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	specs := []domain.ParameterSpec{
		{Name: "confirm", Type: domain.ParameterBoolean, Required: true},
	}

	got, err := extractor.Extract("да, включи", "confirm", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["confirm"] != true {
		t.Fatalf("expected true, got %v", got["confirm"])
	}

	got, err = extractor.Extract("нет, отмена", "confirm", specs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["confirm"] != false {
		t.Fatalf("expected false, got %v", got["confirm"])
	}
}

func TestExtractFloatAcceptsCommaDecimal(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("установи температуру 3,5 градуса", "climate.set", []domain.ParameterSpec{
		{Name: "temperature", Type: domain.ParameterFloat, Required: true},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["temperature"] != 3.5 {
		t.Fatalf("expected 3.5, got %v", got["temperature"])
	}
}

func TestExtractQuotedString(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract(`отправь сообщение "Привет Мир"`, "message.send", []domain.ParameterSpec{
		{Name: "body", Type: domain.ParameterString, Required: true},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["body"] != "Привет Мир" {
		t.Fatalf("expected the quoted text verbatim, got %v", got["body"])
	}
}

func TestExtractDatetimeReference(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("напомни завтра", "reminder.set", []domain.ParameterSpec{
		{Name: "when", Type: domain.ParameterDatetime, Required: true},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["when"] != "завтра" {
		t.Fatalf("expected the datetime keyword, got %v", got["when"])
	}
}

func TestExtractByAlias(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("Громкость=50", "volume.set", []domain.ParameterSpec{
		{Name: "level", Type: domain.ParameterString, Aliases: []string{"громкость"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["level"] != "50" {
		t.Fatalf("expected the alias-adjacent value, got %v", got["level"])
	}
}

func TestExtractInvalidPatternFallsThrough(t *testing.T) {
	extractor := NewExtractor(zap.NewNop())
	got, err := extractor.Extract("таймер на 7", "timer.set", []domain.ParameterSpec{
		{Name: "count", Type: domain.ParameterInteger, Required: true, Pattern: "("},
	})
	if err != nil {
		t.Fatalf("expected the broken pattern to be skipped, got %v", err)
	}
	if got["count"] != 7 {
		t.Fatalf("expected type-based extraction to recover, got %v", got["count"])
	}
}
