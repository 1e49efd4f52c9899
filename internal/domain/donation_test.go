package domain

import "testing"

func TestKeywordDonationValidate(t *testing.T) {
	valid := KeywordDonation{Intent: "timer.set", Phrases: []string{"поставь таймер"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid donation, got %v", err)
	}

	cases := []struct {
		name     string
		donation KeywordDonation
	}{
		{"missing intent", KeywordDonation{Phrases: []string{"x y"}}},
		{"no phrases", KeywordDonation{Intent: "timer.set"}},
		{"boost too high", KeywordDonation{Intent: "timer.set", Phrases: []string{"x y"}, Boost: 11}},
		{"negative boost", KeywordDonation{Intent: "timer.set", Phrases: []string{"x y"}, Boost: -1}},
		{"bad parameter", KeywordDonation{
			Intent:     "timer.set",
			Phrases:    []string{"x y"},
			Parameters: []ParameterSpec{{Name: "p", Type: "bogus"}},
		}},
	}
	for _, tc := range cases {
		if err := tc.donation.Validate(); err == nil {
			t.Fatalf("%s: expected validation to fail", tc.name)
		}
	}
}

func TestKeywordDonationEffectiveBoost(t *testing.T) {
	zero := KeywordDonation{Intent: "a.b", Phrases: []string{"x"}}
	if got := zero.EffectiveBoost(); got != 1.0 {
		t.Fatalf("expected neutral boost for zero, got %v", got)
	}
	boosted := KeywordDonation{Intent: "a.b", Phrases: []string{"x"}, Boost: 2.5}
	if got := boosted.EffectiveBoost(); got != 2.5 {
		t.Fatalf("expected explicit boost preserved, got %v", got)
	}
}

func TestParameterSpecValidate(t *testing.T) {
	min, max := 1.0, 10.0

	valid := ParameterSpec{Name: "times", Type: ParameterInteger, MinValue: &min, MaxValue: &max}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}

	cases := []struct {
		name string
		spec ParameterSpec
	}{
		{"missing name", ParameterSpec{Type: ParameterString}},
		{"unknown type", ParameterSpec{Name: "p", Type: "bogus"}},
		{"choice without choices", ParameterSpec{Name: "p", Type: ParameterChoice}},
		{"choices on non-choice", ParameterSpec{Name: "p", Type: ParameterString, Choices: []string{"a"}}},
		{"bounds on non-numeric", ParameterSpec{Name: "p", Type: ParameterString, MinValue: &min}},
		{"inverted bounds", ParameterSpec{Name: "p", Type: ParameterInteger, MinValue: &max, MaxValue: &min}},
	}
	for _, tc := range cases {
		if err := tc.spec.Validate(); err == nil {
			t.Fatalf("%s: expected validation to fail", tc.name)
		}
	}
}
