package leadintake

import (
	"regexp"
	"testing"
)

var estimateFormatRe = regexp.MustCompile(`^\$\d,\d{3} - \$\d,\d{3}$`)

func TestGenerateEstimateDeterministic(t *testing.T) {
	first := GenerateEstimate("plumbing", "replace the water heater", "K1A 0A6")
	for i := 0; i < 10; i++ {
		if got := GenerateEstimate("plumbing", "replace the water heater", "K1A 0A6"); got != first {
			t.Fatalf("estimate changed between calls: %q vs %q", first, got)
		}
	}
}

func TestGenerateEstimateFormat(t *testing.T) {
	inputs := [][3]string{
		{"plumbing", "replace the water heater", "K1A 0A6"},
		{"roofing", "full shingle replacement on a two storey house", "M5V 2T6"},
		{"electrical", "panel upgrade to 200 amps", "V6B 1A1"},
		{"", "", ""},
	}
	for _, in := range inputs {
		got := GenerateEstimate(in[0], in[1], in[2])
		if !estimateFormatRe.MatchString(got) {
			t.Fatalf("estimate %q does not match $X,XXX - $Y,YYY", got)
		}
	}
}

func TestGenerateEstimateVariesByInput(t *testing.T) {
	a := GenerateEstimate("plumbing", "replace the water heater", "K1A 0A6")
	b := GenerateEstimate("roofing", "full shingle replacement", "M5V 2T6")
	c := GenerateEstimate("electrical", "panel upgrade", "V6B 1A1")
	if a == b && b == c {
		t.Fatalf("different projects should not all share one estimate")
	}
}
