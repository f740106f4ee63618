package services

import "testing"

func TestAbbreviateNumberThresholds(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1234, "1.2K"},
		{999999, "1000K"},
		{1000000, "1M"},
		{1500000, "1.5M"},
		{999999999, "1000M"},
		{1000000000, "1B"},
		{2340000000, "2.3B"},
	}
	for _, tt := range tests {
		if got := AbbreviateNumber(tt.n); got != tt.want {
			t.Errorf("AbbreviateNumber(%v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestReviewCountToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5M", 1500000},
		{"12K+", 12000},
		{"2b", 2000000000},
		{"1,234", 1234},
		{" 87 ", 87},
		{"no reviews", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ReviewCountToNumber(tt.in); got != tt.want {
				t.Fatalf("ReviewCountToNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAbbreviateRoundTrip(t *testing.T) {
	if got := ReviewCountToNumber(AbbreviateNumber(1500000)); got != 1500000 {
		t.Fatalf("round trip = %v", got)
	}
}

func TestFormatReviewCount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.2M", "1.2M"},
		{"35k", "35k"},
		{"12345", "12.3K"},
		{"1,234,567", "1.2M"},
		{"1.234", "1.2K"},
		{" N/A ", "N/A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatReviewCount(tt.in); got != tt.want {
				t.Fatalf("FormatReviewCount(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSizeAndRequirementNormalization(t *testing.T) {
	if NormalizeSize(" 48.2 MB ") != NormalizeSize("48.2mb") {
		t.Fatalf("sizes should compare equal")
	}
	if got := NormalizeRequirement("Android 5.0+ (Lollipop)"); got != "5.0" {
		t.Fatalf("NormalizeRequirement = %q", got)
	}
	if got := ExtractRating("Rating 4.6 out of 5"); got != "4.6" {
		t.Fatalf("ExtractRating = %q", got)
	}
	if got := FormatRating("4"); got != "4.0" {
		t.Fatalf("FormatRating = %q", got)
	}
}
