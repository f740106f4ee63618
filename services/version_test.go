package services

import (
	"strings"
	"testing"
)

func TestIsValidVersionString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"v2.3.1", true},
		{"2.3.1", true},
		{"Version: 1.0.3", true},
		{"10.2.15", true},
		{"1.0.0-beta.2", true},
		{"beta", true},
		{"5.4 (build 12)", true},
		{"v2024", true},
		{"2024", false},
		{"May 10, 2025", false},
		{"Updated on: May 10, 2025", false},
		{"10 May 2025", false},
		{"12/05/2023", false},
		{"2023-05-12", false},
		{"1.2.2024", false},
		{"0", false},
		{"hello", false},
		{"this is a long sentence", false},
		{"", false},
		{"   ", false},
		{strings.Repeat("1", 71), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidVersionString(tt.in); got != tt.want {
				t.Fatalf("IsValidVersionString(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanVersion(t *testing.T) {
	if got := CleanVersion("Latest Version: v3.1.0"); got != "3.1.0" {
		t.Fatalf("CleanVersion = %q", got)
	}
	if got := CleanVersion("Mar 3, 2024"); got != "" {
		t.Fatalf("CleanVersion(date) = %q", got)
	}
}

func TestNormalizeSHA1(t *testing.T) {
	valid := strings.Repeat("ab", 20)
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{valid, valid, true},
		{strings.ToUpper(valid), valid, true},
		{"  " + valid + " ", valid, true},
		{"deadbeef", "", false},
		{strings.Repeat("g", 40), "", false},
		{valid + "a", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeSHA1(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeSHA1(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
