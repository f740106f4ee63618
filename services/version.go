package services

import (
	"regexp"
	"strings"
)

var versionLabelPrefixes = []string{
	"latest version:", "version:", "updated on:", "update on:",
	"updated:", "updated", "update", "date:", "release:",
}

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	monthDayYear = regexp.MustCompile(`(?i)\b` + monthNames + `\.?[\s,]+\d{1,2}(?:st|nd|rd|th)?(?:[\s,]+\d{2,4})?\b`)
	dayMonthYear = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?[\s,]+` + monthNames + `\b`)
	numericDates = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`),
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		regexp.MustCompile(`^\d{4}[/-]\d{1,2}[/-]\d{1,2}$`),
	}
	bareYear       = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	buildQualifier = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:alpha|beta|rc|nightly|stable|final|build|snapshot|ga)`)
	versionToken   = regexp.MustCompile(`^\(?[a-zA-Z0-9]+(?:[._+-][a-zA-Z0-9]+)*\)?$`)
	hasDigit       = regexp.MustCompile(`\d`)
	allZero        = regexp.MustCompile(`^0+$`)
	leadingV       = regexp.MustCompile(`^[vV]\s?(\d)`)
)

// stripVersionLabel removes display labels such as "Version:" and a leading "v"
func stripVersionLabel(s string) string {
	v := strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(v)
		for _, p := range versionLabelPrefixes {
			if strings.HasPrefix(lower, p) {
				v = strings.TrimSpace(v[len(p):])
				changed = true
				break
			}
		}
	}
	return leadingV.ReplaceAllString(v, "$1")
}

// IsValidVersionString rejects dates, years, and prose that sources
// sometimes put where a version number belongs
func IsValidVersionString(s string) bool {
	original := strings.TrimSpace(s)
	if original == "" {
		return false
	}
	v := stripVersionLabel(original)
	if v == "" {
		return false
	}

	if monthDayYear.MatchString(v) || dayMonthYear.MatchString(v) {
		return false
	}
	for _, re := range numericDates {
		if re.MatchString(v) {
			return false
		}
	}
	if len(v) > 70 {
		return false
	}
	qualified := buildQualifier.MatchString(v)
	if strings.Count(v, " ") > 2 && !qualified {
		return false
	}
	if bareYear.MatchString(v) && !strings.HasPrefix(strings.ToLower(original), "v") {
		return false
	}

	for _, tok := range strings.Fields(v) {
		if !versionToken.MatchString(tok) {
			return false
		}
	}
	if !hasDigit.MatchString(v) && !qualified {
		return false
	}
	if allZero.MatchString(v) && len(v) < 3 {
		return false
	}
	return true
}

// CleanVersion returns the label-stripped version, or "" when it is not a version
func CleanVersion(s string) string {
	if !IsValidVersionString(s) {
		return ""
	}
	return stripVersionLabel(s)
}

var sha1Pattern = regexp.MustCompile(`^[a-fA-F0-9]{40}$`)

// NormalizeSHA1 lowercases a 40-hex-digit hash; ok is false for anything else
func NormalizeSHA1(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !sha1Pattern.MatchString(s) {
		return "", false
	}
	return strings.ToLower(s), true
}
