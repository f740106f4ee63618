package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AbbreviateNumber renders n with a K/M/B suffix, one decimal at most
func AbbreviateNumber(n float64) string {
	switch {
	case n >= 1e9:
		return roundOne(n/1e9) + "B"
	case n >= 1e6:
		return roundOne(n/1e6) + "M"
	case n >= 1e3:
		return roundOne(n/1e3) + "K"
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}

func roundOne(x float64) string {
	return strconv.FormatFloat(math.Round(x*10)/10, 'f', -1, 64)
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// FormatReviewCount abbreviates a plain digit count and passes anything
// already suffixed or non-numeric through trimmed
func FormatReviewCount(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	switch t[len(t)-1] {
	case 'K', 'k', 'M', 'm', 'B', 'b':
		return t
	}
	stripped := strings.NewReplacer(",", "", ".", "").Replace(t)
	if digitsOnly.MatchString(stripped) {
		n, err := strconv.ParseFloat(stripped, 64)
		if err == nil {
			return AbbreviateNumber(n)
		}
	}
	return t
}

var leadingCount = regexp.MustCompile(`^([\d.,]+)\s*([KMB])?`)

// ReviewCountToNumber parses "1.5M", "12K+", "1,234" into a float for sorting
func ReviewCountToNumber(text string) float64 {
	m := leadingCount.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(text)))
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "K":
		n *= 1e3
	case "M":
		n *= 1e6
	case "B":
		n *= 1e9
	}
	return n
}

var firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractRating returns the first numeric-looking substring of text
func ExtractRating(text string) string {
	return firstNumber.FindString(text)
}

// FormatRating renders a numeric rating with one decimal, or returns text unchanged
func FormatRating(text string) string {
	t := strings.TrimSpace(text)
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return t
	}
	return strconv.FormatFloat(n, 'f', 1, 64)
}

// NormalizeSize makes "48.2 MB" and "48.2mb" comparable
func NormalizeSize(size string) string {
	return strings.ToLower(strings.Join(strings.Fields(size), ""))
}

// NormalizeRequirement reduces "Android 5.0+ (Lollipop)" to "5.0"
func NormalizeRequirement(req string) string {
	if n := firstNumber.FindString(req); n != "" {
		return n
	}
	return strings.ToLower(strings.TrimSpace(req))
}
