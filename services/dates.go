package services

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
)

const displayDateLayout = "January 2, 2006"

var dateLabel = regexp.MustCompile(`(?i)^\s*(updated on|update on|update date|updated|update)\s*:?\s*`)

// FormatDisplayDate renders a scraped date as "May 10, 2025". Placeholder
// values become empty; unparsable text is returned with its label stripped.
func FormatDisplayDate(raw string) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "n/a", "unknown", "varies with device":
		return ""
	}
	s = strings.TrimSpace(dateLabel.ReplaceAllString(s, ""))
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format(displayDateLayout)
}

// StripDateLabel removes "Update on:"-style labels without reformatting
func StripDateLabel(raw string) string {
	return strings.TrimSpace(dateLabel.ReplaceAllString(strings.TrimSpace(raw), ""))
}
