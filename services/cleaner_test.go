package services

import (
	"strings"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in, price, currency string
	}{
		{"Price: $4.99", "4.99", "USD"},
		{"€2", "2", "EUR"},
		{"₹ 149", "149", "INR"},
		{"Free", "0", ""},
		{"", "0", ""},
		{"n/a", "0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, c := ParsePrice(tt.in)
			if p != tt.price || c != tt.currency {
				t.Fatalf("ParsePrice(%q) = (%q, %q), want (%q, %q)", tt.in, p, c, tt.price, tt.currency)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"app_1.0.apk", "app_1.0.apk"},
		{"../../etc/passwd", "passwd"},
		{`..\..\x.xapk`, "x.xapk"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World! App", "hello-world-app"},
		{"  --Spaces -- everywhere-- ", "spaces-everywhere"},
		{"Café", "caf%C3%A9"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDisplayDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Update on: 2025-05-10", "May 10, 2025"},
		{"May 10, 2025", "May 10, 2025"},
		{"Varies with device", ""},
		{"N/A", ""},
		{"sometime soon", "sometime soon"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatDisplayDate(tt.in); got != tt.want {
				t.Fatalf("FormatDisplayDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProcessDescription(t *testing.T) {
	in := `<p><strong>About this game</strong></p>` +
		`<p>Visit https://example.org/page. now <a href="https://apkfab.com/x/com.x">Read More</a></p>` +
		`<p><a href="https://kept.org">https://kept.org</a></p>`

	got := ProcessDescription(in, "apkfab.com")

	if !strings.Contains(got, `<p class="text-sm font-semibold text-blue-700">About</p>`) {
		t.Errorf("heading not promoted: %s", got)
	}
	if !strings.Contains(got, `<a href="https://example.org/page" target="_blank" rel="nofollow noopener">https://example.org/page</a>.`) {
		t.Errorf("bare url not linked: %s", got)
	}
	if strings.Contains(strings.ToLower(got), "read more") || strings.Contains(got, "apkfab.com") {
		t.Errorf("read-more link survived: %s", got)
	}
	if n := strings.Count(got, "https://kept.org</a>"); n != 1 {
		t.Errorf("existing anchor re-linked %d times: %s", n, got)
	}
}
