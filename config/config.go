package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Domains
	SourceDomain string
	UserDomain   string

	// HTTP server
	ListenAddr string
	GinMode    string

	// Outbound fetching
	FetchMode          string // "http" or "browser"
	UserAgent          string
	ConnectTimeout     time.Duration
	RequestTimeout     time.Duration
	DetailTimeout      time.Duration
	DownloadTimeout    time.Duration
	SuggestTimeout     time.Duration
	InsecureSkipVerify bool
	BrowserHeadless    bool

	// Listing limits
	HotLimit         int
	SuggestLimit     int
	SearchKeywordMax int

	// Download view
	CountdownSeconds int

	// Analytics
	DatabaseURL string

	LogLevel string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load reads configuration from environment variables, with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SourceDomain: strings.ToLower(getEnv("SOURCE_DOMAIN", "apkfab.com")),
		UserDomain:   getEnv("USER_DOMAIN", "Yandux.Biz"),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		GinMode:    getEnv("GIN_MODE", "release"),

		FetchMode:          getEnv("FETCH_MODE", "http"),
		UserAgent:          getEnv("USER_AGENT", defaultUserAgent),
		ConnectTimeout:     getEnvDuration("CONNECT_TIMEOUT", 10*time.Second),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 20*time.Second),
		DetailTimeout:      getEnvDuration("DETAIL_TIMEOUT", 30*time.Second),
		DownloadTimeout:    getEnvDuration("DOWNLOAD_TIMEOUT", 15*time.Second),
		SuggestTimeout:     getEnvDuration("SUGGEST_TIMEOUT", 10*time.Second),
		InsecureSkipVerify: getEnvBool("INSECURE_SKIP_VERIFY", false),
		BrowserHeadless:    getEnvBool("BROWSER_HEADLESS", true),

		HotLimit:         getEnvInt("HOT_LIMIT", 24),
		SuggestLimit:     getEnvInt("SUGGEST_LIMIT", 8),
		SearchKeywordMax: getEnvInt("SEARCH_KEYWORD_MAX", 40),

		CountdownSeconds: getEnvInt("COUNTDOWN_SECONDS", 8),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// SourceBaseURL is the scheme+host every outbound request is built on
func (c *Config) SourceBaseURL() string {
	return "https://" + c.SourceDomain
}

// UserBaseURL is the public origin this mirror is served from
func (c *Config) UserBaseURL() string {
	return "https://" + c.UserDomain
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go duration strings ("15s") or plain seconds ("15")
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
