package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Translation providers
const (
	TranslateLibre  = "libre"
	TranslateGoogle = "google"
	TranslateNone   = "none"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// Document store
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	SQLitePath     string
	RedisURL       string // Optional shared lookup cache
	AllowedOrigins string

	// Encyclopedia lookups
	WikiBaseURLTemplate string // %s is replaced with the language code
	WikiUserAgent       string // Should carry a contact URL or email
	WikiPrimaryLang     string
	WikiFallbackLang    string
	WikiRateLimit       float64 // requests per second across all languages
	WikiCacheTTL        time.Duration
	OutboundTimeout     time.Duration

	// Translation
	TranslateProvider string
	TranslateURL      string
	TranslateAPIKey   string

	// Disambiguation markers override (YAML file, hot-reloaded)
	DenylistFile string

	// Boot behaviour carried over from the first service iteration
	SeedOnStartup   bool
	SeedOverwrite   bool
	ReflectionDelay time.Duration
	ReflectionCron  string

	RateLimitAPI int // requests per minute per IP on mutating and lookup routes
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "10000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "leon.db"),
		RedisURL:       getEnv("REDIS_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		WikiBaseURLTemplate: getEnv("WIKI_BASE_URL_TEMPLATE", "https://%s.wikipedia.org"),
		WikiUserAgent:       getEnv("WIKI_USER_AGENT", ""),
		WikiPrimaryLang:     getEnv("WIKI_PRIMARY_LANG", "es"),
		WikiFallbackLang:    getEnv("WIKI_FALLBACK_LANG", "en"),
		WikiRateLimit:       getFloatEnv("WIKI_RATE_LIMIT", 5),
		WikiCacheTTL:        getDurationEnv("WIKI_CACHE_TTL", 6*time.Hour),
		OutboundTimeout:     getDurationEnv("OUTBOUND_TIMEOUT", 10*time.Second),

		TranslateProvider: strings.ToLower(getEnv("TRANSLATE_PROVIDER", TranslateLibre)),
		TranslateURL:      getEnv("TRANSLATE_URL", "https://libretranslate.com"),
		TranslateAPIKey:   getEnv("TRANSLATE_API_KEY", ""),

		DenylistFile: getEnv("DENYLIST_FILE", ""),

		SeedOnStartup:   getBoolEnv("SEED_ON_STARTUP", true),
		SeedOverwrite:   getBoolEnv("SEED_OVERWRITE", false),
		ReflectionDelay: getDurationEnv("REFLECTION_DELAY", 2*time.Second),
		ReflectionCron:  getEnv("REFLECTION_CRON", ""),

		RateLimitAPI: getIntEnv("RATE_LIMIT_API", 120),
	}
}

// denylistFile is the YAML shape of a disambiguation marker override
type denylistFile struct {
	Markers []string `yaml:"markers"`
}

// LoadDenylist loads disambiguation markers from a YAML file
func LoadDenylist(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read denylist file: %w", err)
	}

	var file denylistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse denylist YAML: %w", err)
	}

	markers := make([]string, 0, len(file.Markers))
	for _, m := range file.Markers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("denylist file %s has no markers", filePath)
	}

	return markers, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
