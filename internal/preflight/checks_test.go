package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"leon/internal/config"
	"leon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error {
	return errors.New("server selection timeout")
}

func validConfig() *config.Config {
	return &config.Config{
		StoreDriver:       config.StoreSQLite,
		SQLitePath:        "leon.db",
		WikiPrimaryLang:   "es",
		WikiFallbackLang:  "en",
		TranslateProvider: config.TranslateLibre,
		TranslateURL:      "http://localhost:5000",
		WikiUserAgent:     "LeonBot/1.0 (ops@example.org)",
	}
}

func findResult(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no check named %q", name)
	return CheckResult{}
}

func TestRunAll_Pass(t *testing.T) {
	results := NewChecker(store.NewMemoryStore(), validConfig()).RunAll()

	assert.False(t, HasFailures(results))
	for _, r := range results {
		assert.Equal(t, "pass", r.Status, r.Name)
	}
}

func TestRunAll_StoreDown(t *testing.T) {
	results := NewChecker(downPinger{}, validConfig()).RunAll()

	assert.True(t, HasFailures(results))
	result := findResult(t, results, "Store Connection")
	assert.Equal(t, "fail", result.Status)
	assert.Error(t, result.Error)
}

func TestCheckStoreConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"sqlite ok", func(c *config.Config) {}, "pass"},
		{"mongo without uri", func(c *config.Config) { c.StoreDriver = config.StoreMongo }, "fail"},
		{"mongo with uri", func(c *config.Config) {
			c.StoreDriver = config.StoreMongo
			c.MongoURI = "mongodb://localhost:27017/leon"
		}, "pass"},
		{"memory", func(c *config.Config) { c.StoreDriver = config.StoreMemory }, "warning"},
		{"unknown driver", func(c *config.Config) { c.StoreDriver = "firestore" }, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			result := NewChecker(store.NewMemoryStore(), cfg).checkStoreConfiguration()
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestCheckLanguages(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		fallback string
		want     string
	}{
		{"valid pair", "es", "en", "pass"},
		{"invalid primary", "español", "en", "fail"},
		{"invalid fallback", "es", "inglés", "fail"},
		{"same language", "es", "es", "warning"},
		{"no fallback", "es", "", "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.WikiPrimaryLang = tt.primary
			cfg.WikiFallbackLang = tt.fallback
			result := NewChecker(store.NewMemoryStore(), cfg).checkLanguages()
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestCheckTranslation(t *testing.T) {
	cfg := validConfig()
	checker := NewChecker(store.NewMemoryStore(), cfg)
	assert.Equal(t, "pass", checker.checkTranslation().Status)

	cfg.TranslateURL = ""
	assert.Equal(t, "fail", checker.checkTranslation().Status)

	cfg.TranslateProvider = config.TranslateGoogle
	assert.Equal(t, "warning", checker.checkTranslation().Status)

	cfg.TranslateAPIKey = "key"
	assert.Equal(t, "pass", checker.checkTranslation().Status)

	cfg.TranslateProvider = "deepl"
	assert.Equal(t, "fail", checker.checkTranslation().Status)
}

func TestCheckDenylistFile(t *testing.T) {
	dir := t.TempDir()
	cfg := validConfig()
	checker := NewChecker(store.NewMemoryStore(), cfg)

	cfg.DenylistFile = filepath.Join(dir, "missing.yaml")
	assert.Equal(t, "warning", checker.checkDenylistFile().Status)

	cfg.DenylistFile = filepath.Join(dir, "denylist.yaml")
	require.NoError(t, os.WriteFile(cfg.DenylistFile, []byte("markers: [película, film]\n"), 0o600))
	result := checker.checkDenylistFile()
	assert.Equal(t, "pass", result.Status)
	assert.Contains(t, result.Message, "2 markers")

	require.NoError(t, os.WriteFile(cfg.DenylistFile, []byte("markers: {\n"), 0o600))
	assert.Equal(t, "fail", checker.checkDenylistFile().Status)
}

func TestCheckUserAgent(t *testing.T) {
	tests := []struct {
		agent string
		want  string
	}{
		{"", "warning"},
		{"LeonBot/1.0", "warning"},
		{"LeonBot/1.0 (ops@example.org)", "pass"},
		{"LeonBot/1.0 (+https://example.org/leon)", "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.agent, func(t *testing.T) {
			cfg := validConfig()
			cfg.WikiUserAgent = tt.agent
			assert.Equal(t, tt.want, NewChecker(store.NewMemoryStore(), cfg).checkUserAgent().Status)
		})
	}
}
