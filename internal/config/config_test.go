package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "WIKI_PRIMARY_LANG", "WIKI_FALLBACK_LANG", "REFLECTION_DELAY", "SEED_ON_STARTUP"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "es", cfg.WikiPrimaryLang)
	assert.Equal(t, "en", cfg.WikiFallbackLang)
	assert.Equal(t, 2*time.Second, cfg.ReflectionDelay)
	assert.True(t, cfg.SeedOnStartup)
	assert.False(t, cfg.SeedOverwrite)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("WIKI_RATE_LIMIT", "2.5")
	t.Setenv("OUTBOUND_TIMEOUT", "3s")
	t.Setenv("SEED_ON_STARTUP", "false")
	t.Setenv("RATE_LIMIT_API", "not-a-number")
	t.Setenv("WIKI_USER_AGENT", "LeonBot/1.0 (ops@example.org)")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, 2.5, cfg.WikiRateLimit)
	assert.Equal(t, 3*time.Second, cfg.OutboundTimeout)
	assert.False(t, cfg.SeedOnStartup)
	assert.Equal(t, 120, cfg.RateLimitAPI, "invalid values fall back to the default")
	assert.Equal(t, "LeonBot/1.0 (ops@example.org)", cfg.WikiUserAgent)
}

func TestLoadDenylist(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "denylist.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("markers:\n  - película\n  - \"  band \"\n  - \"\"\n"), 0o600))

	markers, err := LoadDenylist(valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"película", "band"}, markers)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("markers: []\n"), 0o600))
	_, err = LoadDenylist(empty)
	assert.Error(t, err)

	_, err = LoadDenylist(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
