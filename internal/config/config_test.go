package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_REQUEST_TIMEOUT", "DEFAULT_PROVIDER", "MODEL_CATALOG_PATH", "JWT_EXPIRATION_HOURS", "ENVIRONMENT", "DB_DRIVER"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, "perplexity", cfg.DefaultProvider)
	assert.Empty(t, cfg.ModelCatalogPath)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("LLM_REQUEST_TIMEOUT", "15")
	t.Setenv("DEFAULT_PROVIDER", "Claude")
	t.Setenv("MODEL_CATALOG_PATH", "/etc/models.yaml")
	t.Setenv("PAGE_FETCH_TIMEOUT", "3")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/var/lib/studio.db")

	cfg := NewConfig()
	assert.Equal(t, 15*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, "claude", cfg.DefaultProvider)
	assert.Equal(t, "/etc/models.yaml", cfg.ModelCatalogPath)
	assert.Equal(t, 3*time.Second, cfg.PageFetchTimeout)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/var/lib/studio.db", cfg.SQLitePath)
}

func TestNewConfig_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("LLM_REQUEST_TIMEOUT", "soon")
	t.Setenv("CACHE_TTL_MINUTES", "-4")

	cfg := NewConfig()
	assert.Equal(t, 60*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}
