package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8787, cfg.Port)
	assert.Equal(t, "social.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.DBConnectTimeout)
	assert.False(t, cfg.EnableChatBulkDelete)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/social")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")
	t.Setenv("ENABLE_CHAT_BULK_DELETE", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.DBConnectTimeout)
	assert.True(t, cfg.EnableChatBulkDelete)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseDriver: "postgres", DBConnectTimeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg = &Config{DatabaseDriver: "mysql", DatabaseURL: "x", DBConnectTimeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg = &Config{DatabaseDriver: "sqlite", DBConnectTimeout: 0}
	assert.Error(t, cfg.Validate())
}
