package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenleaf/internal/menu"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "BOT_TOKEN", "CHAT_ID", "PORT", "JWT_SECRET", "MAX_COMPLETED_RETAINED", "AMQP_URL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "polling", cfg.Telegram.Mode)
	assert.Equal(t, DefaultMaxCompletedRetained, cfg.Leads.MaxCompletedRetained)
	assert.True(t, cfg.Leads.CleanupOnStart)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, menu.DefaultLabels(), cfg.Menu)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8080
database:
  url: postgres://localhost/leads
telegram:
  token: abc
  operator_chat_ids: [1, 2]
  mode: webhook
leads:
  max_completed_retained: 25
  cleanup_on_start: false
auth:
  token_ttl: 30m
  admins:
    - username: ops
      password_hash: $2a$10$x
      role: viewer
rate_limit:
  requests: 3
  window: 10s
menu:
  main_title: Leads
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/leads", cfg.Database.DSN)
	assert.Equal(t, []int64{1, 2}, cfg.Telegram.OperatorChatIDs)
	assert.Equal(t, "webhook", cfg.Telegram.Mode)
	assert.Equal(t, 25, cfg.Leads.MaxCompletedRetained)
	assert.False(t, cfg.Leads.CleanupOnStart)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "Leads", cfg.Menu.MainTitle)
	assert.Equal(t, menu.DefaultLabels().Back, cfg.Menu.Back)

	require.NotNil(t, cfg.FindAdmin("ops"))
	assert.Equal(t, "viewer", cfg.FindAdmin("ops").Role)
	assert.Nil(t, cfg.FindAdmin("root"))
	assert.True(t, cfg.IsOperator(2))
	assert.False(t, cfg.IsOperator(3))
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env/leads")
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("CHAT_ID", "1575864216, 42")
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_COMPLETED_RETAINED", "3")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/leads", cfg.Database.DSN)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{1575864216, 42}, cfg.Telegram.OperatorChatIDs)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Leads.MaxCompletedRetained)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "server: [oops"))
	assert.Error(t, err)

	t.Setenv("CHAT_ID", "abc")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownAdminRole(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `
auth:
  admins:
    - username: ops
      password_hash: $2a$10$x
      role: Viewer
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "Viewer"`)
}
