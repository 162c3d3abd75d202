package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
database:
  host: localhost
  name: watches
  user: wdf
`

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.PoolSize)
	assert.Equal(t, DefaultBrands, cfg.Feed.Brands)
	assert.Equal(t, 100, cfg.Feed.PageSize)
	assert.InDelta(t, 1.0, cfg.Feed.RateLimit.PerSecond, 0.0001)
	assert.EqualValues(t, 5000, cfg.Feed.RateLimit.DailyLimit)
	assert.InDelta(t, 10.0, cfg.Detector.MinDropPercent, 0.0001)
	assert.Equal(t, 30, cfg.Detector.SoldWindowDays)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.ScanInterval)
	assert.Equal(t, time.Hour, cfg.Schedule.DetectInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("WDF_TEST_DB_PASSWORD", "s3cret")

	cfg, err := Load(writeConfig(t, `
database:
  host: localhost
  name: watches
  user: wdf
  password: ${WDF_TEST_DB_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoad_DSN(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t,
		"host=localhost port=5432 dbname=watches user=wdf password= sslmode=disable",
		cfg.Database.DSN(),
	)
}

func TestLoad_MissingDatabaseFields(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
logging:
  level: debug
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host is required")
	assert.Contains(t, err.Error(), "database.name is required")
	assert.Contains(t, err.Error(), "database.user is required")
}

func TestLoad_NotificationValidation(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, minimalConfig+`
notifications:
  discord:
    enabled: true
  telegram:
    enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord.webhook_url is required")
	assert.Contains(t, err.Error(), "telegram.bot_token is required")
	assert.Contains(t, err.Error(), "telegram.chat_id is required")
}

func TestLoad_CustomBrandsKept(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig+`
feed:
  brands: [Longines, Zenith]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Longines", "Zenith"}, cfg.Feed.Brands)
}

func TestLoad_FileMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "::not yaml::"))
	assert.Error(t, err)
}
