package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// TestLoad_DefaultValues tests that hardcoded defaults are applied correctly.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := LoadDir(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "resonance-bot", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultChannelID, cfg.Bot.ChannelID)
	assert.Equal(t, DefaultTelegramEndpoint, cfg.Bot.Endpoint)
	assert.Empty(t, cfg.Bot.Token)

	assert.Equal(t, "Asia/Krasnoyarsk", cfg.Schedule.ReferenceZone)
	assert.Equal(t, DefaultUpdateHours, cfg.Schedule.UpdateHours)
	assert.Equal(t, "placeholder", cfg.Schedule.OnZoneError)
	assert.Equal(t, "http://sosrff.tsu.ru", cfg.Schedule.Footer)

	require.Len(t, cfg.Schedule.DisplayZones, 6)
	assert.Equal(t, ZoneConfig{ID: "Europe/London", Label: "GB", Flag: "🇬🇧"}, cfg.Schedule.DisplayZones[0])
	assert.Equal(t, "America/Chicago", cfg.Schedule.DisplayZones[5].ID)

	assert.Equal(t, DefaultImageBaseURL, cfg.Images.BaseURL)
	assert.Equal(t, []string{"shm.jpg", "srf.jpg", "sra.jpg", "srq.jpg"}, cfg.Images.Paths)
	assert.Equal(t, int64(DefaultImageMaxBytes), cfg.Images.MaxBytes)

	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
}

// TestLoad_DurationParsing tests that duration strings are parsed correctly.
func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := LoadDir(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Client.CircuitBreaker.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Client.Transport.IdleConnTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

// TestLoad_EnvVarOverrides tests that APP_ variables win and keep underscores in key names.
func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_BOT_TOKEN", "123:abc")
	t.Setenv("APP_BOT_CHANNEL_ID", "-100200300")
	t.Setenv("APP_SCHEDULE_UPDATE_HOURS", "12")
	t.Setenv("APP_SCHEDULE_ON_ZONE_ERROR", "skip")
	t.Setenv("APP_SERVER_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := LoadDir(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, int64(-100200300), cfg.Bot.ChannelID)
	assert.Equal(t, 12, cfg.Schedule.UpdateHours)
	assert.Equal(t, "skip", cfg.Schedule.OnZoneError)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_FilePrecedence tests base < profile < env.
func TestLoad_FilePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
schedule:
  update_hours: 8
  display_zones:
    - id: Asia/Tokyo
      label: JP
log:
  level: warn
`)
	writeFile(t, dir, "prod.yaml", `
schedule:
  update_hours: 4
`)
	t.Setenv("APP_LOG_LEVEL", "error")

	cfg, err := LoadDir(dir, "prod")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Schedule.UpdateHours)
	assert.Equal(t, []ZoneConfig{{ID: "Asia/Tokyo", Label: "JP"}}, cfg.Schedule.DisplayZones)
	assert.Equal(t, "error", cfg.Log.Level)
}

// TestLoad_NonExistentProfile tests that a missing profile file doesn't cause errors.
func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := LoadDir(t.TempDir(), "nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "resonance-bot", cfg.App.Name)
}

// TestLoad_MalformedFile tests that a broken YAML file is reported.
func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "schedule: [unclosed")

	_, err := LoadDir(dir, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bot.env", "APP_BOT_TOKEN=from-dotenv\nAPP_SCHEDULE_UPDATE_HOURS=3\n")

	// Register for cleanup, then clear so godotenv can populate it.
	t.Setenv("APP_BOT_TOKEN", "")
	t.Setenv("APP_SCHEDULE_UPDATE_HOURS", "")
	require.NoError(t, os.Unsetenv("APP_BOT_TOKEN"))
	require.NoError(t, os.Unsetenv("APP_SCHEDULE_UPDATE_HOURS"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), filepath.Join(dir, "bot.env")))

	cfg, err := LoadDir(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Bot.Token)
	assert.Equal(t, 3, cfg.Schedule.UpdateHours)
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := envKeyMapper([]string{"schedule.update_hours", "bot.channel_id", "log.file.max_size"})

	tests := []struct {
		env  string
		want string
	}{
		{env: "APP_SCHEDULE_UPDATE_HOURS", want: "schedule.update_hours"},
		{env: "APP_BOT_CHANNEL_ID", want: "bot.channel_id"},
		{env: "APP_LOG_FILE_MAX_SIZE", want: "log.file.max_size"},
		{env: "APP_UNKNOWN_KEY", want: "unknown.key"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper(tt.env))
		})
	}
}
