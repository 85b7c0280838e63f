// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultChannelID is the channel the observatory images are published to.
	DefaultChannelID int64 = -1001196741187

	// DefaultReferenceZone is the zone whose midnight anchors the schedule.
	DefaultReferenceZone = "Asia/Krasnoyarsk"

	// DefaultUpdateHours is the default repeat interval.
	DefaultUpdateHours = 6

	// DefaultImageBaseURL hosts the spectrogram images.
	DefaultImageBaseURL = "http://sosrff.tsu.ru/new/"

	// DefaultImageMaxBytes caps a single image download (10MB).
	DefaultImageMaxBytes = 10 << 20

	// DefaultTelegramEndpoint is the Bot API endpoint format (token, method).
	DefaultTelegramEndpoint = "https://api.telegram.org/bot%s/%s"

	// DefaultServerPort is the default ops HTTP server port.
	DefaultServerPort = 8080

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 1

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 16

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 4

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// DefaultImagePaths are the four spectrograms in media order; the first carries the caption.
var DefaultImagePaths = []string{"shm.jpg", "srf.jpg", "sra.jpg", "srq.jpg"}

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Bot       BotConfig       `koanf:"bot"       validate:"required"`
	Schedule  ScheduleConfig  `koanf:"schedule"  validate:"required"`
	Images    ImagesConfig    `koanf:"images"    validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// BotConfig identifies the Telegram bot and the destination channel.
type BotConfig struct {
	Token     string `koanf:"token"      validate:"notblank"`
	ChannelID int64  `koanf:"channel_id" validate:"required"`
	Endpoint  string `koanf:"endpoint"   validate:"required,contains=%s"`
}

// ScheduleConfig controls alignment, repetition and the caption.
type ScheduleConfig struct {
	ReferenceZone string       `koanf:"reference_zone" validate:"required"`
	ReferenceFlag string       `koanf:"reference_flag"`
	ReferenceTag  string       `koanf:"reference_label"`
	UpdateHours   int          `koanf:"update_hours"`
	DisplayZones  []ZoneConfig `koanf:"display_zones"  validate:"dive"`
	OnZoneError   string       `koanf:"on_zone_error"  validate:"omitempty,oneof=placeholder skip"`
	Title         string       `koanf:"title"          validate:"required"`
	Footer        string       `koanf:"footer"`
}

// ZoneConfig is one caption line.
type ZoneConfig struct {
	ID    string `koanf:"id"    validate:"required"`
	Label string `koanf:"label" validate:"required"`
	Flag  string `koanf:"flag"`
}

// ImagesConfig locates the spectrogram payloads.
type ImagesConfig struct {
	BaseURL  string   `koanf:"base_url"  validate:"required,url"`
	Paths    []string `koanf:"paths"     validate:"min=1,max=10,dive,required"`
	MaxBytes int64    `koanf:"max_bytes" validate:"required,min=1"`
}

// ClientConfig contains outbound HTTP client settings.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// CircuitBreakerConfig contains circuit breaker settings for the image client.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServerConfig contains ops HTTP server settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Port            int           `koanf:"port"             validate:"required_if=Enabled true,omitempty,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required_if=Enabled true"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required_if=Enabled true,omitempty,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required_if=Enabled true,omitempty,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required_if=Enabled true,omitempty,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required_if=Enabled true,omitempty,min=1s"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// defaultDisplayZones mirrors the observatory's historical caption.
func defaultDisplayZones() []map[string]any {
	return []map[string]any{
		{"id": "Europe/London", "label": "GB", "flag": "🇬🇧"},
		{"id": "Europe/Berlin", "label": "EUE", "flag": "🇪🇺"},
		{"id": "Europe/Moscow", "label": "RU", "flag": "🇷🇺"},
		{"id": "Asia/Karachi", "label": "PK", "flag": "🇵🇰"},
		{"id": "Australia/Darwin", "label": "AU", "flag": "🇦🇺"},
		{"id": "America/Chicago", "label": "CST", "flag": "🇺🇸"},
	}
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "resonance-bot",
		"app.version":     "dev",
		"app.environment": "local",

		"bot.token":      "",
		"bot.channel_id": DefaultChannelID,
		"bot.endpoint":   DefaultTelegramEndpoint,

		"schedule.reference_zone":  DefaultReferenceZone,
		"schedule.reference_flag":  "🇷🇺",
		"schedule.reference_label": "RU",
		"schedule.update_hours":    DefaultUpdateHours,
		"schedule.display_zones":   defaultDisplayZones(),
		"schedule.on_zone_error":   "placeholder",
		"schedule.title":           "Space Observation System",
		"schedule.footer":          "http://sosrff.tsu.ru",

		"images.base_url":  DefaultImageBaseURL,
		"images.paths":     DefaultImagePaths,
		"images.max_bytes": DefaultImageMaxBytes,

		"client.timeout":                           "30s",
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "5m",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"server.enabled":          true,
		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "60s",
		"server.shutdown_timeout": "10s",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/resonance-bot.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "resonance-bot",
		"telemetry.sampling_rate": 1.0,
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// Load loads configuration from the "configs" directory. See LoadDir.
func Load(profile string) (*Config, error) {
	return LoadDir("configs", profile)
}

// LoadDir loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file ({dir}/{profile}.yaml)
//  3. Base config file ({dir}/base.yaml)
//  4. Default values
func LoadDir(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, filepath.Join(dir, "base.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKeyMapper(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SCHEDULE_UPDATE_HOURS to schedule.update_hours. Known keys are
// matched first so that underscores inside a key name survive; unknown variables fall
// back to treating every underscore as a nesting separator.
func envKeyMapper(known []string) func(string) string {
	index := make(map[string]string, len(known))
	for _, key := range known {
		index[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		flat := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := index[flat]; ok {
			return key
		}

		return strings.ReplaceAll(flat, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
