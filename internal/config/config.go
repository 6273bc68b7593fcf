// Package config assembles service configuration from a base TOML file, an
// optional environment overlay, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/database"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEchoCheckEnv             = "ECHOCHECK_ENV"
	EnvEchoCheckShutdownTimeout = "ECHOCHECK_SHUTDOWN_TIMEOUT"
	EnvEchoCheckVersion         = "ECHOCHECK_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "ECHOCHECK_DB_HOST",
	Port:            "ECHOCHECK_DB_PORT",
	Name:            "ECHOCHECK_DB_NAME",
	User:            "ECHOCHECK_DB_USER",
	Password:        "ECHOCHECK_DB_PASSWORD",
	SSLMode:         "ECHOCHECK_DB_SSL_MODE",
	MaxOpenConns:    "ECHOCHECK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ECHOCHECK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ECHOCHECK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ECHOCHECK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "ECHOCHECK_STORAGE_CONTAINER_NAME",
	ConnectionString: "ECHOCHECK_STORAGE_CONNECTION_STRING",
}

var mediaEnv = &media.Env{
	FFmpegBin:   "ECHOCHECK_MEDIA_FFMPEG_BIN",
	FFprobeBin:  "ECHOCHECK_MEDIA_FFPROBE_BIN",
	SampleRate:  "ECHOCHECK_MEDIA_SAMPLE_RATE",
	FrameBudget: "ECHOCHECK_MEDIA_FRAME_BUDGET",
	FrameSize:   "ECHOCHECK_MEDIA_FRAME_SIZE",
}

var scoringEnv = &scoring.Env{
	AudioWeight: "ECHOCHECK_SCORING_AUDIO_WEIGHT",
	VideoWeight: "ECHOCHECK_SCORING_VIDEO_WEIGHT",
}

// Config is the root configuration for the Echo-Check service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Media           media.Config    `toml:"media"`
	Scoring         scoring.Config  `toml:"scoring"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ECHOCHECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEchoCheckEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Media.Merge(&overlay.Media)
	c.Scoring.Merge(&overlay.Scoring)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Media.Finalize(mediaEnv); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if err := c.Scoring.Finalize(scoringEnv); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEchoCheckShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEchoCheckVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEchoCheckEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
