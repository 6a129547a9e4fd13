package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	ShutdownTimeoutMs  int    `yaml:"shutdown_timeout_ms"`
}

// DatabaseConfig points at Postgres. An empty URL keeps configs in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL        string `yaml:"url"`
	ClientName string `yaml:"client_name"`
}

type ScoringConfig struct {
	LikesSaturation   float64 `yaml:"likes_saturation"`
	BuzzSaturation    float64 `yaml:"buzz_saturation"`
	ParallelThreshold int     `yaml:"parallel_threshold"`
	MaxWorkers        int     `yaml:"max_workers"`
	MaxCandidates     int     `yaml:"max_candidates"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMs) * time.Millisecond
}

// SlogLevel maps the configured level name to a slog level. Unknown names are info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger: JSON unless format is "text".
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8600,
			MetricsPort:        8601,
			RateLimitPerMinute: 600,
			ShutdownTimeoutMs:  10000,
		},
		Hermes: HermesConfig{
			URL:        "nats://localhost:4222",
			ClientName: "ranker",
		},
		Scoring: ScoringConfig{
			LikesSaturation:   10000,
			BuzzSaturation:    500,
			ParallelThreshold: 256,
			MaxWorkers:        0,
			MaxCandidates:     5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RANKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RANKER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RANKER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("RANKER_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("RANKER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v, ok := os.LookupEnv("RANKER_HERMES_URL"); ok {
		// Set but empty disables events.
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("RANKER_LIKES_SATURATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.LikesSaturation = f
		}
	}
	if v := os.Getenv("RANKER_BUZZ_SATURATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.BuzzSaturation = f
		}
	}
	if v := os.Getenv("RANKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RANKER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
