package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AngelCh415/ROAS_GO/internal/columns"
	"github.com/AngelCh415/ROAS_GO/internal/pipeline"
)

type Config struct {
	Port           string          `mapstructure:"port"`
	LogLevelName   string          `mapstructure:"log_level"`
	HTTPTimeout    time.Duration   `mapstructure:"http_timeout"`
	MaxUploadBytes int64           `mapstructure:"max_upload_bytes"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	Pipeline       PipelineConfig  `mapstructure:"pipeline"`

	LogLevel slog.Level `mapstructure:"-"`
}

// RateLimitConfig throttles POST /v1/roas. PerSecond <= 0 disables it.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// PipelineConfig holds the default run options; requests and CLI flags may
// override each field.
type PipelineConfig struct {
	AllowMultipleCostFiles bool   `mapstructure:"allow_multiple_cost_files"`
	ColumnSelection        string `mapstructure:"column_selection"`
	EnrichmentEnabled      bool   `mapstructure:"enrichment_enabled"`
	IncludeSummary         bool   `mapstructure:"include_summary"`
}

func (p PipelineConfig) Options() (pipeline.Options, error) {
	sel, err := columns.ParseSelection(p.ColumnSelection)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		AllowMultipleCostFiles: p.AllowMultipleCostFiles,
		ColumnSelection:        sel,
		EnrichmentEnabled:      p.EnrichmentEnabled,
		IncludeSummary:         p.IncludeSummary,
	}, nil
}

// Load reads roas.yaml (optional), ROAS_* environment variables and the bare
// PORT / LOG_LEVEL variables, on top of defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("roas")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/roas/")

	v.SetEnvPrefix("ROAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "ROAS_PORT", "PORT")
	_ = v.BindEnv("log_level", "ROAS_LOG_LEVEL", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("max_upload_bytes", 32<<20)

	v.SetDefault("rate_limit.per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("pipeline.allow_multiple_cost_files", false)
	v.SetDefault("pipeline.column_selection", string(columns.SelectAuto))
	v.SetDefault("pipeline.enrichment_enabled", true)
	v.SetDefault("pipeline.include_summary", true)
}

func validate(cfg *Config) error {
	if err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelName)); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevelName, err)
	}
	if cfg.Port == "" {
		return errors.New("port is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RateLimit.PerSecond > 0 && cfg.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1, got %d", cfg.RateLimit.Burst)
	}
	if _, err := columns.ParseSelection(cfg.Pipeline.ColumnSelection); err != nil {
		return err
	}
	return nil
}
