// Package config loads valuesnet settings from an optional YAML file and VALUESNET_* environment
// variables, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
)

// EnvPrefix is prepended to every environment override, e.g. VALUESNET_SERVER_HTTP_ADDR.
const EnvPrefix = "VALUESNET"

// #region types

type Config struct {
	Database DatabaseConfig        `mapstructure:"database"`
	Log      LogConfig             `mapstructure:"log"`
	Server   ServerConfig          `mapstructure:"server"`
	Analysis metrics.RankingConfig `mapstructure:"analysis"`
	Cache    CacheConfig           `mapstructure:"cache"`
	Tracing  TracingConfig         `mapstructure:"tracing"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig drives SetupLogger. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr" validate:"required"`
	GRPCAddr        string        `mapstructure:"grpc_addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SnoozeDuration  time.Duration `mapstructure:"snooze_duration"`
}

type CacheConfig struct {
	Size int `mapstructure:"size" validate:"gte=0"`
}

// TracingConfig selects the span exporter. Exporter "none" disables tracing.
type TracingConfig struct {
	Exporter    string `mapstructure:"exporter" validate:"oneof=none stdout"`
	ServiceName string `mapstructure:"service_name"`
}

// #endregion types

// #region defaults

func setDefaults(v *viper.Viper) {
	ranking := metrics.DefaultRankingConfig()

	v.SetDefault("database.path", "valuesnet.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("server.http_addr", "localhost:8080")
	v.SetDefault("server.grpc_addr", "localhost:50061")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.snooze_duration", 7*24*time.Hour)
	v.SetDefault("analysis.top_n", ranking.TopN)
	v.SetDefault("analysis.fragility_threshold", ranking.FragilityThreshold)
	v.SetDefault("analysis.conflict_threshold", ranking.ConflictThreshold)
	v.SetDefault("cache.size", 64)
	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.service_name", "valuesnet")
}

// #endregion defaults

// #region load

var validate = validator.New()

// Load reads configuration. path may be empty, in which case ./valuesnet.yaml is tried and
// silently skipped when absent. An explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("valuesnet")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// #endregion load

// #region log-level

// ParseLogLevel maps a level name to slog.Level. Unknown names fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// #endregion log-level
