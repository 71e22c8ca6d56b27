// Package config loads and validates the tidemark configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tidemark/tidemark/internal/core"
)

// Config is the root configuration.
type Config struct {
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Data       DataConfig                `mapstructure:"data"`
	Server     ServerConfig              `mapstructure:"server"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
}

// BacktestConfig holds the execution-cost model.
type BacktestConfig struct {
	InitialCapital  float64 `mapstructure:"initial_capital"`
	CommissionPct   float64 `mapstructure:"commission_pct"`
	SlippagePct     float64 `mapstructure:"slippage_pct"`
	PositionSizePct float64 `mapstructure:"position_size_pct"`
}

// DataConfig holds data-loading settings.
type DataConfig struct {
	Provider      string `mapstructure:"provider"`
	CacheDir      string `mapstructure:"cache_dir"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// ArchiveConfig holds result-archive settings.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`   // for s3
}

// S3Config holds S3 archive settings.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// StrategyConfig holds per-strategy parameters.
type StrategyConfig struct {
	Params map[string]any `mapstructure:"params"`
}

// Load reads configuration from file with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("TIDEMARK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} references in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backtest.initial_capital", 100000.0)
	v.SetDefault("backtest.commission_pct", 0.001)
	v.SetDefault("backtest.slippage_pct", 0.0005)
	v.SetDefault("backtest.position_size_pct", 1.0)
	v.SetDefault("data.provider", "yahoo")
	v.SetDefault("data.cache_dir", ".data_cache")
	v.SetDefault("data.cache_ttl_hours", 24)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.job_ttl_hours", 24)
	v.SetDefault("server.max_jobs", 100)
	v.SetDefault("archive.type", "localfs")
	v.SetDefault("archive.path", ".archive")
}

// Defaults returns a config with sensible defaults, used when no config
// file is given.
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital:  100000,
			CommissionPct:   0.001,
			SlippagePct:     0.0005,
			PositionSizePct: 1.0,
		},
		Data: DataConfig{
			Provider:      "yahoo",
			CacheDir:      ".data_cache",
			CacheTTLHours: 24,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 24,
			MaxJobs:     100,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: ".archive",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.CommissionPct < 0 || c.Backtest.CommissionPct >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission_pct must be in [0, 1), got %f", c.Backtest.CommissionPct))
	}
	if c.Backtest.SlippagePct < 0 || c.Backtest.SlippagePct >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage_pct must be in [0, 1), got %f", c.Backtest.SlippagePct))
	}
	if c.Backtest.PositionSizePct <= 0 || c.Backtest.PositionSizePct > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("position_size_pct must be in (0, 1], got %f", c.Backtest.PositionSizePct))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Archive.Type != "" && c.Archive.Type != "localfs" && c.Archive.Type != "s3" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}
	return nil
}
