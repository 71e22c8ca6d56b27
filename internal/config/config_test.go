package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/tidemark/internal/config"
	"github.com/tidemark/tidemark/internal/core"
)

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.CommissionPct)
	assert.Equal(t, 1.0, cfg.Backtest.PositionSizePct)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localfs", cfg.Archive.Type)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backtest:
  initial_capital: 50000
  commission_pct: 0.002
server:
  port: 9090
archive:
  type: s3
  s3:
    bucket: results
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.002, cfg.Backtest.CommissionPct)
	// Unset keys keep their defaults.
	assert.Equal(t, 0.0005, cfg.Backtest.SlippagePct)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Archive.Type)
	assert.Equal(t, "results", cfg.Archive.S3.Bucket)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TIDEMARK_TEST_SECRET", "sekrit")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  api_key: ${TIDEMARK_TEST_SECRET}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Server.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero capital", func(c *config.Config) { c.Backtest.InitialCapital = 0 }},
		{"negative commission", func(c *config.Config) { c.Backtest.CommissionPct = -0.01 }},
		{"commission at one", func(c *config.Config) { c.Backtest.CommissionPct = 1 }},
		{"negative slippage", func(c *config.Config) { c.Backtest.SlippagePct = -0.01 }},
		{"zero position size", func(c *config.Config) { c.Backtest.PositionSizePct = 0 }},
		{"position size above one", func(c *config.Config) { c.Backtest.PositionSizePct = 1.5 }},
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }},
		{"unknown archive type", func(c *config.Config) { c.Archive.Type = "tape" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrConfigInvalid)
		})
	}
}
