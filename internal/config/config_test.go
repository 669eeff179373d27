package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "trades.db", cfg.Storage.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.Equal(t, "linear", cfg.Exchange.Category)
	assert.Equal(t, "price", cfg.Risk.Model)
	assert.Equal(t, 0.02, cfg.Risk.FallbackNotionalPct)
	assert.Equal(t, "expectancy", cfg.Metrics.ScoreModel)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
storage:
  path: from_file.db
risk:
  model: volatility
metrics:
  score_model: conservative
  schedule: "@hourly"
tracing:
  enabled: true
`), 0o644))

	t.Setenv("TRADE_DB_PATH", "from_env.db")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "from_env.db", cfg.Storage.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "volatility", cfg.Risk.Model)
	assert.Equal(t, "conservative", cfg.Metrics.ScoreModel)
	assert.Equal(t, "@hourly", cfg.Metrics.Schedule)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown risk model", "risk:\n  model: magic\n"},
		{"unknown score model", "metrics:\n  score_model: lucky\n"},
		{"fallback out of range", "risk:\n  fallback_notional_pct: 2\n"},
		{"bad yaml", "risk: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
