package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Exchange struct {
		Name         string `yaml:"name"`
		APIKey       string `yaml:"api_key"`
		APISecret    string `yaml:"api_secret"`
		RESTEndpoint string `yaml:"rest_endpoint"`
		Category     string `yaml:"category"`
	} `yaml:"exchange"`
	Risk struct {
		Model               string  `yaml:"model"` // "price" or "volatility"
		FallbackNotionalPct float64 `yaml:"fallback_notional_pct"`
	} `yaml:"risk"`
	Metrics struct {
		ScoreModel string `yaml:"score_model"` // "expectancy" or "conservative"
		Schedule   string `yaml:"schedule"`    // cron expression, empty disables
	} `yaml:"metrics"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// Load reads .env (if present), the YAML file at path (if present) and env
// overrides, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer f.Close()
			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.Path = getEnvDefault("TRADE_DB_PATH", c.Storage.Path)
	c.Logging.Level = getEnvDefault("LOG_LEVEL", c.Logging.Level)
	c.Risk.Model = getEnvDefault("RISK_MODEL", c.Risk.Model)
	c.Exchange.APIKey = getEnvDefault("BYBIT_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getEnvDefault("BYBIT_API_SECRET", c.Exchange.APISecret)
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "trades.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Exchange.Name == "" {
		c.Exchange.Name = "bybit"
	}
	if c.Exchange.Category == "" {
		c.Exchange.Category = "linear"
	}
	if c.Risk.Model == "" {
		c.Risk.Model = "price"
	}
	if c.Risk.FallbackNotionalPct == 0 {
		c.Risk.FallbackNotionalPct = 0.02
	}
	if c.Metrics.ScoreModel == "" {
		c.Metrics.ScoreModel = "expectancy"
	}
}

func (c *Config) Validate() error {
	if c.Risk.Model != "price" && c.Risk.Model != "volatility" {
		return fmt.Errorf("risk.model must be 'price' or 'volatility', got %q", c.Risk.Model)
	}
	if c.Metrics.ScoreModel != "expectancy" && c.Metrics.ScoreModel != "conservative" {
		return fmt.Errorf("metrics.score_model must be 'expectancy' or 'conservative', got %q", c.Metrics.ScoreModel)
	}
	if c.Risk.FallbackNotionalPct < 0 || c.Risk.FallbackNotionalPct > 1 {
		return fmt.Errorf("risk.fallback_notional_pct must be within [0, 1], got %v", c.Risk.FallbackNotionalPct)
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
