package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		UseMock bool `yaml:"use_mock"`
	} `yaml:"data_source"`
	Symbols  []string `yaml:"symbols"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.DataSource.UseMock = true // safe default: no network calls unless asked

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("USE_MOCK_DATA"); v != "" {
		cfg.DataSource.UseMock = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = DefaultSymbols()
	}
	if cfg.Schedule.ScanCron == "" {
		// 1st of the month, 03:30 UTC == 09:00 IST
		cfg.Schedule.ScanCron = "0 30 3 1 * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/candle_alert.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("symbols must not contain blank entries")
		}
	}
	if c.Schedule.ScanCron == "" {
		return fmt.Errorf("schedule.scan_cron is required")
	}
	return nil
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
