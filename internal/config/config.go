// Package config loads the shopmetrics YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"shopmetrics/internal/engine"
	"shopmetrics/internal/gather"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for shopmetrics.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Datasets  Datasets  `yaml:"datasets"`
	Analytics Analytics `yaml:"analytics"`
}

// Storage holds paths for data input and persistence. An empty ArchiveDir or
// SQLitePath disables that store.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	ArchiveDir string `yaml:"archive_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ReloadLimitPerMin  int    `yaml:"reload_limit_per_min"`
	InitialLoadRetries int    `yaml:"initial_load_retries"`
}

// Addr returns host:port.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Datasets names the three dataset directories under Storage.DataDir and the
// file extension read from them.
type Datasets struct {
	Payments   string `yaml:"payments"`
	Cumulative string `yaml:"cumulative"`
	Orders     string `yaml:"orders"`
	Ext        string `yaml:"ext"`
}

// Dirs converts d for the directory source.
func (d Datasets) Dirs() gather.Dirs {
	return gather.Dirs{Payments: d.Payments, Cumulative: d.Cumulative, Orders: d.Orders}
}

// Analytics tunes the engine's windows and thresholds.
type Analytics struct {
	NewShopWindowDays int    `yaml:"new_shop_window_days"`
	RiskLookback      int    `yaml:"risk_lookback"`
	RiskThreshold     int64  `yaml:"risk_threshold"`
	DirectLabel       string `yaml:"direct_label"`
}

// EngineOptions returns the engine options matching a.
func (a Analytics) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithNewShopWindow(a.NewShopWindowDays),
		engine.WithRiskLookback(a.RiskLookback),
		engine.WithRiskThreshold(a.RiskThreshold),
		engine.WithDirectLabel(a.DirectLabel),
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Storage: Storage{DataDir: "data"},
		Server:  Server{Host: "0.0.0.0", Port: 8080, InitialLoadRetries: 3},
		Logging: Logging{Level: "info", Format: "json"},
		Datasets: Datasets{
			Payments:   gather.DefaultDirs.Payments,
			Cumulative: gather.DefaultDirs.Cumulative,
			Orders:     gather.DefaultDirs.Orders,
			Ext:        gather.DefaultExt,
		},
		Analytics: Analytics{
			NewShopWindowDays: engine.DefaultNewShopWindowDays,
			RiskLookback:      engine.DefaultRiskLookback,
			RiskThreshold:     engine.DefaultRiskThreshold,
			DirectLabel:       engine.DefaultDirectLabel,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path over Default and
// then applies environment variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ARCHIVE_DIR"); v != "" {
		cfg.Storage.ArchiveDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}
