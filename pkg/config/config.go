// Package config loads the pipeline's configuration: the required
// properties.json and the optional alerting.yaml.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the immutable, once-loaded configuration of a pipeline run.
type Config struct {
	WatchDir    string `json:"watch_dir"`
	OutputDir   string `json:"output_dir"`
	Parallelism int    `json:"parallelism"`

	// HistoryDSN, if set, enables the optional Postgres/TimescaleDB
	// history sink (pkg/historystore).
	HistoryDSN string `json:"history_dsn"`
	// StatusAddr, if set, enables the optional status HTTP server
	// (pkg/statusapi), e.g. "127.0.0.1:8090".
	StatusAddr string `json:"status_addr"`
}

// Load reads and validates properties.json at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.WatchDir == "" {
		return Config{}, fmt.Errorf("config %s: watch_dir is required", path)
	}
	if cfg.OutputDir == "" {
		return Config{}, fmt.Errorf("config %s: output_dir is required", path)
	}
	if cfg.Parallelism <= 0 {
		return Config{}, fmt.Errorf("config %s: parallelism must be a positive integer, got %d", path, cfg.Parallelism)
	}

	return cfg, nil
}

// AlertingConfig configures the optional per-IP rate-alert publisher
// (pkg/alert). It is read from a separate YAML file since it is entirely
// optional and unrelated to the required JSON properties file.
type AlertingConfig struct {
	AMQPURL       string `yaml:"amqp_url"`
	Exchange      string `yaml:"exchange"`
	RateThreshold int    `yaml:"rate_threshold"`
}

// LoadAlerting reads alerting.yaml at path. A missing file is not an error:
// it simply means the alerting supplement is disabled; ok reports whether
// the file was found.
func LoadAlerting(path string) (cfg AlertingConfig, ok bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return AlertingConfig{}, false, nil
		}
		return AlertingConfig{}, false, fmt.Errorf("read alerting config %s: %w", path, readErr)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AlertingConfig{}, false, fmt.Errorf("parse alerting config %s: %w", path, err)
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "pcapsentry.alerts"
	}
	return cfg, true, nil
}
