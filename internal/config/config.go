package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SchemaPath  string        `toml:"schema_path"`
	ActionsPath string        `toml:"actions_path"`
	Output      Output        `toml:"output"`
	Watch       Watch         `toml:"watch"`
	Limit       Limit         `toml:"limit"`
	Obs         Observability `toml:"observability"`
}

type Output struct {
	Snapshot string `toml:"snapshot"` // empty writes to stdout
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	ExcludeDirs  []string      `toml:"exclude_dirs"`
	ExcludeFiles []string      `toml:"exclude_files"`
}

type Limit struct {
	Rate  float64 `toml:"rate"` // replays per second in watch mode
	Burst int     `toml:"burst"`
}

type Observability struct {
	Addr         string `toml:"addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.SchemaPath == "" {
		cfg.SchemaPath = "schema.json"
	}
	if cfg.ActionsPath == "" {
		cfg.ActionsPath = "actions.json"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Limit.Rate == 0 {
		cfg.Limit.Rate = 4
	}
	if cfg.Limit.Burst == 0 {
		cfg.Limit.Burst = 2
	}
}
