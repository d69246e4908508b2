package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleethealth/infra/dataclient"
	"github.com/kilianp07/fleethealth/infra/dataset"
	"github.com/kilianp07/fleethealth/infra/influx"
	"github.com/kilianp07/fleethealth/infra/logger"
	"github.com/kilianp07/fleethealth/infra/metrics"
	"github.com/kilianp07/fleethealth/infra/monitoring"
)

type Config struct {
	Server  ServerConfig      `json:"server"`
	Dataset dataset.Config    `json:"dataset"`
	Influx  influx.Config     `json:"influx"`
	Client  dataclient.Config `json:"client"`
	View    ViewConfig        `json:"view"`
	Metrics metrics.Config    `json:"metrics"`
	Logging logger.Config     `json:"logging"`
	Sentry  monitoring.Config `json:"sentry"`
}

// Load reads the configuration file at path, applies K_ prefixed
// environment overrides and validates every section. An empty path loads
// defaults and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Dataset.SetDefaults()
	c.Influx.SetDefaults()
	c.Client.SetDefaults()
	c.View.SetDefaults()
	c.Metrics.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	sections := []struct {
		name string
		err  error
	}{
		{"server", c.Server.Validate()},
		{"dataset", c.Dataset.Validate()},
		{"influx", c.Influx.Validate()},
		{"client", c.Client.Validate()},
		{"view", c.View.Validate()},
		{"logging", c.Logging.Validate()},
	}
	for _, s := range sections {
		if s.err != nil {
			return fmt.Errorf("%s: %w", s.name, s.err)
		}
	}
	return nil
}
