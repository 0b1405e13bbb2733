// Package config loads the engine configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/engine"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/metrics"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/mqtt"
)

type Config struct {
	Engine     engine.Config           `json:"engine"`
	Dispatcher engine.DispatcherConfig `json:"dispatcher"`
	Feed       FeedConfig              `json:"feed"`
	MQTT       mqtt.Config             `json:"mqtt"`
	Relay      RelayConfig             `json:"relay"`
	Notify     notify.Config           `json:"notify"`
	Metrics    metrics.Config          `json:"metrics"`
	Logging    LoggingConfig           `json:"logging"`
	Sentry     SentryConfig            `json:"sentry"`
}

// Load reads path and applies environment overrides such as
// K_ENGINE__HISTORY_SIZE=20. An empty path yields the defaults plus
// environment overrides.
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
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
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

// SetDefaults fills every unset section.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	c.Dispatcher.SetDefaults()
	c.Feed.SetDefaults()
	c.Relay.SetDefaults()
	c.Notify.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	errs := []error{
		c.Engine.Validate(),
		c.Dispatcher.Validate(),
		c.Feed.Validate(),
		c.Logging.Validate(),
	}
	if (c.Feed.Source == FeedMQTT || c.Relay.Enabled) && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required by the mqtt feed and relay"))
	}
	return errors.Join(errs...)
}
