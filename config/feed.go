package config

import (
	"fmt"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/telemetry"
)

// Feed sources.
const (
	FeedFixture = "fixture"
	FeedMQTT    = "mqtt"
	FeedNone    = "none"
)

// FeedConfig selects where the dispatcher pulls readings and snapshots.
type FeedConfig struct {
	Source string `json:"source"`
	// Fixture is the recorded feed replayed by the fixture source.
	Fixture string `json:"fixture"`
	// Loop restarts the fixture once it is exhausted.
	Loop      bool             `json:"loop"`
	Telemetry telemetry.Config `json:"telemetry"`
}

// SetDefaults picks the fixture source when a fixture is configured.
func (c *FeedConfig) SetDefaults() {
	if c.Source == "" {
		if c.Fixture != "" {
			c.Source = FeedFixture
		} else {
			c.Source = FeedNone
		}
	}
	c.Telemetry.SetDefaults()
}

// Validate checks the source name and its requirements.
func (c FeedConfig) Validate() error {
	switch c.Source {
	case FeedFixture:
		if c.Fixture == "" {
			return fmt.Errorf("feed.fixture is required for the fixture source")
		}
	case FeedMQTT, FeedNone:
	default:
		return fmt.Errorf("unknown feed source %q", c.Source)
	}
	return nil
}

// RelayConfig controls forwarding of traffic decisions to MQTT.
type RelayConfig struct {
	Enabled bool   `json:"enabled"`
	Prefix  string `json:"prefix"`
}

// SetDefaults fills the topic prefix.
func (c *RelayConfig) SetDefaults() {
	if c.Prefix == "" {
		c.Prefix = "traffic"
	}
}
