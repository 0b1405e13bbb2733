package notify

import (
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
)

// Config selects the notification sinks and the queue size.
type Config struct {
	QueueSize   int                    `json:"queue_size" yaml:"queue_size"`
	MinSeverity Severity               `json:"min_severity" yaml:"min_severity"`
	Sinks       []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MinSeverity == "" {
		c.MinSeverity = SeverityNormal
	}
}

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink builds the configured sinks. No configuration yields a LogSink
// using log. The result is filtered by cfg.MinSeverity.
func NewSink(cfg Config, log logger.Logger) (Sink, error) {
	cfg.SetDefaults()
	var sink Sink
	switch len(cfg.Sinks) {
	case 0:
		sink = NewLogSink(log)
	case 1:
		s, err := sinkRegistry.Create(cfg.Sinks[0])
		if err != nil {
			return nil, err
		}
		sink = s
	default:
		sinks := make([]Sink, len(cfg.Sinks))
		for i, c := range cfg.Sinks {
			s, err := sinkRegistry.Create(c)
			if err != nil {
				return nil, err
			}
			sinks[i] = s
		}
		sink = NewMultiSink(sinks...)
	}
	if cfg.MinSeverity == SeverityNormal {
		return sink, nil
	}
	return MinSeverity(cfg.MinSeverity, sink), nil
}

func init() {
	_ = RegisterSink("nop", func(map[string]any) (Sink, error) { return NopSink{}, nil })
}
