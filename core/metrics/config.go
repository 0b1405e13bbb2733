package metrics

import "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr exposes /metrics when not empty, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
