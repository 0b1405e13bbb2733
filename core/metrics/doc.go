// Package metrics defines the sink interfaces used to export engine
// observations. A MetricsSink records every scoring pass; sinks may also
// implement the optional recorders for task changes, traffic plans,
// producer ticks and emergency routes. NewMetricsSink builds sinks from
// configuration and wraps several of them in a MultiSink.
package metrics
