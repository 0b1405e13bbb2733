package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal        *prometheus.CounterVec
	ticksSkipped      *prometheus.CounterVec
	tickDuration      *prometheus.HistogramVec
	readingsTotal     *prometheus.CounterVec
	rejectedMetrics   *prometheus.CounterVec
	scoringFailures   *prometheus.CounterVec
	predictionsByTier *prometheus.CounterVec
	activeTasks       prometheus.Gauge
	notifyQueueLength prometheus.Gauge
	notifyDropped     prometheus.Counter
)

type collectors struct {
	ticks, skipped, readings, rejected, failures, predictions *prometheus.CounterVec
	duration                                                  *prometheus.HistogramVec
	tasks, queue                                              prometheus.Gauge
	dropped                                                   prometheus.Counter
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_ticks_total",
			Help: "Number of dispatcher ticks per producer",
		}, []string{"producer"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_ticks_skipped_total",
			Help: "Ticks skipped because the source failed or timed out",
		}, []string{"producer"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_tick_duration_seconds",
			Help:    "Time spent processing one tick",
			Buckets: prometheus.DefBuckets,
		}, []string{"producer"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_readings_total",
			Help: "Sensor readings ingested",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_rejected_metrics_total",
			Help: "Malformed metric values dropped during normalisation",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_scoring_failures_total",
			Help: "Assets skipped because scoring failed",
		}, []string{"kind"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_predictions_total",
			Help: "Prediction results by asset kind and risk tier",
		}, []string{"kind", "tier"}),
		tasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_active_tasks",
			Help: "Maintenance tasks waiting for execution",
		}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_notify_queue_length",
			Help: "Notifications waiting for delivery",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_notify_dropped_total",
			Help: "Notifications dropped because the queue was full",
		}),
	}
}

func (c collectors) install() {
	ticksTotal, ticksSkipped, tickDuration = c.ticks, c.skipped, c.duration
	readingsTotal, rejectedMetrics, scoringFailures = c.readings, c.rejected, c.failures
	predictionsByTier, activeTasks = c.predictions, c.tasks
	notifyQueueLength, notifyDropped = c.queue, c.dropped
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ticksTotal, ticksSkipped, tickDuration, readingsTotal, rejectedMetrics,
		scoringFailures, predictionsByTier, activeTasks, notifyQueueLength, notifyDropped)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
