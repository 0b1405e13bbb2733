package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
	coremetrics "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/metrics"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	risk        *prometheus.GaugeVec
	predictions *prometheus.CounterVec
	tasks       *prometheus.CounterVec
	ticks       *prometheus.HistogramVec
	emergencies *prometheus.CounterVec
	overrides   prometheus.Counter
	volume      prometheus.Gauge
}

// NewPromSink registers engine metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		risk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "asset_risk",
			Help: "Latest normalised risk of each asset",
		}, []string{"asset_id", "kind"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_predictions_total",
			Help: "Prediction results by recommended action",
		}, []string{"kind", "action"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maintenance_task_changes_total",
			Help: "Maintenance task transitions",
		}, []string{"change", "kind"}),
		ticks: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatcher_tick_seconds",
			Help:    "Duration of dispatcher ticks",
			Buckets: prometheus.DefBuckets,
		}, []string{"producer", "skipped"}),
		emergencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emergency_routes_total",
			Help: "Emergency routes issued by vehicle type",
		}, []string{"type"}),
		overrides: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_overrides_total",
			Help: "Intersections overridden for emergency vehicles",
		}),
		volume: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_predicted_volume",
			Help: "Predicted network volume in vehicles per hour",
		}),
	}
	var err error
	if s.risk, err = registerOrExisting(reg, s.risk); err != nil {
		return nil, err
	}
	if s.predictions, err = registerOrExisting(reg, s.predictions); err != nil {
		return nil, err
	}
	if s.tasks, err = registerOrExisting(reg, s.tasks); err != nil {
		return nil, err
	}
	if s.ticks, err = registerOrExisting(reg, s.ticks); err != nil {
		return nil, err
	}
	if s.emergencies, err = registerOrExisting(reg, s.emergencies); err != nil {
		return nil, err
	}
	if s.overrides, err = registerOrExisting(reg, s.overrides); err != nil {
		return nil, err
	}
	if s.volume, err = registerOrExisting(reg, s.volume); err != nil {
		return nil, err
	}
	return s, nil
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPredictions updates the risk gauge and action counters.
func (s *PromSink) RecordPredictions(res []model.PredictionResult) error {
	for _, r := range res {
		s.risk.WithLabelValues(r.AssetID, string(r.Kind)).Set(r.Risk)
		s.predictions.WithLabelValues(string(r.Kind), string(r.Action)).Inc()
	}
	return nil
}

// RecordTask counts maintenance task transitions.
func (s *PromSink) RecordTask(ev coremetrics.TaskEvent) error {
	s.tasks.WithLabelValues(ev.Change, string(ev.Task.Kind)).Inc()
	return nil
}

// RecordTrafficPlan tracks the predicted volume.
func (s *PromSink) RecordTrafficPlan(plan model.TrafficPlan) error {
	s.volume.Set(plan.Prediction.PredictedVolume)
	return nil
}

// RecordTick observes the tick duration.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	skipped := "false"
	if ev.Skipped {
		skipped = "true"
	}
	s.ticks.WithLabelValues(ev.Producer, skipped).Observe(ev.Duration.Seconds())
	return nil
}

// RecordEmergencyRoute counts issued routes and their overrides.
func (s *PromSink) RecordEmergencyRoute(route model.EmergencyRoute) error {
	s.emergencies.WithLabelValues(route.Type).Inc()
	s.overrides.Add(float64(len(route.Overrides)))
	return nil
}

// StartPromServer exposes the default registry on addr under /metrics. The
// returned server is already listening; shut it down with Shutdown.
func StartPromServer(addr string, log logger.Logger) *http.Server {
	log = logger.OrNop(log)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("prometheus server: %v", err)
		}
	}()
	return srv
}
