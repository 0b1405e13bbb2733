package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/metrics"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
)

// InfluxSink writes engine events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordPredictions writes one asset_prediction point per result.
func (s *InfluxSink) RecordPredictions(res []model.PredictionResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		p := write.NewPointWithMeasurement("asset_prediction").
			AddTag("asset_id", r.AssetID).
			AddTag("kind", string(r.Kind)).
			AddTag("tier", r.Tier.String()).
			AddField("score", round3(r.Score)).
			AddField("risk", round3(r.Risk)).
			AddField("action", string(r.Action)).
			SetTime(r.Timestamp)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordTask writes a maintenance task transition.
func (s *InfluxSink) RecordTask(ev coremetrics.TaskEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t := ev.Task
	p := write.NewPointWithMeasurement("maintenance_task").
		AddTag("task_id", t.ID).
		AddTag("asset_id", t.AssetID).
		AddTag("kind", string(t.Kind)).
		AddTag("change", ev.Change).
		AddField("priority", t.Priority).
		AddField("cost", round3(t.Cost.Total)).
		AddField("window_start", t.Window.Start.Unix()).
		AddField("conflicted", t.Conflicted).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrafficPlan writes the flow prediction and one point per signal
// recommendation.
func (s *InfluxSink) RecordTrafficPlan(plan model.TrafficPlan) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("traffic_plan").
		AddField("current_volume", round3(plan.Prediction.CurrentVolume)).
		AddField("predicted_volume", round3(plan.Prediction.PredictedVolume)).
		AddField("confidence", round3(plan.Prediction.Confidence)).
		AddField("redistributions", len(plan.Redistributions)).
		AddField("overrides", len(plan.OverriddenSignal)).
		SetTime(plan.GeneratedAt)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, sig := range plan.Signals {
		sp := write.NewPointWithMeasurement("signal_recommendation").
			AddTag("intersection_id", sig.IntersectionID).
			AddTag("mode", string(sig.Mode)).
			AddField("current_green", round3(sig.CurrentGreen)).
			AddField("optimal_green", round3(sig.OptimalGreen)).
			AddField("improvement_pct", round3(sig.Improvement)).
			SetTime(plan.GeneratedAt)
		if err := s.writeAPI.WritePoint(ctx, sp); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick writes a dispatcher tick summary.
func (s *InfluxSink) RecordTick(ev coremetrics.TickEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatcher_tick").
		AddTag("producer", ev.Producer).
		AddTag("skipped", strconv.FormatBool(ev.Skipped)).
		AddField("readings", ev.Readings).
		AddField("failures", ev.Failures).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	if ev.Error != "" {
		p = p.AddField("errors", ev.Error)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEmergencyRoute writes an issued emergency route.
func (s *InfluxSink) RecordEmergencyRoute(route model.EmergencyRoute) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("emergency_route").
		AddTag("vehicle_id", route.VehicleID).
		AddTag("type", route.Type).
		AddField("distance_km", round3(route.DistanceKm)).
		AddField("eta_s", round3(route.ETA.Seconds())).
		AddField("overrides", len(route.Overrides)).
		SetTime(route.IssuedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
