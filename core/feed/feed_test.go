package feed

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

func TestNormalize(t *testing.T) {
	r := Reading{
		AssetID: "V1",
		Kind:    model.AssetVehicle,
		Metrics: map[string]any{
			"engineTemp":  "N/A",
			"oilPressure": 35,
			"brakeWear":   "42.5",
			"age":         math.NaN(),
			"mileage":     json.Number("1200"),
			"flag":        true,
			"speed":       math.Inf(1),
		},
	}
	out, rejected := Normalize(r)
	assert.Equal(t, []string{"age", "engineTemp", "flag", "speed"}, rejected)
	assert.Equal(t, map[string]float64{"oilPressure": 35, "brakeWear": 42.5, "mileage": 1200}, out.Metrics)
	assert.Equal(t, "V1", out.AssetID)
}

func TestNormalizeEmpty(t *testing.T) {
	out, rejected := Normalize(Reading{AssetID: "B1"})
	assert.Empty(t, rejected)
	assert.NotNil(t, out.Metrics)
	assert.Empty(t, out.Metrics)
}

func TestLoadFixtureYAML(t *testing.T) {
	fx, err := LoadFixture(filepath.Join("testdata", "fleet.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "downtown morning", fx.Name)
	require.Len(t, fx.Vehicle, 2)
	require.Len(t, fx.Traffic, 1)
	assert.Equal(t, model.WeatherRain, fx.Traffic[0].Weather)
	assert.Equal(t, 12*time.Minute, fx.Traffic[0].CongestionPoints[0].Alternatives[0].TravelTime)
	require.Len(t, fx.Emergency, 1)
	assert.Equal(t, 5, fx.Emergency[0].Urgency)
	require.NotNil(t, fx.Infrastructure[0][0].Location)
	assert.Equal(t, []string{"R1", "R4"}, fx.Infrastructure[0][0].Routes)
}

func TestLoadFixtureJSONAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fx.json")
	data := `{"vehicle":[[{"asset_id":"V9","metrics":{"age":4}}]]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	fx, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fx.Vehicle, 1)
	assert.Equal(t, float64(4), fx.Vehicle[0][0].Metrics["age"])

	_, err = LoadFixture(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	bad := filepath.Join(dir, "fx.toml")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = LoadFixture(bad)
	assert.Error(t, err)
}

func TestFixtureSourcePull(t *testing.T) {
	fx, err := LoadFixture(filepath.Join("testdata", "fleet.yaml"))
	require.NoError(t, err)
	clk := testclock.NewFakeClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	src := NewFixtureSource(*fx, WithFixtureClock(clk))
	ctx := context.Background()

	b1, err := src.Pull(ctx, model.AssetVehicle)
	require.NoError(t, err)
	require.Len(t, b1, 2)
	assert.Equal(t, model.AssetVehicle, b1[0].Kind)

	b2, err := src.Pull(ctx, model.AssetVehicle)
	require.NoError(t, err)
	require.Len(t, b2, 1)

	b3, err := src.Pull(ctx, model.AssetVehicle)
	require.NoError(t, err)
	assert.Empty(t, b3)

	infra, err := src.Pull(ctx, model.AssetInfrastructure)
	require.NoError(t, err)
	require.Len(t, infra, 1)

	_, err = src.Pull(ctx, "drone")
	assert.Error(t, err)

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900.0, snap.Volume)
	_, err = src.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFixtureSourceLoopAndStamp(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	fx := Fixture{Vehicle: [][]Reading{{{AssetID: "V1", Metrics: map[string]any{"age": 2}}}}}
	src := NewFixtureSource(fx, WithLoop(), WithFixtureClock(testclock.NewFakeClock(now)))
	for i := 0; i < 3; i++ {
		b, err := src.Pull(context.Background(), model.AssetVehicle)
		require.NoError(t, err)
		require.Len(t, b, 1)
		assert.Equal(t, now, b[0].Timestamp)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Pull(ctx, model.AssetVehicle)
	assert.ErrorIs(t, err, context.Canceled)
}
