package emergency

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

var (
	origin = model.GeoPoint{Lat: 46.05, Lon: 14.50}
	dest   = model.GeoPoint{Lat: 46.05, Lon: 14.60}
	start  = time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
)

func newRouter() (*Router, *testclock.FakeClock) {
	clk := testclock.NewFakeClock(start)
	r := NewRouter(Config{}, clk)
	r.SetIntersections([]model.Intersection{
		{ID: "near", Location: model.GeoPoint{Lat: 46.051, Lon: 14.55}},
		{ID: "first", Location: model.GeoPoint{Lat: 46.0495, Lon: 14.52}},
		{ID: "far", Location: model.GeoPoint{Lat: 46.06, Lon: 14.55}},
		{ID: "behind", Location: model.GeoPoint{Lat: 46.05, Lon: 14.45}},
	})
	return r, clk
}

func TestHaversine(t *testing.T) {
	// Ljubljana to Maribor, roughly 103 km
	d := Haversine(model.GeoPoint{Lat: 46.0569, Lon: 14.5058}, model.GeoPoint{Lat: 46.5547, Lon: 15.6459})
	assert.InDelta(t, 103, d, 2)
	assert.Zero(t, Haversine(origin, origin))
}

func TestRouteETAAndOverrides(t *testing.T) {
	r, _ := newRouter()
	routes, err := r.Route([]model.EmergencyVehicle{{
		ID: "amb-1", Type: "ambulance", Location: origin, Destination: dest, Urgency: 5,
	}})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	rt := routes[0]

	assert.InDelta(t, 7.72, rt.DistanceKm, 0.05)
	assert.InDelta(t, rt.DistanceKm*60, rt.ETA.Seconds(), 1)
	assert.Equal(t, start, rt.IssuedAt)

	require.Len(t, rt.Overrides, 2)
	assert.Equal(t, "first", rt.Overrides[0].IntersectionID)
	assert.Equal(t, 1, rt.Overrides[0].Order)
	assert.Equal(t, "near", rt.Overrides[1].IntersectionID)
	assert.Equal(t, 2, rt.Overrides[1].Order)
	assert.Less(t, rt.Overrides[0].ActivateAfter, rt.Overrides[1].ActivateAfter)
	assert.Equal(t, 80*time.Second, rt.Overrides[0].HoldFor)
}

func TestRouteRejectsInvalidRequests(t *testing.T) {
	r, _ := newRouter()
	routes, err := r.Route([]model.EmergencyVehicle{
		{ID: "ok", Type: "fire", Location: origin, Destination: dest, Urgency: 3},
		{ID: "bad-urgency", Type: "police", Location: origin, Destination: dest},
		{ID: "bad-type", Type: "taxi", Location: origin, Destination: dest, Urgency: 2},
		{ID: "bad-lat", Type: "rescue", Location: model.GeoPoint{Lat: 123}, Destination: dest, Urgency: 2},
		{Type: "ambulance", Location: origin, Destination: dest, Urgency: 1},
	})
	require.Len(t, routes, 1)
	assert.Equal(t, "ok", routes[0].VehicleID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Index)
	assert.Equal(t, "bad-urgency", re.VehicleID)
	assert.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 4)
}

func TestActiveExpires(t *testing.T) {
	r, clk := newRouter()
	_, err := r.Route([]model.EmergencyVehicle{{
		ID: "amb-1", Type: "ambulance", Location: origin, Destination: dest, Urgency: 1,
	}})
	require.NoError(t, err)

	active := r.Active(clk.Now())
	assert.Equal(t, map[string]bool{"first": true, "near": true}, active)
	assert.Len(t, r.Routes(clk.Now()), 1)

	clk.Step(30 * time.Minute)
	assert.Empty(t, r.Active(clk.Now()))
	assert.Empty(t, r.Routes(clk.Now()))
}

func TestRelease(t *testing.T) {
	r, clk := newRouter()
	assert.ErrorIs(t, r.Release("ghost"), ErrVehicleNotFound)
	_, err := r.Route([]model.EmergencyVehicle{{
		ID: "pol-7", Type: "police", Location: origin, Destination: dest, Urgency: 4,
	}})
	require.NoError(t, err)
	require.NoError(t, r.Release("pol-7"))
	assert.Empty(t, r.Active(clk.Now()))
}

func TestRouteWithoutIntersections(t *testing.T) {
	r := NewRouter(Config{SpeedKmh: 30}, testclock.NewFakeClock(start))
	routes, err := r.Route([]model.EmergencyVehicle{{
		ID: "f-1", Type: "fire", Location: origin, Destination: origin, Urgency: 2,
	}})
	require.NoError(t, err)
	assert.Zero(t, routes[0].ETA)
	assert.Empty(t, routes[0].Overrides)
}

func TestIntersectionsLearnedAfterRouting(t *testing.T) {
	clk := testclock.NewFakeClock(start)
	r := NewRouter(Config{}, clk)
	routes, err := r.Route([]model.EmergencyVehicle{{
		ID: "amb-2", Type: "ambulance", Location: origin, Destination: dest, Urgency: 5,
	}})
	require.NoError(t, err)
	assert.Empty(t, routes[0].Overrides)
	assert.Empty(t, r.Active(clk.Now()))

	clk.Step(time.Minute)
	r.SetIntersections([]model.Intersection{
		{ID: "near", Location: model.GeoPoint{Lat: 46.051, Lon: 14.55}},
		{ID: "far", Location: model.GeoPoint{Lat: 46.06, Lon: 14.55}},
	})
	assert.Equal(t, map[string]bool{"near": true}, r.Active(clk.Now()))

	got := r.Routes(clk.Now())
	require.Len(t, got, 1)
	require.Len(t, got[0].Overrides, 1)
	assert.Equal(t, 1, got[0].Overrides[0].Order)
	assert.Equal(t, start, got[0].IssuedAt)

	clk.Step(30 * time.Minute)
	r.SetIntersections(nil)
	assert.Empty(t, r.Routes(clk.Now()))
}
