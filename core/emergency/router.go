package emergency

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"k8s.io/utils/clock"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

var (
	// ErrInvalidRequest is wrapped by every RequestError.
	ErrInvalidRequest = errors.New("emergency: invalid request")
	// ErrVehicleNotFound is returned when releasing an unknown route.
	ErrVehicleNotFound = errors.New("emergency: vehicle not found")
)

// RequestError reports why one emergency request was rejected.
type RequestError struct {
	Index     int
	VehicleID string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("emergency request %d (%s): %v", e.Index, e.VehicleID, e.Err)
}

// Unwrap exposes ErrInvalidRequest and the validation detail.
func (e *RequestError) Unwrap() []error { return []error{ErrInvalidRequest, e.Err} }

// Config holds the routing constants.
type Config struct {
	SpeedKmh       float64       `json:"speed_kmh"`
	CorridorKm     float64       `json:"corridor_km"`
	BaseHold       time.Duration `json:"base_hold"`
	HoldPerUrgency time.Duration `json:"hold_per_urgency"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.SpeedKmh == 0 {
		c.SpeedKmh = 60
	}
	if c.CorridorKm == 0 {
		c.CorridorKm = 0.3
	}
	if c.BaseHold == 0 {
		c.BaseHold = 30 * time.Second
	}
	if c.HoldPerUrgency == 0 {
		c.HoldPerUrgency = 10 * time.Second
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SpeedKmh <= 0 {
		return errors.New("speed_kmh must be positive")
	}
	if c.CorridorKm < 0 {
		return errors.New("corridor_km must not be negative")
	}
	return nil
}

type activeRoute struct {
	route   model.EmergencyRoute
	urgency int
	expires time.Time
}

// Router computes and tracks emergency routes.
type Router struct {
	mu            sync.Mutex
	cfg           Config
	validate      *validator.Validate
	clock         clock.PassiveClock
	intersections []model.Intersection
	active        map[string]activeRoute
}

// NewRouter returns a Router. Unset values take their defaults.
func NewRouter(cfg Config, clk clock.PassiveClock) *Router {
	cfg.SetDefaults()
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Router{
		cfg:      cfg,
		validate: validator.New(),
		clock:    clk,
		active:   map[string]activeRoute{},
	}
}

// SetIntersections replaces the known signalised junctions and recomputes
// the overrides of every route still in progress, so a vehicle routed before
// the junctions were known keeps its right of way.
func (r *Router) SetIntersections(in []model.Intersection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intersections = append([]model.Intersection(nil), in...)
	now := r.clock.Now()
	for id, a := range r.active {
		if !now.Before(a.expires) {
			delete(r.active, id)
			continue
		}
		a.route.Overrides = r.overrides(a.route.Location, a.route.Destination, a.urgency)
		r.active[id] = a
	}
}

// Route computes a route for every valid request. Invalid requests are
// skipped and reported as joined *RequestError values.
func (r *Router) Route(vehicles []model.EmergencyVehicle) ([]model.EmergencyRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var (
		routes []model.EmergencyRoute
		errs   []error
	)
	for i, v := range vehicles {
		if err := r.validate.Struct(v); err != nil {
			errs = append(errs, &RequestError{Index: i, VehicleID: v.ID, Err: err})
			continue
		}
		rt := r.compute(v, now)
		r.active[v.ID] = activeRoute{route: rt, urgency: v.Urgency, expires: now.Add(rt.ETA + r.hold(v.Urgency))}
		routes = append(routes, cloneRoute(rt))
	}
	return routes, errors.Join(errs...)
}

func (r *Router) hold(urgency int) time.Duration {
	return r.cfg.BaseHold + time.Duration(urgency)*r.cfg.HoldPerUrgency
}

func (r *Router) travel(km float64) time.Duration {
	return time.Duration(km / r.cfg.SpeedKmh * float64(time.Hour)).Round(time.Second)
}

func (r *Router) compute(v model.EmergencyVehicle, now time.Time) model.EmergencyRoute {
	dist := Haversine(v.Location, v.Destination)
	return model.EmergencyRoute{
		VehicleID:   v.ID,
		Type:        v.Type,
		Location:    v.Location,
		Destination: v.Destination,
		DistanceKm:  dist,
		ETA:         r.travel(dist),
		Overrides:   r.overrides(v.Location, v.Destination, v.Urgency),
		IssuedAt:    now,
	}
}

// overrides lists the known intersections on the corridor between from and
// to, ordered by distance from the start. Callers hold the lock.
func (r *Router) overrides(from, to model.GeoPoint, urgency int) []model.SignalOverride {
	var out []model.SignalOverride
	for _, in := range r.intersections {
		along, offset, ok := alongTrack(from, to, in.Location)
		if !ok || offset > r.cfg.CorridorKm {
			continue
		}
		out = append(out, model.SignalOverride{
			IntersectionID: in.ID,
			DistanceKm:     along,
			ActivateAfter:  r.travel(along),
			HoldFor:        r.hold(urgency),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Active returns the intersections reserved by unexpired routes and drops the
// expired ones.
func (r *Router) Active(now time.Time) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for id, a := range r.active {
		if !now.Before(a.expires) {
			delete(r.active, id)
			continue
		}
		for _, o := range a.route.Overrides {
			out[o.IntersectionID] = true
		}
	}
	return out
}

// Routes returns the unexpired routes ordered by vehicle id.
func (r *Router) Routes(now time.Time) []model.EmergencyRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EmergencyRoute, 0, len(r.active))
	for _, a := range r.active {
		if now.Before(a.expires) {
			out = append(out, cloneRoute(a.route))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// Release ends the route of a vehicle that has arrived.
func (r *Router) Release(vehicleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[vehicleID]; !ok {
		return fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	delete(r.active, vehicleID)
	return nil
}

func cloneRoute(rt model.EmergencyRoute) model.EmergencyRoute {
	rt.Overrides = append([]model.SignalOverride(nil), rt.Overrides...)
	return rt
}
