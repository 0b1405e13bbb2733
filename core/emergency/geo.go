package emergency

import (
	"math"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b model.GeoPoint) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// project maps p onto a local plane centred on origin, in km.
func project(origin, p model.GeoPoint) (x, y float64) {
	x = rad(p.Lon-origin.Lon) * math.Cos(rad(origin.Lat)) * earthRadiusKm
	y = rad(p.Lat-origin.Lat) * earthRadiusKm
	return x, y
}

// alongTrack returns the distance of p along the segment from -> to and its
// perpendicular offset from the segment, both in km. ok is false when p lies
// before the start or beyond the end of the segment.
func alongTrack(from, to, p model.GeoPoint) (along, offset float64, ok bool) {
	dx, dy := project(from, to)
	px, py := project(from, p)
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0, math.Hypot(px, py), true
	}
	t := (px*dx + py*dy) / l2
	if t < 0 || t > 1 {
		return 0, 0, false
	}
	return t * math.Sqrt(l2), math.Hypot(px-t*dx, py-t*dy), true
}
