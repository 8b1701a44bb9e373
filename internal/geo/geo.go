// Package geo holds the coordinate math used by search: great-circle
// distance, bounding boxes for storage prefilters, and coordinate
// validation. Distances are miles throughout; MilesToKm exists only for
// display at the edge.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

// EarthRadiusMiles is the sphere radius used by the Haversine formula.
const EarthRadiusMiles = 3959

// DegreesPerMileLat approximates one degree of latitude in miles.
const DegreesPerMileLat = 69.0

// FallbackLat/FallbackLng are substituted when an imported row has
// missing, zero, or out-of-range coordinates (central London). The row is
// kept rather than failed; see DESIGN.md for the trade-off.
const (
	FallbackLat = 51.5074
	FallbackLng = -0.1278
)

// Distance computes the great-circle distance between two points in
// miles, rounded to one decimal place.
func Distance(a, b domain.Coords) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(EarthRadiusMiles*c*10) / 10
}

// BoundingBox returns the axis-aligned rectangle enclosing the circle of
// radiusMiles around center. Deliberately over-inclusive: the box is a
// cheap prune, exact distance filtering happens afterwards with Distance.
func BoundingBox(center domain.Coords, radiusMiles float64) domain.Bounds {
	latDeg := radiusMiles / DegreesPerMileLat
	lngDeg := radiusMiles / (DegreesPerMileLat * math.Cos(toRad(center.Lat)))

	return domain.Bounds{
		MinLat: center.Lat - latDeg,
		MaxLat: center.Lat + latDeg,
		MinLng: center.Lng - lngDeg,
		MaxLng: center.Lng + lngDeg,
	}
}

// Valid reports whether both coordinates are within range.
func Valid(c domain.Coords) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ParseCoords parses a "lat,lng" string. Returns nil when the input is not
// two parseable, in-range numbers.
func ParseCoords(s string) *domain.Coords {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	c := domain.Coords{Lat: lat, Lng: lng}
	if !Valid(c) {
		return nil
	}
	return &c
}

// MilesToKm converts for display, rounded to one decimal place.
func MilesToKm(miles float64) float64 {
	return math.Round(miles*1.60934*10) / 10
}

func toRad(deg float64) float64 { return deg * (math.Pi / 180) }
