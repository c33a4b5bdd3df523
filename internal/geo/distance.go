package geo

import (
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by Spherical.
const EarthRadiusKm = 6371.01

// Distance returns a non-negative closeness metric between two coordinates.
// Implementations only need to preserve ordering for nearest-site selection.
type Distance func(a, b Coordinate) float64

// Planar sums the absolute latitude and longitude differences.
// Cheap and good enough when candidate sites are sparse.
func Planar(a, b Coordinate) float64 {
	return math.Abs(a.Lon-b.Lon) + math.Abs(a.Lat-b.Lat)
}

// Spherical returns the great-circle distance in kilometres using the
// Vincenty formula specialised for a sphere. It stays finite for antipodal
// and polar inputs.
func Spherical(a, b Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dlon := toRadians(a.Lon - b.Lon)

	sinLat1, cosLat1 := math.Sincos(lat1)
	sinLat2, cosLat2 := math.Sincos(lat2)
	sinDlon, cosDlon := math.Sincos(dlon)

	x := cosLat2 * sinDlon
	y := cosLat1*sinLat2 - sinLat1*cosLat2*cosDlon
	num := math.Sqrt(x*x + y*y)
	den := sinLat1*sinLat2 + cosLat1*cosLat2*cosDlon

	return EarthRadiusKm * math.Atan2(num, den)
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// ParseDistance maps a configuration name to a strategy.
// An empty name selects Spherical.
func ParseDistance(name string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "spherical":
		return Spherical, nil
	case "planar":
		return Planar, nil
	default:
		return nil, fmt.Errorf("unknown distance strategy %q", name)
	}
}
