package geo

import (
	"errors"
	"math"
)

var (
	// ErrInvalidLocation is returned when no target coordinate is set.
	ErrInvalidLocation = errors.New("latitude or longitude not set")
	// ErrEmptyCatalog is returned when there are no sites to choose from.
	ErrEmptyCatalog = errors.New("site catalog is empty")
)

// Resolve returns the site closest to target under dist.
//
// The scan is linear and only a strictly smaller distance replaces the
// current best, so ties keep the site seen first.
func Resolve(sites []Site, target *Coordinate, dist Distance) (Site, error) {
	if target == nil {
		return Site{}, ErrInvalidLocation
	}
	if len(sites) == 0 {
		return Site{}, ErrEmptyCatalog
	}
	if dist == nil {
		dist = Spherical
	}

	best := 0
	minDist := math.Inf(1)
	for i, s := range sites {
		d := dist(s.Coordinate, *target)
		if d < minDist {
			minDist = d
			best = i
		}
	}

	return sites[best], nil
}
