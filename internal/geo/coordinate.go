package geo

import (
	"fmt"
	"math"
)

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate lies on the globe.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return fmt.Errorf("coordinate: NaN component")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("coordinate: lat %.4f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("coordinate: lon %.4f out of range [-180, 180]", c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Site is a named observation location published by an upstream provider.
type Site struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Coordinate Coordinate `json:"coordinate"`
}
