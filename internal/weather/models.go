package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/units"
)

// UnitSystem is the caller's preferred system of units.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem accepts "metric" or "imperial" in any case.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// TemperatureUnit is the unit temperatures are reported in.
func (u UnitSystem) TemperatureUnit() units.Unit {
	if u == Imperial {
		return units.Fahrenheit
	}
	return units.Celsius
}

// WindSpeedUnit is the unit wind speeds are reported in.
func (u UnitSystem) WindSpeedUnit() units.Unit {
	if u == Imperial {
		return units.MilesPerHour
	}
	return units.MetresPerSecond
}

// PressureUnit is always hectopascals so readings line up across sources.
func (u UnitSystem) PressureUnit() units.Unit {
	return units.Hectopascal
}

// PrecipitationType is the closed set of precipitation kinds a source reports.
type PrecipitationType string

const (
	PrecipitationNone  PrecipitationType = ""
	PrecipitationRain  PrecipitationType = "Rain"
	PrecipitationSnow  PrecipitationType = "Snow"
	PrecipitationIce   PrecipitationType = "Ice"
	PrecipitationMixed PrecipitationType = "Mixed"
)

// ParsePrecipitationType maps an upstream string onto the closed set.
// Anything unrecognised is treated as no precipitation.
func ParsePrecipitationType(s string) PrecipitationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rain":
		return PrecipitationRain
	case "snow":
		return PrecipitationSnow
	case "ice":
		return PrecipitationIce
	case "mixed":
		return PrecipitationMixed
	default:
		return PrecipitationNone
	}
}

// IsRain reports whether the type counts as rain. Ice and Mixed count as both
// rain and snow.
func (p PrecipitationType) IsRain() bool {
	return p == PrecipitationRain || p == PrecipitationIce || p == PrecipitationMixed
}

// IsSnow reports whether the type counts as snow.
func (p PrecipitationType) IsSnow() bool {
	return p == PrecipitationSnow || p == PrecipitationIce || p == PrecipitationMixed
}

// Observation is the latest record fetched for one site, kept in the units
// the upstream payload uses. Conversion happens when it is read.
type Observation struct {
	SiteID     string
	ObservedAt time.Time

	// Each quantity may be reported in several units; see units.Pick.
	Temperature []units.Measure
	Pressure    []units.Measure
	WindSpeed   []units.Measure

	Humidity      *float64 // percent
	WindDirection *float64 // degrees from north

	Description       string
	HasPrecipitation  bool
	PrecipitationType PrecipitationType

	Link string
}

// SiteEntry is a resolved site together with the time it was resolved.
type SiteEntry struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Coordinate geo.Coordinate `json:"coordinate"`
	ResolvedAt time.Time      `json:"resolvedAt"`
}

// Expired reports whether the entry is older than interval.
// A zero interval never expires.
func (e SiteEntry) Expired(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	return now.Sub(e.ResolvedAt) >= interval
}

// Reading is a point-in-time snapshot of a provider's getters.
// Absent values are null in JSON.
type Reading struct {
	Provider   string     `json:"provider"`
	SiteID     string     `json:"siteId"`
	Units      UnitSystem `json:"units"`
	ObservedAt time.Time  `json:"observedAt"`

	Temperature   *float64 `json:"temperature"`
	Pressure      *float64 `json:"pressureHpa"`
	Humidity      *float64 `json:"humidityPercent"`
	WindSpeed     *float64 `json:"windSpeed"`
	WindDirection *float64 `json:"windDirection"`
	Description   *string  `json:"description"`
	Raining       *bool    `json:"raining"`
	Snowing       *bool    `json:"snowing"`
	ExternalURL   *string  `json:"externalUrl"`
}
