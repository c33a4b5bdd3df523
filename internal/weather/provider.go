package weather

import (
	"context"
	"time"

	"github.com/i474232898/site-weather/internal/geo"
)

// Source is one upstream data source: a site catalog plus a per-site
// observation endpoint.
type Source interface {
	Name() string
	FetchSites(ctx context.Context) ([]geo.Site, error)
	FetchObservation(ctx context.Context, siteID string) (Observation, error)
}

// Provider is the normalized query surface over the latest observation.
// Getters never fail: the boolean is false when nothing has been fetched yet
// or the source did not report the field.
type Provider interface {
	Name() string
	Units() UnitSystem
	Poll(ctx context.Context) error

	Temperature() (float64, bool)
	Pressure() (float64, bool)
	Humidity() (float64, bool)
	WindSpeed() (float64, bool)
	WindDirection() (float64, bool)
	Description() (string, bool)
	Raining() (bool, bool)
	Snowing() (bool, bool)
	ExternalURL() (string, bool)
	ObservedAt() (time.Time, bool)
	// ObservedSite is the id of the site the cached observation belongs to.
	ObservedSite() (string, bool)

	// Site returns the resolved site entry, if any.
	Site() (SiteEntry, bool)
	// SiteExpired reports whether the resolved site is due for re-resolution.
	SiteExpired(now time.Time) bool
}

// Store is the contract the in-memory history store must satisfy.
type Store interface {
	SaveReading(r Reading)
	GetLatest(siteID string) (Reading, error)
	GetRange(siteID string, from, to time.Time) ([]Reading, error)
}
