package providers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/weather"
)

var errNoPlace = errors.New("city is required for geocoding")

// geocoding is swapped out in tests.
var geocoding = geocoder.Geocoding

// geocoderMu guards geocoder.ApiKey, which the library keeps as a package
// global.
var geocoderMu sync.Mutex

// GoogleGeocoder turns a configured city/country into a coordinate using the
// Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// Geocode resolves city and country. The library call cannot be cancelled;
// when ctx ends first the result is dropped.
func (g *GoogleGeocoder) Geocode(ctx context.Context, city, country string) (geo.Coordinate, error) {
	if g.apiKey == "" {
		return geo.Coordinate{}, fmt.Errorf("geocoder: %w", errMissingAPIKey)
	}
	if city == "" {
		return geo.Coordinate{}, fmt.Errorf("geocoder: %w", errNoPlace)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	lookup := geocoding

	go func() {
		geocoderMu.Lock()
		defer geocoderMu.Unlock()

		geocoder.ApiKey = g.apiKey
		loc, err := lookup(geocoder.Address{City: city, Country: country})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return geo.Coordinate{}, classify(ctx, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: geocoding %s, %s: %v", weather.ErrLocationNotFound, city, country, res.err)
		}
		c := geo.Coordinate{Lat: res.loc.Latitude, Lon: res.loc.Longitude}
		if err := c.Validate(); err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: geocoding %s, %s: %v", weather.ErrLocationNotFound, city, country, err)
		}
		log.Printf("INFO: geocoded %s, %s to %s", city, country, c)
		return c, nil
	}
}
