package providers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/weather"
)

// RateLimitedSource wraps a Source so that upstream calls never exceed
// the configured request rate.
type RateLimitedSource struct {
	source  weather.Source
	limiter *rate.Limiter
}

var _ weather.Source = (*RateLimitedSource)(nil)

// NewRateLimitedSource creates a rate limited source.
// rps may be fractional for less than one request per second.
func NewRateLimitedSource(source weather.Source, rps float64, burst int) *RateLimitedSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) Name() string {
	return r.source.Name()
}

func (r *RateLimitedSource) FetchSites(ctx context.Context) ([]geo.Site, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.source.FetchSites(ctx)
}

func (r *RateLimitedSource) FetchObservation(ctx context.Context, siteID string) (weather.Observation, error) {
	if err := r.wait(ctx); err != nil {
		return weather.Observation{}, err
	}
	return r.source.FetchObservation(ctx, siteID)
}

// wait blocks for a token. The limiter refuses up front when the token would
// arrive after the deadline, which is reported as a timeout too.
func (r *RateLimitedSource) wait(ctx context.Context) error {
	err := r.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return fmt.Errorf("%w: rate limit wait: %v", weather.ErrTimeout, err)
}
