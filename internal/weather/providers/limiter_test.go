package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/weather"
)

type countingSource struct {
	calls int
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) FetchSites(ctx context.Context) ([]geo.Site, error) {
	c.calls++
	return []geo.Site{{ID: "1"}}, nil
}

func (c *countingSource) FetchObservation(ctx context.Context, siteID string) (weather.Observation, error) {
	c.calls++
	return weather.Observation{SiteID: siteID}, nil
}

func TestRateLimitedSourceForwards(t *testing.T) {
	src := &countingSource{}
	limited := NewRateLimitedSource(src, 100, 2)

	if limited.Name() != "counting" {
		t.Fatalf("name = %q", limited.Name())
	}
	if _, err := limited.FetchSites(context.Background()); err != nil {
		t.Fatalf("FetchSites: %v", err)
	}
	obs, err := limited.FetchObservation(context.Background(), "1")
	if err != nil {
		t.Fatalf("FetchObservation: %v", err)
	}
	if obs.SiteID != "1" || src.calls != 2 {
		t.Fatalf("obs=%+v calls=%d", obs, src.calls)
	}
}

func TestRateLimitedSourceDeadline(t *testing.T) {
	src := &countingSource{}
	// One token, refilled every ten seconds.
	limited := NewRateLimitedSource(src, 0.1, 1)

	if _, err := limited.FetchSites(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := limited.FetchObservation(ctx, "1")
	if !errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("err = %v, want %v", err, weather.ErrTimeout)
	}
	if src.calls != 1 {
		t.Fatalf("calls = %d, want the limited call to be dropped", src.calls)
	}
}

func TestRateLimitedSourceCanceled(t *testing.T) {
	limited := NewRateLimitedSource(&countingSource{}, 0.1, 1)
	_, _ = limited.FetchSites(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := limited.FetchSites(ctx)
	if err == nil || errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("err = %v, want a cancellation error", err)
	}
}
