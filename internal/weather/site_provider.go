package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/platform/obs"
	"github.com/i474232898/site-weather/internal/units"
)

const defaultRequestTimeout = 10 * time.Second

// ProviderConfig is fixed at construction. The API credential belongs to the
// Source, which is the only thing that talks to the upstream API.
type ProviderConfig struct {
	// Location is the target to resolve a site for. nil means unset.
	Location *geo.Coordinate
	Units    UnitSystem
	Distance geo.Distance

	// RequestTimeout bounds each upstream call.
	RequestTimeout time.Duration
	// SiteRefreshInterval is how long a resolved site stays valid.
	// Zero keeps it for the lifetime of the provider.
	SiteRefreshInterval time.Duration
}

// SiteProvider resolves the nearest site once, then polls its latest
// observation. Polls on one instance are serialized; a poll started while
// another is running fails with ErrPollInFlight.
type SiteProvider struct {
	source Source
	cfg    ProviderConfig
	now    func() time.Time

	polling sync.Mutex

	mu   sync.RWMutex
	site *SiteEntry
	obs  *Observation
}

var _ Provider = (*SiteProvider)(nil)

// NewSiteProvider builds a provider over source.
func NewSiteProvider(source Source, cfg ProviderConfig) (*SiteProvider, error) {
	if source == nil {
		return nil, fmt.Errorf("site provider: source is nil")
	}
	if cfg.Units == "" {
		cfg.Units = Metric
	}
	if _, err := ParseUnitSystem(string(cfg.Units)); err != nil {
		return nil, fmt.Errorf("site provider: %w", err)
	}
	if cfg.Location != nil {
		if err := cfg.Location.Validate(); err != nil {
			return nil, fmt.Errorf("site provider: %w", err)
		}
		loc := *cfg.Location
		cfg.Location = &loc
	}
	if cfg.Distance == nil {
		cfg.Distance = geo.Spherical
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &SiteProvider{
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

func (p *SiteProvider) Name() string {
	return p.source.Name()
}

func (p *SiteProvider) Units() UnitSystem {
	return p.cfg.Units
}

// Poll refreshes the cached observation. It resolves the site first when
// there is none yet or the current one has expired, then fetches the latest
// observation for it. A newly resolved site is only kept once its
// observation has been fetched; on failure the previously cached data is
// left as is.
func (p *SiteProvider) Poll(ctx context.Context) (err error) {
	if !p.polling.TryLock() {
		return ErrPollInFlight
	}
	defer p.polling.Unlock()

	ctx = obs.WithPollID(ctx, uuid.NewString())
	defer obs.Time(ctx, p.source.Name()+".poll")(&err)

	site, resolved, err := p.ensureSite(ctx)
	if err != nil {
		return err
	}

	observation, err := p.fetchObservation(ctx, site.ID)
	if err != nil {
		return err
	}
	if observation.SiteID == "" {
		observation.SiteID = site.ID
	}

	p.mu.Lock()
	if resolved {
		p.site = &site
	}
	p.obs = &observation
	p.mu.Unlock()

	if resolved {
		log.Printf("INFO: poll_id=%s provider=%s resolved site %s (%s) at %s",
			obs.PollID(ctx), p.source.Name(), site.ID, site.Name, site.Coordinate)
	}
	return nil
}

// ensureSite returns the site to poll. resolved is true when the entry is
// new and has not been stored yet.
func (p *SiteProvider) ensureSite(ctx context.Context) (site SiteEntry, resolved bool, err error) {
	p.mu.RLock()
	current := p.site
	p.mu.RUnlock()

	if current != nil && !current.Expired(p.now(), p.cfg.SiteRefreshInterval) {
		return *current, false, nil
	}

	entry, err := p.resolveSite(ctx)
	if err != nil {
		if current != nil {
			log.Printf("WARN: poll_id=%s provider=%s site refresh failed, keeping site %s: %v",
				obs.PollID(ctx), p.source.Name(), current.ID, err)
			return *current, false, nil
		}
		return SiteEntry{}, false, err
	}
	return entry, true, nil
}

func (p *SiteProvider) resolveSite(ctx context.Context) (SiteEntry, error) {
	if p.cfg.Location == nil {
		return SiteEntry{}, ErrInvalidLocation
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	sites, err := p.source.FetchSites(callCtx)
	if err != nil {
		err = classifyDeadline(err)
		if errors.Is(err, ErrParse) {
			return SiteEntry{}, fmt.Errorf("%w: %w", ErrLocationNotFound, err)
		}
		return SiteEntry{}, err
	}

	site, err := geo.Resolve(sites, p.cfg.Location, p.cfg.Distance)
	if err != nil {
		if errors.Is(err, geo.ErrEmptyCatalog) {
			return SiteEntry{}, fmt.Errorf("%w: %w", ErrLocationNotFound, err)
		}
		return SiteEntry{}, err
	}
	if site.ID == "" {
		return SiteEntry{}, fmt.Errorf("%w: nearest site has no id", ErrLocationNotFound)
	}

	return SiteEntry{
		ID:         site.ID,
		Name:       site.Name,
		Coordinate: site.Coordinate,
		ResolvedAt: p.now(),
	}, nil
}

func (p *SiteProvider) fetchObservation(ctx context.Context, siteID string) (Observation, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	o, err := p.source.FetchObservation(callCtx, siteID)
	if err != nil {
		return Observation{}, classifyDeadline(err)
	}
	return o, nil
}

// classifyDeadline tags deadline errors from sources that did not classify
// them already.
func classifyDeadline(err error) error {
	if errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

// Site returns the resolved site entry.
func (p *SiteProvider) Site() (SiteEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.site == nil {
		return SiteEntry{}, false
	}
	return *p.site, true
}

// SiteExpired reports whether the next poll will re-resolve the site.
func (p *SiteProvider) SiteExpired(now time.Time) bool {
	site, ok := p.Site()
	if !ok {
		return true
	}
	return site.Expired(now, p.cfg.SiteRefreshInterval)
}

// observation returns the cached observation. The value is replaced
// wholesale on each poll and never mutated, so it is safe to read unlocked.
func (p *SiteProvider) observation() (*Observation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.obs, p.obs != nil
}

// roundHalfUp rounds halves towards positive infinity, so -0.5 becomes 0.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func (p *SiteProvider) Temperature() (float64, bool) {
	o, ok := p.observation()
	if !ok {
		return 0, false
	}
	v, ok := units.Pick(o.Temperature, p.cfg.Units.TemperatureUnit())
	if !ok {
		return 0, false
	}
	return roundHalfUp(v), true
}

// Pressure is always in hPa, whatever the unit system.
func (p *SiteProvider) Pressure() (float64, bool) {
	o, ok := p.observation()
	if !ok {
		return 0, false
	}
	v, ok := units.Pick(o.Pressure, p.cfg.Units.PressureUnit())
	if !ok {
		return 0, false
	}
	return roundHalfUp(v), true
}

func (p *SiteProvider) Humidity() (float64, bool) {
	o, ok := p.observation()
	if !ok || o.Humidity == nil {
		return 0, false
	}
	return roundHalfUp(*o.Humidity), true
}

// WindSpeed is in m/s for metric and mph for imperial, to one decimal.
func (p *SiteProvider) WindSpeed() (float64, bool) {
	o, ok := p.observation()
	if !ok {
		return 0, false
	}
	v, ok := units.Pick(o.WindSpeed, p.cfg.Units.WindSpeedUnit())
	if !ok {
		return 0, false
	}
	return roundHalfUp(v*10) / 10, true
}

func (p *SiteProvider) WindDirection() (float64, bool) {
	o, ok := p.observation()
	if !ok || o.WindDirection == nil {
		return 0, false
	}
	return roundHalfUp(*o.WindDirection), true
}

func (p *SiteProvider) Description() (string, bool) {
	o, ok := p.observation()
	if !ok || o.Description == "" {
		return "", false
	}
	return o.Description, true
}

func (p *SiteProvider) Raining() (bool, bool) {
	o, ok := p.observation()
	if !ok {
		return false, false
	}
	return o.HasPrecipitation && o.PrecipitationType.IsRain(), true
}

func (p *SiteProvider) Snowing() (bool, bool) {
	o, ok := p.observation()
	if !ok {
		return false, false
	}
	return o.HasPrecipitation && o.PrecipitationType.IsSnow(), true
}

func (p *SiteProvider) ExternalURL() (string, bool) {
	o, ok := p.observation()
	if !ok || o.Link == "" {
		return "", false
	}
	return o.Link, true
}

func (p *SiteProvider) ObservedSite() (string, bool) {
	o, ok := p.observation()
	if !ok || o.SiteID == "" {
		return "", false
	}
	return o.SiteID, true
}

func (p *SiteProvider) ObservedAt() (time.Time, bool) {
	o, ok := p.observation()
	if !ok || o.ObservedAt.IsZero() {
		return time.Time{}, false
	}
	return o.ObservedAt, true
}
