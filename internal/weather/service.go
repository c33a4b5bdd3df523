package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Service polls a provider and keeps a history of the readings it produced.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// Provider returns the provider the service polls.
func (s *Service) Provider() Provider {
	return s.provider
}

// PollAndStore polls the provider once and stores the resulting reading.
// A failed poll stores nothing; the provider keeps serving its last good
// observation.
func (s *Service) PollAndStore(ctx context.Context) (Reading, error) {
	if s.provider == nil {
		log.Printf("ERROR: no provider configured")
		return Reading{}, fmt.Errorf("no weather provider configured")
	}

	// The provider logs its own poll failures with the poll id.
	if err := s.provider.Poll(ctx); err != nil {
		return Reading{}, err
	}

	reading, err := TakeReading(s.provider)
	if err != nil {
		return Reading{}, err
	}

	log.Printf("DEBUG: stored reading for site %s from %s", reading.SiteID, reading.Provider)
	s.store.SaveReading(reading)
	return reading, nil
}

// Current snapshots the provider's getters without polling.
func (s *Service) Current() (Reading, error) {
	return TakeReading(s.provider)
}

// Site returns the provider's resolved site and whether it has expired.
func (s *Service) Site() (SiteEntry, bool, bool) {
	site, ok := s.provider.Site()
	if !ok {
		return SiteEntry{}, false, false
	}
	return site, s.provider.SiteExpired(time.Now()), true
}

// GetLatest returns the most recent stored reading for the resolved site.
func (s *Service) GetLatest() (Reading, error) {
	site, ok := s.provider.Site()
	if !ok {
		return Reading{}, ErrNoData
	}
	return s.store.GetLatest(site.ID)
}

// GetRange returns stored readings for the resolved site between from and to.
func (s *Service) GetRange(from, to time.Time) ([]Reading, error) {
	site, ok := s.provider.Site()
	if !ok {
		return nil, ErrNoData
	}
	return s.store.GetRange(site.ID, from, to)
}
