package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/site-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no reading is stored for a site.
	ErrNotFound = errors.New("no readings for site")
)

// MemoryStore is a concurrency-safe in-memory history of readings per site.
type MemoryStore struct {
	mu sync.RWMutex

	// key: site id, value: readings ordered by ObservedAt
	data map[string][]weather.Reading

	maxHistory int           // max readings per site
	maxAge     time.Duration // max age of readings
	now        func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// maxHistory <= 0 and maxAge <= 0 mean unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.Reading),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveReading inserts a reading in ObservedAt order and enforces retention.
// A reading with the same observation time as a stored one replaces it, since
// polling more often than the upstream publishes returns the same record.
func (s *MemoryStore) SaveReading(r weather.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.data[r.SiteID]
	i := sort.Search(len(history), func(i int) bool {
		return !history[i].ObservedAt.Before(r.ObservedAt)
	})
	if i < len(history) && history[i].ObservedAt.Equal(r.ObservedAt) {
		history[i] = r
	} else {
		history = append(history, weather.Reading{})
		copy(history[i+1:], history[i:])
		history[i] = r
	}

	// Enforce retention by count; the oldest readings go first.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		history = history[sort.Search(len(history), func(i int) bool {
			return !history[i].ObservedAt.Before(cutoff)
		}):]
	}

	s.data[r.SiteID] = history
}

// GetLatest returns the most recent reading for a site.
func (s *MemoryStore) GetLatest(siteID string) (weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[siteID]
	if len(history) == 0 {
		return weather.Reading{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all readings for a site between from and to (inclusive).
func (s *MemoryStore) GetRange(siteID string, from, to time.Time) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Reading
	for _, r := range s.data[siteID] {
		if !r.ObservedAt.Before(from) && !r.ObservedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
