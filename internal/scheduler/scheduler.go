package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/site-weather/internal/weather"
)

const defaultInterval = 15 * time.Minute

// Poller is the part of weather.Service the scheduler drives.
type Poller interface {
	PollAndStore(ctx context.Context) (weather.Reading, error)
	Site() (weather.SiteEntry, bool, bool)
}

// Scheduler periodically polls the configured provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Poller
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(interval, timeout time.Duration, service Poller) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first poll runs immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	// Singleton mode skips a run while the previous one is still going.
	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	if site, expired, ok := s.service.Site(); ok && expired {
		log.Printf("INFO: scheduler: site %s resolved at %s has expired; it will be re-resolved",
			site.ID, site.ResolvedAt.Format(time.RFC3339))
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reading, err := s.service.PollAndStore(ctx)
	if err != nil {
		return
	}
	log.Printf("INFO: scheduler: polled site %s (observed %s)", reading.SiteID, reading.ObservedAt.Format(time.RFC3339))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
