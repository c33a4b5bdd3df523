package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/site-weather/internal/weather"
)

type fakePoller struct {
	polled  chan time.Time // receives each poll's deadline
	err     error
	expired bool
}

func (f *fakePoller) PollAndStore(ctx context.Context) (weather.Reading, error) {
	deadline, _ := ctx.Deadline()
	f.polled <- deadline
	if f.err != nil {
		return weather.Reading{}, f.err
	}
	return weather.Reading{SiteID: "3772", ObservedAt: time.Now()}, nil
}

func (f *fakePoller) Site() (weather.SiteEntry, bool, bool) {
	return weather.SiteEntry{ID: "3772"}, f.expired, true
}

func TestSchedulerPollsImmediately(t *testing.T) {
	p := &fakePoller{polled: make(chan time.Time, 1), expired: true}
	s := New(time.Hour, 5*time.Second, p)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case deadline := <-p.polled:
		if deadline.IsZero() {
			t.Fatal("poll ran without a deadline")
		}
		if until := time.Until(deadline); until > 5*time.Second {
			t.Fatalf("poll deadline %v away, want at most 5s", until)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not poll on start")
	}
}

func TestSchedulerSurvivesFailedPoll(t *testing.T) {
	p := &fakePoller{polled: make(chan time.Time, 1), err: errors.New("upstream down")}
	s := New(time.Hour, 0, p)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-p.polled:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not poll on start")
	}
}
