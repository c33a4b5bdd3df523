package weather

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

type sliceStore struct {
	readings []Reading
}

func (s *sliceStore) SaveReading(r Reading) { s.readings = append(s.readings, r) }

func (s *sliceStore) GetLatest(siteID string) (Reading, error) {
	for i := len(s.readings) - 1; i >= 0; i-- {
		if s.readings[i].SiteID == siteID {
			return s.readings[i], nil
		}
	}
	return Reading{}, errors.New("not found")
}

func (s *sliceStore) GetRange(siteID string, from, to time.Time) ([]Reading, error) {
	var out []Reading
	for _, r := range s.readings {
		if r.SiteID == siteID && !r.ObservedAt.Before(from) && !r.ObservedAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestServicePollAndStore(t *testing.T) {
	st := &sliceStore{}
	svc := NewService(st, newProvider(t, newFake(), ProviderConfig{Units: Imperial}))

	if _, err := svc.Current(); !errors.Is(err, ErrNoData) {
		t.Fatalf("Current before poll: err = %v, want %v", err, ErrNoData)
	}
	if _, err := svc.GetLatest(); !errors.Is(err, ErrNoData) {
		t.Fatalf("GetLatest before poll: err = %v, want %v", err, ErrNoData)
	}
	if _, _, ok := svc.Site(); ok {
		t.Fatal("Site resolved before poll")
	}

	reading, err := svc.PollAndStore(context.Background())
	if err != nil {
		t.Fatalf("PollAndStore: %v", err)
	}
	if reading.Provider != "fake" || reading.SiteID != "A" || reading.Units != Imperial {
		t.Fatalf("reading = %+v", reading)
	}
	if !reading.ObservedAt.Equal(observedAt) {
		t.Fatalf("observedAt = %v, want %v", reading.ObservedAt, observedAt)
	}
	if reading.Temperature == nil || *reading.Temperature != 68 {
		t.Fatalf("temperature = %v, want 68", reading.Temperature)
	}
	if reading.Raining == nil || !*reading.Raining || reading.Snowing == nil || *reading.Snowing {
		t.Fatalf("raining/snowing = %v/%v", reading.Raining, reading.Snowing)
	}
	if len(st.readings) != 1 {
		t.Fatalf("stored %d readings, want 1", len(st.readings))
	}

	latest, err := svc.GetLatest()
	if err != nil || latest.SiteID != "A" {
		t.Fatalf("GetLatest = %+v, %v", latest, err)
	}
	got, err := svc.GetRange(observedAt.Add(-time.Hour), observedAt)
	if err != nil || len(got) != 1 {
		t.Fatalf("GetRange = %d readings, %v", len(got), err)
	}

	site, expired, ok := svc.Site()
	if !ok || site.ID != "A" || expired {
		t.Fatalf("Site = %+v expired=%v ok=%v", site, expired, ok)
	}
}

func TestServiceFailedPollStoresNothing(t *testing.T) {
	src := newFake()
	src.obsErr = ErrTransport
	st := &sliceStore{}
	svc := NewService(st, newProvider(t, src, ProviderConfig{}))

	if _, err := svc.PollAndStore(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want %v", err, ErrTransport)
	}
	if len(st.readings) != 0 {
		t.Fatalf("stored %d readings after a failed poll", len(st.readings))
	}
}

func TestServiceFailedPollLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	src := newFake()
	src.obsErr = ErrTransport
	svc := NewService(&sliceStore{}, newProvider(t, src, ProviderConfig{}))

	if _, err := svc.PollAndStore(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want %v", err, ErrTransport)
	}
	if n := strings.Count(buf.String(), "ERROR:"); n != 1 {
		t.Fatalf("logged %d ERROR lines, want 1:\n%s", n, buf.String())
	}
}

func TestServiceWithoutProvider(t *testing.T) {
	svc := NewService(&sliceStore{}, nil)
	if _, err := svc.PollAndStore(context.Background()); err == nil {
		t.Fatal("expected error without a provider")
	}
}

func TestTakeReadingAbsentFields(t *testing.T) {
	src := newFake()
	o := src.obs["A"]
	o.Humidity = nil
	o.Description = ""
	o.Link = ""
	o.ObservedAt = time.Time{}
	src.obs["A"] = o

	p := newProvider(t, src, ProviderConfig{})
	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	before := time.Now().Add(-time.Second)
	r, err := TakeReading(p)
	if err != nil {
		t.Fatalf("TakeReading: %v", err)
	}
	if r.Humidity != nil || r.Description != nil || r.ExternalURL != nil {
		t.Fatalf("absent getters should be nil: %+v", r)
	}
	if r.ObservedAt.Before(before) {
		t.Fatalf("observedAt = %v, want the time of the reading", r.ObservedAt)
	}
}
