package weather

import "time"

// TakeReading snapshots every getter of p into a Reading.
// It returns ErrNoData when p has not fetched an observation yet.
func TakeReading(p Provider) (Reading, error) {
	// Raining is present whenever an observation is cached.
	if _, ok := p.Raining(); !ok {
		return Reading{}, ErrNoData
	}
	observedAt, ok := p.ObservedAt()
	if !ok {
		observedAt = time.Now()
	}

	r := Reading{
		Provider:   p.Name(),
		Units:      p.Units(),
		ObservedAt: observedAt.UTC(),
	}
	if id, ok := p.ObservedSite(); ok {
		r.SiteID = id
	}

	r.Temperature = optional(p.Temperature())
	r.Pressure = optional(p.Pressure())
	r.Humidity = optional(p.Humidity())
	r.WindSpeed = optional(p.WindSpeed())
	r.WindDirection = optional(p.WindDirection())
	r.Description = optional(p.Description())
	r.Raining = optional(p.Raining())
	r.Snowing = optional(p.Snowing())
	r.ExternalURL = optional(p.ExternalURL())

	return r, nil
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
