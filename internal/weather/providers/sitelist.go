package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/weather"
)

// flexString decodes a JSON string or number. DataPoint sends ids and
// measurements as strings, other feeds as numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

// Float parses the value. ok is false when the value is empty.
func (s flexString) Float() (float64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// oneOrMany decodes either a single JSON object or an array of them.
// DataPoint collapses one-element arrays into a bare object.
type oneOrMany[T any] []T

func (m *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*m = nil
		return nil
	case len(b) > 0 && b[0] == '[':
		var many []T
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*m = many
		return nil
	default:
		var one T
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*m = oneOrMany[T]{one}
		return nil
	}
}

type siteListPayload struct {
	Locations *struct {
		Location *oneOrMany[siteListEntry] `json:"Location"`
	} `json:"Locations"`
}

type siteListEntry struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	Latitude  flexString `json:"latitude"`
	Longitude flexString `json:"longitude"`
}

// sites converts the decoded catalog. A payload without
// Locations.Location, or with an entry whose coordinates do not parse,
// is ErrParse. An empty list is returned as is.
func (p siteListPayload) sites() ([]geo.Site, error) {
	if p.Locations == nil || p.Locations.Location == nil {
		return nil, fmt.Errorf("%w: site list has no Locations.Location", weather.ErrParse)
	}

	entries := *p.Locations.Location
	sites := make([]geo.Site, 0, len(entries))
	for i, e := range entries {
		lat, latOK, err := e.Latitude.Float()
		if err != nil || !latOK {
			return nil, fmt.Errorf("%w: site %d (%s): bad latitude %q", weather.ErrParse, i, e.ID, e.Latitude)
		}
		lon, lonOK, err := e.Longitude.Float()
		if err != nil || !lonOK {
			return nil, fmt.Errorf("%w: site %d (%s): bad longitude %q", weather.ErrParse, i, e.ID, e.Longitude)
		}

		c := geo.Coordinate{Lat: lat, Lon: lon}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: site %d (%s): %v", weather.ErrParse, i, e.ID, err)
		}

		sites = append(sites, geo.Site{
			ID:         string(e.ID),
			Name:       e.Name,
			Coordinate: c,
		})
	}
	return sites, nil
}
