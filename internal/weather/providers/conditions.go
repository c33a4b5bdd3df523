package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/units"
	"github.com/i474232898/site-weather/internal/weather"
)

// ConditionsProvider reads "current conditions" records: one JSON array per
// site whose first element carries every quantity in both metric and imperial
// renditions.
type ConditionsProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Source = (*ConditionsProvider)(nil)

func NewConditionsProvider(client *http.Client, apiKey, baseURL string) *ConditionsProvider {
	if baseURL == "" {
		baseURL = DefaultDataPointForecastURL
	}
	return &ConditionsProvider{
		name:    "conditions",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("conditions"),
	}
}

func (p *ConditionsProvider) Name() string {
	return p.name
}

func (p *ConditionsProvider) FetchSites(ctx context.Context) ([]geo.Site, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("conditions: %w", errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	u := fmt.Sprintf("%s/sitelist?%s", p.baseURL, values.Encode())

	var payload siteListPayload
	if err := getJSON(ctx, p.client, p.circuit, p.name+".sitelist", u, &payload); err != nil {
		return nil, err
	}
	return payload.sites()
}

func (p *ConditionsProvider) FetchObservation(ctx context.Context, siteID string) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("conditions: %w", errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("res", "3hourly")
	values.Set("apikey", p.apiKey)
	values.Set("details", "true")
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(siteID), values.Encode())

	var payload []conditionsRecord
	if err := getJSON(ctx, p.client, p.circuit, p.name+".observation", u, &payload); err != nil {
		return weather.Observation{}, err
	}
	if len(payload) == 0 {
		return weather.Observation{}, fmt.Errorf("%w: empty conditions array for site %s", weather.ErrParse, siteID)
	}

	obs, err := payload[0].observation()
	if err != nil {
		return weather.Observation{}, err
	}
	obs.SiteID = siteID
	return obs, nil
}

type conditionsMeasure struct {
	Value *float64 `json:"Value"`
	Unit  string   `json:"Unit"`
}

type conditionsPair struct {
	Metric   *conditionsMeasure `json:"Metric"`
	Imperial *conditionsMeasure `json:"Imperial"`
}

// measures returns the renditions present, metric first.
func (c *conditionsPair) measures(field string) ([]units.Measure, error) {
	if c == nil {
		return nil, nil
	}
	var out []units.Measure
	for _, m := range []*conditionsMeasure{c.Metric, c.Imperial} {
		if m == nil || m.Value == nil {
			continue
		}
		u, err := units.ParseUnit(m.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", weather.ErrParse, field, err)
		}
		out = append(out, units.Measure{Value: *m.Value, Unit: u})
	}
	return out, nil
}

type conditionsRecord struct {
	EpochTime         int64           `json:"EpochTime"`
	WeatherText       string          `json:"WeatherText"`
	HasPrecipitation  bool            `json:"HasPrecipitation"`
	PrecipitationType *string         `json:"PrecipitationType"`
	Temperature       *conditionsPair `json:"Temperature"`
	RelativeHumidity  *float64        `json:"RelativeHumidity"`
	Pressure          *conditionsPair `json:"Pressure"`
	Wind              *struct {
		Direction *struct {
			Degrees *float64 `json:"Degrees"`
		} `json:"Direction"`
		Speed *conditionsPair `json:"Speed"`
	} `json:"Wind"`
	Link string `json:"Link"`
}

func (r conditionsRecord) observation() (weather.Observation, error) {
	obs := weather.Observation{
		Humidity:         r.RelativeHumidity,
		Description:      r.WeatherText,
		HasPrecipitation: r.HasPrecipitation,
		Link:             r.Link,
	}
	if r.EpochTime > 0 {
		obs.ObservedAt = time.Unix(r.EpochTime, 0).UTC()
	}
	if r.PrecipitationType != nil {
		obs.PrecipitationType = weather.ParsePrecipitationType(*r.PrecipitationType)
	}

	var err error
	if obs.Temperature, err = r.Temperature.measures("Temperature"); err != nil {
		return weather.Observation{}, err
	}
	if obs.Pressure, err = r.Pressure.measures("Pressure"); err != nil {
		return weather.Observation{}, err
	}
	if r.Wind != nil {
		if obs.WindSpeed, err = r.Wind.Speed.measures("Wind.Speed"); err != nil {
			return weather.Observation{}, err
		}
		if r.Wind.Direction != nil {
			obs.WindDirection = r.Wind.Direction.Degrees
		}
	}
	return obs, nil
}
