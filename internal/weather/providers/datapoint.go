package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/units"
	"github.com/i474232898/site-weather/internal/weather"
)

const (
	DefaultDataPointObservationsURL = "http://datapoint.metoffice.gov.uk/public/data/val/wxobs/all/json"
	DefaultDataPointForecastURL     = "http://datapoint.metoffice.gov.uk/public/data/val/wxfcs/all/json"
)

// DataPointProvider reads hourly site observations from Met Office DataPoint.
// The site catalog comes from the forecast feed, which covers more sites
// than the observation feed lists on its own.
type DataPointProvider struct {
	name     string
	apiKey   string
	obsURL   string
	sitesURL string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

var _ weather.Source = (*DataPointProvider)(nil)

// NewDataPointProvider creates a DataPoint source. Empty URLs fall back to the
// public DataPoint endpoints.
func NewDataPointProvider(client *http.Client, apiKey, obsURL, sitesURL string) *DataPointProvider {
	if obsURL == "" {
		obsURL = DefaultDataPointObservationsURL
	}
	if sitesURL == "" {
		sitesURL = DefaultDataPointForecastURL
	}
	return &DataPointProvider{
		name:     "datapoint",
		apiKey:   apiKey,
		obsURL:   strings.TrimRight(obsURL, "/"),
		sitesURL: strings.TrimRight(sitesURL, "/"),
		client:   client,
		circuit:  newCircuitBreaker("datapoint"),
	}
}

func (p *DataPointProvider) Name() string {
	return p.name
}

func (p *DataPointProvider) FetchSites(ctx context.Context) ([]geo.Site, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("datapoint: %w", errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	u := fmt.Sprintf("%s/sitelist?%s", p.sitesURL, values.Encode())

	var payload siteListPayload
	if err := getJSON(ctx, p.client, p.circuit, p.name+".sitelist", u, &payload); err != nil {
		return nil, err
	}
	return payload.sites()
}

func (p *DataPointProvider) FetchObservation(ctx context.Context, siteID string) (weather.Observation, error) {
	if p.apiKey == "" {
		return weather.Observation{}, fmt.Errorf("datapoint: %w", errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("res", "hourly")
	values.Set("key", p.apiKey)
	u := fmt.Sprintf("%s/%s?%s", p.obsURL, url.PathEscape(siteID), values.Encode())

	var payload dataPointObsPayload
	if err := getJSON(ctx, p.client, p.circuit, p.name+".observation", u, &payload); err != nil {
		return weather.Observation{}, err
	}
	return payload.observation()
}

type dataPointObsPayload struct {
	SiteRep *struct {
		Wx struct {
			Param oneOrMany[dataPointParam] `json:"Param"`
		} `json:"Wx"`
		DV struct {
			Location *struct {
				ID     flexString                 `json:"i"`
				Name   string                     `json:"name"`
				Period oneOrMany[dataPointPeriod] `json:"Period"`
			} `json:"Location"`
		} `json:"DV"`
	} `json:"SiteRep"`
}

type dataPointParam struct {
	Name  string `json:"name"`
	Units string `json:"units"`
}

type dataPointPeriod struct {
	Value string                  `json:"value"` // e.g. "2024-01-01Z"
	Rep   oneOrMany[dataPointRep] `json:"Rep"`
}

type dataPointRep struct {
	WindDirection flexString `json:"D"`
	Humidity      flexString `json:"H"`
	Pressure      flexString `json:"P"`
	WindSpeed     flexString `json:"S"`
	Temperature   flexString `json:"T"`
	WeatherType   flexString `json:"W"`
	Minutes       flexString `json:"$"` // minutes after midnight
}

func (p dataPointObsPayload) observation() (weather.Observation, error) {
	if p.SiteRep == nil || p.SiteRep.DV.Location == nil {
		return weather.Observation{}, fmt.Errorf("%w: observation has no SiteRep.DV.Location", weather.ErrParse)
	}
	loc := p.SiteRep.DV.Location

	rep, at, ok, err := latestRep(loc.Period)
	if err != nil {
		return weather.Observation{}, err
	}
	if !ok {
		return weather.Observation{}, fmt.Errorf("%w: site %s has no observations", weather.ErrParse, loc.ID)
	}

	native := nativeUnits(p.SiteRep.Wx.Param)
	obs := weather.Observation{
		SiteID:     string(loc.ID),
		ObservedAt: at,
	}

	if obs.Temperature, err = measure(rep.Temperature, native["T"], units.Celsius, "T"); err != nil {
		return weather.Observation{}, err
	}
	if obs.Pressure, err = measure(rep.Pressure, native["P"], units.Hectopascal, "P"); err != nil {
		return weather.Observation{}, err
	}
	if obs.WindSpeed, err = measure(rep.WindSpeed, native["S"], units.MilesPerHour, "S"); err != nil {
		return weather.Observation{}, err
	}

	h, ok, err := rep.Humidity.Float()
	if err != nil {
		return weather.Observation{}, fmt.Errorf("%w: H: %v", weather.ErrParse, err)
	}
	if ok {
		obs.Humidity = &h
	}

	if rep.WindDirection != "" {
		deg, ok := compassDegrees(string(rep.WindDirection))
		if !ok {
			return weather.Observation{}, fmt.Errorf("%w: D: unknown compass point %q", weather.ErrParse, rep.WindDirection)
		}
		obs.WindDirection = &deg
	}

	if rep.WeatherType != "" && rep.WeatherType != "NA" {
		code, err := strconv.Atoi(string(rep.WeatherType))
		if err != nil {
			return weather.Observation{}, fmt.Errorf("%w: W: %v", weather.ErrParse, err)
		}
		if wt, ok := weatherTypes[code]; ok {
			obs.Description = wt.text
			obs.PrecipitationType = wt.precip
			obs.HasPrecipitation = wt.precip != weather.PrecipitationNone
		}
	}

	return obs, nil
}

// latestRep returns the most recent record across all periods.
func latestRep(periods []dataPointPeriod) (dataPointRep, time.Time, bool, error) {
	var (
		latest dataPointRep
		at     time.Time
		found  bool
	)
	for _, period := range periods {
		day, err := time.Parse("2006-01-02Z", period.Value)
		if err != nil {
			return dataPointRep{}, time.Time{}, false, fmt.Errorf("%w: period %q: %v", weather.ErrParse, period.Value, err)
		}
		for _, rep := range period.Rep {
			mins, err := strconv.Atoi(string(rep.Minutes))
			if err != nil {
				return dataPointRep{}, time.Time{}, false, fmt.Errorf("%w: record time %q: %v", weather.ErrParse, rep.Minutes, err)
			}
			t := day.Add(time.Duration(mins) * time.Minute)
			if !found || t.After(at) {
				latest, at, found = rep, t, true
			}
		}
	}
	return latest, at.UTC(), found, nil
}

// nativeUnits maps parameter names to the units the feed declares for them.
func nativeUnits(params []dataPointParam) map[string]units.Unit {
	out := make(map[string]units.Unit, len(params))
	for _, param := range params {
		u, err := units.ParseUnit(param.Units)
		if err != nil {
			continue
		}
		out[param.Name] = u
	}
	return out
}

func measure(raw flexString, declared, fallback units.Unit, field string) ([]units.Measure, error) {
	v, ok, err := raw.Float()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", weather.ErrParse, field, err)
	}
	if !ok {
		return nil, nil
	}
	if declared == "" {
		declared = fallback
	}
	return []units.Measure{{Value: v, Unit: declared}}, nil
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// compassDegrees converts a 16-point compass direction to degrees.
func compassDegrees(point string) (float64, bool) {
	point = strings.ToUpper(strings.TrimSpace(point))
	for i, p := range compassPoints {
		if p == point {
			return float64(i) * 22.5, true
		}
	}
	return 0, false
}

type weatherType struct {
	text   string
	precip weather.PrecipitationType
}

// weatherTypes is the DataPoint significant weather code table. Code 4 is
// unused upstream.
var weatherTypes = map[int]weatherType{
	0:  {"Clear night", weather.PrecipitationNone},
	1:  {"Sunny day", weather.PrecipitationNone},
	2:  {"Partly cloudy", weather.PrecipitationNone},
	3:  {"Partly cloudy", weather.PrecipitationNone},
	5:  {"Mist", weather.PrecipitationNone},
	6:  {"Fog", weather.PrecipitationNone},
	7:  {"Cloudy", weather.PrecipitationNone},
	8:  {"Overcast", weather.PrecipitationNone},
	9:  {"Light rain shower", weather.PrecipitationRain},
	10: {"Light rain shower", weather.PrecipitationRain},
	11: {"Drizzle", weather.PrecipitationRain},
	12: {"Light rain", weather.PrecipitationRain},
	13: {"Heavy rain shower", weather.PrecipitationRain},
	14: {"Heavy rain shower", weather.PrecipitationRain},
	15: {"Heavy rain", weather.PrecipitationRain},
	16: {"Sleet shower", weather.PrecipitationMixed},
	17: {"Sleet shower", weather.PrecipitationMixed},
	18: {"Sleet", weather.PrecipitationMixed},
	19: {"Hail shower", weather.PrecipitationIce},
	20: {"Hail shower", weather.PrecipitationIce},
	21: {"Hail", weather.PrecipitationIce},
	22: {"Light snow shower", weather.PrecipitationSnow},
	23: {"Light snow shower", weather.PrecipitationSnow},
	24: {"Light snow", weather.PrecipitationSnow},
	25: {"Heavy snow shower", weather.PrecipitationSnow},
	26: {"Heavy snow shower", weather.PrecipitationSnow},
	27: {"Heavy snow", weather.PrecipitationSnow},
	28: {"Thunder shower", weather.PrecipitationRain},
	29: {"Thunder shower", weather.PrecipitationRain},
	30: {"Thunder", weather.PrecipitationRain},
}
