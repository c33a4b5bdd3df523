package config

import (
	"strings"
	"testing"
	"time"
)

// setEnv clears every variable Load reads, then applies vars.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range []string{
		"WEATHER_SOURCE", "WEATHER_API_KEY", "WEATHER_UNITS", "WEATHER_DISTANCE",
		"WEATHER_LAT", "WEATHER_LON", "WEATHER_LOCATION_CITY", "WEATHER_LOCATION_COUNTRY",
		"GEOCODER_API_KEY", "DATAPOINT_OBS_URL", "DATAPOINT_FCS_URL",
		"HTTP_TIMEOUT", "REQUEST_TIMEOUT", "POLL_INTERVAL", "SITE_REFRESH_INTERVAL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "STORE_MAX_HISTORY", "STORE_MAX_AGE", "PORT",
	} {
		t.Setenv(key, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"WEATHER_API_KEY": "key",
		"WEATHER_LAT":     "54.5748818",
		"WEATHER_LON":     "-5.7052727",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source != "datapoint" || cfg.Units != "metric" || cfg.Distance != "spherical" {
		t.Errorf("source/units/distance = %s/%s/%s", cfg.Source, cfg.Units, cfg.Distance)
	}
	if cfg.Location == nil || cfg.Location.Lat != 54.5748818 || cfg.Location.Lon != -5.7052727 {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.NeedsGeocoding() {
		t.Error("NeedsGeocoding with coordinates set")
	}
	if cfg.PollInterval != 15*time.Minute || cfg.RequestTimeout != 10*time.Second {
		t.Errorf("poll interval = %v, request timeout = %v", cfg.PollInterval, cfg.RequestTimeout)
	}
	if cfg.SiteRefreshInterval != 30*24*time.Hour {
		t.Errorf("site refresh interval = %v", cfg.SiteRefreshInterval)
	}
	if cfg.StoreMaxHistory != 96 || cfg.StoreMaxAge != 24*time.Hour {
		t.Errorf("retention = %d / %v", cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"WEATHER_SOURCE":           "Conditions",
		"WEATHER_API_KEY":          "key",
		"WEATHER_UNITS":            "IMPERIAL",
		"WEATHER_DISTANCE":         "planar",
		"WEATHER_LOCATION_CITY":    "Belfast",
		"WEATHER_LOCATION_COUNTRY": "UK",
		"GEOCODER_API_KEY":         "gkey",
		"DATAPOINT_FCS_URL":        "http://localhost:9000/wxfcs",
		"POLL_INTERVAL":            "5m",
		"SITE_REFRESH_INTERVAL":    "0s",
		"RATE_LIMIT_RPS":           "0.5",
		"RATE_LIMIT_BURST":         "3",
		"PORT":                     "9090",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "conditions" || cfg.Units != "imperial" || cfg.Distance != "planar" {
		t.Errorf("source/units/distance = %s/%s/%s", cfg.Source, cfg.Units, cfg.Distance)
	}
	if !cfg.NeedsGeocoding() || cfg.City != "Belfast" || cfg.Country != "UK" {
		t.Errorf("geocoding target = %q, %q", cfg.City, cfg.Country)
	}
	if cfg.PollInterval != 5*time.Minute || cfg.SiteRefreshInterval != 0 {
		t.Errorf("intervals = %v / %v", cfg.PollInterval, cfg.SiteRefreshInterval)
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 3 {
		t.Errorf("rate limit = %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"missing api key", map[string]string{}, "APIKey"},
		{"unknown source", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_SOURCE": "openweather"}, "Source"},
		{"unknown units", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_UNITS": "kelvin"}, "Units"},
		{"lat without lon", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_LAT": "51"}, "WEATHER_LAT and WEATHER_LON"},
		{"bad lat", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_LAT": "north", "WEATHER_LON": "0"}, "WEATHER_LAT"},
		{"lat out of range", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_LAT": "91", "WEATHER_LON": "0"}, "out of range"},
		{"bad duration", map[string]string{"WEATHER_API_KEY": "k", "POLL_INTERVAL": "often"}, "POLL_INTERVAL"},
		{"poll too fast", map[string]string{"WEATHER_API_KEY": "k", "POLL_INTERVAL": "10ms"}, "PollInterval"},
		{"bad url", map[string]string{"WEATHER_API_KEY": "k", "DATAPOINT_OBS_URL": "not a url"}, "DataPointObsURL"},
		{"city without geocoder key", map[string]string{"WEATHER_API_KEY": "k", "WEATHER_LOCATION_CITY": "Belfast"}, "GEOCODER_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.vars)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
