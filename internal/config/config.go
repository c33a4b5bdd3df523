package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/site-weather/internal/geo"
)

type AppConfig struct {
	// Source selects the upstream feed.
	Source string `validate:"oneof=datapoint conditions"`
	APIKey string `validate:"required"`

	Units    string `validate:"oneof=metric imperial"`
	Distance string `validate:"oneof=spherical planar"`

	// Location is the target coordinate. When it is nil and City is set, the
	// coordinate is geocoded at startup.
	Location       *geo.Coordinate
	City           string
	Country        string
	GeocoderAPIKey string

	DataPointObsURL string `validate:"omitempty,url"`
	DataPointFcsURL string `validate:"omitempty,url"`

	HTTPTimeout         time.Duration `validate:"gt=0"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	PollInterval        time.Duration `validate:"gte=1s"`
	SiteRefreshInterval time.Duration `validate:"gte=0"`

	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=1"`

	// In-memory store retention.
	StoreMaxHistory int           // max readings kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of readings (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// NeedsGeocoding reports whether the target must be looked up from City.
func (c *AppConfig) NeedsGeocoding() bool {
	return c.Location == nil && c.City != ""
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Source = strings.ToLower(getenvDefault("WEATHER_SOURCE", "datapoint"))
	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	cfg.Units = strings.ToLower(getenvDefault("WEATHER_UNITS", "metric"))
	cfg.Distance = strings.ToLower(getenvDefault("WEATHER_DISTANCE", "spherical"))

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc
	cfg.City = strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	cfg.Country = strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.DataPointObsURL = os.Getenv("DATAPOINT_OBS_URL")
	cfg.DataPointFcsURL = os.Getenv("DATAPOINT_FCS_URL")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	// DataPoint publishes observations hourly.
	if cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	// The site list rarely changes; refresh it monthly.
	if cfg.SiteRefreshInterval, err = getenvDuration("SITE_REFRESH_INTERVAL", "720h"); err != nil {
		return nil, err
	}

	if cfg.RateLimitRPS, err = getenvFloat("RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = getenvInt("RATE_LIMIT_BURST", 2)

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Location == nil && cfg.City == "" {
		log.Printf("INFO: no WEATHER_LAT/WEATHER_LON or WEATHER_LOCATION_CITY set; polls will fail until a location is configured")
	}
	if cfg.NeedsGeocoding() && cfg.GeocoderAPIKey == "" {
		return nil, fmt.Errorf("GEOCODER_API_KEY is required to look up WEATHER_LOCATION_CITY")
	}

	return cfg, nil
}

// loadLocation reads WEATHER_LAT and WEATHER_LON. Both or neither must be set.
func loadLocation() (*geo.Coordinate, error) {
	latStr := strings.TrimSpace(os.Getenv("WEATHER_LAT"))
	lonStr := strings.TrimSpace(os.Getenv("WEATHER_LON"))
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("WEATHER_LAT and WEATHER_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_LON: %w", err)
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
