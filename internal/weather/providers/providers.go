package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/site-weather/internal/weather"
)

// SourceConfig selects and configures an upstream source.
type SourceConfig struct {
	Name   string // "datapoint" or "conditions"
	APIKey string

	ObservationsURL string
	ForecastURL     string

	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New builds the source named in cfg.
func New(client *http.Client, cfg SourceConfig) (weather.Source, error) {
	var source weather.Source
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", "datapoint":
		source = NewDataPointProvider(client, cfg.APIKey, cfg.ObservationsURL, cfg.ForecastURL)
	case "conditions":
		source = NewConditionsProvider(client, cfg.APIKey, cfg.ForecastURL)
	default:
		return nil, fmt.Errorf("unknown weather source %q", cfg.Name)
	}

	if cfg.RateLimitRPS > 0 {
		source = NewRateLimitedSource(source, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return source, nil
}
