package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/site-weather/internal/api/http"
	"github.com/i474232898/site-weather/internal/config"
	"github.com/i474232898/site-weather/internal/geo"
	"github.com/i474232898/site-weather/internal/scheduler"
	"github.com/i474232898/site-weather/internal/store"
	"github.com/i474232898/site-weather/internal/weather"
	"github.com/i474232898/site-weather/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source, err := providers.New(httpClient, providers.SourceConfig{
		Name:            cfg.Source,
		APIKey:          cfg.APIKey,
		ObservationsURL: cfg.DataPointObsURL,
		ForecastURL:     cfg.DataPointFcsURL,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	})
	if err != nil {
		log.Fatalf("failed to build weather source: %v", err)
	}

	location := cfg.Location
	if cfg.NeedsGeocoding() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		c, err := providers.NewGoogleGeocoder(cfg.GeocoderAPIKey).Geocode(ctx, cfg.City, cfg.Country)
		cancel()
		if err != nil {
			log.Fatalf("failed to geocode %s, %s: %v", cfg.City, cfg.Country, err)
		}
		location = &c
	}

	dist, err := geo.ParseDistance(cfg.Distance)
	if err != nil {
		log.Fatalf("invalid distance strategy: %v", err)
	}
	units, err := weather.ParseUnitSystem(cfg.Units)
	if err != nil {
		log.Fatalf("invalid unit system: %v", err)
	}

	provider, err := weather.NewSiteProvider(source, weather.ProviderConfig{
		Location:            location,
		Units:               units,
		Distance:            dist,
		RequestTimeout:      cfg.RequestTimeout,
		SiteRefreshInterval: cfg.SiteRefreshInterval,
	})
	if err != nil {
		log.Fatalf("failed to build provider: %v", err)
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(memStore, provider)

	// A poll makes at most two upstream calls.
	sched := scheduler.New(cfg.PollInterval, 2*cfg.RequestTimeout+5*time.Second, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "site-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*cfg.RequestTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "site-weather",
			"source":  provider.Name(),
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("ERROR: fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: site-weather listening on :%s (source=%s units=%s)", cfg.Port, provider.Name(), units)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("ERROR: during shutdown: %v", err)
	}
}
