package weather

import (
	"errors"

	"github.com/i474232898/site-weather/internal/geo"
)

var (
	// ErrInvalidLocation means no target coordinate was configured.
	ErrInvalidLocation = geo.ErrInvalidLocation
	// ErrLocationNotFound means the site catalog was empty or malformed.
	ErrLocationNotFound = errors.New("location not found")
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("transport error")
	// ErrParse covers malformed payloads and missing fields.
	ErrParse = errors.New("parse error")
	// ErrTimeout means an upstream call exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")
	// ErrPollInFlight is returned when a poll is already running.
	ErrPollInFlight = errors.New("poll already in flight")
	// ErrNoData means no observation has been fetched yet.
	ErrNoData = errors.New("no observation fetched yet")
)
