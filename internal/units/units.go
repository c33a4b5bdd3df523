package units

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is a measurement unit as understood by the converters.
type Unit string

const (
	Celsius           Unit = "C"
	Fahrenheit        Unit = "F"
	KilometresPerHour Unit = "km/h"
	MetresPerSecond   Unit = "m/s"
	MilesPerHour      Unit = "mph"
	Hectopascal       Unit = "hPa"
	InchesOfMercury   Unit = "inHg"
)

// ErrIncompatible is returned when converting between different dimensions.
var ErrIncompatible = errors.New("incompatible units")

const (
	kmhPerMs    = 3.6
	kmhPerMph   = 1.609344
	hpaPerInHg  = 33.8638866667
	fahrenheitK = 9.0 / 5.0
)

type dimension int

const (
	dimUnknown dimension = iota
	dimTemperature
	dimSpeed
	dimPressure
)

func (u Unit) dimension() dimension {
	switch u {
	case Celsius, Fahrenheit:
		return dimTemperature
	case KilometresPerHour, MetresPerSecond, MilesPerHour:
		return dimSpeed
	case Hectopascal, InchesOfMercury:
		return dimPressure
	default:
		return dimUnknown
	}
}

// ParseUnit maps the spellings used by upstream payloads onto a Unit.
func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "c", "°c", "celsius":
		return Celsius, nil
	case "f", "°f", "fahrenheit":
		return Fahrenheit, nil
	case "km/h", "kph", "kmh":
		return KilometresPerHour, nil
	case "m/s", "mps":
		return MetresPerSecond, nil
	case "mph", "mi/h":
		return MilesPerHour, nil
	case "hpa", "mb", "mbar":
		return Hectopascal, nil
	case "inhg":
		return InchesOfMercury, nil
	default:
		return "", fmt.Errorf("unknown unit %q", raw)
	}
}

// Measure is a value expressed in a specific unit.
type Measure struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Convert expresses value (in from) in the to unit.
func Convert(value float64, from, to Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	if from.dimension() == dimUnknown || from.dimension() != to.dimension() {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatible, from, to)
	}

	switch from.dimension() {
	case dimTemperature:
		if from == Celsius {
			return value*fahrenheitK + 32, nil
		}
		return (value - 32) / fahrenheitK, nil
	case dimSpeed:
		return fromKmh(toKmh(value, from), to), nil
	case dimPressure:
		if from == InchesOfMercury {
			return value * hpaPerInHg, nil
		}
		return value / hpaPerInHg, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatible, from, to)
}

func toKmh(v float64, from Unit) float64 {
	switch from {
	case MetresPerSecond:
		return v * kmhPerMs
	case MilesPerHour:
		return v * kmhPerMph
	default:
		return v
	}
}

func fromKmh(v float64, to Unit) float64 {
	switch to {
	case MetresPerSecond:
		return v / kmhPerMs
	case MilesPerHour:
		return v / kmhPerMph
	default:
		return v
	}
}

// Pick returns the value of measures expressed in want. A measure already in
// want is used as is; otherwise the first convertible one is converted.
func Pick(measures []Measure, want Unit) (float64, bool) {
	for _, m := range measures {
		if m.Unit == want {
			return m.Value, true
		}
	}
	for _, m := range measures {
		if v, err := Convert(m.Value, m.Unit, want); err == nil {
			return v, true
		}
	}
	return 0, false
}
