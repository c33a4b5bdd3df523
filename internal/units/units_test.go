package units

import (
	"errors"
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		from, to Unit
		want     float64
	}{
		{"celsius to fahrenheit", 20, Celsius, Fahrenheit, 68},
		{"freezing", 0, Celsius, Fahrenheit, 32},
		{"fahrenheit to celsius", 212, Fahrenheit, Celsius, 100},
		{"kmh to ms", 36, KilometresPerHour, MetresPerSecond, 10},
		{"ms to kmh", 10, MetresPerSecond, KilometresPerHour, 36},
		{"kmh to mph", 1.609344, KilometresPerHour, MilesPerHour, 1},
		{"mph to ms", 10, MilesPerHour, MetresPerSecond, 4.4704},
		{"inhg to hpa", 1, InchesOfMercury, Hectopascal, 33.8638866667},
		{"identity", 1013, Hectopascal, Hectopascal, 1013},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("Convert(%v, %s, %s) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvertIncompatible(t *testing.T) {
	if _, err := Convert(20, Celsius, MilesPerHour); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("err = %v, want %v", err, ErrIncompatible)
	}
	if _, err := Convert(20, Unit("furlong/fortnight"), MilesPerHour); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("err = %v, want %v", err, ErrIncompatible)
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	for c := -60.0; c <= 60; c += 0.5 {
		f, err := Convert(c, Celsius, Fahrenheit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Round as the getters do, then come back.
		back, err := Convert(math.Round(f), Fahrenheit, Celsius)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(math.Round(back)-c) > 1 {
			t.Fatalf("round trip %v°C -> %v°F -> %v°C exceeds tolerance", c, math.Round(f), math.Round(back))
		}
	}
}

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"C":    Celsius,
		"F":    Fahrenheit,
		"mph":  MilesPerHour,
		"mi/h": MilesPerHour,
		"km/h": KilometresPerHour,
		"hpa":  Hectopascal,
		"mb":   Hectopascal,
		"inHg": InchesOfMercury,
		"m/s":  MetresPerSecond,
	}
	for raw, want := range tests {
		got, err := ParseUnit(raw)
		if err != nil {
			t.Fatalf("ParseUnit(%q) unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseUnit(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseUnit("compass"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}

func TestPick(t *testing.T) {
	measures := []Measure{{Value: 20, Unit: Celsius}, {Value: 69, Unit: Fahrenheit}}

	if v, ok := Pick(measures, Fahrenheit); !ok || v != 69 {
		t.Fatalf("exact match: got %v, %v", v, ok)
	}
	if v, ok := Pick(measures[:1], Fahrenheit); !ok || math.Abs(v-68) > 1e-9 {
		t.Fatalf("converted: got %v, %v", v, ok)
	}
	if _, ok := Pick(measures, MilesPerHour); ok {
		t.Fatalf("expected no value for an incompatible unit")
	}
	if _, ok := Pick(nil, Celsius); ok {
		t.Fatalf("expected no value for empty measures")
	}
}
