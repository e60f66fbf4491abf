package outfit

import (
	"fmt"
	"strings"
)

// Units names the measurement system of an incoming forecast.
type Units string

const (
	UnitsImperial Units = "imperial"
	UnitsMetric   Units = "metric"
)

const kmhToMph = 0.621371

// ParseUnits defaults to imperial when s is blank.
func ParseUnits(s string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitsImperial:
		return UnitsImperial, nil
	case UnitsMetric:
		return UnitsMetric, nil
	}
	return "", &InvalidInputError{Field: "units", Reason: fmt.Sprintf("unknown units %q", s)}
}

// Normalize converts a metric forecast (°C, km/h) to the °F/mph scale the
// rules use.
func Normalize(day DayForecast, units Units) DayForecast {
	if units != UnitsMetric {
		return day
	}
	day.HighTemp = celsiusToFahrenheit(day.HighTemp)
	day.LowTemp = celsiusToFahrenheit(day.LowTemp)
	day.WindSpeed *= kmhToMph
	return day
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
