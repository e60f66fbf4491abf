// README: Outfit engine inputs and outputs; day forecast, condition, persona and day advice.
package outfit

import (
	"fmt"
	"strings"
)

// Condition is the dominant sky/precipitation state of a day.
type Condition string

const (
	ConditionSun    Condition = "sun"
	ConditionClouds Condition = "clouds"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionMixed  Condition = "mixed"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionSun, ConditionClouds, ConditionRain, ConditionSnow, ConditionMixed:
		return true
	}
	return false
}

// Persona flavors item names. The zero value means no persona.
type Persona string

const (
	PersonaNone      Persona = ""
	PersonaMinimal   Persona = "minimal"
	PersonaOutdoorsy Persona = "outdoorsy"
	PersonaStreet    Persona = "street"
	PersonaBusiness  Persona = "business"
)

func (p Persona) Valid() bool {
	switch p {
	case PersonaNone, PersonaMinimal, PersonaOutdoorsy, PersonaStreet, PersonaBusiness:
		return true
	}
	return false
}

// ParsePersona accepts any casing and surrounding whitespace.
func ParsePersona(s string) (Persona, error) {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return PersonaNone, &InvalidInputError{Field: "persona", Reason: fmt.Sprintf("unknown persona %q", s)}
	}
	return p, nil
}

// DayForecast is one day of weather. Temperatures are °F and wind is mph
// unless converted with Normalize first.
type DayForecast struct {
	Date         string    `json:"date"`
	HighTemp     float64   `json:"high_temp"`
	LowTemp      float64   `json:"low_temp"`
	PrecipChance float64   `json:"precip_chance"`
	WindSpeed    float64   `json:"wind_speed"`
	UVIndex      float64   `json:"uv_index"`
	Condition    Condition `json:"condition,omitempty"`
}

// DayAdvice pairs the engine's items with optional free-text notes.
type DayAdvice struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
	Notes string   `json:"notes,omitempty"`
}

// InvalidInputError reports a malformed forecast field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
