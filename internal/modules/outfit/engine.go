// README: Outfit rule engine; temperature bands, weather add-ons, dedup and persona swaps. Pure.
package outfit

import (
	"math"
	"time"
)

type band struct {
	maxHigh float64
	items   []string
}

// bands are ascending; the last ceiling is +Inf so every temperature matches.
var bands = []band{
	{40, []string{"insulated coat", "thermal base layer", "wool sweater", "warm pants", "insulated boots", "beanie"}},
	{55, []string{"midweight jacket", "long-sleeve shirt", "sweater", "jeans", "closed-toe shoes"}},
	{72, []string{"light jacket", "long-sleeve shirt", "chinos", "comfortable shoes"}},
	{84, []string{"breathable t-shirt", "lightweight pants", "comfortable shoes"}},
	{math.Inf(1), []string{"moisture-wicking tank", "shorts", "breathable sandals"}},
}

// Add-on thresholds. Temperatures in °F, wind in mph.
const (
	rainPrecipChance = 40
	windyMph         = 18
	highUV           = 7
	coldLowTemp      = 38
	swingLowTemp     = 50
	swingHighTemp    = 65
)

type addOn struct {
	applies func(DayForecast) bool
	items   []string
}

// addOns are evaluated in this order.
var addOns = []addOn{
	{func(d DayForecast) bool { return d.PrecipChance >= rainPrecipChance }, []string{"waterproof shell", "water-resistant footwear"}},
	{func(d DayForecast) bool { return d.WindSpeed >= windyMph }, []string{"windbreaker"}},
	{func(d DayForecast) bool { return d.UVIndex >= highUV }, []string{"sun hat", "sunglasses", "sunscreen"}},
	{func(d DayForecast) bool { return d.LowTemp <= coldLowTemp }, []string{"gloves", "warm scarf"}},
	{func(d DayForecast) bool { return d.LowTemp <= swingLowTemp && d.HighTemp >= swingHighTemp }, []string{"packable layer"}},
}

// Advise returns the packing list for one day. Same input, same output.
func Advise(day DayForecast, persona Persona) ([]string, error) {
	if err := Validate(day); err != nil {
		return nil, err
	}
	if !persona.Valid() {
		return nil, &InvalidInputError{Field: "persona", Reason: "unknown persona " + string(persona)}
	}

	base := bandFor(day.HighTemp)
	items := make([]string, 0, len(base)+8)
	items = append(items, base...)
	for _, a := range addOns {
		if a.applies(day) {
			items = append(items, a.items...)
		}
	}

	items = normalizeList(items)
	applyPersona(items, persona)
	return items, nil
}

// Validate rejects forecasts the rules cannot evaluate.
func Validate(day DayForecast) error {
	numeric := []struct {
		field string
		v     float64
	}{
		{"high_temp", day.HighTemp},
		{"low_temp", day.LowTemp},
		{"precip_chance", day.PrecipChance},
		{"wind_speed", day.WindSpeed},
		{"uv_index", day.UVIndex},
	}
	for _, n := range numeric {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			return &InvalidInputError{Field: n.field, Reason: "must be a finite number"}
		}
	}
	if day.PrecipChance < 0 || day.PrecipChance > 100 {
		return &InvalidInputError{Field: "precip_chance", Reason: "must be between 0 and 100"}
	}
	if day.WindSpeed < 0 {
		return &InvalidInputError{Field: "wind_speed", Reason: "must not be negative"}
	}
	if day.UVIndex < 0 {
		return &InvalidInputError{Field: "uv_index", Reason: "must not be negative"}
	}
	if day.Condition != "" && !day.Condition.Valid() {
		return &InvalidInputError{Field: "condition", Reason: "unknown condition " + string(day.Condition)}
	}
	if day.Date != "" {
		if _, err := time.Parse(time.DateOnly, day.Date); err != nil {
			return &InvalidInputError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
	}
	return nil
}

func bandFor(high float64) []string {
	for _, b := range bands {
		if b.maxHigh >= high {
			return b.items
		}
	}
	return bands[len(bands)-1].items
}

// normalizeList drops empty and repeated items, keeping first occurrence.
func normalizeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
