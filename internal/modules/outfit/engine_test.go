package outfit

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
)

func TestAdvise_HeavyWinterDay(t *testing.T) {
	day := DayForecast{HighTemp: 30, LowTemp: 10, PrecipChance: 10, WindSpeed: 5, UVIndex: 2}
	got, err := Advise(day, PersonaNone)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	want := []string{
		"insulated coat", "thermal base layer", "wool sweater", "warm pants", "insulated boots", "beanie",
		"gloves", "warm scarf",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
	for _, absent := range []string{"waterproof shell", "windbreaker"} {
		if slices.Contains(got, absent) {
			t.Errorf("unexpected %q", absent)
		}
	}
}

func TestAdvise_WarmStormyDay(t *testing.T) {
	day := DayForecast{HighTemp: 78, LowTemp: 60, PrecipChance: 60, WindSpeed: 20, UVIndex: 8}
	got, err := Advise(day, PersonaNone)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	want := []string{
		"breathable t-shirt", "lightweight pants", "comfortable shoes",
		"waterproof shell", "water-resistant footwear",
		"windbreaker",
		"sun hat", "sunglasses", "sunscreen",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
}

func TestAdvise_BandBoundaries(t *testing.T) {
	tests := []struct {
		high  float64
		first string
	}{
		{-50, "insulated coat"},
		{40, "insulated coat"},
		{40.1, "midweight jacket"},
		{55, "midweight jacket"},
		{72, "light jacket"},
		{84, "breathable t-shirt"},
		{84.5, "moisture-wicking tank"},
		{150, "moisture-wicking tank"},
		{1e6, "moisture-wicking tank"},
	}
	for _, tt := range tests {
		got, err := Advise(DayForecast{HighTemp: tt.high, LowTemp: tt.high}, PersonaNone)
		if err != nil {
			t.Fatalf("Advise(high=%v): %v", tt.high, err)
		}
		if got[0] != tt.first {
			t.Errorf("high=%v first item = %q, want %q", tt.high, got[0], tt.first)
		}
	}
}

func TestAdvise_EveryTemperatureHasExactlyOneBand(t *testing.T) {
	for high := -50; high <= 150; high++ {
		matched := 0
		for i, b := range bands {
			lower := math.Inf(-1)
			if i > 0 {
				lower = bands[i-1].maxHigh
			}
			if float64(high) > lower && float64(high) <= b.maxHigh {
				matched++
			}
		}
		if matched != 1 {
			t.Fatalf("high=%d matched %d bands", high, matched)
		}
		items, err := Advise(DayForecast{HighTemp: float64(high), LowTemp: float64(high) - 10}, PersonaNone)
		if err != nil || len(items) == 0 {
			t.Fatalf("high=%d: items=%v err=%v", high, items, err)
		}
	}
}

func TestAdvise_PureAndIdempotent(t *testing.T) {
	day := DayForecast{Date: "2026-03-14", HighTemp: 66, LowTemp: 45, PrecipChance: 45, WindSpeed: 19, UVIndex: 7, Condition: ConditionMixed}
	for _, p := range []Persona{PersonaNone, PersonaMinimal, PersonaOutdoorsy, PersonaStreet, PersonaBusiness} {
		first, err := Advise(day, p)
		if err != nil {
			t.Fatalf("Advise(%s): %v", p, err)
		}
		for i := 0; i < 3; i++ {
			again, _ := Advise(day, p)
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("persona %q: result changed between calls", p)
			}
		}
	}
}

func TestAdvise_AddOnOrderAndSwing(t *testing.T) {
	day := DayForecast{HighTemp: 70, LowTemp: 36, PrecipChance: 40, WindSpeed: 18, UVIndex: 7}
	got, err := Advise(day, PersonaNone)
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	want := []string{
		"light jacket", "long-sleeve shirt", "chinos", "comfortable shoes",
		"waterproof shell", "water-resistant footwear", "windbreaker",
		"sun hat", "sunglasses", "sunscreen", "gloves", "warm scarf", "packable layer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
}

func TestAdvise_Personas(t *testing.T) {
	mild := DayForecast{HighTemp: 65, LowTemp: 55}
	tests := []struct {
		persona Persona
		want    []string
	}{
		{PersonaNone, []string{"light jacket", "long-sleeve shirt", "chinos", "comfortable shoes"}},
		{PersonaOutdoorsy, []string{"fleece jacket", "long-sleeve shirt", "convertible hiking pants", "trail shoes"}},
		{PersonaStreet, []string{"bomber jacket", "long-sleeve shirt", "cargo pants", "clean sneakers"}},
		{PersonaBusiness, []string{"blazer", "oxford shirt", "tailored trousers", "leather loafers"}},
		{PersonaMinimal, []string{"light jacket", "plain long-sleeve tee", "chinos", "white sneakers"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.persona), func(t *testing.T) {
			got, err := Advise(mild, tt.persona)
			if err != nil {
				t.Fatalf("Advise: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPersona_CollisionKeepsDuplicate(t *testing.T) {
	items := []string{"comfortable shoes", "trail shoes"}
	applyPersona(items, PersonaOutdoorsy)
	if !reflect.DeepEqual(items, []string{"trail shoes", "trail shoes"}) {
		t.Errorf("got %v", items)
	}
}

func TestAdvise_InvalidInput(t *testing.T) {
	ok := DayForecast{HighTemp: 60, LowTemp: 50}
	tests := []struct {
		name    string
		mutate  func(*DayForecast)
		persona Persona
		field   string
	}{
		{"NaN high", func(d *DayForecast) { d.HighTemp = math.NaN() }, "", "high_temp"},
		{"Inf low", func(d *DayForecast) { d.LowTemp = math.Inf(-1) }, "", "low_temp"},
		{"precip over 100", func(d *DayForecast) { d.PrecipChance = 101 }, "", "precip_chance"},
		{"negative precip", func(d *DayForecast) { d.PrecipChance = -1 }, "", "precip_chance"},
		{"negative wind", func(d *DayForecast) { d.WindSpeed = -3 }, "", "wind_speed"},
		{"NaN uv", func(d *DayForecast) { d.UVIndex = math.NaN() }, "", "uv_index"},
		{"negative uv", func(d *DayForecast) { d.UVIndex = -1 }, "", "uv_index"},
		{"bad condition", func(d *DayForecast) { d.Condition = "hail" }, "", "condition"},
		{"bad date", func(d *DayForecast) { d.Date = "03/14/2026" }, "", "date"},
		{"bad persona", func(d *DayForecast) {}, "goth", "persona"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := ok
			tt.mutate(&day)
			_, err := Advise(day, tt.persona)
			var ie *InvalidInputError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want *InvalidInputError", err)
			}
			if ie.Field != tt.field {
				t.Errorf("field = %s, want %s", ie.Field, tt.field)
			}
		})
	}
}

func TestParsePersona(t *testing.T) {
	if p, err := ParsePersona(" Business "); err != nil || p != PersonaBusiness {
		t.Errorf("got %q, %v", p, err)
	}
	if p, err := ParsePersona(""); err != nil || p != PersonaNone {
		t.Errorf("got %q, %v", p, err)
	}
	if _, err := ParsePersona("hipster"); err == nil {
		t.Error("expected error for unknown persona")
	}
}

func TestNormalize_Metric(t *testing.T) {
	day := Normalize(DayForecast{HighTemp: 25, LowTemp: -5, WindSpeed: 30}, UnitsMetric)
	if day.HighTemp != 77 || day.LowTemp != 23 {
		t.Errorf("temps = %v/%v, want 77/23", day.HighTemp, day.LowTemp)
	}
	if math.Abs(day.WindSpeed-18.64) > 0.01 {
		t.Errorf("wind = %v, want ~18.64", day.WindSpeed)
	}
	same := Normalize(DayForecast{HighTemp: 25}, UnitsImperial)
	if same.HighTemp != 25 {
		t.Errorf("imperial input changed: %v", same.HighTemp)
	}
}

func TestParseUnits(t *testing.T) {
	for in, want := range map[string]Units{"": UnitsImperial, "METRIC": UnitsMetric, "imperial": UnitsImperial} {
		got, err := ParseUnits(in)
		if err != nil || got != want {
			t.Errorf("ParseUnits(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseUnits("kelvin"); err == nil {
		t.Error("expected error")
	}
}
