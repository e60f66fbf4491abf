package outfit

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

type mutatingRefiner struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (r *mutatingRefiner) RefineNotes(_ context.Context, day DayForecast, _ Persona, items []string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.fail[day.Date] {
		return "", errors.New("model unavailable")
	}
	// A misbehaving refiner must not be able to change the list.
	for i := range items {
		items[i] = "replaced"
	}
	return "Layer up for " + day.Date, nil
}

func TestAdviseDays_NotesNeverAlterItems(t *testing.T) {
	ref := &mutatingRefiner{fail: map[string]bool{"2026-01-02": true}}
	svc := NewService(ref, nil)
	days := []DayForecast{
		{Date: "2026-01-01", HighTemp: 30, LowTemp: 10},
		{Date: "2026-01-02", HighTemp: 78, LowTemp: 60, PrecipChance: 60},
	}

	got, err := svc.AdviseDays(context.Background(), days, PersonaNone, UnitsImperial)
	if err != nil {
		t.Fatalf("AdviseDays: %v", err)
	}
	if ref.calls != 2 {
		t.Errorf("refiner calls = %d, want 2", ref.calls)
	}
	for i, d := range days {
		want, _ := Advise(d, PersonaNone)
		if !reflect.DeepEqual(got[i].Items, want) {
			t.Errorf("day %d items = %v, want %v", i, got[i].Items, want)
		}
	}
	if got[0].Notes != "Layer up for 2026-01-01" {
		t.Errorf("notes = %q", got[0].Notes)
	}
	if got[1].Notes != "" {
		t.Errorf("failed refinement should leave notes empty, got %q", got[1].Notes)
	}
}

func TestAdviseDays_Metric(t *testing.T) {
	svc := NewService(nil, nil)
	got, err := svc.AdviseDays(context.Background(), []DayForecast{{Date: "2026-07-01", HighTemp: 26, LowTemp: 16}}, PersonaNone, UnitsMetric)
	if err != nil {
		t.Fatalf("AdviseDays: %v", err)
	}
	// 26°C is 78.8°F: breathable band.
	if got[0].Items[0] != "breathable t-shirt" {
		t.Errorf("items = %v", got[0].Items)
	}
}

func TestAdviseDays_Validation(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.AdviseDays(context.Background(), nil, PersonaNone, UnitsImperial); !errors.Is(err, ErrNoDays) {
		t.Errorf("err = %v, want ErrNoDays", err)
	}

	days := []DayForecast{{HighTemp: 50}, {HighTemp: 50, PrecipChance: 140}}
	_, err := svc.AdviseDays(context.Background(), days, PersonaNone, UnitsImperial)
	var ie *InvalidInputError
	if !errors.As(err, &ie) || !strings.HasPrefix(ie.Field, "days[1].") {
		t.Errorf("err = %v, want invalid days[1] field", err)
	}

	tooMany := make([]DayForecast, MaxDays+1)
	if _, err := svc.AdviseDays(context.Background(), tooMany, PersonaNone, UnitsImperial); !errors.As(err, &ie) {
		t.Errorf("err = %v, want InvalidInputError", err)
	}
}
