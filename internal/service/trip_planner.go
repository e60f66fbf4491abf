// README: Trip planner; resolves a destination phrase, fetches its forecast and advises each day.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
	"packwise/internal/modules/resolution"
)

// Resolver is satisfied by *resolution.Service.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*resolution.Result, error)
}

// Forecaster is satisfied by *weather.Client.
type Forecaster interface {
	Daily(ctx context.Context, lat, lng float64, days int) ([]outfit.DayForecast, error)
}

// Advisor is satisfied by *outfit.Service.
type Advisor interface {
	AdviseDays(ctx context.Context, days []outfit.DayForecast, persona outfit.Persona, units outfit.Units) ([]outfit.DayAdvice, error)
}

// TripRequest is one planning call.
type TripRequest struct {
	Query   string
	Persona outfit.Persona
	Days    int
}

// Alternate is a runner-up place and how far it is from the chosen one.
type Alternate struct {
	geocode.ResolvedPlace
	DistanceKm float64 `json:"distance_km"`
}

// TripPlan is the composed answer.
type TripPlan struct {
	Query      string                `json:"query"`
	Place      geocode.ResolvedPlace `json:"place"`
	Alternates []Alternate           `json:"alternates"`
	Attempts   int                   `json:"attempts"`
	Days       []outfit.DayAdvice    `json:"days"`
}

// TripPlanner composes resolution, forecast and outfit advice. The halves
// stay independent: advice never feeds back into resolution.
type TripPlanner struct {
	resolver   Resolver
	forecaster Forecaster
	advisor    Advisor
	logger     *zap.Logger
}

func NewTripPlanner(resolver Resolver, forecaster Forecaster, advisor Advisor, logger *zap.Logger) *TripPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{
		resolver:   resolver,
		forecaster: forecaster,
		advisor:    advisor,
		logger:     logger.Named("trip_planner"),
	}
}

// PlanTrip returns resolution errors unchanged so callers can surface
// NotFound diagnostics.
func (p *TripPlanner) PlanTrip(ctx context.Context, req TripRequest) (*TripPlan, error) {
	res, err := p.resolver.Resolve(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	forecast, err := p.forecaster.Daily(ctx, res.Place.Latitude, res.Place.Longitude, req.Days)
	if err != nil {
		p.logger.Warn("forecast failed", zap.String("place", res.Place.Name), zap.Error(err))
		return nil, fmt.Errorf("forecast for %s: %w", res.Place.Name, err)
	}

	days, err := p.advisor.AdviseDays(ctx, forecast, req.Persona, outfit.UnitsImperial)
	if err != nil {
		return nil, fmt.Errorf("advise days: %w", err)
	}

	distances := res.AlternateDistancesKm()
	alternates := make([]Alternate, len(res.Candidates))
	for i, c := range res.Candidates {
		alternates[i] = Alternate{ResolvedPlace: c, DistanceKm: distances[i]}
	}

	p.logger.Info("trip planned",
		zap.String("query", res.Query),
		zap.String("place", res.Place.Name),
		zap.Int("days", len(days)),
	)
	return &TripPlan{
		Query:      res.Query,
		Place:      res.Place,
		Alternates: alternates,
		Attempts:   res.Attempts,
		Days:       days,
	}, nil
}
