// README: Multi-day advice; runs the rule engine per day and attaches optional refined notes.
package outfit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"packwise/internal/metrics"
)

// MaxDays bounds one AdviseDays call.
const MaxDays = 16

// ErrNoDays is returned for an empty batch.
var ErrNoDays = errors.New("at least one day is required")

// NotesRefiner writes free-text notes for a day. It only ever sees a copy of
// the items.
type NotesRefiner interface {
	RefineNotes(ctx context.Context, day DayForecast, persona Persona, items []string) (string, error)
}

type Service struct {
	refiner NotesRefiner
	logger  *zap.Logger
}

// NewService returns a Service. refiner may be nil.
func NewService(refiner NotesRefiner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{refiner: refiner, logger: logger.Named("outfit")}
}

// AdviseDays validates every day before advising any of them.
func (s *Service) AdviseDays(ctx context.Context, days []DayForecast, persona Persona, units Units) ([]DayAdvice, error) {
	if len(days) == 0 {
		return nil, ErrNoDays
	}
	if len(days) > MaxDays {
		return nil, &InvalidInputError{Field: "days", Reason: fmt.Sprintf("at most %d days", MaxDays)}
	}

	out := make([]DayAdvice, len(days))
	normalized := make([]DayForecast, len(days))
	for i, d := range days {
		normalized[i] = Normalize(d, units)
		items, err := Advise(normalized[i], persona)
		if err != nil {
			var ie *InvalidInputError
			if errors.As(err, &ie) {
				ie.Field = fmt.Sprintf("days[%d].%s", i, ie.Field)
			}
			return nil, err
		}
		out[i] = DayAdvice{Date: d.Date, Items: items}
	}
	metrics.AdvisedDays.WithLabelValues(personaLabel(persona)).Add(float64(len(days)))

	if s.refiner == nil {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range out {
		g.Go(func() error {
			items := append([]string(nil), out[i].Items...)
			notes, err := s.refiner.RefineNotes(gctx, normalized[i], persona, items)
			if err != nil {
				s.logger.Warn("refine notes", zap.String("date", out[i].Date), zap.Error(err))
				return nil
			}
			out[i].Notes = notes
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func personaLabel(p Persona) string {
	if p == PersonaNone {
		return "none"
	}
	return string(p)
}
