// README: Location resolution pipeline; tiered extraction, parallel geocoding, dedup and ranking.
package resolution

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"packwise/internal/metrics"
	"packwise/internal/modules/extraction"
	"packwise/internal/modules/geocode"
)

// maxCandidates is the most candidates geocoded per attempt.
const maxCandidates = 5

// Service resolves free-text destination phrases to coordinates.
type Service struct {
	extractor Extractor
	geocoder  Geocoder
	recorder  Recorder
	cfg       Config
	logger    *zap.Logger
}

// NewService wires the pipeline. recorder may be nil.
func NewService(extractor Extractor, geocoder Geocoder, recorder Recorder, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		geocoder:  geocoder,
		recorder:  recorder,
		cfg:       cfg.normalized(),
		logger:    logger.Named("resolution"),
	}
}

// Resolve runs up to MaxAttempts extraction tiers, stopping at the first
// attempt that yields any geocoded place.
func (s *Service) Resolve(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.Resolutions.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidQuery
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Budget)
	defer cancel()

	var (
		attempt     int
		tried       []string
		seen        = make(map[string]struct{})
		accumulated []geocode.ResolvedPlace
	)

	for attempt < s.cfg.MaxAttempts && len(accumulated) == 0 {
		if ctx.Err() != nil {
			break
		}
		attempt++
		prompt := extraction.BuildPrompt(attempt, query, tried)
		metrics.ExtractionAttempts.WithLabelValues(prompt.Tier.String()).Inc()

		candidates := s.extract(ctx, prompt, query)
		for _, c := range candidates {
			if _, dup := seen[c.Name]; dup {
				continue
			}
			seen[c.Name] = struct{}{}
			tried = append(tried, c.Name)
		}

		accumulated = append(accumulated, s.geocodeAll(ctx, candidates)...)
		s.logger.Debug("attempt finished",
			zap.Int("attempt", attempt),
			zap.String("tier", prompt.Tier.String()),
			zap.Int("candidates", len(candidates)),
			zap.Int("places", len(accumulated)),
		)
	}

	if len(accumulated) == 0 {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		nf := &NotFoundError{
			Query:       query,
			Tried:       tried,
			Suggestions: suggestionsFor(tried),
			Cause:       ctx.Err(),
		}
		s.logger.Info("resolution exhausted",
			zap.String("query", query),
			zap.Int("attempts", attempt),
			zap.Strings("tried", tried),
			zap.Error(nf.Cause),
		)
		return nil, nf
	}

	ranked := dedupe(accumulated)
	sortByConfidence(ranked)

	alternates := ranked[1:]
	if len(alternates) > MaxAlternates {
		alternates = alternates[:MaxAlternates]
	}
	res := &Result{
		Query:      query,
		Place:      ranked[0],
		Candidates: append([]geocode.ResolvedPlace{}, alternates...),
		Attempts:   attempt,
		Tried:      tried,
	}
	metrics.Resolutions.WithLabelValues("resolved").Inc()

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, res); err != nil {
			s.logger.Warn("record resolution", zap.String("query", query), zap.Error(err))
		}
	}
	return res, nil
}

// extract never fails: errors and empty output fall back to the first token
// of the query.
func (s *Service) extract(ctx context.Context, prompt extraction.Prompt, query string) []geocode.Candidate {
	raw, err := s.extractor.Extract(ctx, prompt.Instructions, prompt.Context)
	if err != nil {
		s.logger.Warn("extractor failed", zap.String("tier", prompt.Tier.String()), zap.Error(err))
	}

	usable := make([]geocode.Candidate, 0, len(raw))
	for _, c := range raw {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		usable = append(usable, c)
		if len(usable) == maxCandidates {
			break
		}
	}
	if len(usable) > 0 {
		return usable
	}
	if fb, ok := fallbackCandidate(query); ok {
		return []geocode.Candidate{fb}
	}
	return nil
}

// geocodeAll looks candidates up concurrently and merges in candidate order
// once every lookup has returned.
func (s *Service) geocodeAll(ctx context.Context, candidates []geocode.Candidate) []geocode.ResolvedPlace {
	results := make([][]geocode.ResolvedPlace, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = s.geocoder.Geocode(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	var merged []geocode.ResolvedPlace
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

func fallbackCandidate(query string) (geocode.Candidate, bool) {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return geocode.Candidate{}, false
	}
	return geocode.Candidate{Name: fields[0]}, true
}
