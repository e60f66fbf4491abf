// README: Prometheus collectors shared by the request layer, resolver and outfit engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts counts retries issued by the request layer, labelled by caller and reason.
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "packwise",
		Subsystem: "retry",
		Name:      "attempts_total",
		Help:      "Retries issued by the resilient request layer.",
	}, []string{"caller", "reason"})

	// ExtractionAttempts counts extractor invocations per strategy tier.
	ExtractionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "packwise",
		Subsystem: "resolution",
		Name:      "extraction_attempts_total",
		Help:      "Extractor invocations per strategy tier.",
	}, []string{"tier"})

	// Resolutions counts finished resolve calls by outcome (resolved, not_found, invalid).
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "packwise",
		Subsystem: "resolution",
		Name:      "results_total",
		Help:      "Resolve calls by outcome.",
	}, []string{"outcome"})

	// AdvisedDays counts days run through the outfit rule engine, labelled by persona.
	AdvisedDays = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "packwise",
		Subsystem: "outfit",
		Name:      "advised_days_total",
		Help:      "Days evaluated by the outfit rule engine.",
	}, []string{"persona"})
)
