package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendedCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_served_total",
			Help: "Candidates returned in final recommendation slates, by signal type.",
		},
		[]string{"signal_type"},
	)

	SignalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_signal_failures_total",
			Help: "Recommender errors that aborted an aggregation, by signal type.",
		},
		[]string{"signal_type"},
	)

	WeatherLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_weather_lookups_total",
			Help: "Weather provider lookups by outcome (ok, error, malformed).",
		},
		[]string{"outcome"},
	)

	EligibilityFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_eligibility_fallbacks_total",
			Help: "Slates served without allergy filtering because preferences could not be read.",
		},
	)

	SavedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_records_saved_total",
			Help: "Recommendation records persisted, by signal type.",
		},
		[]string{"signal_type"},
	)
)

func init() {
	prometheus.MustRegister(
		RecommendedCandidatesTotal,
		SignalFailuresTotal,
		WeatherLookupsTotal,
		SavedRecordsTotal,
		EligibilityFallbacksTotal,
	)
}
