package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// SubLimits is how many candidates each signal is asked for.
type SubLimits struct {
	Personalized int
	Weather      int
	Diversity    int
	Trending     int
}

// SplitLimit divides limit between the signals. Every share is at least 1 for
// a positive limit. Weather is zero when no location is known, and its share
// then goes to diversity.
func SplitLimit(limit int, withWeather bool) SubLimits {
	if limit <= 0 {
		return SubLimits{}
	}

	l := SubLimits{
		Personalized: (limit + 1) / 2,
		Trending:     max(1, limit/4),
	}
	if withWeather {
		l.Weather = max(1, limit/4)
	}
	l.Diversity = max(1, limit-l.Personalized-l.Weather)
	return l
}

func (l SubLimits) asMap() map[domain.SignalType]int {
	return map[domain.SignalType]int{
		domain.SignalPersonalized:     l.Personalized,
		domain.SignalWeatherBased:     l.Weather,
		domain.SignalDietaryDiversity: l.Diversity,
		domain.SignalTrending:         l.Trending,
	}
}

// MergeCandidates concatenates groups in the given order and keeps only the
// first occurrence of each item. It reports how many duplicates were dropped.
func MergeCandidates(groups ...[]domain.RecommendationCandidate) ([]domain.RecommendationCandidate, int) {
	total := 0
	for _, g := range groups {
		total += len(g)
	}

	out := make([]domain.RecommendationCandidate, 0, total)
	seen := make(map[uint64]struct{}, total)
	for _, g := range groups {
		for _, c := range g {
			if _, dup := seen[c.MenuItemID]; dup {
				continue
			}
			seen[c.MenuItemID] = struct{}{}
			out = append(out, c)
		}
	}
	return out, total - len(out)
}

// signalSet is the raw per-signal output of one aggregation run.
type signalSet struct {
	limits       SubLimits
	personalized []domain.RecommendationCandidate
	weather      []domain.RecommendationCandidate
	diversity    []domain.RecommendationCandidate
	trending     []domain.RecommendationCandidate
	alerts       []domain.DiversityAlert
	reading      *domain.WeatherReading
}

func (ss *signalSet) byType() map[domain.SignalType][]domain.RecommendationCandidate {
	return map[domain.SignalType][]domain.RecommendationCandidate{
		domain.SignalPersonalized:     ss.personalized,
		domain.SignalWeatherBased:     ss.weather,
		domain.SignalDietaryDiversity: ss.diversity,
		domain.SignalTrending:         ss.trending,
	}
}

func signalFailed(signal domain.SignalType, err error) error {
	SignalFailuresTotal.WithLabelValues(string(signal)).Inc()
	return fmt.Errorf("%s signal failed: %w", signal, err)
}

// gatherSignals runs the recommenders concurrently. They share no state; each
// goroutine writes only its own fields of ss.
func (s *Service) gatherSignals(ctx context.Context, userID uint, location string, limit int) (*signalSet, error) {
	ss := &signalSet{limits: SplitLimit(limit, location != "")}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := s.Personalized(gctx, userID, ss.limits.Personalized)
		if err != nil {
			return signalFailed(domain.SignalPersonalized, err)
		}
		ss.personalized = out
		return nil
	})

	if location != "" {
		g.Go(func() error {
			ss.reading = s.currentWeather(gctx, location)
			out, err := s.weatherForReading(gctx, ss.reading, ss.limits.Weather)
			if err != nil {
				return signalFailed(domain.SignalWeatherBased, err)
			}
			ss.weather = out
			return nil
		})
	}

	g.Go(func() error {
		alerts, err := s.DiversityAlerts(gctx, userID)
		if err != nil {
			return signalFailed(domain.SignalDietaryDiversity, err)
		}
		ss.alerts = alerts
		if len(alerts) == 0 {
			return nil
		}
		out, err := s.DiversityRecommendations(gctx, alerts, ss.limits.Diversity)
		if err != nil {
			return signalFailed(domain.SignalDietaryDiversity, err)
		}
		ss.diversity = out
		return nil
	})

	g.Go(func() error {
		out, err := s.Trending(gctx, ss.limits.Trending)
		if err != nil {
			return signalFailed(domain.SignalTrending, err)
		}
		ss.trending = out
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ss, nil
}

type slate struct {
	final      []domain.RecommendationCandidate
	dropped    int
	ineligible int
}

// buildSlate merges in priority order, applies eligibility, optionally sorts
// by score and truncates to limit.
func (s *Service) buildSlate(ctx context.Context, userID uint, ss *signalSet, limit int) (slate, error) {
	groups := ss.byType()
	ordered := make([][]domain.RecommendationCandidate, 0, len(domain.SignalTypes))
	for _, st := range domain.SignalTypes {
		ordered = append(ordered, groups[st])
	}
	merged, dropped := MergeCandidates(ordered...)

	eligible, err := s.eligChecker.FilterEligible(ctx, userID, merged)
	if err != nil {
		return slate{}, fmt.Errorf("failed to check eligibility: %w", err)
	}

	if s.cfg.SortFinalByScore {
		// equal scores fall back to signal priority, then merge order
		sort.SliceStable(eligible, func(i, j int) bool {
			if eligible[i].Score != eligible[j].Score {
				return eligible[i].Score > eligible[j].Score
			}
			return eligible[i].SignalType.Priority() < eligible[j].SignalType.Priority()
		})
	}

	final := eligible
	if len(final) > limit {
		final = final[:limit]
	}

	return slate{
		final:      final,
		dropped:    dropped,
		ineligible: len(merged) - len(eligible),
	}, nil
}

// Recommend returns up to limit candidates for the user. A zero limit means the
// configured default. location may be empty, which skips the weather signal.
func (s *Service) Recommend(ctx context.Context, userID uint, location string, limit int) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	limit = s.cfg.clampLimit(limit)
	start := time.Now()

	ss, err := s.gatherSignals(ctx, userID, location, limit)
	if err != nil {
		return nil, err
	}

	sl, err := s.buildSlate(ctx, userID, ss, limit)
	if err != nil {
		return nil, err
	}

	for _, c := range sl.final {
		RecommendedCandidatesTotal.WithLabelValues(string(c.SignalType)).Inc()
	}

	logger.Info("recommendation_recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"has_location", location != "",
		"limit", limit,
		"personalized", len(ss.personalized),
		"weather", len(ss.weather),
		"diversity", len(ss.diversity),
		"trending", len(ss.trending),
		"dropped_duplicates", sl.dropped,
		"ineligible", sl.ineligible,
		"returned", len(sl.final),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return sl.final, nil
}
