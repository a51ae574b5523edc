package recommendation

import (
	"context"
	"fmt"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// DebugRecommend runs the same pipeline as Recommend and returns each signal's
// raw output, the sub-limits used and the diversity alerts next to the slate.
func (s *Service) DebugRecommend(ctx context.Context, userID uint, location string, limit int) (*domain.RecommendationDebug, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	limit = s.cfg.clampLimit(limit)

	logger.Debug("recommendation_debug_recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"location", location,
		"limit", limit,
	)

	ss, err := s.gatherSignals(ctx, userID, location, limit)
	if err != nil {
		return nil, err
	}

	sl, err := s.buildSlate(ctx, userID, ss, limit)
	if err != nil {
		return nil, err
	}

	return &domain.RecommendationDebug{
		Limits:     ss.limits.asMap(),
		Signals:    ss.byType(),
		Alerts:     ss.alerts,
		Weather:    ss.reading,
		Dropped:    sl.dropped,
		Ineligible: sl.ineligible,
		Final:      sl.final,
	}, nil
}
