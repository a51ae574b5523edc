package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

type SaveRequest struct {
	UserID         uint
	MenuItemID     uint64
	SignalType     domain.SignalType
	Score          float64
	Reason         string
	WeatherContext *domain.WeatherContext
}

// Save appends a new record. Saving the same item twice yields two active
// records; nothing is overwritten.
func (s *Service) Save(ctx context.Context, req SaveRequest) (domain.RecommendationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationRecord{}, fmt.Errorf("context error: %w", err)
	}
	if !req.SignalType.Valid() {
		return domain.RecommendationRecord{}, domain.ErrInvalidSignalType
	}
	if math.IsNaN(req.Score) || req.Score < 0 || req.Score > 1 {
		return domain.RecommendationRecord{}, domain.ErrInvalidScore
	}

	now := s.now().UTC()
	rec := domain.RecommendationRecord{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		MenuItemID:     req.MenuItemID,
		SignalType:     req.SignalType,
		Score:          req.Score,
		Reason:         req.Reason,
		WeatherContext: req.WeatherContext,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.RecordTTL),
		IsActive:       true,
	}

	if err := s.records.Create(ctx, &rec); err != nil {
		return domain.RecommendationRecord{}, fmt.Errorf("failed to save recommendation: %w", err)
	}

	if err := s.InvalidateSaved(ctx, req.UserID); err != nil {
		logger.Warn("recommendation_cache_invalidate_failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", req.UserID,
			"error", err,
		)
	}

	SavedRecordsTotal.WithLabelValues(string(rec.SignalType)).Inc()
	logger.Debug("recommendation_saved",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", rec.UserID,
		"record_id", rec.ID,
		"menu_item_id", rec.MenuItemID,
		"signal_type", rec.SignalType,
	)

	return rec, nil
}

// retrievable keeps active, unexpired records ordered by score desc, newest
// first on ties.
func retrievable(records []domain.RecommendationRecord, now time.Time) []domain.RecommendationRecord {
	out := make([]domain.RecommendationRecord, 0, len(records))
	for _, r := range records {
		if r.Retrievable(now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GetSaved returns the user's active records. Cached lists are re-filtered
// against the current time, so a record never outlives its expiry.
func (s *Service) GetSaved(ctx context.Context, userID uint) ([]domain.RecommendationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	now := s.now().UTC()

	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, ok, err := s.cache.GetSaved(ctx, userID)
		switch {
		case err != nil:
			logger.Warn("recommendation_cache_read_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		case ok:
			return retrievable(cached, now), nil
		}

		// read before listing so a concurrent Save voids this fill
		if version, err = s.cache.Version(ctx, userID); err != nil {
			logger.Warn("recommendation_cache_version_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		} else {
			cacheable = true
		}
	}

	rows, err := s.records.ListActive(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved recommendations: %w", err)
	}
	out := retrievable(rows, now)

	if cacheable {
		if err := s.cache.SetSaved(ctx, userID, version, out, s.cfg.SavedCacheTTL); err != nil {
			logger.Warn("recommendation_cache_write_failed",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"error", err,
			)
		}
	}

	return out, nil
}

// Deactivate retires one of the user's saved records and drops the user's
// cached list.
func (s *Service) Deactivate(ctx context.Context, userID uint, recordID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.records.Deactivate(ctx, userID, recordID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to deactivate recommendation: %w", err)
	}

	if err := s.InvalidateSaved(ctx, userID); err != nil {
		logger.Warn("recommendation_cache_invalidate_failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	}

	logger.Info("recommendation_deactivated",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"record_id", recordID,
	)
	return nil
}

// InvalidateSaved drops the user's cached saved list. Anything that changes
// is_active outside Deactivate must call it, or the old list is served until
// SavedCacheTTL runs out.
func (s *Service) InvalidateSaved(ctx context.Context, userID uint) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate saved recommendations: %w", err)
	}
	return nil
}
