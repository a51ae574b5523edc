package recommendation

import (
	"context"
	"fmt"
	"sort"

	"myGreenMenu/domain"
)

const trendingReason = "One of the most ordered items this week"

// Trending is the same for every user within a window.
func (s *Service) Trending(ctx context.Context, limit int) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make([]domain.RecommendationCandidate, 0)
	if limit <= 0 {
		return out, nil
	}

	// over-fetch so removed or unavailable items don't starve the list
	candidateLimit := limit * 3

	since := s.now().UTC().Add(-s.cfg.TrendingWindow)
	rows, err := s.orders.AggregateItemQuantities(ctx, since, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order quantities: %w", err)
	}
	if len(rows) == 0 {
		return out, nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].MenuItemID < rows[j].MenuItemID
	})

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.MenuItemID)
	}
	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trending items: %w", err)
	}
	byID := make(map[uint64]domain.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	for _, r := range rows {
		it, ok := byID[r.MenuItemID]
		if !ok || !it.IsAvailable {
			continue
		}
		out = append(out, domain.RecommendationCandidate{
			MenuItemID: it.ID,
			Score:      s.cfg.TrendingScore,
			Reason:     trendingReason,
			SignalType: domain.SignalTrending,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
