package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

const personalizedReason = "Similar to items you have ordered before"

// favoriteWeights sums ordered quantity per item. Lines with a non-positive
// quantity are ignored. The weight only decides which items form the
// favorites set.
func favoriteWeights(orders []domain.Order) map[uint64]int {
	weights := make(map[uint64]int)
	for _, o := range orders {
		for _, line := range o.Lines {
			if line.Quantity <= 0 {
				continue
			}
			weights[line.MenuItemID] += line.Quantity
		}
	}
	return weights
}

func sortedIDs(set map[uint64]int) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// rankBySimilarity scores every candidate not in exclude by its best cosine
// against the favorites, keeps those strictly above minSim, and returns the
// top limit by score desc then id asc.
func rankBySimilarity(
	favorites []FeatureVector,
	candidates []domain.MenuItem,
	exclude map[uint64]int,
	minSim float64,
	limit int,
) []domain.RecommendationCandidate {
	out := make([]domain.RecommendationCandidate, 0)
	if len(favorites) == 0 || limit <= 0 {
		return out
	}

	for _, item := range candidates {
		if _, seen := exclude[item.ID]; seen {
			continue
		}

		vec := EncodeItem(item)
		best := 0.0
		for i := range favorites {
			if sim := CosineSimilarity(favorites[i], vec); sim > best {
				best = sim
			}
		}

		if best > minSim {
			out = append(out, domain.RecommendationCandidate{
				MenuItemID: item.ID,
				Score:      clamp01(best),
				Reason:     personalizedReason,
				SignalType: domain.SignalPersonalized,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MenuItemID < out[j].MenuItemID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Personalized recommends available items that look like what the user has
// ordered before. Users without history get an empty list.
func (s *Service) Personalized(ctx context.Context, userID uint, limit int) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		return []domain.RecommendationCandidate{}, nil
	}

	orders, err := s.orders.ListOrders(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	weights := favoriteWeights(orders)
	if len(weights) == 0 {
		return []domain.RecommendationCandidate{}, nil
	}

	favItems, err := s.catalog.GetItems(ctx, sortedIDs(weights))
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite items: %w", err)
	}
	if len(favItems) == 0 {
		// every ordered item has been removed from the catalog
		return []domain.RecommendationCandidate{}, nil
	}

	favorites := make([]FeatureVector, 0, len(favItems))
	for _, it := range favItems {
		favorites = append(favorites, EncodeItem(it))
	}

	available, err := s.catalog.ListAvailableItems(ctx, domain.CatalogFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list available items: %w", err)
	}

	out := rankBySimilarity(favorites, available, weights, s.cfg.MinSimilarity, limit)

	logger.Debug("recommendation_personalized",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"favorites", len(favorites),
		"available", len(available),
		"returned", len(out),
	)

	return out, nil
}
