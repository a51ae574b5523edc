package recommendation

import (
	"context"
	"fmt"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// The macro thresholds below are rough heuristics. They do not classify food
// groups; a high-fiber dessert still counts as "vegetable-like".

var (
	vegetableAlert = domain.DiversityAlert{
		Kind:       domain.AlertLowVegetable,
		Severity:   domain.SeverityMedium,
		Message:    "You have had few vegetables this week. Add some greens to your plate",
		Categories: []string{"salad", "vegetable"},
	}
	proteinAlert = domain.DiversityAlert{
		Kind:       domain.AlertLowProtein,
		Severity:   domain.SeverityHigh,
		Message:    "Your protein intake this week looks low. Try a protein-rich dish",
		Categories: []string{"chicken", "meat", "fish"},
	}
)

// CountNutrition tallies order lines whose item crossed each threshold.
// Lines count once regardless of quantity; items without nutrition are skipped.
func (c Config) CountNutrition(orders []domain.Order, items map[uint64]domain.MenuItem) domain.NutritionCounts {
	var counts domain.NutritionCounts
	for _, o := range orders {
		for _, line := range o.Lines {
			it, ok := items[line.MenuItemID]
			if !ok || it.Nutrition == nil {
				continue
			}
			n := it.Nutrition
			if n.Fiber > c.VegetableFiberAbove {
				counts.Vegetable++
			}
			if n.Protein > c.ProteinAbove {
				counts.Protein++
			}
			if n.Carbohydrates > c.CarbAbove {
				counts.Carb++
			}
		}
	}
	return counts
}

// AlertsFromCounts never alerts on carbs.
func (c Config) AlertsFromCounts(counts domain.NutritionCounts) []domain.DiversityAlert {
	alerts := make([]domain.DiversityAlert, 0, 2)
	if counts.Vegetable < c.MinVegetableLines {
		alerts = append(alerts, vegetableAlert)
	}
	if counts.Protein < c.MinProteinLines {
		alerts = append(alerts, proteinAlert)
	}
	return alerts
}

// DiversityReport loads the trailing window and returns counts plus alerts.
// No orders in the window yields both alerts.
func (s *Service) DiversityReport(ctx context.Context, userID uint) (domain.DiversityReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.DiversityReport{}, fmt.Errorf("context error: %w", err)
	}

	since := s.now().UTC().Add(-s.cfg.DiversityWindow)
	orders, err := s.orders.ListOrders(ctx, userID, since)
	if err != nil {
		return domain.DiversityReport{}, fmt.Errorf("failed to load recent orders: %w", err)
	}

	ids := make(map[uint64]int)
	for _, o := range orders {
		for _, line := range o.Lines {
			ids[line.MenuItemID]++
		}
	}

	items := make(map[uint64]domain.MenuItem, len(ids))
	if len(ids) > 0 {
		rows, err := s.catalog.GetItems(ctx, sortedIDs(ids))
		if err != nil {
			return domain.DiversityReport{}, fmt.Errorf("failed to load ordered items: %w", err)
		}
		for _, it := range rows {
			items[it.ID] = it
		}
	}

	counts := s.cfg.CountNutrition(orders, items)
	alerts := s.cfg.AlertsFromCounts(counts)

	logger.Debug("recommendation_diversity_report",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"orders", len(orders),
		"vegetable", counts.Vegetable,
		"protein", counts.Protein,
		"carb", counts.Carb,
		"alerts", len(alerts),
	)

	return domain.DiversityReport{
		WindowStart: since,
		Counts:      counts,
		Alerts:      alerts,
	}, nil
}

func (s *Service) DiversityAlerts(ctx context.Context, userID uint) ([]domain.DiversityAlert, error) {
	report, err := s.DiversityReport(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.Alerts, nil
}

// DiversityRecommendations fills up to limit items from each alert's
// categories in alert order, skipping items an earlier alert already produced.
func (s *Service) DiversityRecommendations(ctx context.Context, alerts []domain.DiversityAlert, limit int) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make([]domain.RecommendationCandidate, 0)
	seen := make(map[uint64]struct{})
	for _, alert := range alerts {
		remaining := limit - len(out)
		if remaining <= 0 {
			break
		}

		items, err := s.catalog.ListAvailableItems(ctx, domain.CatalogFilter{
			Categories: alert.Categories,
			Limit:      remaining,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list items for %s alert: %w", alert.Kind, err)
		}

		for _, it := range items {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, domain.RecommendationCandidate{
				MenuItemID: it.ID,
				Score:      s.cfg.DiversityScore,
				Reason:     alert.Message,
				SignalType: domain.SignalDietaryDiversity,
			})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
