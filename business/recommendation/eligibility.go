package recommendation

import (
	"context"
	"fmt"
	"strings"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// EligibilityChecker removes candidates a user must not be shown. It runs on
// the merged slate, so the remaining order is preserved.
type EligibilityChecker interface {
	FilterEligible(ctx context.Context, userID uint, candidates []domain.RecommendationCandidate) ([]domain.RecommendationCandidate, error)
}

// NoopEligibilityChecker allows everything.
type NoopEligibilityChecker struct{}

func (NoopEligibilityChecker) FilterEligible(_ context.Context, _ uint, candidates []domain.RecommendationCandidate) ([]domain.RecommendationCandidate, error) {
	return candidates, nil
}

type PreferenceReader interface {
	Get(ctx context.Context, userID uint) (domain.UserPreferences, error)
}

// PreferenceEligibility drops items whose category or name mentions one of
// the user's allergy labels (case-insensitive substring match). Catalog read
// failures propagate; preference read failures do not.
type PreferenceEligibility struct {
	prefs   PreferenceReader
	catalog CatalogRepository
}

func NewPreferenceEligibility(prefs PreferenceReader, catalog CatalogRepository) *PreferenceEligibility {
	return &PreferenceEligibility{prefs: prefs, catalog: catalog}
}

var _ EligibilityChecker = (*PreferenceEligibility)(nil)

func (p *PreferenceEligibility) FilterEligible(ctx context.Context, userID uint, candidates []domain.RecommendationCandidate) ([]domain.RecommendationCandidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	// preferences are advisory: an outage serves the slate unfiltered
	prefs, err := p.prefs.Get(ctx, userID)
	if err != nil {
		EligibilityFallbacksTotal.Inc()
		logger.Warn("eligibility_preferences_unavailable",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
		return candidates, nil
	}

	allergens := normalizeLabels(prefs.Allergies)
	if len(allergens) == 0 {
		return candidates, nil
	}

	ids := make([]uint64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.MenuItemID)
	}
	items, err := p.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate items: %w", err)
	}
	byID := make(map[uint64]domain.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]domain.RecommendationCandidate, 0, len(candidates))
	for _, c := range candidates {
		it, ok := byID[c.MenuItemID]
		if ok && mentionsAny(it, allergens) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func mentionsAny(item domain.MenuItem, labels []string) bool {
	category := strings.ToLower(item.Category)
	name := strings.ToLower(item.Name)
	for _, l := range labels {
		if strings.Contains(category, l) || strings.Contains(name, l) {
			return true
		}
	}
	return false
}
