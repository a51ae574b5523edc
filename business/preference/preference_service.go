package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// PreferenceRepository contract interface
type PreferenceRepository interface {
	// FindByUserID returns domain.ErrPreferencesNotFound when the user has none.
	FindByUserID(ctx context.Context, userID uint) (domain.UserPreferences, error)
	// Upsert inserts prefs, or on conflict overwrites only the given columns.
	Upsert(ctx context.Context, prefs *domain.UserPreferences, columns []string) error
}

type preferenceService struct {
	prefRepo PreferenceRepository
}

func NewPreferenceService(prefRepo PreferenceRepository) *preferenceService {
	return &preferenceService{prefRepo: prefRepo}
}

const (
	ColDietaryRestrictions = "dietary_restrictions"
	ColFavoriteCuisines    = "favorite_cuisines"
	ColSpiceLevel          = "spice_level"
	ColAllergies           = "allergies"
	ColHealthGoals         = "health_goals"

	MinSpiceLevel = 0
	MaxSpiceLevel = 5
)

// fieldAliases maps every accepted payload key to its column. Anything else
// is dropped.
var fieldAliases = map[string]string{
	ColDietaryRestrictions: ColDietaryRestrictions,
	"dietaryRestrictions":  ColDietaryRestrictions,
	ColFavoriteCuisines:    ColFavoriteCuisines,
	"favoriteCuisines":     ColFavoriteCuisines,
	ColSpiceLevel:          ColSpiceLevel,
	"spiceLevel":           ColSpiceLevel,
	ColAllergies:           ColAllergies,
	ColHealthGoals:         ColHealthGoals,
	"healthGoals":          ColHealthGoals,
}

func defaults(userID uint) domain.UserPreferences {
	return domain.UserPreferences{
		UserID:              userID,
		DietaryRestrictions: datatypes.JSONSlice[string]{},
		FavoriteCuisines:    datatypes.JSONSlice[string]{},
		Allergies:           datatypes.JSONSlice[string]{},
		HealthGoals:         datatypes.JSONSlice[string]{},
	}
}

// Get returns the stored preferences, or defaults when the user has none.
func (s *preferenceService) Get(ctx context.Context, userID uint) (domain.UserPreferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("context error: %w", err)
	}

	prefs, err := s.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		return defaults(userID), nil
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

// Update writes the allow-listed fields present in partial and leaves the
// rest untouched. Unknown keys and malformed values are dropped without error.
func (s *preferenceService) Update(ctx context.Context, userID uint, partial map[string]any) (domain.UserPreferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("context error: %w", err)
	}

	prefs := defaults(userID)
	columns, dropped := applyPartial(&prefs, partial)

	if len(dropped) > 0 {
		logger.Debug("preference_fields_dropped",
			"user_id", userID,
			"fields", dropped,
		)
	}

	if len(columns) == 0 {
		// nothing writable; still make sure the user has a record
		current, err := s.prefRepo.FindByUserID(ctx, userID)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, domain.ErrPreferencesNotFound) {
			return domain.UserPreferences{}, fmt.Errorf("failed to get preferences: %w", err)
		}
	}

	if err := s.prefRepo.Upsert(ctx, &prefs, columns); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to update preferences: %w", err)
	}

	saved, err := s.prefRepo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to reload preferences: %w", err)
	}

	logger.Info("preference_updated",
		"user_id", userID,
		"columns", columns,
	)
	return saved, nil
}

// applyPartial copies valid allow-listed values from partial into prefs and
// returns the touched columns (sorted) and the dropped keys.
func applyPartial(prefs *domain.UserPreferences, partial map[string]any) (columns []string, dropped []string) {
	touched := make(map[string]struct{})
	for key, raw := range partial {
		col, ok := fieldAliases[key]
		if !ok {
			dropped = append(dropped, key)
			continue
		}

		if col == ColSpiceLevel {
			level, ok := asSpiceLevel(raw)
			if !ok {
				dropped = append(dropped, key)
				continue
			}
			prefs.SpiceLevel = level
			touched[col] = struct{}{}
			continue
		}

		labels, ok := asLabels(raw)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		switch col {
		case ColDietaryRestrictions:
			prefs.DietaryRestrictions = labels
		case ColFavoriteCuisines:
			prefs.FavoriteCuisines = labels
		case ColAllergies:
			prefs.Allergies = labels
		case ColHealthGoals:
			prefs.HealthGoals = labels
		}
		touched[col] = struct{}{}
	}

	for col := range touched {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	sort.Strings(dropped)
	return columns, dropped
}

// asLabels accepts a list of strings and normalizes it to a sorted set of
// trimmed, non-empty labels. A list holding anything but strings is malformed.
func asLabels(raw any) (datatypes.JSONSlice[string], bool) {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		items = make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
	default:
		return nil, false
	}

	seen := make(map[string]struct{}, len(items))
	out := make(datatypes.JSONSlice[string], 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, true
}

// asSpiceLevel accepts whole numbers in [MinSpiceLevel, MaxSpiceLevel].
func asSpiceLevel(raw any) (int, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}

	if math.IsNaN(f) || f != math.Trunc(f) || f < MinSpiceLevel || f > MaxSpiceLevel {
		return 0, false
	}
	return int(f), true
}
