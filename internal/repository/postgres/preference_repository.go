package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"myGreenMenu/business/preference"
	"myGreenMenu/domain"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

var _ preference.PreferenceRepository = (*PreferenceRepository)(nil)

func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID uint) (domain.UserPreferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("context error: %w", err)
	}

	var prefs domain.UserPreferences
	err := r.DB.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserPreferences{}, domain.ErrPreferencesNotFound
		}
		return domain.UserPreferences{}, fmt.Errorf("failed to find preferences: %w", err)
	}

	return prefs, nil
}

// Upsert inserts prefs when the user has no row yet. Otherwise only columns
// (plus updated_at) are overwritten; an empty list leaves the row alone.
func (r *PreferenceRepository) Upsert(ctx context.Context, prefs *domain.UserPreferences, columns []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
	}
	if len(columns) == 0 {
		onConflict.DoNothing = true
	} else {
		cols := append(append([]string{}, columns...), "updated_at")
		onConflict.DoUpdates = clause.AssignmentColumns(cols)
	}

	if err := r.DB.WithContext(ctx).Clauses(onConflict).Create(prefs).Error; err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}
