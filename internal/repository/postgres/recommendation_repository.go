package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

var _ recommendation.RecommendationRepository = (*RecommendationRepository)(nil)

func (r *RecommendationRepository) Create(ctx context.Context, record *domain.RecommendationRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create recommendation record: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) ListActive(ctx context.Context, userID uint, now time.Time) ([]domain.RecommendationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var records []domain.RecommendationRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now.UTC()).
		Order("score DESC, created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active recommendations: %w", err)
	}

	return records, nil
}

func (r *RecommendationRepository) Deactivate(ctx context.Context, userID uint, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.RecommendationRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate recommendation record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
