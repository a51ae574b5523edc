package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

var _ recommendation.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	return nil
}

// ListAvailableItems matches categories case-insensitively and returns items
// in id order.
func (r *CatalogRepository) ListAvailableItems(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Where("is_available = ?", true)

	if len(filter.Categories) > 0 {
		cats := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			cats = append(cats, strings.ToLower(c))
		}
		q = q.Where("LOWER(category) IN ?", cats)
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", filter.ExcludeIDs)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var items []domain.MenuItem
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list available menu items: %w", err)
	}

	return items, nil
}

func (r *CatalogRepository) GetItem(ctx context.Context, id uint64) (domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.MenuItem{}, fmt.Errorf("context error: %w", err)
	}

	var item domain.MenuItem
	err := r.DB.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MenuItem{}, domain.ErrItemNotFound
		}
		return domain.MenuItem{}, fmt.Errorf("failed to find menu item: %w", err)
	}

	return item, nil
}

// GetItems ignores ids that no longer exist, available or not.
func (r *CatalogRepository) GetItems(ctx context.Context, ids []uint64) ([]domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.MenuItem{}, nil
	}

	var items []domain.MenuItem
	err := r.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find menu items: %w", err)
	}

	return items, nil
}
