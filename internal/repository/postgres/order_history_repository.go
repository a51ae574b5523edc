package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
)

type OrderHistoryRepository struct {
	DB *gorm.DB
}

func NewOrderHistoryRepository(db *gorm.DB) *OrderHistoryRepository {
	return &OrderHistoryRepository{DB: db}
}

var _ recommendation.OrderHistoryRepository = (*OrderHistoryRepository)(nil)

// Create stores the order together with its lines.
func (r *OrderHistoryRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderHistoryRepository) ListOrders(ctx context.Context, userID uint, since time.Time) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}

	var orders []domain.Order
	if err := q.Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (r *OrderHistoryRepository) AggregateItemQuantities(ctx context.Context, since time.Time, limit int) ([]domain.ItemQuantity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Table("order_lines AS ol").
		Select("ol.menu_item_id AS menu_item_id, SUM(ol.quantity) AS total").
		Joins("JOIN orders o ON o.id = ol.order_id").
		Where("o.created_at >= ?", since.UTC()).
		Group("ol.menu_item_id").
		Order("total DESC, ol.menu_item_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []domain.ItemQuantity
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate order quantities: %w", err)
	}

	return rows, nil
}
