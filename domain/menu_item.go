package domain

import (
	"time"
)

// CREATE TABLE public.menu_items (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name            TEXT NOT NULL,
//     category        TEXT NOT NULL,
//     price           NUMERIC NOT NULL,
//     quality_score   NUMERIC,
//     nutrition       JSONB,
//     is_available    BOOLEAN DEFAULT TRUE,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type NutritionProfile struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
}

type MenuItem struct {
	ID           uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string            `gorm:"column:name;type:text;not null" json:"name"`
	Category     string            `gorm:"column:category;type:text;not null;index" json:"category"`
	Price        float64           `gorm:"column:price;type:numeric" json:"price"`
	QualityScore *float64          `gorm:"column:quality_score;type:numeric" json:"quality_score,omitempty"`
	Nutrition    *NutritionProfile `gorm:"column:nutrition;serializer:json" json:"nutrition,omitempty"`
	IsAvailable  bool              `gorm:"column:is_available;default:true" json:"is_available"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// CatalogFilter narrows ListAvailableItems. Zero values mean "no constraint".
type CatalogFilter struct {
	Categories []string
	ExcludeIDs []uint64
	Limit      int
}
