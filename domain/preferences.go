package domain

import (
	"time"

	"gorm.io/datatypes"
)

type UserPreferences struct {
	UserID              uint                        `gorm:"column:user_id;primaryKey" json:"user_id"`
	DietaryRestrictions datatypes.JSONSlice[string] `gorm:"column:dietary_restrictions" json:"dietary_restrictions"`
	FavoriteCuisines    datatypes.JSONSlice[string] `gorm:"column:favorite_cuisines" json:"favorite_cuisines"`
	SpiceLevel          int                         `gorm:"column:spice_level;not null;default:0" json:"spice_level"`
	Allergies           datatypes.JSONSlice[string] `gorm:"column:allergies" json:"allergies"`
	HealthGoals         datatypes.JSONSlice[string] `gorm:"column:health_goals" json:"health_goals"`
	CreatedAt           time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
