package domain

import "time"

type SignalType string

const (
	SignalPersonalized     SignalType = "PERSONALIZED"
	SignalWeatherBased     SignalType = "WEATHER_BASED"
	SignalDietaryDiversity SignalType = "DIETARY_DIVERSITY"
	SignalTrending         SignalType = "TRENDING"
)

// SignalTypes lists every signal in aggregation priority order.
var SignalTypes = []SignalType{
	SignalPersonalized,
	SignalWeatherBased,
	SignalDietaryDiversity,
	SignalTrending,
}

func (s SignalType) Valid() bool {
	switch s {
	case SignalPersonalized, SignalWeatherBased, SignalDietaryDiversity, SignalTrending:
		return true
	default:
		return false
	}
}

// Priority is the dedup rank of the signal; lower wins.
func (s SignalType) Priority() int {
	switch s {
	case SignalPersonalized:
		return 0
	case SignalWeatherBased:
		return 1
	case SignalDietaryDiversity:
		return 2
	case SignalTrending:
		return 3
	default:
		return len(SignalTypes)
	}
}

type RecommendationCandidate struct {
	MenuItemID uint64     `json:"menu_item_id"`
	Score      float64    `json:"score"`
	Reason     string     `json:"reason"`
	SignalType SignalType `json:"signal_type"`
}

// CREATE TABLE public.recommendation_records (
//     id              UUID PRIMARY KEY,
//     user_id         BIGINT NOT NULL,
//     menu_item_id    BIGINT NOT NULL,
//     signal_type     TEXT NOT NULL,
//     score           NUMERIC NOT NULL,
//     reason          TEXT,
//     weather_context JSONB,
//     created_at      TIMESTAMPTZ NOT NULL,
//     expires_at      TIMESTAMPTZ NOT NULL,
//     is_active       BOOLEAN DEFAULT TRUE
// );

type RecommendationRecord struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	UserID         uint            `gorm:"column:user_id;not null;index:idx_reco_user_active" json:"user_id"`
	MenuItemID     uint64          `gorm:"column:menu_item_id;not null" json:"menu_item_id"`
	SignalType     SignalType      `gorm:"column:signal_type;type:text;not null" json:"signal_type"`
	Score          float64         `gorm:"column:score;not null" json:"score"`
	Reason         string          `gorm:"column:reason;type:text" json:"reason"`
	WeatherContext *WeatherContext `gorm:"column:weather_context;serializer:json" json:"weather_context,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	ExpiresAt      time.Time       `gorm:"column:expires_at;not null;index:idx_reco_user_active" json:"expires_at"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (RecommendationRecord) TableName() string {
	return "recommendation_records"
}

// Retrievable reports whether the record may still be served at now.
func (r RecommendationRecord) Retrievable(now time.Time) bool {
	return r.IsActive && now.Before(r.ExpiresAt)
}

type DiversityAlertKind string

const (
	AlertLowVegetable DiversityAlertKind = "vegetable"
	AlertLowProtein   DiversityAlertKind = "protein"
)

type AlertSeverity string

const (
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

type DiversityAlert struct {
	Kind       DiversityAlertKind `json:"kind"`
	Severity   AlertSeverity      `json:"severity"`
	Message    string             `json:"message"`
	Categories []string           `json:"categories"`
}

// NutritionCounts tallies order lines that crossed each macro threshold.
type NutritionCounts struct {
	Vegetable int `json:"vegetable"`
	Protein   int `json:"protein"`
	Carb      int `json:"carb"`
}

type DiversityReport struct {
	WindowStart time.Time        `json:"window_start"`
	Counts      NutritionCounts  `json:"counts"`
	Alerts      []DiversityAlert `json:"alerts"`
}

// RecommendationDebug exposes each signal's raw output next to the final slate.
type RecommendationDebug struct {
	Limits     map[SignalType]int                       `json:"limits"`
	Signals    map[SignalType][]RecommendationCandidate `json:"signals"`
	Alerts     []DiversityAlert                         `json:"alerts"`
	Weather    *WeatherReading                          `json:"weather,omitempty"`
	Dropped    int                                      `json:"dropped_duplicates"`
	Ineligible int                                      `json:"ineligible"`
	Final      []RecommendationCandidate                `json:"final"`
}
