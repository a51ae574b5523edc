package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myGreenMenu/domain"
)

func nutritious(id uint64, name, category string, n domain.NutritionProfile) domain.MenuItem {
	it := menuItem(id, name, category, 10)
	it.Nutrition = &n
	return it
}

func TestDiversityAlerts_NoOrdersYieldsBothAlerts(t *testing.T) {
	f := newFixture(DefaultConfig())

	alerts, err := f.svc.DiversityAlerts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, domain.AlertLowVegetable, alerts[0].Kind)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)
	assert.Equal(t, domain.AlertLowProtein, alerts[1].Kind)
	assert.Equal(t, domain.SeverityHigh, alerts[1].Severity)
}

func TestDiversityReport_CountsWindowOnly(t *testing.T) {
	f := newFixture(DefaultConfig(),
		nutritious(1, "Kale Bowl", "salad", domain.NutritionProfile{Fiber: 6, Protein: 4, Carbohydrates: 12}),
		nutritious(2, "Chicken Rice", "chicken", domain.NutritionProfile{Fiber: 1, Protein: 30, Carbohydrates: 55}),
		menuItem(3, "Mystery", "misc", 10),
	)
	recent := fixedNow.Add(-24 * time.Hour)
	old := fixedNow.Add(-8 * 24 * time.Hour)
	f.orders.orders = []domain.Order{
		order(1, recent, line(1, 5), line(2, 1), line(3, 1)),
		order(1, recent, line(1, 1), line(2, 1)),
		order(1, recent, line(1, 1)),
		order(1, old, line(2, 1)),
		order(2, recent, line(2, 1)),
	}

	report, err := f.svc.DiversityReport(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.NutritionCounts{Vegetable: 3, Protein: 2, Carb: 2}, report.Counts)
	assert.Empty(t, report.Alerts)
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), report.WindowStart)
}

func TestAlertsFromCounts_CarbsNeverAlert(t *testing.T) {
	alerts := DefaultConfig().AlertsFromCounts(domain.NutritionCounts{Vegetable: 5, Protein: 5, Carb: 0})
	assert.Empty(t, alerts)

	alerts = DefaultConfig().AlertsFromCounts(domain.NutritionCounts{Vegetable: 2, Protein: 2})
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertLowVegetable, alerts[0].Kind)
}

func TestDiversityRecommendations(t *testing.T) {
	f := newFixture(DefaultConfig(),
		menuItem(1, "Caesar Salad", "salad", 9),
		menuItem(2, "Grilled Veg", "vegetable", 9),
		menuItem(3, "Roast Chicken", "chicken", 15),
		menuItem(4, "Salmon", "fish", 20),
		menuItem(5, "Brownie", "dessert", 5),
	)
	alerts := DefaultConfig().AlertsFromCounts(domain.NutritionCounts{})

	got, err := f.svc.DiversityRecommendations(context.Background(), alerts, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, uint64(1), got[0].MenuItemID)
	assert.Equal(t, uint64(2), got[1].MenuItemID)
	assert.Equal(t, uint64(3), got[2].MenuItemID)
	assert.Equal(t, alerts[0].Message, got[0].Reason)
	assert.Equal(t, alerts[1].Message, got[2].Reason)
	for _, c := range got {
		assert.Equal(t, 0.9, c.Score)
		assert.Equal(t, domain.SignalDietaryDiversity, c.SignalType)
	}
}

func TestDiversityRecommendations_NoAlerts(t *testing.T) {
	f := newFixture(DefaultConfig(), menuItem(1, "Caesar Salad", "salad", 9))

	got, err := f.svc.DiversityRecommendations(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
