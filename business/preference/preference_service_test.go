package preference

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myGreenMenu/domain"
)

// memRepo mimics the column-scoped upsert of the postgres repository.
type memRepo struct {
	rows    map[uint]domain.UserPreferences
	upserts [][]string
	err     error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uint]domain.UserPreferences)}
}

func (m *memRepo) FindByUserID(_ context.Context, userID uint) (domain.UserPreferences, error) {
	if m.err != nil {
		return domain.UserPreferences{}, m.err
	}
	p, ok := m.rows[userID]
	if !ok {
		return domain.UserPreferences{}, domain.ErrPreferencesNotFound
	}
	return p, nil
}

func (m *memRepo) Upsert(_ context.Context, prefs *domain.UserPreferences, columns []string) error {
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, columns)

	cur, ok := m.rows[prefs.UserID]
	if !ok {
		m.rows[prefs.UserID] = *prefs
		return nil
	}
	for _, col := range columns {
		switch col {
		case ColDietaryRestrictions:
			cur.DietaryRestrictions = prefs.DietaryRestrictions
		case ColFavoriteCuisines:
			cur.FavoriteCuisines = prefs.FavoriteCuisines
		case ColSpiceLevel:
			cur.SpiceLevel = prefs.SpiceLevel
		case ColAllergies:
			cur.Allergies = prefs.Allergies
		case ColHealthGoals:
			cur.HealthGoals = prefs.HealthGoals
		}
	}
	m.rows[prefs.UserID] = cur
	return nil
}

func TestUpdate_DropsUnknownFields(t *testing.T) {
	repo := newMemRepo()
	svc := NewPreferenceService(repo)

	prefs, err := svc.Update(context.Background(), 7, map[string]any{
		"spiceLevel": 3,
		"bogusField": "x",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), prefs.UserID)
	assert.Equal(t, 3, prefs.SpiceLevel)
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, []string{ColSpiceLevel}, repo.upserts[0])

	raw, err := json.Marshal(prefs)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bogus")
}

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	repo := newMemRepo()
	svc := NewPreferenceService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, 1, map[string]any{
		"allergies":         []any{"peanut", " shellfish ", "peanut", ""},
		"favorite_cuisines": []string{"thai"},
	})
	require.NoError(t, err)

	prefs, err := svc.Update(ctx, 1, map[string]any{"spice_level": 4.0})
	require.NoError(t, err)

	assert.Equal(t, 4, prefs.SpiceLevel)
	assert.Equal(t, []string{"peanut", "shellfish"}, []string(prefs.Allergies))
	assert.Equal(t, []string{"thai"}, []string(prefs.FavoriteCuisines))
}

func TestUpdate_MalformedValuesDropped(t *testing.T) {
	repo := newMemRepo()
	svc := NewPreferenceService(repo)

	prefs, err := svc.Update(context.Background(), 1, map[string]any{
		"spiceLevel":          "hot",
		"healthGoals":         "lose weight",
		"dietaryRestrictions": []any{"vegan", 42},
		"allergies":           []any{"gluten"},
	})
	require.NoError(t, err)

	assert.Zero(t, prefs.SpiceLevel)
	assert.Empty(t, prefs.HealthGoals)
	assert.Empty(t, prefs.DietaryRestrictions)
	assert.Equal(t, []string{"gluten"}, []string(prefs.Allergies))
	assert.Equal(t, []string{ColAllergies}, repo.upserts[0])
}

func TestUpdate_NothingWritableCreatesDefaults(t *testing.T) {
	repo := newMemRepo()
	svc := NewPreferenceService(repo)

	prefs, err := svc.Update(context.Background(), 5, map[string]any{"theme": "dark"})
	require.NoError(t, err)
	assert.Equal(t, uint(5), prefs.UserID)
	assert.Contains(t, repo.rows, uint(5))

	// an existing record is returned as is
	prefs, err = svc.Update(context.Background(), 5, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, uint(5), prefs.UserID)
	assert.Len(t, repo.upserts, 1)
}

func TestGet_DefaultsForUnknownUser(t *testing.T) {
	svc := NewPreferenceService(newMemRepo())

	prefs, err := svc.Get(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, uint(9), prefs.UserID)
	assert.Zero(t, prefs.SpiceLevel)
	assert.NotNil(t, prefs.Allergies)
	assert.Empty(t, prefs.Allergies)
}

func TestGet_RepositoryError(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("db down")
	svc := NewPreferenceService(repo)

	_, err := svc.Get(context.Background(), 1)
	assert.Error(t, err)

	_, err = svc.Update(context.Background(), 1, map[string]any{"spiceLevel": 1})
	assert.Error(t, err)
}

func TestAsSpiceLevel(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int64(5), 5, true},
		{0.0, 0, true},
		{json.Number("2"), 2, true},
		{2.5, 0, false},
		{6, 0, false},
		{-1, 0, false},
		{"3", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := asSpiceLevel(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}
