package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myGreenMenu/domain"
)

func saveReq(userID uint, itemID uint64, score float64) SaveRequest {
	return SaveRequest{
		UserID:     userID,
		MenuItemID: itemID,
		SignalType: domain.SignalTrending,
		Score:      score,
		Reason:     trendingReason,
	}
}

func TestSave_ThenGetSaved(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.IsActive)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), rec.ExpiresAt)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, rec.ID, saved[0].ID)
}

func TestGetSaved_ExcludesExpiredRecords(t *testing.T) {
	records := &fakeRecords{}
	svc := NewService(newFakeCatalog(), &fakeOrders{}, nil, records, nil, nil, DefaultConfig())
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	_, err := svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	records.expire(fixedNow.Add(-time.Second))

	saved, err := svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestGetSaved_CachedRecordsStillExpire(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	_, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	f.svc.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }

	saved, err = f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Equal(t, 1, f.records.listed, "second read should come from cache")
}

func TestGetSaved_OrderedByScore(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	for i, score := range []float64{0.3, 0.9, 0.6} {
		_, err := f.svc.Save(ctx, saveReq(1, uint64(i+1), score))
		require.NoError(t, err)
	}
	_, err := f.svc.Save(ctx, saveReq(2, 99, 1))
	require.NoError(t, err)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, []uint64{2, 3, 1}, []uint64{saved[0].MenuItemID, saved[1].MenuItemID, saved[2].MenuItemID})
}

func TestSave_DuplicatesAllowed(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	a, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)
	b, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSave_InvalidatesCache(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	_, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
	assert.Equal(t, 2, f.records.listed)
}

func TestGetSaved_CacheErrorFallsBackToStore(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.cache.getErr = errBoom
	ctx := context.Background()

	_, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestSave_Validation(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	req := saveReq(1, 42, 0.7)
	req.SignalType = "POPULAR"
	_, err := f.svc.Save(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidSignalType)

	_, err = f.svc.Save(ctx, saveReq(1, 42, 1.5))
	assert.ErrorIs(t, err, domain.ErrInvalidScore)

	assert.Zero(t, f.records.created)
}

func TestSave_PersistenceFailure(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.records.err = errBoom

	_, err := f.svc.Save(context.Background(), saveReq(1, 42, 0.7))
	assert.ErrorIs(t, err, errBoom)

	_, err = f.svc.GetSaved(context.Background(), 1)
	assert.ErrorIs(t, err, errBoom)
}

func TestSave_KeepsWeatherContext(t *testing.T) {
	f := newFixture(DefaultConfig())
	wc := DefaultConfig().WeatherContextFor(domain.WeatherReading{Location: "Depok", Temperature: 10, Condition: "clear"})

	req := saveReq(1, 42, 0.8)
	req.SignalType = domain.SignalWeatherBased
	req.WeatherContext = &wc

	rec, err := f.svc.Save(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rec.WeatherContext)
	assert.Equal(t, "cold", rec.WeatherContext.Bucket)
}

func TestGetSaved_SaveDuringFillIsNotLost(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	f.records.afterList = func() {
		_, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
		require.NoError(t, err)
	}

	// this read started before the save and may miss it
	first, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, first)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, uint64(42), saved[0].MenuItemID)
}

func TestDeactivate_DropsCachedRecord(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, saveReq(1, 43, 0.5))
	require.NoError(t, err)

	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	require.NoError(t, f.svc.Deactivate(ctx, 1, rec.ID))

	saved, err = f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, uint64(43), saved[0].MenuItemID)
}

func TestDeactivate_UnknownRecord(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	rec, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Deactivate(ctx, 1, "missing"), domain.ErrRecordNotFound)
	// another user's record is not reachable
	assert.ErrorIs(t, f.svc.Deactivate(ctx, 2, rec.ID), domain.ErrRecordNotFound)
}

func TestInvalidateSaved_AfterExternalDeactivation(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	_, err := f.svc.Save(ctx, saveReq(1, 42, 0.7))
	require.NoError(t, err)
	saved, err := f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	f.records.deactivateAll()
	require.NoError(t, f.svc.InvalidateSaved(ctx, 1))

	saved, err = f.svc.GetSaved(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, saved)
}
