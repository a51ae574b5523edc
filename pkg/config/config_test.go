package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "")
	t.Setenv("RECO_DEFAULT_LIMIT", "")
	t.Setenv("RECO_MAX_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Recommendation.DefaultLimit)
	assert.Equal(t, 100, cfg.Recommendation.MaxLimit)
	assert.Equal(t, 24*time.Hour, cfg.Recommendation.RecordTTL)
	assert.InDelta(t, 0.3, cfg.Recommendation.MinSimilarity, 1e-9)
	assert.False(t, cfg.Recommendation.SortFinalByScore)
	assert.Equal(t, 0, cfg.Redis.RedisDB)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.ReadTimeout)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	assert.EqualError(t, err, "missing jwt secret")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("RECO_SORT_FINAL_BY_SCORE", "true")
	t.Setenv("WEATHER_TIMEOUT", "750ms")
	t.Setenv("RECO_MIN_SIMILARITY", "not-a-number")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("REDIS_DIAL_TIMEOUT", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Recommendation.SortFinalByScore)
	assert.Equal(t, 750*time.Millisecond, cfg.Weather.Timeout)
	assert.InDelta(t, 0.3, cfg.Recommendation.MinSimilarity, 1e-9)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, time.Second, cfg.Redis.DialTimeout)
}

func TestLoad_InvalidLimits(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("RECO_DEFAULT_LIMIT", "50")
	t.Setenv("RECO_MAX_LIMIT", "10")

	_, err := Load()
	assert.Error(t, err)
}
