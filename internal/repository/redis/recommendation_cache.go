package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
)

// versionTTL bounds how long an idle user's version counter lingers.
const versionTTL = 7 * 24 * time.Hour

var errStaleVersion = errors.New("saved cache version changed")

// RecommendationCache keeps each user's active saved records for a short TTL.
type RecommendationCache struct {
	client *redis.Client
}

func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{
		client: client,
	}
}

var _ recommendation.SavedCache = (*RecommendationCache)(nil)

// key format: "reco:saved:user:{user_id}"
func savedKey(userID uint) string {
	return fmt.Sprintf("reco:saved:user:%d", userID)
}

// key format: "reco:saved:ver:user:{user_id}"
func versionKey(userID uint) string {
	return fmt.Sprintf("reco:saved:ver:user:%d", userID)
}

func (r *RecommendationCache) GetSaved(ctx context.Context, userID uint) ([]domain.RecommendationRecord, bool, error) {
	val, err := r.client.Get(ctx, savedKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get saved recommendations from Redis: %w", err)
	}

	var records []domain.RecommendationRecord
	if err := json.Unmarshal(val, &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal saved recommendations: %w", err)
	}

	return records, true, nil
}

// Version returns 0 for users that were never invalidated.
func (r *RecommendationCache) Version(ctx context.Context, userID uint) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to get saved cache version from Redis: %w", err)
	}
	return v, nil
}

// SetSaved writes under WATCH on the version key. A version that moved on,
// before or during the transaction, skips the write without error.
func (r *RecommendationCache) SetSaved(ctx context.Context, userID uint, version int64, records []domain.RecommendationRecord, ttl time.Duration) error {
	if records == nil {
		records = []domain.RecommendationRecord{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal saved recommendations: %w", err)
	}

	verKey := versionKey(userID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, savedKey(userID), raw, ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil, errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to store saved recommendations in Redis: %w", err)
	}
}

// Invalidate bumps the version and deletes the cached list in one transaction.
func (r *RecommendationCache) Invalidate(ctx context.Context, userID uint) error {
	verKey := versionKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, savedKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate saved recommendations: %w", err)
	}
	return nil
}
