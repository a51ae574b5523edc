package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pobyzaarif/goshortcute"
	"github.com/redis/go-redis/v9"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

// WeatherCache fronts a WeatherProvider. Only successful readings are cached;
// Redis trouble falls through to the provider.
type WeatherCache struct {
	client *redis.Client
	next   recommendation.WeatherProvider
	ttl    time.Duration
}

func NewWeatherCache(client *redis.Client, next recommendation.WeatherProvider, ttl time.Duration) *WeatherCache {
	return &WeatherCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

var _ recommendation.WeatherProvider = (*WeatherCache)(nil)

// key format: "weather:{base64(location)}"; locations are free text
func weatherKey(location string) string {
	normalized := strings.ToLower(strings.TrimSpace(location))
	return "weather:" + goshortcute.StringtoBase64Encode(normalized)
}

func (w *WeatherCache) CurrentWeather(ctx context.Context, location string) (*domain.WeatherReading, error) {
	key := weatherKey(location)

	if reading, err := w.get(ctx, key); err != nil {
		logger.Warn("weather_cache_read_failed", "location", location, "error", err)
	} else if reading != nil {
		return reading, nil
	}

	reading, err := w.next.CurrentWeather(ctx, location)
	if err != nil {
		return nil, err
	}

	if reading != nil {
		if err := w.set(ctx, key, reading); err != nil {
			logger.Warn("weather_cache_write_failed", "location", location, "error", err)
		}
	}
	return reading, nil
}

func (w *WeatherCache) get(ctx context.Context, key string) (*domain.WeatherReading, error) {
	val, err := w.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weather from Redis: %w", err)
	}

	var reading domain.WeatherReading
	if err := json.Unmarshal(val, &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weather reading: %w", err)
	}
	return &reading, nil
}

func (w *WeatherCache) set(ctx context.Context, key string, reading *domain.WeatherReading) error {
	raw, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal weather reading: %w", err)
	}
	if err := w.client.Set(ctx, key, raw, w.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store weather in Redis: %w", err)
	}
	return nil
}
