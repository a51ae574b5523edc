package recommendation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

type WeatherBucket string

const (
	BucketNone WeatherBucket = ""
	BucketCold WeatherBucket = "cold"
	BucketHot  WeatherBucket = "hot"
	BucketRain WeatherBucket = "rain"
)

var (
	warmDishes  = []string{"soup", "stew", "grilled", "fried"}
	lightDishes = []string{"salad", "juice", "cold-dessert"}

	bucketCategories = map[WeatherBucket][]string{
		BucketCold: warmDishes,
		BucketHot:  lightDishes,
		BucketRain: warmDishes,
	}

	bucketReasons = map[WeatherBucket]string{
		BucketCold: "Cold weather today, try something warm and comforting",
		BucketHot:  "Hot weather today, try something light and cold",
		BucketRain: "Rainy weather, perfect for a warm dish indoors",
	}
)

// ClassifyWeather buckets a reading. Temperature wins over condition; rain only
// applies in the mid-range.
func (c Config) ClassifyWeather(r domain.WeatherReading) WeatherBucket {
	switch {
	case r.Temperature < c.ColdBelow:
		return BucketCold
	case r.Temperature > c.HotAbove:
		return BucketHot
	case strings.Contains(strings.ToLower(r.Condition), "rain"):
		return BucketRain
	default:
		return BucketNone
	}
}

func validReading(r *domain.WeatherReading) bool {
	if r == nil {
		return false
	}
	return !math.IsNaN(r.Temperature) && !math.IsInf(r.Temperature, 0)
}

// currentWeather never returns an error; a missing provider, a provider error
// or a malformed reading all yield nil.
func (s *Service) currentWeather(ctx context.Context, location string) *domain.WeatherReading {
	if s.weather == nil || location == "" {
		return nil
	}

	reading, err := s.weather.CurrentWeather(ctx, location)
	if err != nil {
		WeatherLookupsTotal.WithLabelValues("error").Inc()
		logger.Warn("recommendation_weather_unavailable",
			"trace_id", TraceIDFromContext(ctx),
			"location", location,
			"error", err,
		)
		return nil
	}
	if !validReading(reading) {
		WeatherLookupsTotal.WithLabelValues("malformed").Inc()
		logger.Warn("recommendation_weather_malformed",
			"trace_id", TraceIDFromContext(ctx),
			"location", location,
		)
		return nil
	}

	WeatherLookupsTotal.WithLabelValues("ok").Inc()
	return reading
}

// weatherForReading turns a classified reading into candidates.
func (s *Service) weatherForReading(ctx context.Context, reading *domain.WeatherReading, limit int) ([]domain.RecommendationCandidate, error) {
	out := make([]domain.RecommendationCandidate, 0)
	if reading == nil || limit <= 0 {
		return out, nil
	}

	bucket := s.cfg.ClassifyWeather(*reading)
	if bucket == BucketNone {
		return out, nil
	}

	items, err := s.catalog.ListAvailableItems(ctx, domain.CatalogFilter{
		Categories: bucketCategories[bucket],
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list items for weather bucket %s: %w", bucket, err)
	}

	for _, it := range items {
		out = append(out, domain.RecommendationCandidate{
			MenuItemID: it.ID,
			Score:      s.cfg.WeatherScore,
			Reason:     bucketReasons[bucket],
			SignalType: domain.SignalWeatherBased,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// WeatherBased recommends dishes that suit the current weather at location.
// Provider trouble produces an empty list; only catalog errors are returned.
func (s *Service) WeatherBased(ctx context.Context, location string, limit int) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		return []domain.RecommendationCandidate{}, nil
	}
	return s.weatherForReading(ctx, s.currentWeather(ctx, location), limit)
}

// WeatherContextFor snapshots a reading for storage on a saved record.
func (c Config) WeatherContextFor(r domain.WeatherReading) domain.WeatherContext {
	return domain.WeatherContext{
		Location:    r.Location,
		Temperature: r.Temperature,
		Condition:   r.Condition,
		Bucket:      string(c.ClassifyWeather(r)),
	}
}
