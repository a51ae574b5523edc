package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

var (
	ErrLocationNotFound = errors.New("weather location not found")
	ErrMalformedReading = errors.New("malformed weather reading")
)

type OpenWeatherConfig struct {
	BaseURL string
	APIKey  string
	Units   string
	Timeout time.Duration

	// circuit breaker
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type OpenWeatherRepository struct {
	cfg     OpenWeatherConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.WeatherReading]
	now     func() time.Time
}

func NewOpenWeatherRepository(cfg OpenWeatherConfig) *OpenWeatherRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}

	settings := gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// an unknown city says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrLocationNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("weather_breaker_state_change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &OpenWeatherRepository{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*domain.WeatherReading](settings),
		now:     time.Now,
	}
}

var _ recommendation.WeatherProvider = (*OpenWeatherRepository)(nil)

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentWeather fetches the current reading for a free-text location. While
// the breaker is open it fails fast with gobreaker.ErrOpenState.
func (r *OpenWeatherRepository) CurrentWeather(ctx context.Context, location string) (*domain.WeatherReading, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrLocationNotFound
	}

	return r.breaker.Execute(func() (*domain.WeatherReading, error) {
		return r.fetch(ctx, location)
	})
}

func (r *OpenWeatherRepository) fetch(ctx context.Context, location string) (*domain.WeatherReading, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", r.cfg.APIKey)
	q.Set("units", r.cfg.Units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrLocationNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("weather service returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReading, err)
	}

	return toReading(payload, location, r.now())
}

func toReading(payload openWeatherResponse, location string, fetchedAt time.Time) (*domain.WeatherReading, error) {
	if payload.Main.Temp == nil {
		return nil, fmt.Errorf("%w: missing temperature", ErrMalformedReading)
	}

	condition := ""
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0].Description
		if condition == "" {
			condition = payload.Weather[0].Main
		}
	}

	name := payload.Name
	if name == "" {
		name = location
	}

	return &domain.WeatherReading{
		Location:    name,
		Temperature: *payload.Main.Temp,
		Condition:   condition,
		FetchedAt:   fetchedAt.UTC(),
	}, nil
}

// BreakerState reports closed, half-open or open; shown on /healthz.
func (r *OpenWeatherRepository) BreakerState() string {
	return r.breaker.State().String()
}
