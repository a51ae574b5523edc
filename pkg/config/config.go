package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Redis          RedisConfig
	Weather        WeatherConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	Enabled       bool

	// pool
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WeatherConfig struct {
	BaseURL  string
	APIKey   string
	Units    string
	Timeout  time.Duration
	CacheTTL time.Duration

	// circuit breaker
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type RecommendationConfig struct {
	DefaultLimit     int
	MaxLimit         int
	MinSimilarity    float64
	RecordTTL        time.Duration
	SavedCacheTTL    time.Duration
	SortFinalByScore bool
	RespectAllergies bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "myGreenMenu"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "my_green_menu"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Enabled:       getEnvBool("REDIS_ENABLED", true),
			PoolSize:      getEnvIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns:  getEnvIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:   getEnvDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:   getEnvDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout:  getEnvDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Weather: WeatherConfig{
			BaseURL:          getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
			APIKey:           getEnv("WEATHER_API_KEY", ""),
			Units:            getEnv("WEATHER_UNITS", "metric"),
			Timeout:          getEnvDuration("WEATHER_TIMEOUT", 3*time.Second),
			CacheTTL:         getEnvDuration("WEATHER_CACHE_TTL", 10*time.Minute),
			FailureThreshold: uint32(getEnvIntOr("WEATHER_BREAKER_FAILURES", 5)),
			OpenTimeout:      getEnvDuration("WEATHER_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Recommendation: RecommendationConfig{
			DefaultLimit:     getEnvIntOr("RECO_DEFAULT_LIMIT", 20),
			MaxLimit:         getEnvIntOr("RECO_MAX_LIMIT", 100),
			MinSimilarity:    getEnvFloat("RECO_MIN_SIMILARITY", 0.3),
			RecordTTL:        getEnvDuration("RECO_RECORD_TTL", 24*time.Hour),
			SavedCacheTTL:    getEnvDuration("RECO_SAVED_CACHE_TTL", time.Minute),
			SortFinalByScore: getEnvBool("RECO_SORT_FINAL_BY_SCORE", false),
			RespectAllergies: getEnvBool("RECO_RESPECT_ALLERGIES", true),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Recommendation.DefaultLimit <= 0 || cfg.Recommendation.MaxLimit < cfg.Recommendation.DefaultLimit {
		return nil, fmt.Errorf("invalid recommendation limits: default=%d max=%d",
			cfg.Recommendation.DefaultLimit, cfg.Recommendation.MaxLimit)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func getEnvIntOr(key string, defaultVal int) int {
	v, err := getEnvInt(key, defaultVal)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
