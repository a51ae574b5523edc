package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"myGreenMenu/app/echo-server/metrics"
	"myGreenMenu/app/echo-server/router"
	"myGreenMenu/business/preference"
	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
	"myGreenMenu/internal/middleware"
	psqlRepo "myGreenMenu/internal/repository/postgres"
	redisRepo "myGreenMenu/internal/repository/redis"
	"myGreenMenu/internal/repository/weather"
	"myGreenMenu/internal/rest"
	"myGreenMenu/pkg/config"
	"myGreenMenu/pkg/database"
	redisClient "myGreenMenu/pkg/database/redis"
	"myGreenMenu/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting myGreenMenu", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.AutoMigrate(
		&domain.MenuItem{},
		&domain.Order{},
		&domain.OrderLine{},
		&domain.RecommendationRecord{},
		&domain.UserPreferences{},
	); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is optional; without it nothing is cached
	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisClient.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			rdb = nil
		}
	}

	// Init repo
	catalogRepo := psqlRepo.NewCatalogRepository(db)
	orderHistoryRepo := psqlRepo.NewOrderHistoryRepository(db)
	recoRepo := psqlRepo.NewRecommendationRepository(db)
	prefRepo := psqlRepo.NewPreferenceRepository(db)

	var (
		weatherProvider recommendation.WeatherProvider
		openWeather     *weather.OpenWeatherRepository
	)
	if cfg.Weather.APIKey != "" {
		openWeather = weather.NewOpenWeatherRepository(weather.OpenWeatherConfig{
			BaseURL:          cfg.Weather.BaseURL,
			APIKey:           cfg.Weather.APIKey,
			Units:            cfg.Weather.Units,
			Timeout:          cfg.Weather.Timeout,
			FailureThreshold: cfg.Weather.FailureThreshold,
			OpenTimeout:      cfg.Weather.OpenTimeout,
		})
		weatherProvider = openWeather
		if rdb != nil {
			weatherProvider = redisRepo.NewWeatherCache(rdb, weatherProvider, cfg.Weather.CacheTTL)
		}
	} else {
		logger.Warn("WEATHER_API_KEY not set, weather signal disabled")
	}

	// interface stays untyped nil when redis is off
	var savedCache recommendation.SavedCache
	if rdb != nil {
		savedCache = redisRepo.NewRecommendationCache(rdb)
	}

	// Init service
	prefService := preference.NewPreferenceService(prefRepo)

	var eligChecker recommendation.EligibilityChecker
	if cfg.Recommendation.RespectAllergies {
		eligChecker = recommendation.NewPreferenceEligibility(prefService, catalogRepo)
	}

	recoCfg := recommendation.DefaultConfig()
	recoCfg.DefaultLimit = cfg.Recommendation.DefaultLimit
	recoCfg.MaxLimit = cfg.Recommendation.MaxLimit
	recoCfg.MinSimilarity = cfg.Recommendation.MinSimilarity
	recoCfg.RecordTTL = cfg.Recommendation.RecordTTL
	recoCfg.SavedCacheTTL = cfg.Recommendation.SavedCacheTTL
	recoCfg.SortFinalByScore = cfg.Recommendation.SortFinalByScore

	recoService := recommendation.NewService(
		catalogRepo,
		orderHistoryRepo,
		weatherProvider,
		recoRepo,
		savedCache,
		eligChecker,
		recoCfg,
	)

	// Init handler
	recoHandler := rest.NewRecommendationHandler(recoService, recoCfg.DefaultLimit, recoCfg.MaxLimit)
	prefHandler := rest.NewPreferenceHandler(prefService)
	healthHandler := rest.NewHealthHandler(healthChecks(db, rdb), healthReports(openWeather))

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)

	// Setup routes
	metrics.Register(e)
	router.SetupHealthRoutes(e, healthHandler)

	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recoHandler, authRequired, middleware.AdminOnly())
	router.SetupPreferenceRoutes(api, prefHandler, authRequired, middleware.SelfOrAdmin())

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}

func healthChecks(db *gorm.DB, rdb *goredis.Client) map[string]rest.HealthCheck {
	checks := map[string]rest.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

func healthReports(openWeather *weather.OpenWeatherRepository) map[string]rest.HealthReport {
	if openWeather == nil {
		return nil
	}
	return map[string]rest.HealthReport{
		"weather_breaker": openWeather.BreakerState,
	}
}
