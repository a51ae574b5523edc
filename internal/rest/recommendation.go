package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
	"myGreenMenu/pkg/metrics"
)

type (
	RecommendationHandler struct {
		validate     *validator.Validate
		recoService  RecommendationService
		defaultLimit int
		maxLimit     int
		timeout      time.Duration
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userID uint, location string, limit int) ([]domain.RecommendationCandidate, error)
		DebugRecommend(ctx context.Context, userID uint, location string, limit int) (*domain.RecommendationDebug, error)
		Save(ctx context.Context, req recommendation.SaveRequest) (domain.RecommendationRecord, error)
		GetSaved(ctx context.Context, userID uint) ([]domain.RecommendationRecord, error)
		Deactivate(ctx context.Context, userID uint, recordID string) error
		DiversityReport(ctx context.Context, userID uint) (domain.DiversityReport, error)
		Trending(ctx context.Context, limit int) ([]domain.RecommendationCandidate, error)
	}

	RecommendQuery struct {
		Location string `query:"location" validate:"omitempty,max=100"`
		N        int    `query:"n"`
	}

	DebugQuery struct {
		Location string `query:"location" validate:"omitempty,max=100"`
		N        int    `query:"n"`
		UserID   uint   `query:"user_id"`
	}

	TrendingQuery struct {
		N int `query:"n"`
	}

	SaveRecommendationRequest struct {
		MenuItemID     uint64                 `json:"menu_item_id" validate:"required"`
		SignalType     string                 `json:"signal_type" validate:"required"`
		Score          float64                `json:"score" validate:"gte=0,lte=1"`
		Reason         string                 `json:"reason" validate:"max=500"`
		WeatherContext *domain.WeatherContext `json:"weather_context"`
	}
)

func NewRecommendationHandler(svc RecommendationService, defaultLimit, maxLimit int) *RecommendationHandler {
	return &RecommendationHandler{
		validate:     validator.New(),
		recoService:  svc,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		timeout:      10 * time.Second,
	}
}

func (h *RecommendationHandler) limit(n int) int {
	if n <= 0 {
		return h.defaultLimit
	}
	if h.maxLimit > 0 && n > h.maxLimit {
		return h.maxLimit
	}
	return n
}

// GET /api/v1/recommendations?location=Jakarta&n=20
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recs, err := h.recoService.Recommend(ctx, userID, q.Location, h.limit(q.N))
	if err != nil {
		logger.Error("Failed to build recommendations", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/debug?location=Jakarta&n=10&user_id=7
// Admins may inspect another user's slate through user_id.
func (h *RecommendationHandler) DebugRecommend(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q DebugQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.UserID != 0 {
		userID = q.UserID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	debug, err := h.recoService.DebugRecommend(ctx, userID, q.Location, h.limit(q.N))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(debug))
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Save(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req SaveRecommendationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec, err := h.recoService.Save(ctx, recommendation.SaveRequest{
		UserID:         userID,
		MenuItemID:     req.MenuItemID,
		SignalType:     domain.SignalType(req.SignalType),
		Score:          req.Score,
		Reason:         req.Reason,
		WeatherContext: req.WeatherContext,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignalType) || errors.Is(err, domain.ErrInvalidScore) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to save recommendation", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rec))
}

// GET /api/v1/recommendations/saved
func (h *RecommendationHandler) GetSaved(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	records, err := h.recoService.GetSaved(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(records))
}

// DELETE /api/v1/recommendations/saved/:id
func (h *RecommendationHandler) Deactivate(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	recordID := c.Param("id")
	if err := h.validate.Var(recordID, "required,uuid"); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.recoService.Deactivate(ctx, userID, recordID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to deactivate recommendation", "user_id", userID, "record_id", recordID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("recommendation deactivated"))
}

// GET /api/v1/recommendations/diversity
func (h *RecommendationHandler) Diversity(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.recoService.DiversityReport(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

// GET /api/v1/recommendations/trending?n=10
func (h *RecommendationHandler) Trending(c echo.Context) error {
	var q TrendingQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.recoService.Trending(ctx, h.limit(q.N))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}
