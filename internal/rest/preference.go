package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"myGreenMenu/domain"
	"myGreenMenu/pkg/logger"
)

type PreferenceService interface {
	Get(ctx context.Context, userID uint) (domain.UserPreferences, error)
	Update(ctx context.Context, userID uint, partial map[string]any) (domain.UserPreferences, error)
}

type PreferenceHandler struct {
	prefService PreferenceService
	timeout     time.Duration
}

func NewPreferenceHandler(prefService PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		prefService: prefService,
		timeout:     10 * time.Second,
	}
}

// GET /api/v1/preferences
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	return h.get(c, userID)
}

// GET /api/v1/users/:id/preferences
func (h *PreferenceHandler) GetUserPreferences(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}
	return h.get(c, uint(id))
}

func (h *PreferenceHandler) get(c echo.Context, userID uint) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	prefs, err := h.prefService.Get(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(prefs))
}

// PUT /api/v1/preferences
// Unknown or malformed fields are ignored; only recognised ones are written.
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	partial := make(map[string]any)
	if err := c.Bind(&partial); err != nil {
		logger.Debug("Invalid preference body", "user_id", userID, "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	prefs, err := h.prefService.Update(ctx, userID, partial)
	if err != nil {
		logger.Error("Failed to update preferences", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(prefs))
}
