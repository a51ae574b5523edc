package rest

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one required dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

// HealthReport describes an optional dependency. It is shown but never
// changes the status code.
type HealthReport func() string

type HealthHandler struct {
	checks  map[string]HealthCheck
	reports map[string]HealthReport
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck, reports map[string]HealthReport) *HealthHandler {
	return &HealthHandler{checks: checks, reports: reports, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Info   map[string]string `json:"info,omitempty"`
}

// GET /healthz
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if len(h.reports) > 0 {
		resp.Info = make(map[string]string, len(h.reports))
		for name, report := range h.reports {
			resp.Info[name] = report()
		}
	}

	return c.JSON(code, resp)
}
