package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"myGreenMenu/business/recommendation"
)

// TraceID reuses the caller's X-Request-ID or generates one, echoes it on the
// response and stores it in the request context for service logs.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tid := req.Header.Get(echo.HeaderXRequestID)
			if tid == "" {
				tid = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, tid)
			c.SetRequest(req.WithContext(recommendation.WithTraceID(req.Context(), tid)))

			return next(c)
		}
	}
}
