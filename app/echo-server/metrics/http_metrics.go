package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgmetrics "myGreenMenu/pkg/metrics"
)

// Middleware records latency and count per matched route. Unmatched paths
// are grouped under "unmatched" to keep label cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			labels := []string{c.Request().Method, route, strconv.Itoa(status)}

			pkgmetrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			pkgmetrics.RequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

// Register initialises the collectors and exposes them on GET /metrics.
func Register(e *echo.Echo) {
	pkgmetrics.Init()
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
