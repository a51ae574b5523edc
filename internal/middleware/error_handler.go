package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"myGreenMenu/business/recommendation"
	"myGreenMenu/pkg/logger"
	jsonres "myGreenMenu/pkg/response"
)

// ErrorHandler renders errors that escape handlers (routing misses, binder
// failures, panics caught by Recover) in the shared error envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		logger.Error("http_unhandled_error",
			"trace_id", recommendation.TraceIDFromContext(c.Request().Context()),
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	status := strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	if status == "" {
		status = "ERROR"
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, jsonres.Error(status, message, nil))
	}
	if writeErr != nil {
		logger.Error("http_error_write_failed", "error", writeErr)
	}
}
