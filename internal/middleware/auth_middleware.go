package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"myGreenMenu/pkg/logger"
	jsonres "myGreenMenu/pkg/response"
	"myGreenMenu/pkg/utils"
)

// AuthMiddleware validates the bearer JWT and stores user_id (uint) and role
// on the echo context.
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid authorization format", nil,
				))
			}

			claims, err := utils.ParseJWT(tokenParts[1], secret)
			if err != nil {
				logger.Debug("auth_token_rejected", "error", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			userID, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil || userID == 0 {
				logger.Warn("auth_invalid_user_id", "user_id", claims.UserID)
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid user ID in token", nil,
				))
			}

			c.Set("user_id", uint(userID))
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok || strings.ToUpper(roleStr) != "ADMIN" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets admins through and otherwise requires the :id path param
// to match the authenticated user.
func SelfOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get("user_id").(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			if roleStr, _ := c.Get("role").(string); strings.ToUpper(roleStr) == "ADMIN" {
				return next(c)
			}

			requestedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "Invalid user ID", nil,
				))
			}

			if uint(requestedID) != loggedInUserID {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You can only access your own data", nil,
				))
			}

			return next(c)
		}
	}
}
