package router

import (
	"myGreenMenu/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)

	reco.GET("", handler.Recommend)
	reco.POST("", handler.Save)
	reco.GET("/saved", handler.GetSaved)
	reco.DELETE("/saved/:id", handler.Deactivate)
	reco.GET("/diversity", handler.Diversity)
	reco.GET("/trending", handler.Trending)
	reco.GET("/debug", handler.DebugRecommend, adminOnly)
}

func SetupPreferenceRoutes(api *echo.Group, handler *rest.PreferenceHandler, authRequired echo.MiddlewareFunc, selfOrAdmin echo.MiddlewareFunc) {
	prefs := api.Group("/preferences", authRequired)
	prefs.GET("", handler.GetPreferences)
	prefs.PUT("", handler.UpdatePreferences)

	api.GET("/users/:id/preferences", handler.GetUserPreferences, authRequired, selfOrAdmin)
}

func SetupHealthRoutes(e *echo.Echo, handler *rest.HealthHandler) {
	e.GET("/healthz", handler.Healthz)
}
