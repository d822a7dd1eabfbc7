package server

import (
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	itineraryHandler *handlers.ItineraryHandler,
	dayHandler *handlers.DayHandler,
	activityHandler *handlers.ActivityHandler,
	catalogHandler *handlers.CatalogHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	itineraries := api.Group("/itineraries", authMiddleware)
	itineraries.GET("", itineraryHandler.List)
	itineraries.POST("", itineraryHandler.Create)
	itineraries.GET("/:id", itineraryHandler.Get)
	itineraries.PUT("/:id", itineraryHandler.Update)
	itineraries.DELETE("/:id", itineraryHandler.Delete)
	itineraries.GET("/:id/export/json", itineraryHandler.ExportJSON)
	itineraries.GET("/:id/export/csv", itineraryHandler.ExportCSV)
	itineraries.POST("/:id/days", dayHandler.Create)
	itineraries.DELETE("/:id/days/:dayId", dayHandler.Delete)

	days := api.Group("/days", authMiddleware)
	days.PUT("/:dayId", dayHandler.Update)
	days.GET("/:dayId/activities", activityHandler.ListByDay)
	days.POST("/:dayId/activities", activityHandler.Create)
	days.PATCH("/:dayId/activities/reorder", activityHandler.Reorder)

	activities := api.Group("/activities", authMiddleware)
	activities.PUT("/:activityId", activityHandler.Update)
	activities.DELETE("/:activityId", activityHandler.Delete)

	catalog := api.Group("/items", authMiddleware)
	catalog.GET("", catalogHandler.List)
	catalog.POST("", catalogHandler.Create)
	catalog.GET("/:id", catalogHandler.Get)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
