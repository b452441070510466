package http

import (
	"log/slog"

	"github.com/EdgeApp/infinite-ramp/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router
func SetupRouter(rampService *service.RampService, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	// Create handlers
	handlers := NewRampHandlers(rampService)

	// Ramp routes
	ramp := router.Group("/ramp")
	{
		ramp.POST("/support", handlers.CheckSupport)
		ramp.POST("/quotes", handlers.FetchQuote)
	}

	return router
}
