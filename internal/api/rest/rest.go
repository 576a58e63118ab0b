package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-stellar-market/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Account views (public read access)
		v1.GET("/accounts/:account/created", handler.GetCreated)
		v1.GET("/accounts/:account/owned", handler.GetOwned)
		v1.GET("/accounts/:account/received", handler.GetReceived)
		v1.GET("/accounts/:account/history", handler.GetHistory)

		// Marketplace (public read access)
		v1.GET("/marketplace", handler.GetMarketplace)
		v1.GET("/listings/:token_id", handler.GetListing)

		// Wallet signing flow (requires authentication)
		v1.POST("/transactions/prepare", auth, handler.PrepareTransaction)
		v1.POST("/transactions/submit", auth, handler.SubmitTransaction)

		// Metadata upload ahead of a mint (requires authentication)
		v1.POST("/metadata", auth, handler.PublishMetadata)
	}
}
