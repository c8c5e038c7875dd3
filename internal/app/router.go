package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tow/internal/handler"
	"tow/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	DriverHandler  *handler.DriverHandler
	WalletHandler  *handler.WalletHandler
	PricingHandler *handler.PricingHandler
	ReportHandler  *handler.ReportHandler
	WSHandler      *handler.WSHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("/:id/assign", deps.TripHandler.Assign)
			trips.POST("/:id/accept", deps.TripHandler.Accept)
			trips.POST("/:id/start", deps.TripHandler.Start)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.DELETE("/:id", deps.TripHandler.Delete)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/locations", deps.DriverHandler.Locations)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.GET("/:id/wallet", deps.WalletHandler.Summary)
			drivers.POST("/:id/wallet/recharge", deps.WalletHandler.Recharge)
		}

		// Pricing routes.
		pricing := v1.Group("/pricing")
		{
			pricing.GET("/rules", deps.PricingHandler.Rules)
			pricing.PUT("/rules/:id", deps.PricingHandler.UpdateRule)
		}

		// Report routes.
		reports := v1.Group("/reports")
		{
			reports.GET("/transactions", deps.ReportHandler.Transactions)
		}
	}

	// Websocket endpoints stay outside the versioned group; they speak the
	// event protocol, not the REST one.
	router.GET("/ws/driver/:id", deps.WSHandler.Driver)
	router.GET("/ws/admin", deps.WSHandler.Admin)

	return router
}
