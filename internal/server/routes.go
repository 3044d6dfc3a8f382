package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(config *Config, handler *Handler) *gin.Engine {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(config.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		stores := v1.Group("/stores")
		{
			stores.GET("", handler.ListStores)
			stores.POST("", handler.CreateStore)
			stores.GET("/:id", handler.GetStore)
			stores.PUT("/:id", handler.UpdateStore)
			stores.DELETE("/:id", handler.DeleteStore)
			stores.PUT("/:id/limits", handler.UpdateLimits)
			stores.POST("/:id/limits/rename", handler.RenameLimit)

			stores.POST("/:id/process-text", handler.ProcessText)
			stores.POST("/:id/process-file", handler.ProcessFile)
			stores.POST("/:id/process-snapshot", handler.ProcessSnapshot)
			stores.GET("/:id/stock-history", handler.StockHistory)
		}

		filters := v1.Group("/filters")
		{
			filters.GET("", handler.ListFilters)
			filters.POST("", handler.CreateFilter)
			filters.DELETE("/:id", handler.DeleteFilter)
		}

		mappings := v1.Group("/product-mappings")
		{
			mappings.GET("", handler.ListMappings)
			mappings.POST("", handler.CreateMapping)
			mappings.PUT("/:id", handler.UpdateMapping)
			mappings.DELETE("/:id", handler.DeleteMapping)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", handler.ListOrders)
			orders.GET("/:id", handler.GetOrder)
			orders.GET("/:id/download", handler.DownloadOrder)
		}

		stock := v1.Group("/global-stock")
		{
			stock.GET("", handler.ListSnapshots)
			stock.POST("", handler.UploadGlobalStock)
			stock.GET("/latest", handler.LatestSnapshot)
			stock.GET("/:id", handler.GetSnapshot)
		}
	}

	return router
}
