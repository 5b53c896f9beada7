// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/forecast"
	"stockpilot/internal/domain/ledger"
	"stockpilot/internal/domain/order"
	"stockpilot/internal/domain/receiving"
	"stockpilot/internal/domain/reports"
	"stockpilot/internal/domain/transfer"
	"stockpilot/internal/domain/warehouse"
	"stockpilot/internal/infrastructure/http/v1/handlers"
	"stockpilot/internal/infrastructure/http/v1/middleware"
	"stockpilot/pkg/logger"
)

// RouterConfig carries the assembled services the router exposes.
type RouterConfig struct {
	Logger *logger.Logger

	Stock      *ledger.Service
	Warehouses *warehouse.Service
	Transfers  *transfer.Service
	Orders     *order.Service
	Receipts   *receiving.Service
	Forecasts  *forecast.Service
	Reports    *reports.Service

	// StoreKind names the active storage backend for /health/info.
	StoreKind string

	// Ready is probed by /health/ready. Nil means always ready.
	Ready func() error
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.StoreKind, cfg.Ready)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	{
		registerCatalogRoutes(api, cfg)
		registerInventoryRoutes(api, cfg)
		registerDocumentRoutes(api, cfg)
		registerReportRoutes(api, cfg)
	}

	return router
}

// registerCatalogRoutes registers warehouse catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewWarehouseHandler(cfg.Warehouses)

	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", handler.Create)
		warehouses.GET("", handler.List)
		warehouses.GET("/:id", handler.Get)
		warehouses.PUT("/:id", handler.Update)
		warehouses.POST("/:id/deactivate", handler.Deactivate)
	}
}

// registerInventoryRoutes registers item and movement endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewItemHandler(cfg.Stock)
	forecastHandler := handlers.NewForecastHandler(cfg.Forecasts)

	items := rg.Group("/items")
	{
		items.POST("", handler.Create)
		items.GET("", handler.List)
		items.GET("/:id", handler.Get)
		items.PUT("/:id", handler.Update)
		items.POST("/:id/adjust", handler.Adjust)
		items.GET("/:id/movements", handler.Movements)
		items.GET("/:id/forecast", forecastHandler.GetForItem)
	}
}

// registerDocumentRoutes registers transfer, order and receipt endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	transferHandler := handlers.NewTransferHandler(cfg.Transfers)
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", transferHandler.Create)
		transfers.GET("", transferHandler.List)
		transfers.GET("/:id", transferHandler.Get)
		transfers.POST("/:id/transition", transferHandler.Transition)
		transfers.GET("/:id/history", transferHandler.History)
		transfers.DELETE("/:id", transferHandler.Delete)
	}

	orderHandler := handlers.NewOrderHandler(cfg.Orders)
	orders := rg.Group("/orders")
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.PUT("/:id", orderHandler.Update)
		orders.POST("/:id/status", orderHandler.UpdateStatus)
		orders.DELETE("/:id", orderHandler.Delete)
	}

	receiptHandler := handlers.NewReceiptHandler(cfg.Receipts)
	receipts := rg.Group("/receipts")
	{
		receipts.POST("", receiptHandler.Create)
		receipts.GET("", receiptHandler.List)
		receipts.GET("/:id", receiptHandler.Get)
	}
}

// registerReportRoutes registers forecast and report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	forecastHandler := handlers.NewForecastHandler(cfg.Forecasts)
	forecasts := rg.Group("/forecast")
	{
		forecasts.GET("", forecastHandler.List)
		forecasts.GET("/:itemId", forecastHandler.Get)
	}

	reportHandler := handlers.NewReportHandler(cfg.Reports)
	reportsGroup := rg.Group("/reports")
	{
		reportsGroup.GET("/alerts", reportHandler.Alerts)
		reportsGroup.GET("/turnover/:itemId", reportHandler.Turnover)
	}
}
