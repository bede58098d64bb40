package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mukhma0c/cookies-manager/internal/models"
	"github.com/mukhma0c/cookies-manager/internal/service"
	"github.com/mukhma0c/cookies-manager/internal/store"
	"github.com/mukhma0c/cookies-manager/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	inventory *service.InventoryService
	stock     *service.StockService
	costing   *service.CostingService
	orders    *service.OrderService
	reports   *service.ReportService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	inventory *service.InventoryService,
	stock *service.StockService,
	costing *service.CostingService,
	orders *service.OrderService,
	reports *service.ReportService,
) *Handler {
	return &Handler{
		inventory: inventory,
		stock:     stock,
		costing:   costing,
		orders:    orders,
		reports:   reports,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/items/:kind", h.createStockItem)
		v1.GET("/items/:kind", h.listStockItems)
		v1.GET("/items/:kind/costs", h.latestCosts)
		v1.GET("/items/:kind/stock", h.stockLevels)
		v1.GET("/items/:kind/:id", h.getStockItem)
		v1.PUT("/items/:kind/:id", h.updateStockItem)
		v1.DELETE("/items/:kind/:id", h.deleteStockItem)
		v1.GET("/items/:kind/:id/stock", h.currentStock)
		v1.POST("/items/:kind/:id/adjust", h.adjustStock)

		v1.POST("/low-stock-check", h.lowStockCheck)

		v1.POST("/purchases", h.createPurchase)
		v1.GET("/purchases", h.listPurchases)
		v1.GET("/purchases/:id", h.getPurchase)
		v1.PUT("/purchases/:id", h.updatePurchase)
		v1.DELETE("/purchases/:id", h.deletePurchase)

		v1.POST("/customers", h.createCustomer)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.PUT("/customers/:id", h.updateCustomer)
		v1.DELETE("/customers/:id", h.deleteCustomer)

		v1.POST("/recipes", h.createRecipe)
		v1.GET("/recipes", h.listRecipes)
		v1.GET("/recipes/:id", h.getRecipe)
		v1.PUT("/recipes/:id", h.updateRecipe)
		v1.DELETE("/recipes/:id", h.deleteRecipe)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.DELETE("/orders/:id", h.deleteOrder)
		v1.POST("/orders/cost-preview", h.previewOrderCost)

		v1.GET("/reports/summary", h.reportSummary)
		v1.GET("/reports/profit", h.reportProfit)
		v1.GET("/reports/inventory", h.reportInventory)
		v1.GET("/reports/trends", h.reportTrends)
		v1.GET("/reports/top-customers", h.reportTopCustomers)
		v1.GET("/reports/top-recipes", h.reportTopRecipes)

		v1.GET("/reports/export/profit.csv", h.exportProfitCSV)
		v1.GET("/reports/export/inventory.csv", h.exportInventoryCSV)
		v1.GET("/reports/export/trends.csv", h.exportTrendsCSV)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// writeError maps store errors onto HTTP statuses
func writeError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func kindParam(c *gin.Context) (models.ItemKind, bool) {
	kind := models.ItemKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item kind, expected 'ingredient' or 'packaging'",
		})
		return "", false
	}
	return kind, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
