package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/notifier"
	"inventory-service/internal/service"
	"inventory-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	inventoryService *service.InventoryService
	registry         *notifier.Registry
}

// NewHandler creates a new HTTP handler
func NewHandler(inventoryService *service.InventoryService, registry *notifier.Registry) *Handler {
	return &Handler{
		inventoryService: inventoryService,
		registry:         registry,
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
		v1.GET("/inventory", h.listInventory)
		v1.GET("/inventory/stats", h.inventoryStats)
		v1.GET("/inventory/stream", h.streamInventory)
		v1.GET("/inventory/product/:productId", h.getInventoryByProduct)
		v1.POST("/inventory", h.addInventoryItem)
		v1.PUT("/inventory/:id/stock", h.updateStock)

		v1.GET("/alerts", h.listAlerts)
		v1.GET("/alerts/stream", h.streamAlerts)
		v1.PATCH("/alerts/:id/read", h.markAlertRead)
		v1.DELETE("/alerts/:id", h.deleteAlert)

		v1.GET("/movements", h.listMovements)
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

// errorStatus maps domain errors onto HTTP statuses so callers can tell
// "not found" from "bad request" from "transient, retry safe".
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrItemNotFound), errors.Is(err, models.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSizeNotFound), models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

// listInventory handles fetching all inventory items
func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.inventoryService.FetchItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// getInventoryByProduct handles fetching the item for one product
func (h *Handler) getInventoryByProduct(c *gin.Context) {
	item, err := h.inventoryService.FetchItemByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// addInventoryItem handles seeding a new inventory item
func (h *Handler) addInventoryItem(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	id, err := h.inventoryService.AddInventoryItem(c.Request.Context(), &item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// updateStock handles a stock mutation on one size of one item
func (h *Handler) updateStock(c *gin.Context) {
	var req service.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.inventoryService.UpdateStock(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// inventoryStats computes summary stats over the current item list
func (h *Handler) inventoryStats(c *gin.Context) {
	items, err := h.inventoryService.FetchItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ComputeStats(items))
}

// listAlerts handles fetching stock alerts
func (h *Handler) listAlerts(c *gin.Context) {
	includeRead := c.Query("includeRead") == "true"

	alerts, err := h.inventoryService.FetchAlerts(c.Request.Context(), includeRead)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// markAlertRead flips an alert to read
func (h *Handler) markAlertRead(c *gin.Context) {
	if err := h.inventoryService.MarkAlertRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteAlert permanently removes an alert
func (h *Handler) deleteAlert(c *gin.Context) {
	if err := h.inventoryService.DeleteAlert(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listMovements handles fetching ledger entries
func (h *Handler) listMovements(c *gin.Context) {
	limit := service.DefaultMovementLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	movements, err := h.inventoryService.FetchMovements(c.Request.Context(), c.Query("productId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

// streamInventory exposes the change notifier over SSE. Every event carries
// the complete current item list.
func (h *Handler) streamInventory(c *gin.Context) {
	ch := make(chan []models.InventoryItem, 8)
	unsubscribe := h.registry.SubscribeItems(func(items []models.InventoryItem) {
		select {
		case ch <- items:
		default:
		}
	})
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case items := <-ch:
			c.SSEvent("inventory", items)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// streamAlerts exposes alert snapshots over SSE. The full alert list is
// sent; unread filtering is the consumer's job.
func (h *Handler) streamAlerts(c *gin.Context) {
	ch := make(chan []models.StockAlert, 8)
	unsubscribe := h.registry.SubscribeAlerts(func(alerts []models.StockAlert) {
		select {
		case ch <- alerts:
		default:
		}
	})
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case alerts := <-ch:
			c.SSEvent("alerts", alerts)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
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
