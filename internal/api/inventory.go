package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mukhma0c/cookies-manager/internal/models"
)

// createStockItem handles stock item creation
func (h *Handler) createStockItem(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var item models.StockItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	item.Kind = kind

	if err := h.inventory.CreateStockItem(c.Request.Context(), &item); err != nil {
		writeError(c, err, "Failed to create stock item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// listStockItems handles listing stock items of a kind
func (h *Handler) listStockItems(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	items, err := h.inventory.ListStockItems(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err, "Failed to list stock items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// getStockItem handles get stock item by ID
func (h *Handler) getStockItem(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	item, err := h.inventory.GetStockItem(c.Request.Context(), kind, id)
	if err != nil {
		writeError(c, err, "Stock item not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

// updateStockItem handles stock item updates
func (h *Handler) updateStockItem(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var item models.StockItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	item.Kind = kind
	item.ID = id

	if err := h.inventory.UpdateStockItem(c.Request.Context(), &item); err != nil {
		writeError(c, err, "Failed to update stock item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// deleteStockItem handles stock item deletion
func (h *Handler) deleteStockItem(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteStockItem(c.Request.Context(), kind, id); err != nil {
		writeError(c, err, "Failed to delete stock item")
		return
	}
	c.Status(http.StatusNoContent)
}

// latestCosts handles the current unit cost listing for a kind
func (h *Handler) latestCosts(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	costs, err := h.inventory.LatestCosts(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err, "Failed to resolve costs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"costs": costs})
}

// stockLevels handles derived stock for all items of a kind
func (h *Handler) stockLevels(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	levels, err := h.stock.StockLevels(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err, "Failed to compute stock levels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// currentStock handles derived stock for one item
func (h *Handler) currentStock(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	quantity, err := h.stock.CurrentStock(c.Request.Context(), kind, id)
	if err != nil {
		writeError(c, err, "Failed to compute stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_kind": kind,
		"item_id":   id,
		"quantity":  quantity,
	})
}

type adjustStockRequest struct {
	CountedQuantity float64 `json:"counted_quantity"`
	Notes           string  `json:"notes"`
}

// adjustStock reconciles an item's derived stock to a physical count
func (h *Handler) adjustStock(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	delta, err := h.stock.AdjustStock(c.Request.Context(), kind, id, req.CountedQuantity, req.Notes)
	if err != nil {
		writeError(c, err, "Failed to adjust stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_kind": kind,
		"item_id":   id,
		"delta":     delta,
	})
}

// lowStockCheck runs the low-stock scan on demand
func (h *Handler) lowStockCheck(c *gin.Context) {
	flagged, err := h.stock.CheckLowStock(c.Request.Context())
	if err != nil {
		writeError(c, err, "Low-stock check failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"low_stock": flagged})
}
