package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mukhma0c/cookies-manager/internal/service"
)

// createOrder handles order creation with cost snapshotting
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, lines, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"lines": lines,
	})
}

// listOrders handles listing all orders with snapshot cost sums
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, lines, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"lines": lines,
	})
}

// deleteOrder handles order deletion
func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// previewOrderCost handles the live cost estimate before an order commits
func (h *Handler) previewOrderCost(c *gin.Context) {
	var req service.PreviewCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.costing.PreviewOrderCost(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to compute cost preview")
		return
	}
	c.JSON(http.StatusOK, resp)
}
