// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modaline/shop-backend/internal/services"
	"github.com/modaline/shop-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
// Runs behind optional auth: an authenticated caller orders from their stored
// cart, an anonymous caller must send a guestCart payload.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Payment method and shipping address are required")
		return
	}

	var userID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Order placed successfully", gin.H{"order": order})
}

// GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orders, err := h.orderService.GetUserOrders(userID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.ListResponse(c, len(orders), gin.H{"orders": orders})
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// PATCH /orders/:id
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		utils.BadRequestResponse(c, "Status is required")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(userID, orderID, req.Status)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Order status updated", gin.H{"order": order})
}

// DELETE /orders/:id
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.CancelOrder(userID, orderID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Order cancelled", gin.H{"order": order})
}

// GET /orders/admin
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.ListResponse(c, len(orders), gin.H{"orders": orders})
}
