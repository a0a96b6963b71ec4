// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modaline/shop-backend/internal/services"
	"github.com/modaline/shop-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	cart, err := h.cartService.GetCart(userID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// POST /cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Product ID, quantity, and variant are required")
		return
	}

	cart, err := h.cartService.AddToCart(userID, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Product added to cart", gin.H{"cart": cart})
}

// POST /cart/sync
func (h *CartHandler) SyncCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid local cart data")
		return
	}

	cart, err := h.cartService.SyncCart(userID, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Cart synced successfully", gin.H{"cart": cart})
}

// PATCH /cart/items
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Valid item ID and quantity are required")
		return
	}

	cart, err := h.cartService.UpdateCartItem(userID, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Cart item updated", gin.H{"cart": cart})
}

// DELETE /cart/items/remove?itemId=
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemIDStr := c.Query("itemId")
	if itemIDStr == "" {
		utils.BadRequestResponse(c, "Item ID is required")
		return
	}
	itemID, err := uuid.Parse(itemIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID")
		return
	}

	cart, err := h.cartService.RemoveFromCart(userID, itemID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Item removed from cart", gin.H{"cart": cart})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Cart cleared", nil)
}
