// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	cart, err := h.cartService.GetCart(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, cart)
}

// PUT /cart
func (h *CartHandler) SetCart(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	var req services.SetCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	cart, err := h.cartService.SetCart(c.Request.Context(), customerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, cart)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), customerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, cart)
}

// DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	cart, err := h.cartService.RemoveItem(c.Request.Context(), customerID, c.Param("productId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, cart)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	if err := h.cartService.ClearCart(c.Request.Context(), customerID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"cleared": true})
}
