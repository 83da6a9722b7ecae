// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	customerID, _ := utils.GetUserIDFromContext(c)

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	checkout, err := h.orderService.CreateOrder(c.Request.Context(), customerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, checkout)
}

// GET /orders?customerId=...&status=pending
func (h *OrderHandler) ListOrders(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.BadRequestResponse(c, "Invalid status filter", nil)
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), callerID, models.Role(callerRole), c.Query("customerId"), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	lo, hi := utils.SliceBounds(len(orders), params)
	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders[lo:hi], int64(len(orders)), params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	order, err := h.orderService.GetOrder(c.Request.Context(), callerID, models.Role(callerRole), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), callerID, models.Role(callerRole), c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	callerRole, _ := utils.GetUserRoleFromContext(c)

	if err := h.orderService.DeleteOrder(c.Request.Context(), models.Role(callerRole), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
