// internal/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type RefundRequest struct {
	PaymentIntentID string  `json:"paymentIntentId" binding:"required"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
}

// POST /payments/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	if !h.paymentService.Enabled() {
		utils.BadRequestResponse(c, "Payments are not configured", nil)
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if err := h.paymentService.RefundOrder(req.PaymentIntentID, req.Amount); err != nil {
		logrus.WithError(err).WithField("payment_intent", req.PaymentIntentID).Error("Refund failed")
		utils.ErrorResponse(c, http.StatusBadGateway, "PAYMENT_ERROR", "Refund could not be processed", nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"refunded": true})
}
