package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createIntentRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// createPaymentIntent forwards an amount in minor units to the processor and
// returns the client secret. Only the presence of amount is checked.
func (h *handlers) createPaymentIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	intent, err := h.deps.Gateway.CreateIntent(c.Request.Context(), *req.Amount, h.deps.Currency)
	if err != nil {
		h.logger.Error("create payment intent", zap.Int64("amount", *req.Amount), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment intent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}
