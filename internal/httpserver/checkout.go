package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "storefront/internal/service/checkout"
)

func (h *handlers) machine(c *gin.Context) *checkoutsvc.Machine {
	return h.deps.CheckoutSvc.Session(sessionID(c), h.slots(c))
}

func (h *handlers) getCheckout(c *gin.Context) {
	view, err := h.machine(c).State(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) submitShipping(c *gin.Context) {
	var in checkoutsvc.ShippingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	view, err := h.machine(c).SubmitShipping(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) preparePayment(c *gin.Context) {
	intent, err := h.machine(c).PreparePayment(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "amountCents": intent.AmountCents, "currency": intent.Currency})
}

func (h *handlers) submitPayment(c *gin.Context) {
	var in checkoutsvc.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	order, err := h.machine(c).SubmitPayment(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "redirect": "/order-confirmation"})
}

func (h *handlers) resetCheckout(c *gin.Context) {
	if err := h.machine(c).Reset(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
