package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// writeError maps service errors onto status codes and user-facing bodies.
func (h *handlers) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var gerr *domain.GatewayError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": verr.Fields})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty", "redirect": "/cart"})
	case errors.Is(err, domain.ErrTermsNotAccepted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must accept the terms of sale"})
	case errors.Is(err, domain.ErrPaymentInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A payment is already being processed"})
	case errors.Is(err, domain.ErrInvalidStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &gerr):
		_ = c.Error(err)
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "The payment could not be completed. Please try again.", "retry": true})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrProductKeyRequired),
		errors.Is(err, domain.ErrUnsupportedPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful can be written
		c.Status(499)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
