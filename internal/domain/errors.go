package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart blocks entering checkout without line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTermsNotAccepted blocks placing an order until the terms of sale are accepted.
	ErrTermsNotAccepted = errors.New("terms of sale must be accepted")
	// ErrPaymentInProgress is returned while another payment call for the same session is in flight.
	ErrPaymentInProgress = errors.New("payment already in progress")
	// ErrInvalidStep is returned when an operation does not apply to the current checkout step.
	ErrInvalidStep = errors.New("operation not allowed in current checkout step")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 9999")
	ErrInvalidPrice       = errors.New("unit price must not be negative or above the maximum")
	ErrUnsupportedPayment = errors.New("unsupported payment method")
	// ErrAmountTooLarge is returned when a cart total would exceed MaxOrderCents.
	ErrAmountTooLarge = errors.New("order total exceeds the maximum")
	// ErrProductKeyRequired is returned when adding a catalog product without a key.
	ErrProductKeyRequired = errors.New("productKey required")
)

// ValidationError carries per-field messages keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// GatewayError wraps a failure reported by the payment processor.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
