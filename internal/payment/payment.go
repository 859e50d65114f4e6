// Package payment adapts the card processor's two-phase intent protocol.
// Amounts are integer minor units; raw card data never passes through here.
package payment

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrDeclined is returned when the processor refuses the charge.
	ErrDeclined = errors.New("payment declined")
	// ErrUnknownIntent is returned when the processor has no record of the intent.
	ErrUnknownIntent = errors.New("unknown payment intent")
)

// Intent is an authorized, not yet confirmed charge.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}

type Confirmation struct {
	IntentID string `json:"intentId"`
	Status   string `json:"status"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error)
	// TokenizeCard resolves the opaque handle produced by the card widget
	// into a payment method token the processor accepts.
	TokenizeCard(ctx context.Context, handle string) (string, error)
	ConfirmPayment(ctx context.Context, clientSecret, token string) (Confirmation, error)
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(clientSecret string) (string, bool) {
	id, _, ok := strings.Cut(clientSecret, "_secret_")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
