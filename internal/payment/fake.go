package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DeclinedCardToken is the widget handle the fake gateway always declines.
const DeclinedCardToken = "pm_card_chargeDeclined"

type fakeIntent struct {
	Intent
	status string
}

// Fake is an in-memory gateway used when no processor key is configured.
type Fake struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*fakeIntent
}

func NewFake() *Fake {
	return &Fake{intents: make(map[string]*fakeIntent)}
}

func (f *Fake) CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	if amountCents <= 0 {
		return Intent{}, errors.New("amount must be positive")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("pi_fake_%d", f.seq)
	in := Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%d", id, f.seq),
		AmountCents:  amountCents,
		Currency:     strings.ToLower(currency),
	}
	f.intents[id] = &fakeIntent{Intent: in, status: "requires_payment_method"}
	return in, nil
}

func (f *Fake) TokenizeCard(ctx context.Context, handle string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasPrefix(handle, "pm_") {
		return "", fmt.Errorf("unknown card handle %q", handle)
	}
	return handle, nil
}

func (f *Fake) ConfirmPayment(ctx context.Context, clientSecret, token string) (Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}
	id, ok := IntentIDFromSecret(clientSecret)
	if !ok {
		return Confirmation{}, errors.New("malformed client secret")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[id]
	if !ok || in.ClientSecret != clientSecret {
		return Confirmation{}, fmt.Errorf("no such payment intent %s: %w", id, ErrUnknownIntent)
	}
	if token == DeclinedCardToken {
		in.status = "requires_payment_method"
		return Confirmation{IntentID: id, Status: in.status}, fmt.Errorf("your card was declined: %w", ErrDeclined)
	}
	if in.status == "succeeded" {
		return Confirmation{}, fmt.Errorf("payment intent %s already succeeded", id)
	}
	in.status = "succeeded"
	return Confirmation{IntentID: id, Status: in.status}, nil
}
