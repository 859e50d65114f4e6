package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// StripeConfig configures the Stripe adapter. URL overrides the API base and
// is only set in tests.
type StripeConfig struct {
	SecretKey string
	URL       string
	Timeout   time.Duration
}

// Stripe talks to the Stripe API over an instrumented HTTP client.
type Stripe struct {
	api    *client.API
	logger *zap.Logger
}

func NewStripe(cfg StripeConfig, logger *zap.Logger) *Stripe {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(1),
	}
	if cfg.URL != "" {
		backendCfg.URL = stripe.String(strings.TrimRight(cfg.URL, "/"))
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &Stripe{api: api, logger: logger}
}

func (s *Stripe) CreateIntent(ctx context.Context, amountCents int64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		s.logger.Warn("stripe: create intent", zap.Int64("amount", amountCents), zap.Error(err))
		return Intent{}, mapStripeError(err)
	}
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func (s *Stripe) TokenizeCard(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", errors.New("card handle required")
	}
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	pm, err := s.api.PaymentMethods.Get(handle, params)
	if err != nil {
		return "", mapStripeError(err)
	}
	if pm.Type != stripe.PaymentMethodTypeCard {
		return "", fmt.Errorf("payment method %s is %s, not card", pm.ID, pm.Type)
	}
	return pm.ID, nil
}

func (s *Stripe) ConfirmPayment(ctx context.Context, clientSecret, token string) (Confirmation, error) {
	id, ok := IntentIDFromSecret(clientSecret)
	if !ok {
		return Confirmation{}, errors.New("malformed client secret")
	}
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(token),
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Confirm(id, params)
	if err != nil {
		s.logger.Warn("stripe: confirm intent", zap.String("intent_id", id), zap.Error(err))
		return Confirmation{}, mapStripeError(err)
	}
	conf := Confirmation{IntentID: pi.ID, Status: string(pi.Status)}
	// requires_action and processing are not completed charges for this flow.
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return conf, fmt.Errorf("intent %s status %s: %w", pi.ID, pi.Status, ErrDeclined)
	}
	return conf, nil
}

func mapStripeError(err error) error {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch {
	case serr.Type == stripe.ErrorTypeCard:
		return fmt.Errorf("%s: %w", serr.Msg, ErrDeclined)
	case serr.Code == stripe.ErrorCodeResourceMissing && serr.Param != "payment_method":
		return fmt.Errorf("%s: %w", serr.Msg, ErrUnknownIntent)
	}
	return err
}
