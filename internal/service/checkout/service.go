// Package checkout drives the shipping -> payment -> confirmation flow for
// one session and turns the cart into an Order once payment succeeds.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/repository/slot"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/validate"
)

// OrderPublisher receives an event for every placed order. Publishing is
// best effort and never undoes an order.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error
}

type Service struct {
	gateway     payment.Gateway
	publisher   OrderPublisher
	logger      *zap.Logger
	currency    string
	locks       *sessionLocks
	now         func() time.Time
	orderNumber func() string

	ordersPlaced    metric.Int64Counter
	paymentFailures metric.Int64Counter
}

type Option func(*Service)

func WithPublisher(p OrderPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithCurrency(c string) Option {
	return func(s *Service) { s.currency = strings.ToUpper(c) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithOrderNumbers(next func() string) Option {
	return func(s *Service) { s.orderNumber = next }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.initMetrics(m) }
}

func New(gateway payment.Gateway, opts ...Option) *Service {
	s := &Service{
		gateway:     gateway,
		logger:      zap.NewNop(),
		currency:    "NOK",
		locks:       newSessionLocks(),
		now:         time.Now,
		orderNumber: randomOrderNumber,
	}
	s.initMetrics(otel.Meter("storefront/checkout"))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) initMetrics(m metric.Meter) {
	var err error
	s.ordersPlaced, err = m.Int64Counter("checkout_orders_placed_total",
		metric.WithDescription("Orders placed, by payment method"))
	if err != nil {
		s.ordersPlaced = noop.Int64Counter{}
	}
	s.paymentFailures, err = m.Int64Counter("checkout_payment_failures_total",
		metric.WithDescription("Payment gateway failures, by operation"))
	if err != nil {
		s.paymentFailures = noop.Int64Counter{}
	}
}

func randomOrderNumber() string {
	return fmt.Sprintf("#%04d", rand.IntN(10000))
}

// Session returns the state machine for one session's slots.
func (s *Service) Session(id string, slots slot.Store) *Machine {
	return &Machine{
		svc:   s,
		id:    id,
		slots: slots,
		cart:  cartsvc.New(slots, nil),
	}
}

type Machine struct {
	svc   *Service
	id    string
	slots slot.Store
	cart  *cartsvc.Store
}

// load reads the persisted step and the cart and applies the entry guards.
// A finished checkout followed by a new cart starts over at shipping with
// the previous billing address prefilled.
func (m *Machine) load(ctx context.Context) (state, domain.Cart, error) {
	var st state
	ok, err := slot.GetJSON(ctx, m.slots, slot.KeyCheckout, &st)
	if err != nil {
		return state{}, domain.Cart{}, err
	}
	if !ok || !st.Step.valid() {
		st = state{Step: StepShipping}
	}
	c, err := m.cart.Load(ctx)
	if err != nil {
		return state{}, domain.Cart{}, err
	}
	if st.Step == StepConfirmation && st.CartPendingClear && !c.Empty() {
		// The cart is the one already ordered; finish removing it.
		if err := m.clearCart(ctx); err != nil {
			return state{}, domain.Cart{}, fmt.Errorf("clear ordered cart: %w", err)
		}
		st.CartPendingClear = false
		if err := m.save(ctx, st); err != nil {
			return state{}, domain.Cart{}, err
		}
		c = domain.Cart{}
	}
	if st.Step == StepConfirmation && !c.Empty() {
		st = state{Step: StepShipping, Billing: st.Billing}
		if err := m.save(ctx, st); err != nil {
			return state{}, domain.Cart{}, err
		}
	}
	if c.Empty() && st.Step != StepConfirmation {
		return state{}, domain.Cart{}, domain.ErrEmptyCart
	}
	return st, c, nil
}

func (m *Machine) save(ctx context.Context, st state) error {
	return slot.SetJSON(ctx, m.slots, slot.KeyCheckout, st)
}

func (m *Machine) State(ctx context.Context) (View, error) {
	st, c, err := m.load(ctx)
	if err != nil {
		return View{}, err
	}
	return newView(st, c), nil
}

// SubmitShipping validates the address form and advances to payment. It may
// be called again from the payment step to edit the addresses.
func (m *Machine) SubmitShipping(ctx context.Context, in ShippingInput) (View, error) {
	st, c, err := m.load(ctx)
	if err != nil {
		return View{}, err
	}
	if st.Step == StepConfirmation {
		return View{}, domain.ErrInvalidStep
	}

	fields := validate.Address("billing", in.Billing, validate.BillingRequired)
	if in.ShipToDifferentAddress {
		for k, msg := range validate.Address("shipping", in.Shipping, validate.ShippingRequired) {
			fields[k] = msg
		}
	}
	if len(fields) > 0 {
		return View{}, &domain.ValidationError{Fields: fields}
	}

	st.Billing = validate.Normalize(in.Billing)
	st.ShipToDifferentAddress = in.ShipToDifferentAddress
	st.Shipping = nil
	if in.ShipToDifferentAddress {
		shipping := validate.Normalize(in.Shipping)
		st.Shipping = &shipping
	}
	st.Notes = strings.TrimSpace(in.Notes)
	st.Step = StepPayment
	if err := m.save(ctx, st); err != nil {
		return View{}, err
	}
	return newView(st, c), nil
}

// PreparePayment returns the card payment intent for the current total,
// creating or replacing it as needed.
func (m *Machine) PreparePayment(ctx context.Context) (payment.Intent, error) {
	unlock, ok := m.svc.locks.tryLock(m.id)
	if !ok {
		return payment.Intent{}, domain.ErrPaymentInProgress
	}
	defer unlock()

	st, c, err := m.load(ctx)
	if err != nil {
		return payment.Intent{}, err
	}
	if st.Step != StepPayment {
		return payment.Intent{}, domain.ErrInvalidStep
	}
	total, err := pricing.CheckedTotal(c.Items)
	if err != nil {
		return payment.Intent{}, err
	}
	intent, err := m.ensureIntent(ctx, &st, total)
	if err != nil {
		return payment.Intent{}, err
	}
	if err := m.save(ctx, st); err != nil {
		return payment.Intent{}, err
	}
	return intent, nil
}

// ensureIntent reuses the stored intent only while its amount matches total.
func (m *Machine) ensureIntent(ctx context.Context, st *state, total int64) (payment.Intent, error) {
	if st.Intent != nil && st.Intent.AmountCents == total && strings.EqualFold(st.Intent.Currency, m.svc.currency) {
		return *st.Intent, nil
	}
	if st.Intent != nil {
		m.svc.logger.Info("checkout: replacing stale payment intent",
			zap.String("session", m.id),
			zap.String("intent_id", st.Intent.ID),
			zap.Int64("old_amount", st.Intent.AmountCents),
			zap.Int64("new_amount", total))
	}
	intent, err := m.svc.gateway.CreateIntent(ctx, total, m.svc.currency)
	if err != nil {
		return payment.Intent{}, m.gatewayFailure(ctx, "create intent", err)
	}
	st.Intent = &intent
	return intent, nil
}

func (m *Machine) gatewayFailure(ctx context.Context, op string, err error) error {
	m.svc.paymentFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	m.svc.logger.Warn("checkout: payment gateway failure",
		zap.String("session", m.id),
		zap.String("operation", op),
		zap.Error(err))
	return &domain.GatewayError{Op: op, Err: err}
}

// SubmitPayment places the order. Card payments are charged first; vipps and
// invoice are settled outside the flow. Any failure leaves the session in the
// payment step with the cart untouched.
func (m *Machine) SubmitPayment(ctx context.Context, in PaymentInput) (domain.Order, error) {
	if !in.AcceptTerms {
		return domain.Order{}, domain.ErrTermsNotAccepted
	}
	if !in.Method.Valid() {
		return domain.Order{}, domain.ErrUnsupportedPayment
	}

	unlock, ok := m.svc.locks.tryLock(m.id)
	if !ok {
		return domain.Order{}, domain.ErrPaymentInProgress
	}
	defer unlock()

	st, c, err := m.load(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if st.Step != StepPayment {
		return domain.Order{}, domain.ErrInvalidStep
	}
	total, err := pricing.CheckedTotal(c.Items)
	if err != nil {
		return domain.Order{}, err
	}

	var selection domain.PaymentSelection
	switch in.Method {
	case domain.PaymentCard:
		selection, err = m.chargeCard(ctx, &st, total, in.PaymentMethodToken)
	case domain.PaymentVipps:
		selection, err = vippsSelection(st, in.VippsPhone)
	case domain.PaymentInvoice:
		selection = domain.PaymentSelection{
			Method:  domain.PaymentInvoice,
			Invoice: &domain.InvoicePayment{Email: st.Billing.Email},
		}
	}
	if err != nil {
		return domain.Order{}, err
	}

	return m.place(ctx, st, c, selection)
}

func (m *Machine) chargeCard(ctx context.Context, st *state, total int64, handle string) (domain.PaymentSelection, error) {
	if strings.TrimSpace(handle) == "" {
		return domain.PaymentSelection{}, &domain.ValidationError{Fields: map[string]string{
			"paymentMethodToken": "Card details are required",
		}}
	}
	before := st.Intent
	intent, err := m.ensureIntent(ctx, st, total)
	if err != nil {
		return domain.PaymentSelection{}, err
	}
	if st.Intent != before {
		if err := m.save(ctx, *st); err != nil {
			return domain.PaymentSelection{}, err
		}
	}

	token, err := m.svc.gateway.TokenizeCard(ctx, handle)
	if err != nil {
		return domain.PaymentSelection{}, m.gatewayFailure(ctx, "tokenize card", err)
	}
	conf, err := m.svc.gateway.ConfirmPayment(ctx, intent.ClientSecret, token)
	if errors.Is(err, payment.ErrUnknownIntent) {
		// The gateway lost the stored intent; start over with a fresh one once.
		m.svc.logger.Info("checkout: payment intent unknown to gateway, recreating",
			zap.String("session", m.id),
			zap.String("intent_id", intent.ID))
		st.Intent = nil
		if intent, err = m.ensureIntent(ctx, st, total); err != nil {
			return domain.PaymentSelection{}, err
		}
		if err := m.save(ctx, *st); err != nil {
			return domain.PaymentSelection{}, err
		}
		conf, err = m.svc.gateway.ConfirmPayment(ctx, intent.ClientSecret, token)
	}
	if err != nil {
		return domain.PaymentSelection{}, m.gatewayFailure(ctx, "confirm payment", err)
	}
	intentID := conf.IntentID
	if intentID == "" {
		intentID = intent.ID
	}
	return domain.PaymentSelection{
		Method: domain.PaymentCard,
		Card:   &domain.CardPayment{PaymentMethodToken: token, IntentID: intentID},
	}, nil
}

func vippsSelection(st state, phone string) (domain.PaymentSelection, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = st.Billing.Phone
	}
	if msg, ok := validate.Field(validate.Phone, phone); !ok {
		return domain.PaymentSelection{}, &domain.ValidationError{Fields: map[string]string{"vippsPhone": msg}}
	}
	return domain.PaymentSelection{
		Method: domain.PaymentVipps,
		Vipps:  &domain.VippsPayment{Phone: phone},
	}, nil
}

// place persists the order, empties the cart and moves to confirmation.
// Only a failure to store the order itself is returned to the caller.
func (m *Machine) place(ctx context.Context, st state, c domain.Cart, selection domain.PaymentSelection) (domain.Order, error) {
	totals := pricing.Summarize(c.Items)
	order := domain.Order{
		ID:             uuid.NewString(),
		Number:         m.svc.orderNumber(),
		CreatedAt:      m.svc.now().UTC(),
		LineItems:      c.Snapshot(),
		BillingAddress: st.Billing,
		Payment:        selection,
		SubtotalCents:  totals.SubtotalCents,
		FreightCents:   totals.FreightCents,
		TotalCents:     totals.TotalCents,
		Currency:       m.svc.currency,
		Notes:          st.Notes,
	}
	if st.Shipping != nil {
		shipping := *st.Shipping
		order.ShippingAddress = &shipping
	}

	if err := slot.SetJSON(ctx, m.slots, slot.KeyLastOrder, order); err != nil {
		m.svc.logger.Error("checkout: store order", zap.String("order_id", order.ID), zap.Error(err))
		return domain.Order{}, fmt.Errorf("store order: %w", err)
	}
	st.CartPendingClear = false
	if err := m.clearCart(ctx); err != nil {
		m.svc.logger.Error("checkout: clear cart", zap.String("order_id", order.ID), zap.Error(err))
		st.CartPendingClear = true
	}

	st.Step = StepConfirmation
	st.Intent = nil
	st.OrderID = order.ID
	if err := m.save(ctx, st); err != nil {
		m.svc.logger.Error("checkout: save state", zap.String("order_id", order.ID), zap.Error(err))
	}

	if m.svc.publisher != nil {
		if err := m.svc.publisher.PublishOrderPlaced(ctx, domain.NewOrderPlacedEvent(order)); err != nil {
			m.svc.logger.Warn("checkout: publish order placed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	m.svc.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(selection.Method))))
	m.svc.logger.Info("checkout: order placed",
		zap.String("session", m.id),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("payment_method", string(selection.Method)),
		zap.Int64("total_cents", order.TotalCents))
	return order, nil
}

// clearCart removes the cart slot, retrying once.
func (m *Machine) clearCart(ctx context.Context) error {
	err := m.cart.Clear(ctx)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err = m.cart.Clear(ctx); err == nil || errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Reset leaves the flow ("continue shopping").
func (m *Machine) Reset(ctx context.Context) error {
	if err := m.slots.Remove(ctx, slot.KeyCheckout); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
