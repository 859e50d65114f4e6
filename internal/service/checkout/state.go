package checkout

import (
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/pricing"
)

type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

func (s Step) valid() bool {
	switch s {
	case StepShipping, StepPayment, StepConfirmation:
		return true
	}
	return false
}

// state is what the "checkout" slot holds between requests.
type state struct {
	Step                   Step            `json:"step"`
	Billing                domain.Address  `json:"billing"`
	Shipping               *domain.Address `json:"shipping,omitempty"`
	ShipToDifferentAddress bool            `json:"shipToDifferentAddress"`
	Notes                  string          `json:"notes,omitempty"`
	Intent                 *payment.Intent `json:"intent,omitempty"`
	OrderID                string          `json:"orderId,omitempty"`
	// CartPendingClear marks a placed order whose cart slot could not be removed.
	CartPendingClear bool `json:"cartPendingClear,omitempty"`
}

// View is the checkout as presented to the client.
type View struct {
	Step                   Step              `json:"step"`
	Items                  []domain.LineItem `json:"items"`
	Totals                 pricing.Totals    `json:"totals"`
	Billing                domain.Address    `json:"billing"`
	Shipping               *domain.Address   `json:"shipping,omitempty"`
	ShipToDifferentAddress bool              `json:"shipToDifferentAddress"`
	Notes                  string            `json:"notes,omitempty"`
	ClientSecret           string            `json:"clientSecret,omitempty"`
	OrderID                string            `json:"orderId,omitempty"`
}

func newView(st state, c domain.Cart) View {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	v := View{
		Step:                   st.Step,
		Items:                  items,
		Totals:                 pricing.Summarize(items),
		Billing:                st.Billing,
		Shipping:               st.Shipping,
		ShipToDifferentAddress: st.ShipToDifferentAddress,
		Notes:                  st.Notes,
		OrderID:                st.OrderID,
	}
	if st.Intent != nil {
		v.ClientSecret = st.Intent.ClientSecret
	}
	return v
}

// ShippingInput is the submitted shipping step form.
type ShippingInput struct {
	Billing                domain.Address `json:"billing"`
	ShipToDifferentAddress bool           `json:"shipToDifferentAddress"`
	Shipping               domain.Address `json:"shipping"`
	Notes                  string         `json:"notes"`
}

// PaymentInput is the submitted payment step form. PaymentMethodToken is the
// handle produced by the card widget.
type PaymentInput struct {
	Method             domain.PaymentMethod `json:"method"`
	PaymentMethodToken string               `json:"paymentMethodToken,omitempty"`
	VippsPhone         string               `json:"vippsPhone,omitempty"`
	AcceptTerms        bool                 `json:"acceptTerms"`
}
