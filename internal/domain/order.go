package domain

import "time"

// Address is used for both billing and shipping. Phone and Email are only
// collected for billing.
type Address struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	OrganizationNumber string `json:"organizationNumber,omitempty"`
	StreetAddress      string `json:"streetAddress"`
	PostalCode         string `json:"postalCode"`
	PostalAddress      string `json:"postalAddress"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
}

func (a Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentVipps   PaymentMethod = "vipps"
	PaymentInvoice PaymentMethod = "invoice"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentVipps, PaymentInvoice:
		return true
	}
	return false
}

// Deferred reports whether the charge happens outside the checkout flow.
func (m PaymentMethod) Deferred() bool {
	return m == PaymentVipps || m == PaymentInvoice
}

// PaymentSelection is a tagged variant: exactly the field matching Method is set.
type PaymentSelection struct {
	Method  PaymentMethod   `json:"method"`
	Card    *CardPayment    `json:"card,omitempty"`
	Vipps   *VippsPayment   `json:"vipps,omitempty"`
	Invoice *InvoicePayment `json:"invoice,omitempty"`
}

// CardPayment never holds card data, only the processor's opaque references.
type CardPayment struct {
	PaymentMethodToken string `json:"paymentMethodToken"`
	IntentID           string `json:"intentId"`
}

type VippsPayment struct {
	Phone string `json:"phone"`
}

type InvoicePayment struct {
	Email string `json:"email"`
}

// Order is the immutable record produced when checkout completes.
type Order struct {
	ID              string           `json:"orderId"`
	Number          string           `json:"orderNumber"`
	CreatedAt       time.Time        `json:"createdAt"`
	LineItems       []LineItem       `json:"lineItems"`
	BillingAddress  Address          `json:"billingAddress"`
	ShippingAddress *Address         `json:"shippingAddress,omitempty"`
	Payment         PaymentSelection `json:"paymentSelection"`
	SubtotalCents   int64            `json:"subtotalCents"`
	FreightCents    int64            `json:"freightCents"`
	TotalCents      int64            `json:"totalCents"`
	Currency        string           `json:"currency"`
	Notes           string           `json:"notes,omitempty"`
}

// ShipTo returns the shipping address, falling back to billing.
func (o Order) ShipTo() Address {
	if o.ShippingAddress != nil {
		return *o.ShippingAddress
	}
	return o.BillingAddress
}
