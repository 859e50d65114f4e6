// Package confirmation presents the most recently placed order.
package confirmation

import (
	"context"
	"fmt"
	"io"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/repository/slot"
)

type View struct {
	Order        domain.Order   `json:"order"`
	Date         string         `json:"date"`
	ShipTo       domain.Address `json:"shipTo"`
	VATCents     int64          `json:"vatCents"`
	PaymentLabel string         `json:"paymentLabel"`
	NextSteps    []string       `json:"nextSteps"`
}

// Last reads the "lastOrder" slot. An absent or unreadable order is reported
// as domain.ErrNotFound.
func Last(ctx context.Context, slots slot.Store) (View, error) {
	var order domain.Order
	ok, err := slot.GetJSON(ctx, slots, slot.KeyLastOrder, &order)
	if err != nil {
		return View{}, err
	}
	if !ok || order.ID == "" {
		return View{}, domain.ErrNotFound
	}
	return NewView(order), nil
}

func NewView(o domain.Order) View {
	return View{
		Order:        o,
		Date:         o.CreatedAt.Format("2006-01-02"),
		ShipTo:       o.ShipTo(),
		VATCents:     pricing.VATPortion(o.TotalCents),
		PaymentLabel: paymentLabel(o.Payment.Method),
		NextSteps:    nextSteps(o),
	}
}

func paymentLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentCard:
		return "Card"
	case domain.PaymentVipps:
		return "Vipps"
	case domain.PaymentInvoice:
		return "Invoice"
	}
	return string(m)
}

func nextSteps(o domain.Order) []string {
	email := o.BillingAddress.Email
	if email == "" {
		email = "your email address"
	}
	steps := []string{
		"An order confirmation has been sent to " + email + ".",
		"Your order is processed within 1-2 business days.",
		"You will receive tracking information once the order has shipped.",
	}
	if o.Payment.Method == domain.PaymentInvoice {
		steps = append(steps, "The invoice is sent separately by email.")
	}
	return steps
}

// RenderText writes a plain-text receipt of the order.
func RenderText(w io.Writer, v View) error {
	o := v.Order
	cur := o.Currency
	var b strings.Builder

	fmt.Fprintf(&b, "ORDER %s\n", o.Number)
	fmt.Fprintf(&b, "Placed %s\n", o.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString("\nItems\n")
	for _, item := range o.LineItems {
		fmt.Fprintf(&b, "- %s\n", item.Name)
		fmt.Fprintf(&b, "  %d x %s = %s\n", item.Quantity, pricing.Format(item.UnitPriceCents), pricing.Format(item.TotalCents))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %s\n", pricing.Format(o.SubtotalCents), cur)
	fmt.Fprintf(&b, "Freight: %s %s\n", pricing.Format(o.FreightCents), cur)
	fmt.Fprintf(&b, "Total: %s %s\n", pricing.Format(o.TotalCents), cur)
	fmt.Fprintf(&b, "  incl. VAT: %s %s\n", pricing.Format(v.VATCents), cur)

	b.WriteString("\nBilling address\n")
	writeAddress(&b, o.BillingAddress)
	b.WriteString("\nShipping address\n")
	if o.ShippingAddress == nil {
		b.WriteString("Same as billing\n")
	} else {
		writeAddress(&b, *o.ShippingAddress)
	}

	fmt.Fprintf(&b, "\nPayment: %s\n", v.PaymentLabel)
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}

	b.WriteString("\nNext steps\n")
	for _, step := range v.NextSteps {
		fmt.Fprintf(&b, "- %s\n", step)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAddress(b *strings.Builder, a domain.Address) {
	b.WriteString(a.FullName() + "\n")
	if a.OrganizationNumber != "" {
		fmt.Fprintf(b, "Org. no. %s\n", a.OrganizationNumber)
	}
	b.WriteString(a.StreetAddress + "\n")
	fmt.Fprintf(b, "%s %s\n", a.PostalCode, a.PostalAddress)
	for _, line := range []string{a.Phone, a.Email} {
		if line != "" {
			b.WriteString(line + "\n")
		}
	}
}
