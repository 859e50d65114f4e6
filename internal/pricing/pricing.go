// Package pricing computes cart totals. All amounts are integer minor units (øre).
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// FreightCents is the flat shipping charge applied to every order.
const FreightCents int64 = 21000

// vatRatio extracts the 20% VAT share embedded in a VAT-inclusive amount.
var vatRatio = decimal.NewFromInt(2).Div(decimal.NewFromInt(12))

// Totals is the price summary shown on every checkout and confirmation view.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	FreightCents  int64 `json:"freightCents"`
	TotalCents    int64 `json:"totalCents"`
	VATCents      int64 `json:"vatCents"`
}

// Subtotal sums unit price × quantity. Items are expected to be within the
// domain limits, which the cart guarantees; CheckedTotal reports overflow for
// arbitrary input.
func Subtotal(items []domain.LineItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.UnitPriceCents * int64(item.Quantity)
	}
	return sum
}

// CheckedSubtotal is Subtotal that fails with domain.ErrAmountTooLarge instead
// of wrapping around, and rejects negative prices or quantities.
func CheckedSubtotal(items []domain.LineItem) (int64, error) {
	var sum int64
	for _, item := range items {
		if item.UnitPriceCents < 0 || item.Quantity < 0 {
			return 0, domain.ErrInvalidPrice
		}
		qty := int64(item.Quantity)
		if qty != 0 && item.UnitPriceCents > math.MaxInt64/qty {
			return 0, domain.ErrAmountTooLarge
		}
		line := item.UnitPriceCents * qty
		if sum > math.MaxInt64-line {
			return 0, domain.ErrAmountTooLarge
		}
		sum += line
	}
	return sum, nil
}

// CheckedTotal is the order total, rejected with domain.ErrAmountTooLarge when
// it exceeds domain.MaxOrderCents.
func CheckedTotal(items []domain.LineItem) (int64, error) {
	sub, err := CheckedSubtotal(items)
	if err != nil {
		return 0, err
	}
	if sub > domain.MaxOrderCents-FreightCents {
		return 0, domain.ErrAmountTooLarge
	}
	return sub + Freight(items), nil
}

// Freight does not depend on the cart contents, including an empty cart.
func Freight([]domain.LineItem) int64 {
	return FreightCents
}

func Total(items []domain.LineItem) int64 {
	return Subtotal(items) + Freight(items)
}

// VATPortion returns total × 0.2 / 1.2 rounded half away from zero to the minor unit.
func VATPortion(totalCents int64) int64 {
	return decimal.NewFromInt(totalCents).Mul(vatRatio).Round(0).IntPart()
}

func Summarize(items []domain.LineItem) Totals {
	sub := Subtotal(items)
	freight := Freight(items)
	total := sub + freight
	return Totals{
		SubtotalCents: sub,
		FreightCents:  freight,
		TotalCents:    total,
		VATCents:      VATPortion(total),
	}
}

// Format renders minor units with two decimals, e.g. 369000 -> "3690.00".
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
