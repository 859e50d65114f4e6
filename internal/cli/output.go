package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

// printer writes either indented JSON or the text rendering of a value.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) print(v any, text func(w io.Writer) error) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(p.w)
}

func writeItems(w io.Writer, items []domain.LineItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "%d. %s  %d x %s = %s\n", i+1, item.Name, item.Quantity,
			pricing.Format(item.UnitPriceCents), pricing.Format(item.TotalCents))
	}
}

func writeTotals(w io.Writer, t pricing.Totals) {
	fmt.Fprintf(w, "Subtotal: %s\n", pricing.Format(t.SubtotalCents))
	fmt.Fprintf(w, "Freight:  %s\n", pricing.Format(t.FreightCents))
	fmt.Fprintf(w, "Total:    %s (VAT %s)\n", pricing.Format(t.TotalCents), pricing.Format(t.VATCents))
}

// describe turns domain errors into something a terminal user can act on.
func describe(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msg := "please correct the following fields:"
		for _, k := range keys {
			msg += fmt.Sprintf("\n  %s: %s", k, verr.Fields[k])
		}
		return errors.New(msg)
	case errors.Is(err, domain.ErrEmptyCart):
		return errors.New("cart is empty, add a product first")
	case errors.Is(err, domain.ErrTermsNotAccepted):
		return errors.New("you must accept the terms of sale (--accept-terms)")
	case errors.Is(err, domain.ErrInvalidStep):
		return errors.New("not possible in the current checkout step, run `storefront checkout status`")
	}
	var gerr *domain.GatewayError
	if errors.As(err, &gerr) {
		return fmt.Errorf("payment failed, please try again: %w", gerr.Err)
	}
	return err
}
