package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
	"storefront/internal/service/confirmation"
)

func newCheckoutCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Walk through shipping and payment",
	}

	cmd.AddCommand(newCheckoutStatusCommand(opts, open))
	cmd.AddCommand(newCheckoutShippingCommand(opts, open))
	cmd.AddCommand(newCheckoutPayCommand(opts, open))
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Leave checkout and keep shopping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				if err := env.checkout(opts).Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Checkout reset")
				return nil
			})
		},
	})

	return cmd
}

func newCheckoutStatusCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current checkout step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				view, err := env.checkout(opts).State(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return printCheckout(opts, cmd.OutOrStdout(), view)
			})
		},
	}
}

func addressFlags(cmd *cobra.Command, prefix string, a *domain.Address, contact bool) {
	f := cmd.Flags()
	f.StringVar(&a.FirstName, prefix+"first-name", "", "first name")
	f.StringVar(&a.LastName, prefix+"last-name", "", "last name")
	f.StringVar(&a.StreetAddress, prefix+"street", "", "street address")
	f.StringVar(&a.PostalCode, prefix+"postal-code", "", "postal code")
	f.StringVar(&a.PostalAddress, prefix+"city", "", "postal address")
	if contact {
		f.StringVar(&a.OrganizationNumber, prefix+"org-number", "", "organization number (optional)")
		f.StringVar(&a.Phone, prefix+"phone", "", "phone number")
		f.StringVar(&a.Email, prefix+"email", "", "email address")
	}
}

func newCheckoutShippingCommand(opts *RootOptions, open Opener) *cobra.Command {
	var in checkoutsvc.ShippingInput

	cmd := &cobra.Command{
		Use:   "shipping",
		Short: "Submit billing and shipping details",
		Long: `Submit billing details and, with --ship-to-different, a separate shipping
address. On success checkout moves on to payment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				view, err := env.checkout(opts).SubmitShipping(cmd.Context(), in)
				if err != nil {
					return describe(err)
				}
				return printCheckout(opts, cmd.OutOrStdout(), view)
			})
		},
	}

	addressFlags(cmd, "", &in.Billing, true)
	addressFlags(cmd, "ship-", &in.Shipping, false)
	cmd.Flags().BoolVar(&in.ShipToDifferentAddress, "ship-to-different", false, "ship to the --ship-* address instead of the billing address")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "order notes")
	return cmd
}

func newCheckoutPayCommand(opts *RootOptions, open Opener) *cobra.Command {
	var (
		in     checkoutsvc.PaymentInput
		method string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Choose a payment method and place the order",
		Long: `Place the order. Card payments need --token, the handle produced by the
card widget (with the fake gateway any pm_ token except pm_card_chargeDeclined
succeeds). Vipps uses --vipps-phone or the billing phone. Invoice is sent to the
billing email.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Method = domain.PaymentMethod(method)
			return withEnv(opts, open, func(env *Env) error {
				order, err := env.checkout(opts).SubmitPayment(cmd.Context(), in)
				if err != nil {
					return describe(err)
				}
				view := confirmation.NewView(order)
				out := printer{format: opts.Format, w: cmd.OutOrStdout()}
				return out.print(view, func(w io.Writer) error {
					fmt.Fprintf(w, "Order %s placed\n\n", order.Number)
					return confirmation.RenderText(w, view)
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&method, "method", string(domain.PaymentCard), "payment method (card|vipps|invoice)")
	f.StringVar(&in.PaymentMethodToken, "token", "", "card widget payment method handle")
	f.StringVar(&in.VippsPhone, "vipps-phone", "", "phone number registered with Vipps")
	f.BoolVar(&in.AcceptTerms, "accept-terms", false, "accept the terms of sale")
	return cmd
}

func printCheckout(opts *RootOptions, w io.Writer, view checkoutsvc.View) error {
	out := printer{format: opts.Format, w: w}
	return out.print(view, func(w io.Writer) error {
		fmt.Fprintf(w, "Step: %s\n", view.Step)
		writeItems(w, view.Items)
		writeTotals(w, view.Totals)
		if view.Billing.Email != "" {
			fmt.Fprintf(w, "Billing: %s, %s, %s %s\n", view.Billing.FullName(),
				view.Billing.StreetAddress, view.Billing.PostalCode, view.Billing.PostalAddress)
		}
		if view.ShipToDifferentAddress && view.Shipping != nil {
			fmt.Fprintf(w, "Ship to: %s, %s, %s %s\n", view.Shipping.FullName(),
				view.Shipping.StreetAddress, view.Shipping.PostalCode, view.Shipping.PostalAddress)
		}
		return nil
	})
}
