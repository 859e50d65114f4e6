package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	cartsvc "storefront/internal/service/cart"
)

func newProductsCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				products, err := env.Products.List(cmd.Context())
				if err != nil {
					return err
				}
				out := printer{format: opts.Format, w: cmd.OutOrStdout()}
				return out.print(products, func(w io.Writer) error {
					for _, p := range products {
						fmt.Fprintf(w, "%s  %s\n", p.Key, p.Name)
						for _, o := range p.Options {
							fmt.Fprintf(w, "    %-10s %-16s %s %s\n", o.Key, o.Name, pricing.Format(o.PriceCents), p.Currency)
						}
					}
					return nil
				})
			})
		},
	}
}

func newAddCommand(opts *RootOptions, open Opener) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-key> [option-key]",
		Short: "Add a product to the cart",
		Long:  "Add a product to the cart. Without an option key the first option is used.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			optionKey := ""
			if len(args) == 2 {
				optionKey = args[1]
			}
			return withEnv(opts, open, func(env *Env) error {
				c, err := env.cart(opts).AddProduct(cmd.Context(), args[0], optionKey, quantity)
				if err != nil {
					return describe(err)
				}
				return printCart(opts, cmd.OutOrStdout(), c)
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of items")
	return cmd
}

func newCartCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				c, err := env.cart(opts).Load(cmd.Context())
				if err != nil {
					return err
				}
				return printCart(opts, cmd.OutOrStdout(), c)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <position>",
		Short: "Remove the item at a position shown by `cart`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}
			return withEnv(opts, open, func(env *Env) error {
				c, err := env.cart(opts).RemoveItem(cmd.Context(), pos-1)
				if err != nil {
					return fmt.Errorf("no item at position %d: %w", pos, err)
				}
				return printCart(opts, cmd.OutOrStdout(), c)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				if err := env.cart(opts).Clear(cmd.Context()); err != nil {
					return err
				}
				return printCart(opts, cmd.OutOrStdout(), domain.Cart{})
			})
		},
	})

	return cmd
}

func printCart(opts *RootOptions, w io.Writer, c domain.Cart) error {
	view := cartsvc.NewView(c)
	out := printer{format: opts.Format, w: w}
	return out.print(view, func(w io.Writer) error {
		writeItems(w, view.Items)
		writeTotals(w, view.Totals)
		return nil
	})
}
