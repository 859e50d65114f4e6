package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/service/confirmation"
)

func newReceiptCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt",
		Short: "Print the receipt of the last placed order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, open, func(env *Env) error {
				view, err := confirmation.Last(cmd.Context(), env.session(opts))
				if errors.Is(err, domain.ErrNotFound) {
					return errors.New("no order has been placed yet")
				}
				if err != nil {
					return err
				}
				out := printer{format: opts.Format, w: cmd.OutOrStdout()}
				return out.print(view, func(w io.Writer) error {
					return confirmation.RenderText(w, view)
				})
			})
		},
	}
}
