// Package cli is a terminal front end for the storefront: browse the catalog,
// fill the cart and walk through checkout against a local session store.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string
	Session string
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultSession is the session every command uses unless --session is given.
const DefaultSession = "cli"

// NewRootCommand creates the root command backed by the sqlite session store.
func NewRootCommand() *cobra.Command {
	return newRootCommand(OpenSQLite)
}

func newRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront checkout from the terminal",
		Long:  "Browse products, manage the cart and place orders using the same checkout flow as the HTTP API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Session == "" {
				return fmt.Errorf("session must not be empty")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", config.FromEnv().SQLitePath, "sqlite database file")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", DefaultSession, "session id the cart and checkout belong to")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newProductsCommand(opts, open))
	cmd.AddCommand(newAddCommand(opts, open))
	cmd.AddCommand(newCartCommand(opts, open))
	cmd.AddCommand(newCheckoutCommand(opts, open))
	cmd.AddCommand(newReceiptCommand(opts, open))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
