package cli

import (
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/payment"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/repository/slot"
	"storefront/internal/seed"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
)

// Env is what a command runs against.
type Env struct {
	Slots    slot.Backend
	Products productrepo.Repository
	Checkout *checkoutsvc.Service
	Close    func() error
}

// Opener builds the Env for one command invocation.
type Opener func(opts *RootOptions) (*Env, error)

// OpenSQLite uses the file at opts.DBPath for session slots and the built-in
// catalog for products. Card payments go to the processor when
// STRIPE_SECRET_KEY is set and to the in-process fake gateway otherwise.
func OpenSQLite(opts *RootOptions) (*Env, error) {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lite, err := slot.OpenSQLite(opts.DBPath)
	if err != nil {
		return nil, err
	}

	var gateway payment.Gateway = payment.NewFake()
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripe(payment.StripeConfig{
			SecretKey: cfg.StripeSecretKey,
			URL:       cfg.StripeAPIURL,
		}, logger)
	}

	return &Env{
		Slots:    lite,
		Products: productrepo.NewMemory(seed.Catalog()...),
		Checkout: checkoutsvc.New(gateway,
			checkoutsvc.WithLogger(logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))),
			checkoutsvc.WithCurrency(cfg.Currency),
		),
		Close: func() error {
			_ = logger.Sync()
			return lite.Close()
		},
	}, nil
}

func (e *Env) session(opts *RootOptions) slot.Store {
	return slot.Bind(e.Slots, opts.Session)
}

func (e *Env) cart(opts *RootOptions) *cartsvc.Store {
	return cartsvc.New(e.session(opts), e.Products)
}

func (e *Env) checkout(opts *RootOptions) *checkoutsvc.Machine {
	return e.Checkout.Session(opts.Session, e.session(opts))
}

// withEnv opens the Env, runs fn and closes it again.
func withEnv(opts *RootOptions, open Opener, fn func(env *Env) error) error {
	env, err := open(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}
