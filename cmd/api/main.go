package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/messaging"
	"storefront/internal/payment"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/repository/slot"
	"storefront/internal/seed"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	"storefront/internal/telemetry"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

type storage struct {
	slots    slot.Backend
	products productrepo.Repository
	pinger   httpserver.Pinger
	close    func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		return &storage{
			slots:    slot.NewPostgres(pool),
			products: productrepo.NewPostgres(pool, logger),
			pinger:   pool,
			close:    pool.Close,
		}, nil
	case config.DriverSQLite:
		lite, err := slot.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			slots:    lite,
			products: productrepo.NewMemory(seed.Catalog()...),
			pinger:   lite,
			close:    func() { _ = lite.Close() },
		}, nil
	case config.DriverMemory:
		return &storage{
			slots:    slot.NewMemory(),
			products: productrepo.NewMemory(seed.Catalog()...),
			close:    func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newGateway(cfg config.Config, logger *zap.Logger) payment.Gateway {
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, using fake payment gateway")
		return payment.NewFake()
	}
	return payment.NewStripe(payment.StripeConfig{
		SecretKey: cfg.StripeSecretKey,
		URL:       cfg.StripeAPIURL,
	}, logger)
}

func main() {
	cfg := config.FromEnv()
	logger := logging.Must(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion)
	if err != nil {
		logger.Fatal("init tracer provider", zap.Error(err))
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Fatal("init meter provider", zap.Error(err))
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.close()

	opts := []checkoutsvc.Option{
		checkoutsvc.WithLogger(logger),
		checkoutsvc.WithCurrency(cfg.Currency),
		checkoutsvc.WithMeter(otel.Meter(serviceName)),
	}
	var producer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		opts = append(opts, checkoutsvc.WithPublisher(producer))
	}

	gateway := newGateway(cfg, logger)
	checkoutService := checkoutsvc.New(gateway, opts...)
	productService := productsvc.New(store.products)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Slots:         store.slots,
		ProductSvc:    productService,
		CheckoutSvc:   checkoutService,
		Gateway:       gateway,
		Currency:      cfg.Currency,
		Pinger:        store.pinger,
		Metrics:       metricsHandler,
		CORSOrigins:   cfg.CORSOrigins,
		SessionCookie: cfg.SessionCookie,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if err := shutdownMeter(ctx); err != nil {
		logger.Warn("shutdown meter provider", zap.Error(err))
	}
	if err := shutdownTracer(ctx); err != nil {
		logger.Warn("shutdown tracer provider", zap.Error(err))
	}
}
