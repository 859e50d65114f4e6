package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository/slot"
	checkoutsvc "storefront/internal/service/checkout"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByKey(ctx context.Context, key string) (*domain.Product, error)
}

type checkoutService interface {
	Session(id string, slots slot.Store) *checkoutsvc.Machine
}

// Deps are the collaborators the routes need. Pinger and Metrics are optional.
type Deps struct {
	Slots         slot.Backend
	ProductSvc    productService
	CheckoutSvc   checkoutService
	Gateway       payment.Gateway
	Currency      string
	Pinger        Pinger
	Metrics       http.Handler
	CORSOrigins   []string
	SessionCookie string
}

func (d Deps) validate() error {
	switch {
	case d.Slots == nil:
		return errors.New("httpserver: slot backend required")
	case d.ProductSvc == nil:
		return errors.New("httpserver: product service required")
	case d.CheckoutSvc == nil:
		return errors.New("httpserver: checkout service required")
	case d.Gateway == nil:
		return errors.New("httpserver: payment gateway required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Currency == "" {
		deps.Currency = "NOK"
	}
	if deps.SessionCookie == "" {
		deps.SessionCookie = "sid"
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Content-Type", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Pinger))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)
	router.GET("/products/:key", h.getProduct)

	// Stateless proxy to the processor; no session needed.
	router.POST("/create-payment-intent", h.createPaymentIntent)

	session := router.Group("/", sessionMiddleware(deps.SessionCookie))
	{
		session.GET("/cart", h.getCart)
		session.POST("/cart/items", h.addCartItem)
		session.PATCH("/cart/items/:index", h.changeCartItem)
		session.DELETE("/cart/items/:index", h.removeCartItem)
		session.DELETE("/cart", h.clearCart)
		session.GET("/cart/shipping-disclaimer", h.getShippingDisclaimer)
		session.POST("/cart/shipping-disclaimer", h.setShippingDisclaimer)

		session.GET("/checkout", h.getCheckout)
		session.POST("/checkout/shipping", h.submitShipping)
		session.POST("/checkout/payment-intent", h.preparePayment)
		session.POST("/checkout/payment", h.submitPayment)
		session.DELETE("/checkout", h.resetCheckout)

		session.GET("/orders/last", h.lastOrder)
		session.GET("/orders/last/receipt", h.lastOrderReceipt)
	}

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

func (h *handlers) slots(c *gin.Context) slot.Store {
	return slot.Bind(h.deps.Slots, sessionID(c))
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}
