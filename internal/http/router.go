package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	CORSOrigins        []string
	ExposeErrors       bool
}

type Services struct {
	Carts    CartService
	Orders   OrderService
	Products ProductService
	Payments PaymentService
	Auth     Authenticator
}

func NewRouter(cfg RouterConfig, svc Services, logger *zap.Logger) http.Handler {
	rs := newResponder(logger, cfg.ExposeErrors, cfg.MaxRequestBodySize)

	cartHandler := NewCartHandler(svc.Carts, rs, cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(svc.Orders, rs, cfg.RequestTimeout)
	productHandler := NewProductHandler(svc.Products, rs, cfg.RequestTimeout)
	paymentHandler := NewPaymentHandler(svc.Payments, rs, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.ok(w, http.StatusOK, "", map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-razorpay-order", paymentHandler.CreateRazorpayOrder)
			r.Post("/verify-payment", paymentHandler.VerifyPayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(svc.Auth, rs))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/", cartHandler.AddItem)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/sync", cartHandler.SyncCart)
				r.Put("/{productId}", cartHandler.UpdateQuantity)
				r.Delete("/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Post("/", ordersHandler.CreateOrder)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}))
}
