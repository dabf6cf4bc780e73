package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/config"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/poller"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		l.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			l.Error("mongo disconnect failed", zap.Error(err))
		}
	}()
	if err := repository.CreateIndexes(ctx, mongoDB); err != nil {
		l.Fatal("failed to create indexes", zap.Error(err))
	}
	l.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	orderRepo := repository.NewMongoOrderRepository(mongoDB)
	productRepo := repository.NewMongoProductRepository(mongoDB)

	// Cart caching and payment sessions are only enabled when Redis is configured.
	var (
		cartCache cache.CartCache = cache.Noop{}
		sessions  payment.SessionStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.Fatal("redis connection failed", zap.Error(err))
		}
		cartCache = cache.NewRedisCache(redisClient)
		sessions = payment.NewRedisSessionStore(redisClient)
		l.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
	}

	gateway := payment.NewGateway(payment.Config{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		BaseURL:   cfg.RazorpayBaseURL,
		Timeout:   cfg.RazorpayTimeout,
	}, l)
	if !gateway.Configured() {
		l.Warn("razorpay keys missing, payment endpoints will fail")
	}

	cartService := service.NewCartService(cartRepo, l, service.WithCache(cartCache))
	productService := service.NewProductService(productRepo)
	paymentService := payment.NewService(gateway, sessions, l)

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		orderEvents := publisher.NewOrderEvents(cfg.KafkaBrokers...)
		defer func() {
			if err := orderEvents.Close(); err != nil {
				l.Error("close order events writer failed", zap.Error(err))
			}
		}()
		events = orderEvents

		p := poller.NewPoller(cartService, l, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(ctx)
		l.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	orderService := service.NewOrderService(orderRepo, productRepo, events, l)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSOrigins:        cfg.CORSOrigins,
		ExposeErrors:       cfg.ExposeErrors,
	}, h.Services{
		Carts:    cartService,
		Orders:   orderService,
		Products: productService,
		Payments: paymentService,
		Auth:     h.NewJWTAuthenticator(cfg.JWTSecret),
	}, l)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	l.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}
	l.Info("server exited")
}
