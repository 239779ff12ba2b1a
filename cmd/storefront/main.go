package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mousdieng/buy01/internal/cart"
	"github.com/mousdieng/buy01/internal/checkout"
	"github.com/mousdieng/buy01/internal/gateway"
	"github.com/mousdieng/buy01/internal/httpapi"
	"github.com/mousdieng/buy01/internal/payment"
	"github.com/mousdieng/buy01/internal/telemetry"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	RedisAddr       string
	StripeAPIKey    string
	ReturnURL       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendURL:      getEnv("BACKEND_API_URL", "http://localhost:8081/api/v1"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		StripeAPIKey:    getEnv("STRIPE_API_KEY", ""),
		ReturnURL:       getEnv("PAYMENT_RETURN_URL", "http://localhost:8080/profile"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	logger := telemetry.NewLogger("storefront")
	metrics := telemetry.NewCheckoutMetrics()

	client := gateway.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	cartGateway := gateway.NewCartGateway(client)
	productGateway := gateway.NewProductGateway(client)
	userGateway := gateway.NewUserGateway(client)
	mediaGateway := gateway.NewMediaGateway(client)
	orderGateway := gateway.NewOrderGateway(client, productGateway, userGateway, mediaGateway)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cartStore := cart.NewStore(cartGateway, cart.NewRedisCache(redisClient), logger)

	sessions := httpapi.NewSessionManager(func(userID string) *checkout.Orchestrator {
		return checkout.NewOrchestrator(checkout.Config{
			UserID:    userID,
			ReturnURL: cfg.ReturnURL,
			Carts:     cartStore,
			Orders:    orderGateway,
			Products:  productGateway,
			Bridge:    payment.NewStripeBridge(cfg.StripeAPIKey),
			Logger:    logger,
		})
	})

	checkoutHandler := httpapi.NewCheckoutHandler(sessions, orderGateway, metrics, cfg.RequestTimeout)
	cartHandler := httpapi.NewCartHandler(cartStore, cfg.RequestTimeout)
	ordersHandler := httpapi.NewOrdersHandler(orderGateway, cfg.RequestTimeout)

	router := httpapi.NewRouter(checkoutHandler, cartHandler, ordersHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
