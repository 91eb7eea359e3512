package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	h "github.com/devxankit/mv-store-cart/internal/http"
	"github.com/devxankit/mv-store-cart/internal/mirror"
	"github.com/devxankit/mv-store-cart/internal/poller"
	"github.com/devxankit/mv-store-cart/internal/remote"
	"github.com/devxankit/mv-store-cart/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	HTTPPort        string
	APIBaseURL      string
	APIToken        string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIBaseURL:      getEnv("CART_API_BASE_URL", "http://localhost:5000/api"),
		APIToken:        getEnv("CART_API_TOKEN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The mirror is a pure cache; when Redis is down the agent still works,
	// it just starts with an empty cart after a restart.
	var m mirror.Mirror
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, falling back to in-memory mirror: %v", err)
		m = mirror.NewMemoryMirror()
	} else {
		log.Printf("redis ping succeeded")
		m = mirror.NewRedisMirror(redisClient)
	}

	cartClient := remote.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	productClient := remote.NewProductClient(cfg.APIBaseURL, cfg.RequestTimeout)

	st := store.New(cartClient)

	// Seed from the mirror first so the UI shows a plausible cart
	// immediately, then let the server's answer overwrite it.
	mirror.Seed(ctx, m, st)
	unwatch := mirror.Watch(st, m)
	defer unwatch()

	if cfg.APIToken != "" {
		go func() {
			fetchCtx, fetchCancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer fetchCancel()
			if err := st.Fetch(remote.ContextWithToken(fetchCtx, cfg.APIToken)); err != nil {
				log.Printf("initial cart fetch failed: %v", err)
			}
		}()
	}

	if cfg.KafkaBrokers != "" {
		p := poller.New(st, m, strings.Split(cfg.KafkaBrokers, ",")...)
		defer p.Close()
		go p.Run(ctx)
		log.Printf("checkout-completed consumer started (%s)", cfg.KafkaBrokers)
	}

	cartHandler := h.NewCartHandler(st, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(productClient, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.BearerTokenMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/featured", productHandler.Featured)
			r.Get("/{product_id}", productHandler.Get)
		})
		r.Get("/categories", productHandler.Categories)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "cart-agent"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("cart agent starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down cart agent...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("cart agent stopped")
}
