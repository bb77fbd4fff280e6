package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/api"
	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/dashboard"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/seed"
	"rollcall/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.SeedDemo {
		if err := seed.Run(ctx, backend.Store); err != nil {
			return err
		}
	}

	checks := map[string]api.HealthCheck{"store": backend.Healthy}

	var redisClient *store.Redis
	if cfg.UsesRedis() {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		checks["redis"] = redisClient.Healthy
	}

	var records attendance.Records = backend.Store
	if cfg.CacheLatest {
		records = attendance.NewLatestCache(backend.Store, redisClient.Client, cfg.CacheTTL)
		log.Printf("latest record cache enabled (ttl %s)", cfg.CacheTTL)
	}

	policy, err := attendance.ParseMissingPolicy(cfg.MissingStatusPolicy)
	if err != nil {
		return err
	}
	svc := attendance.NewService(backend.Store, records, backend.Store, policy)

	var verifier auth.Verifier = auth.JWTVerifier{SigningKey: cfg.JWTSigningKey, Issuer: cfg.JWTIssuer}
	if cfg.AuthMode == "static" {
		log.Printf("WARNING: static authentication enabled, every request acts as %s", auth.DevPrincipal.ID)
		verifier = auth.StaticVerifier{Principal: auth.DevPrincipal}
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitPerMin > 0 {
		if cfg.RateLimitBackend == "redis" {
			limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin, time.Minute)
		} else {
			limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
		}
	}

	r := api.NewRouter(api.Deps{
		Service:     svc,
		Accounts:    auth.NewAccounts(backend.Store, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL),
		Dashboards:  dashboard.NewRegistry(svc),
		Verifier:    verifier,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (store=%s)", cfg.HTTPPort, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
