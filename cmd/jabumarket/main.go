package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jabumarket/jabumarket/internal/database"
	"github.com/jabumarket/jabumarket/internal/logging"
	"github.com/jabumarket/jabumarket/internal/server"
	"github.com/jabumarket/jabumarket/internal/storage"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(env("JABUMARKET_LOG_LEVEL", "info"), env("JABUMARKET_LOG_FORMAT", "text"))

	db, err := database.Open(env("JABUMARKET_DB_PATH", "jabumarket.db"))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		TokenSecret:   os.Getenv("JABUMARKET_TOKEN_SECRET"),
		SecureCookies: env("JABUMARKET_SECURE_COOKIES", "true") == "true",
		Storage: storage.Config{
			Endpoint:  os.Getenv("JABUMARKET_S3_ENDPOINT"),
			Bucket:    env("JABUMARKET_S3_BUCKET", "jabumarket"),
			Region:    env("JABUMARKET_S3_REGION", "auto"),
			AccessKey: os.Getenv("JABUMARKET_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("JABUMARKET_S3_SECRET_KEY"),
		},
		VAPIDPublicKey:  os.Getenv("JABUMARKET_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("JABUMARKET_VAPID_PRIVATE_KEY"),
		PushSubscriber:  env("JABUMARKET_PUSH_SUBSCRIBER", "mailto:support@jabumarket.ng"),
	}

	srv := server.New(db, cfg, logger)

	// Hourly sweep of expired sessions and stale rate limit windows.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session sweep", "error", err)
				} else if n > 0 {
					logger.Info("session sweep", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	port := env("JABUMARKET_PORT", "8080")
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("jabumarket listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
