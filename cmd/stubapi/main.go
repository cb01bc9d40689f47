// Command stubapi serves the reference Remote Catalog Service the storefront
// talks to: products, auth with email verification, carts, wishlists and
// orders, all held in memory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"gaming-storefront/internal/config"
	"gaming-storefront/internal/stubapi"
)

const defaultAppName = "CatalogStub"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	sc := cfg.StubServer
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	mem := stubapi.NewMemory()
	if sc.Seed {
		if err := stubapi.Seed(mem, time.Now()); err != nil {
			logger.Fatalf("FATAL: Seeding demo data failed: %v", err)
		}
		logger.Printf("INFO: Seeded %d products and demo accounts %s, %s",
			len(mem.Products()), stubapi.DemoAdminEmail, stubapi.DemoUserEmail)
	}

	handler := stubapi.NewHandler(mem, stubapi.Options{
		JWTSecret:      sc.JWTSecret,
		TokenTTL:       sc.TokenTTL,
		ResendCooldown: sc.ResendCooldown,
		Logger:         logger,
	})

	router := chi.NewRouter()
	setupBaseMiddleware(router, logger)
	handler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + sc.Port,
		Handler:      router,
		ReadTimeout:  sc.TimeoutRead,
		WriteTimeout: sc.TimeoutWrite,
		IdleTimeout:  sc.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", sc.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	logger.Println("INFO: Base HTTP middleware registered.")
}

func waitForShutdown(logger *log.Logger, httpServer *http.Server, shutdownComplete chan struct{}) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}
	logger.Println("INFO: Graceful shutdown sequence completed.")
}
