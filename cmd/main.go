/*
Package main is the entry point of the SkillSwap client.

It loads configuration (optionally from a .env file), initializes logging and
metrics, opens local storage, restores the signed-in identity, wires the backend
client, view fetchers and chat channel into the HTTP router, and shuts everything
down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"skillswap/internal/app/backend"
	"skillswap/internal/app/chat"
	"skillswap/internal/app/identity"
	"skillswap/internal/app/storage"
	"skillswap/internal/app/views"
	"skillswap/internal/configs"
	"skillswap/internal/handler"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/metrics"
)

func main() {
	// A missing .env file is normal outside development.
	envErr := godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logx.Warn("Could not read .env file", "error", envErr.Error())
	}
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("backend_url", cfg.BackendURL).
		Str("storage_driver", cfg.StorageDriver).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open local storage", "driver", cfg.StorageDriver)
	}

	store := identity.NewStore(st,
		identity.WithMetrics(m),
		identity.WithDemoDelay(cfg.DemoLoginDelay),
	)
	go store.Hydrate(ctx)

	if cfg.AdminToken != "" {
		if err := store.SetBearerToken(ctx, cfg.AdminToken); err != nil {
			logx.Error(err, "Failed to store admin bearer token")
		}
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, m)
	channel := chat.NewChannel(cfg.BackendURL, chat.WithMetrics(m))

	deps := &handler.AppDeps{
		Config:   cfg,
		Identity: store,
		Views:    views.NewSet(client, store),
		Chat:     channel,
		Metrics:  m,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("SkillSwap client starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	channel.Close()

	if err := st.Close(); err != nil {
		logx.Error(err, "Failed to close local storage")
	}

	logx.Info("Client gracefully stopped.")
}
