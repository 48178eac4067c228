package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_go/internal/api"
	"shop_go/internal/app"
	"shop_go/internal/infra"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	configPath := os.Getenv("SHOP_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Journal in its own goroutine (The Hotpath Loop)
	go bootstrap.Journal.Run(ctx)
	slog.InfoContext(ctx, "✅ Journal (Hotpath) started")

	// 5. Background Asset Sync
	go bootstrap.SyncAssets(ctx)

	// 6. Outbound webhook delivery
	if bootstrap.Notifier != nil {
		bootstrap.Notifier.Start(ctx)
		slog.InfoContext(ctx, "✅ Webhook notifier started")
	}

	// 7. Reference Rate Client (Gateway)
	cfg := bootstrap.Config
	if cfg.ReferenceRate.URL != "" {
		rateClient := infra.NewReferenceRateClient(bootstrap.Quotes.UpdateRate, cfg.ReferenceRate.URL, cfg.ReferenceRate.PollIntervalSec)
		if err := rateClient.Start(ctx); err != nil {
			slog.Error("Failed to start reference rate client", slog.Any("error", err))
		}
		defer rateClient.Stop()
	}

	// 8. HTTP API
	server := api.NewServer(bootstrap.Shop, bootstrap.Quotes, bootstrap.Storage, bootstrap.Assets, bootstrap.Bank, bootstrap.Hub)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}
	go func() {
		slog.Info("✅ HTTP server listening", slog.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ Shop fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", slog.Any("error", err))
	}
}
