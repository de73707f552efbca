package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trainflow/strategy-engine/internal/ai"
	"github.com/trainflow/strategy-engine/internal/chat"
	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/naming"
	"github.com/trainflow/strategy-engine/internal/storage"
	syncstore "github.com/trainflow/strategy-engine/internal/sync"
	"github.com/trainflow/strategy-engine/internal/telegram"
	"github.com/trainflow/strategy-engine/internal/tools"
	"github.com/trainflow/strategy-engine/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/strategy-engine.db", "path to SQLite database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting strategy-engine", "model", cfg.OpenRouter.Model)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	if err := tools.SeedMarketData(repo); err != nil {
		log.Error("seed market data failed", "error", err)
		os.Exit(1)
	}

	aiClient := ai.NewClient(cfg, log)
	registry := tools.NewRegistry(repo, cfg, log)
	namer := naming.NewCoordinator(aiClient, repo, log)
	notifier := telegram.NewNotifier(cfg, log)

	store := syncstore.NewStore(repo, log)
	autosaver := syncstore.NewAutosaver(store, cfg.AutosaveDebounce())

	svc := chat.NewService(aiClient, registry, namer, store, autosaver, notifier, log)
	webServer := web.NewServer(svc, registry, namer, repo, store, cfg, log)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("🤖 Strategy engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	// Flush any debounced strategy write before exiting.
	autosaver.Flush()
	autosaver.Close()

	notifier.NotifyStatus("🛑 Strategy engine stopped")
	log.Info("strategy-engine stopped")
}
