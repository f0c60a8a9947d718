// Luhn ISBN Validator - checksum verification for card numbers and ISBNs.
// Copyright (c) 2026 khairate89
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/api"
	"github.com/khairate89/luhn-isbn-validator/internal/bus"
	"github.com/khairate89/luhn-isbn-validator/internal/cache"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/lookup"
	"github.com/khairate89/luhn-isbn-validator/internal/network"
	"github.com/khairate89/luhn-isbn-validator/internal/repository"
	"github.com/khairate89/luhn-isbn-validator/internal/verify"
	"github.com/khairate89/luhn-isbn-validator/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cfg := domain.LoadConfig()
	slog.SetDefault(newLogger(cfg.Logging))

	slog.Info("starting validator",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"books_url", cfg.Lookup.BaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type, "two_phase", cfg.Cache.EnableTwoPhase)

	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	networks, err := loadNetworks(cfg.NetworkRules)
	if err != nil {
		slog.Error("failed to load network rules", "path", cfg.NetworkRules, "error", err)
		os.Exit(1)
	}
	slog.Info("network engine initialized", "rules_count", networks.RulesCount())

	books := lookup.New(cfg.Lookup, cacheImpl, repo)
	processor := verify.NewProcessor(books, networks, cfg.Lookup.MaxSuggestions)

	var experiments *worker.Worker
	if cfg.AsyncWorker {
		experiments = worker.NewWorker(busImpl, cacheImpl, cfg.Simulation)
		if err := experiments.Start(); err != nil {
			slog.Error("failed to start experiment worker", "error", err)
			experiments = nil
		}
	}

	srv := api.NewServer(cfg.Server, api.Deps{
		Processor:           processor,
		Networks:            networks,
		Repo:                repo,
		Cache:               cacheImpl,
		Bus:                 busImpl,
		Simulation:          cfg.Simulation,
		Version:             Version,
		MaxIdentifierLength: cfg.MaxIdentifierLength,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("validator is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)
	printBanner(cfg, Version)

	<-ctx.Done()
	slog.Info("shutting down...")

	if experiments != nil {
		if err := experiments.Stop(); err != nil {
			slog.Error("failed to stop experiment worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("validator shutdown complete")
}

func newLogger(cfg domain.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// loadNetworks builds the builtin engine and merges the optional rules file.
func loadNetworks(path string) (*network.Engine, error) {
	engine, err := network.NewBuiltinEngine()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return engine, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := engine.LoadFile(f); err != nil {
		return nil, err
	}
	return engine, nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  +-------------------------------------------+")
	fmt.Println("  |          LUHN / ISBN VALIDATOR            |")
	fmt.Println("  |    Check digits you can explain.          |")
	fmt.Println("  +-------------------------------------------+")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /cards/validate     - Validate a card number")
	fmt.Println("    POST /cards/check-digit  - Compute a Luhn check digit")
	fmt.Println("    POST /cards/corrections  - Nearby Luhn-valid numbers")
	fmt.Println("    POST /isbn/validate      - Validate an ISBN and look it up")
	fmt.Println("    POST /isbn/check-digit   - Compute an ISBN check character")
	fmt.Println("    GET  /books              - Catalog of books found so far")
	fmt.Println("    GET  /networks           - Card network rules")
	fmt.Println("    POST /experiments        - Run a detection-rate experiment")
	fmt.Println("    GET  /experiments/{id}   - Poll an async experiment")
	fmt.Println("    GET  /health             - Health check")
	fmt.Println()
}
