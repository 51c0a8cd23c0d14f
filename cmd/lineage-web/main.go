package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lineage-works/lineage/internal/config"
	"github.com/lineage-works/lineage/internal/server"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/internal/storage/postgres"
	"github.com/lineage-works/lineage/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	// The breaker keeps a flaky database from stalling every request.
	guarded := storage.NewBreakerStore(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := server.Start(ctx, cfg, guarded)
	log.Printf("Lineage API listening at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

func openStore(cfg *config.Config) (storage.TreeStore, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		return postgres.NewTreeStore(cfg.Storage.PostgresDSN)
	default:
		return sqlite.NewTreeStore(cfg.Storage.DataPath + "/lineage.db")
	}
}
