package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/notifier"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	if config.Events.RedisURL == "" {
		logger.Error.Fatalf("Notifier requires events.redis_url in config")
	}

	store, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to init store: %v", err)
	}
	defer store.Close()

	worker, err := notifier.New(config, store)
	if err != nil {
		logger.Error.Fatalf("Failed to init notifier: %v", err)
	}
	defer worker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil {
		logger.Error.Fatalf("Notifier failed: %v", err)
	}
	logger.Info.Println("Notifier stopped")
}
