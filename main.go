package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/typer-master/app"
	"github.com/Black-And-White-Club/typer-master/app/observability"
	"github.com/Black-And-White-Club/typer-master/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs := observability.New(cfg)
	slog.SetDefault(obs.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		obs.Logger.Error("Failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			obs.Logger.Error("Error during cleanup", slog.String("error", err.Error()))
		}
		obs.Logger.Info("Application shut down gracefully")
	}()

	if err := application.Start(ctx); err != nil {
		obs.Logger.Error("Server stopped with error", slog.String("error", err.Error()))
	}
}
