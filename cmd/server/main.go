// Command server hosts the HTTP query API and the cron scheduler that keeps
// the availability data fresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtscan/courtscan/internal/api"
	"github.com/courtscan/courtscan/internal/pipeline"
	pkgconfig "github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/geo"
	"github.com/courtscan/courtscan/internal/pkg/httpclient"
	"github.com/courtscan/courtscan/internal/pkg/logging"
	"github.com/courtscan/courtscan/internal/pkg/models"
	"github.com/courtscan/courtscan/internal/pkg/storage"
	"github.com/courtscan/courtscan/internal/query"
	"github.com/courtscan/courtscan/internal/scheduler"

	// Register all crawler adapters via init().
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/all"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	flag.StringVar(&configPath, "config", configPath, "path to config file")
	flag.Parse()

	cfg, err := pkgconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(&cfg.Logging, "server")
	slog.Info("Config loaded", "path", configPath, "env", cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Open(&cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.InitSchema(ctx, db); err != nil {
		return err
	}

	venueStore := storage.NewVenueStore(db)
	mappings, err := models.LoadVenueMapping(cfg.Crawler.VenueMappingPath)
	if err != nil {
		return err
	}
	if err := venueStore.ReloadCatalogue(ctx, models.FlattenMappings(mappings)); err != nil {
		return err
	}

	client, err := httpclient.New(&cfg.HTTP)
	if err != nil {
		return err
	}
	slotStore := storage.NewSlotStore(db)
	pipe := pipeline.New(cfg, client, venueStore, slotStore)

	sched, err := scheduler.New(&cfg.Scheduler, pipe)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	geocoder := geo.NewPostcodesClient(&cfg.Geocoding)
	search := query.NewService(venueStore, slotStore, geocoder)
	server := api.NewServer(&cfg.API, venueStore, search, geocoder)
	return server.ListenAndServe(ctx)
}
