// Command scanner runs the availability refresh pipelines once and exits.
// It is the manual / cron-free invocation surface: pick a sport (or all),
// crawl every provider, swap the results into the master tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtscan/courtscan/internal/pipeline"
	pkgconfig "github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/httpclient"
	"github.com/courtscan/courtscan/internal/pkg/logging"
	"github.com/courtscan/courtscan/internal/pkg/models"
	"github.com/courtscan/courtscan/internal/pkg/storage"

	// Register all crawler adapters via init().
	_ "github.com/courtscan/courtscan/internal/crawler/crawlers/all"
)

const defaultConfigPath = "configs/production.yaml"

type flags struct {
	configPath string
	sport      string
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scanner failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	sports, err := selectSports(f.sport)
	if err != nil {
		return err
	}

	cfg, err := pkgconfig.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(&cfg.Logging, "scanner")
	slog.Info("Config loaded", "path", f.configPath, "env", cfg.Env)

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

	total := 0
	for _, sport := range sports {
		n, err := pipe.Refresh(ctx, sport)
		if err != nil {
			slog.Error("Refresh failed", "sport", sport, "error", err)
			continue
		}
		total += n
	}
	if total == 0 {
		return fmt.Errorf("no slots published for any sport, refusing to report success")
	}
	slog.Info("Scan complete", "sports", len(sports), "slots", total)
	return nil
}

func parseFlags() flags {
	var f flags

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}
	flag.StringVar(&f.configPath, "config", defaultConfig, "path to config file")
	flag.StringVar(&f.sport, "sport", "all", "sport to refresh: badminton, squash, pickleball or all")
	flag.Parse()
	return f
}

func selectSports(arg string) ([]models.Sport, error) {
	if arg == "all" {
		return models.AllSports(), nil
	}
	sport, err := models.ParseSport(arg)
	if err != nil {
		return nil, err
	}
	return []models.Sport{sport}, nil
}
