package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Open connects to Postgres and verifies the connection.
func Open(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// slotTableDDL returns the column definitions shared by the master and staging
// slot tables. Times are stored as zero-padded "HH:MM" text so lexical
// comparison matches chronological order.
func slotTableDDL(qualified string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			uid UUID PRIMARY KEY,
			composite_key VARCHAR(8) NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			date DATE NOT NULL,
			starting_time VARCHAR(5) NOT NULL,
			ending_time VARCHAR(5) NOT NULL,
			price TEXT NOT NULL DEFAULT '',
			spaces INTEGER NOT NULL,
			last_refreshed TIMESTAMPTZ NOT NULL,
			booking_url TEXT NOT NULL DEFAULT ''
		)`, qualified)
}

// InitSchema creates the three schemas and every table the scanner writes to.
// Idempotent; both binaries run it at startup.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS staging`,
		`CREATE SCHEMA IF NOT EXISTS archive`,
		`CREATE TABLE IF NOT EXISTS public.sportsvenue (
			composite_key VARCHAR(8) PRIMARY KEY,
			organisation TEXT NOT NULL,
			organisation_website TEXT NOT NULL,
			venue_name TEXT NOT NULL,
			slug TEXT NOT NULL,
			postcode TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			sports TEXT[] NOT NULL,
			UNIQUE (organisation_website, slug)
		)`,
	}
	for _, sport := range models.AllSports() {
		statements = append(statements,
			slotTableDDL("public."+string(sport)),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_venue_date_idx ON public.%s (composite_key, date)`,
				sport, sport),
		)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	slog.Info("Database schema ready", "sports", len(models.AllSports()))
	return nil
}

// masterTable returns the qualified master table name for a sport. Sport is a
// closed enum, so interpolating it into SQL is safe.
func masterTable(sport models.Sport) string { return "public." + string(sport) }

func stagingTable(sport models.Sport) string { return "staging." + string(sport) }
