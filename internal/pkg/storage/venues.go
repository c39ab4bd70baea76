package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// ErrVenueNotFound is returned by Lookup for an unknown composite key.
var ErrVenueNotFound = errors.New("venue not found")

// VenueStore manages the sportsvenue catalogue table.
type VenueStore struct {
	db *sqlx.DB
}

func NewVenueStore(db *sqlx.DB) *VenueStore {
	return &VenueStore{db: db}
}

// venueRow mirrors the sportsvenue table; sports needs the pq array wrapper.
type venueRow struct {
	models.Venue
	SportsArr pq.StringArray `db:"sports"`
}

func (r venueRow) toVenue() models.Venue {
	v := r.Venue
	v.Sports = []string(r.SportsArr)
	return v
}

// ReloadCatalogue replaces the whole catalogue from the mapping file in one
// transaction, so readers never observe a half-loaded table.
func (s *VenueStore) ReloadCatalogue(ctx context.Context, venues []models.Venue) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalogue reload: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM public.sportsvenue`); err != nil {
		return fmt.Errorf("clear sportsvenue: %w", err)
	}
	const insert = `
		INSERT INTO public.sportsvenue
			(composite_key, organisation, organisation_website, venue_name, slug,
			 postcode, address, latitude, longitude, sports)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, v := range venues {
		if _, err := tx.ExecContext(ctx, insert,
			v.CompositeKey, v.Organisation, v.OrganisationWebsite, v.VenueName, v.Slug,
			v.Postcode, v.Address, v.Latitude, v.Longitude, pq.Array(v.Sports),
		); err != nil {
			return fmt.Errorf("insert venue %s: %w", v.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalogue reload: %w", err)
	}
	slog.Info("Venue catalogue reloaded", "venues", len(venues))
	return nil
}

const venueColumns = `composite_key, organisation, organisation_website, venue_name, slug,
	postcode, address, latitude, longitude, sports`

func (s *VenueStore) ListAll(ctx context.Context) ([]models.Venue, error) {
	var rows []venueRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+venueColumns+` FROM public.sportsvenue ORDER BY venue_name`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venuesFromRows(rows), nil
}

// ListOfferingSport returns every venue whose sports array contains the sport.
func (s *VenueStore) ListOfferingSport(ctx context.Context, sport models.Sport) ([]models.Venue, error) {
	var rows []venueRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+venueColumns+` FROM public.sportsvenue WHERE $1 = ANY(sports) ORDER BY venue_name`,
		string(sport))
	if err != nil {
		return nil, fmt.Errorf("list venues for %s: %w", sport, err)
	}
	return venuesFromRows(rows), nil
}

func (s *VenueStore) Lookup(ctx context.Context, compositeKey string) (*models.Venue, error) {
	var row venueRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+venueColumns+` FROM public.sportsvenue WHERE composite_key = $1`, compositeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrVenueNotFound, compositeKey)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup venue %s: %w", compositeKey, err)
	}
	v := row.toVenue()
	return &v, nil
}

func venuesFromRows(rows []venueRow) []models.Venue {
	venues := make([]models.Venue, 0, len(rows))
	for _, r := range rows {
		venues = append(venues, r.toVenue())
	}
	return venues
}
