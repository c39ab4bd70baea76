package storage

import (
	"context"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// VenueCatalogue is the read/write contract for the sportsvenue table.
type VenueCatalogue interface {
	ReloadCatalogue(ctx context.Context, venues []models.Venue) error
	ListAll(ctx context.Context) ([]models.Venue, error)
	ListOfferingSport(ctx context.Context, sport models.Sport) ([]models.Venue, error)
	Lookup(ctx context.Context, compositeKey string) (*models.Venue, error)
}

// SlotWriter is the refresh-side contract for a sport's slot tables: the
// staging build plus the atomic swap into the master position.
type SlotWriter interface {
	ResetStaging(ctx context.Context, sport models.Sport) error
	InsertStaging(ctx context.Context, sport models.Sport, slots []models.Slot) error
	SwapStagingToMaster(ctx context.Context, sport models.Sport) error
}

// SlotFilter narrows a master-table read. CompositeKeys is mandatory;
// StartAfter/EndBefore bound the slot interval, Now drives the future-only
// cutoff for same-day searches.
type SlotFilter struct {
	CompositeKeys []string
	Date          time.Time
	StartAfter    models.ClockTime
	EndBefore     models.ClockTime
	Now           time.Time
}

// SlotReader is the query-side contract against a sport's master table.
type SlotReader interface {
	SearchSlots(ctx context.Context, sport models.Sport, filter SlotFilter) ([]models.Slot, error)
	KnownSlotTimes(ctx context.Context, sport models.Sport, compositeKey string, date time.Time) ([]models.SlotTime, error)
}

var (
	_ VenueCatalogue = (*VenueStore)(nil)
	_ SlotWriter     = (*SlotStore)(nil)
	_ SlotReader     = (*SlotStore)(nil)
)
