package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// insertChunkSize keeps multi-row inserts under Postgres' 65535 parameter cap.
const insertChunkSize = 500

// SlotStore writes refreshed availability into staging and serves reads from
// the master tables.
type SlotStore struct {
	db *sqlx.DB
}

func NewSlotStore(db *sqlx.DB) *SlotStore {
	return &SlotStore{db: db}
}

// ResetStaging drops and recreates the sport's staging table so a refresh
// always starts from empty.
func (s *SlotStore) ResetStaging(ctx context.Context, sport models.Sport) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, stagingTable(sport))); err != nil {
		return fmt.Errorf("drop staging %s: %w", sport, err)
	}
	if _, err := s.db.ExecContext(ctx, slotTableDDL(stagingTable(sport))); err != nil {
		return fmt.Errorf("create staging %s: %w", sport, err)
	}
	return nil
}

// InsertStaging bulk-inserts slots into the staging table, assigning UIDs to
// rows that do not carry one yet.
func (s *SlotStore) InsertStaging(ctx context.Context, sport models.Sport, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	for i := range slots {
		if slots[i].UID == "" {
			slots[i].UID = uuid.NewString()
		}
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s
			(uid, composite_key, category, date, starting_time, ending_time,
			 price, spaces, last_refreshed, booking_url)
		VALUES
			(:uid, :composite_key, :category, :date, :starting_time, :ending_time,
			 :price, :spaces, :last_refreshed, :booking_url)`, stagingTable(sport))

	for start := 0; start < len(slots); start += insertChunkSize {
		end := min(start+insertChunkSize, len(slots))
		if _, err := s.db.NamedExecContext(ctx, insert, slots[start:end]); err != nil {
			return fmt.Errorf("insert staging %s rows %d-%d: %w", sport, start, end, err)
		}
	}
	return nil
}

// SwapStagingToMaster promotes the staging table to the master position in a
// single transaction: the outgoing master parks in the archive schema, staging
// moves to public, then the parked table is dropped. Readers either see the
// old table or the new one, never an empty gap.
func (s *SlotStore) SwapStagingToMaster(ctx context.Context, sport models.Sport) error {
	archived := "archive." + string(sport)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap %s: %w", sport, err)
	}
	defer tx.Rollback()

	steps := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, archived),
		fmt.Sprintf(`ALTER TABLE %s SET SCHEMA archive`, masterTable(sport)),
		fmt.Sprintf(`ALTER TABLE %s SET SCHEMA public`, stagingTable(sport)),
		fmt.Sprintf(`DROP TABLE %s`, archived),
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("swap %s: %q: %w", sport, stmt, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit swap %s: %w", sport, err)
	}
	slog.Info("Staging table promoted to master", "sport", sport)
	return nil
}

const slotColumns = `uid, composite_key, category, date, starting_time, ending_time,
	price, spaces, last_refreshed, booking_url`

// searchSlotsQuery builds the master-table availability query. The $5
// comparison rebuilds each row's wall-clock start from its date and starting
// time and demands it be strictly after the caller's clock, so a slot
// starting exactly now is already gone.
func searchSlotsQuery(sport models.Sport) string {
	return fmt.Sprintf(`
		SELECT `+slotColumns+`
		FROM %s
		WHERE composite_key = ANY($1)
		  AND date = $2
		  AND spaces > 0
		  AND starting_time >= $3
		  AND ending_time <= $4
		  AND to_timestamp(concat(date, ' ', starting_time), 'YYYY-MM-DD HH24:MI') > $5
		ORDER BY composite_key, starting_time`, masterTable(sport))
}

func searchSlotsArgs(filter SlotFilter) []any {
	return []any{
		pq.Array(filter.CompositeKeys),
		filter.Date.Format("2006-01-02"),
		filter.StartAfter.String(),
		filter.EndBefore.String(),
		filter.Now,
	}
}

// SearchSlots returns bookable slots from the sport's master table matching
// the filter. Only slots with free spaces that start in the future qualify;
// the time window bounds are inclusive.
func (s *SlotStore) SearchSlots(ctx context.Context, sport models.Sport, filter SlotFilter) ([]models.Slot, error) {
	if len(filter.CompositeKeys) == 0 {
		return nil, nil
	}
	var slots []models.Slot
	err := s.db.SelectContext(ctx, &slots, searchSlotsQuery(sport), searchSlotsArgs(filter)...)
	if err != nil {
		return nil, fmt.Errorf("search %s slots: %w", sport, err)
	}
	return slots, nil
}

// KnownSlotTimes returns the distinct start/end pairs currently on the master
// table for a venue and date. Adapters use these to synthesise fully-booked
// placeholders when a provider answers an availability query with no data.
func (s *SlotStore) KnownSlotTimes(ctx context.Context, sport models.Sport, compositeKey string, date time.Time) ([]models.SlotTime, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT starting_time, ending_time
		FROM %s
		WHERE composite_key = $1 AND date = $2
		ORDER BY starting_time`, masterTable(sport))

	var times []models.SlotTime
	err := s.db.SelectContext(ctx, &times, query, compositeKey, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("known slot times %s/%s: %w", sport, compositeKey, err)
	}
	return times, nil
}
