package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

func TestSearchSlotsQueryExcludesPastSlots(t *testing.T) {
	query := searchSlotsQuery(models.SportBadminton)

	if !strings.Contains(query, "FROM public.badminton") {
		t.Errorf("query does not read the master table:\n%s", query)
	}
	if !strings.Contains(query, `to_timestamp(concat(date, ' ', starting_time), 'YYYY-MM-DD HH24:MI') > $5`) {
		t.Errorf("query does not rebuild and compare the slot start against $5:\n%s", query)
	}
	// Strict comparison: a slot starting exactly now is no longer bookable.
	if strings.Contains(query, ">= $5") {
		t.Errorf("slot-start comparison must be strict, not >=:\n%s", query)
	}
	if !strings.Contains(query, "spaces > 0") {
		t.Errorf("query does not restrict to bookable slots:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY composite_key, starting_time") {
		t.Errorf("query ordering missing:\n%s", query)
	}
}

func TestSearchSlotsArgsMatchPlaceholders(t *testing.T) {
	now := time.Date(2026, 5, 20, 17, 30, 0, 0, time.UTC)
	args := searchSlotsArgs(SlotFilter{
		CompositeKeys: []string{"aaa11111", "bbb22222"},
		Date:          time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
		StartAfter:    models.NewClockTime(17, 0),
		EndBefore:     models.NewClockTime(22, 0),
		Now:           now,
	})

	if len(args) != 5 {
		t.Fatalf("got %d args, want 5 to match $1-$5", len(args))
	}
	if args[1] != "2026-05-20" {
		t.Errorf("date arg = %v", args[1])
	}
	if args[2] != "17:00" || args[3] != "22:00" {
		t.Errorf("time window args = %v, %v", args[2], args[3])
	}
	if got, ok := args[4].(time.Time); !ok || !got.Equal(now) {
		t.Errorf("clock arg = %v, want %v", args[4], now)
	}
}
