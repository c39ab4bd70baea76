package crawlers

import (
	"testing"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

func TestRollUpCourts(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, London())
	slot := func(start, end models.ClockTime, spaces int) models.Slot {
		return models.Slot{
			CompositeKey: "abcd1234",
			Date:         date,
			StartingTime: start,
			EndingTime:   end,
			Spaces:       spaces,
			Price:        "£12.50",
		}
	}

	in := []models.Slot{
		slot(models.NewClockTime(18, 0), models.NewClockTime(19, 0), 1),
		slot(models.NewClockTime(19, 0), models.NewClockTime(20, 0), 0),
		slot(models.NewClockTime(18, 0), models.NewClockTime(19, 0), 1),
		slot(models.NewClockTime(18, 0), models.NewClockTime(19, 0), 0),
	}
	out := RollUpCourts(in)
	if len(out) != 2 {
		t.Fatalf("rolled up to %d slots, want 2", len(out))
	}
	if out[0].Spaces != 2 {
		t.Errorf("18:00 spaces = %d, want 2 (two free courts of three)", out[0].Spaces)
	}
	if out[0].Price != "£12.50" {
		t.Errorf("price lost in rollup: %q", out[0].Price)
	}
	if out[1].Spaces != 0 {
		t.Errorf("19:00 spaces = %d, want 0", out[1].Spaces)
	}
}

func TestRollUpCourtsKeepsCategoriesSeparate(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, London())
	in := []models.Slot{
		{CompositeKey: "abcd1234", Date: date, Category: "40min", StartingTime: models.NewClockTime(9, 0), EndingTime: models.NewClockTime(9, 40), Spaces: 1},
		{CompositeKey: "abcd1234", Date: date, Category: "60min", StartingTime: models.NewClockTime(9, 0), EndingTime: models.NewClockTime(10, 0), Spaces: 1},
	}
	if out := RollUpCourts(in); len(out) != 2 {
		t.Fatalf("rolled up to %d slots, want 2 (categories must not merge)", len(out))
	}
}

func TestDateWindow(t *testing.T) {
	now := time.Date(2026, 3, 14, 22, 45, 0, 0, London())
	dates := DateWindow(now, 6)
	if len(dates) != 7 {
		t.Fatalf("window = %d days, want 7", len(dates))
	}
	if !dates[0].Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, London())) {
		t.Errorf("day zero = %s, want today at midnight", dates[0])
	}
	if !dates[6].Equal(time.Date(2026, 3, 20, 0, 0, 0, 0, London())) {
		t.Errorf("last day = %s", dates[6])
	}
}

func TestFromEpoch(t *testing.T) {
	// 2026-07-01 17:00 UTC is 18:00 in London (BST).
	got := FromEpoch(1782925200)
	if got.Hour() != 18 || got.Minute() != 0 {
		t.Errorf("FromEpoch = %s, want 18:00 London", got.Format("15:04"))
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("dup-provider", func(*Deps) []*Adapter { return nil })
	Register("dup-provider", func(*Deps) []*Adapter { return nil })
}
