package crawlers

import (
	"sort"
	"sync"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

var (
	londonOnce sync.Once
	london     *time.Location
)

// London returns the Europe/London location. Every provider publishes local
// wall-clock times, so all date maths happens in this zone.
func London() *time.Location {
	londonOnce.Do(func() {
		loc, err := time.LoadLocation("Europe/London")
		if err != nil {
			panic("load Europe/London: " + err.Error())
		}
		london = loc
	})
	return london
}

// FromEpoch converts a UTC epoch-seconds stamp to London wall-clock time.
func FromEpoch(sec int64) time.Time {
	return time.Unix(sec, 0).In(London())
}

// DateWindow returns lookahead+1 consecutive dates starting today, truncated
// to midnight London time. Day zero is today.
func DateWindow(now time.Time, lookaheadDays int) []time.Time {
	day := now.In(London())
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, London())
	dates := make([]time.Time, 0, lookaheadDays+1)
	for i := 0; i <= lookaheadDays; i++ {
		dates = append(dates, day.AddDate(0, 0, i))
	}
	return dates
}

type rollupKey struct {
	compositeKey string
	date         string
	start        models.ClockTime
	end          models.ClockTime
	category     string
}

// RollUpCourts merges per-court slot rows into one row per time interval,
// summing free spaces. Providers that expose each court separately would
// otherwise inflate a venue into dozens of identical listings.
func RollUpCourts(slots []models.Slot) []models.Slot {
	if len(slots) <= 1 {
		return slots
	}

	merged := make(map[rollupKey]models.Slot, len(slots))
	order := make([]rollupKey, 0, len(slots))
	for _, s := range slots {
		key := rollupKey{s.CompositeKey, s.Date.Format("2006-01-02"), s.StartingTime, s.EndingTime, s.Category}
		if existing, ok := merged[key]; ok {
			existing.Spaces += s.Spaces
			merged[key] = existing
			continue
		}
		merged[key] = s
		order = append(order, key)
	}

	out := make([]models.Slot, 0, len(merged))
	for _, key := range order {
		out = append(out, merged[key])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompositeKey != out[j].CompositeKey {
			return out[i].CompositeKey < out[j].CompositeKey
		}
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartingTime.Before(out[j].StartingTime)
	})
	return out
}

// PlaceholderSlots builds zero-space slots for the known times of a venue on
// a date, stamped with the request's metadata.
func PlaceholderSlots(md models.RequestMetadata, times []models.SlotTime, refreshedAt time.Time) []models.Slot {
	slots := make([]models.Slot, 0, len(times))
	for _, t := range times {
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          md.Date,
			StartingTime:  t.Start,
			EndingTime:    t.End,
			Price:         md.DefaultPrice,
			Spaces:        0,
			LastRefreshed: refreshedAt,
			BookingURL:    md.BookingURL,
		})
	}
	return slots
}
