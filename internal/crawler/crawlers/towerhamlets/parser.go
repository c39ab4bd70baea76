package towerhamlets

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Gladstone sessions payload. One session per date with per-court slot lists
// nested under locations.
type session struct {
	ActivityGroupID          string     `json:"activityGroupId"`
	ActivityGroupDescription string     `json:"activityGroupDescription"`
	ID                       string     `json:"id"`
	Name                     string     `json:"name"`
	Date                     string     `json:"date"`
	Locations                []location `json:"locations"`
}

type location struct {
	LocationNameToDisplay string      `json:"locationNameToDisplay"`
	Slots                 []courtSlot `json:"slots"`
}

type courtSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
}

// SessionsParser rolls the per-court Gladstone slots up into one row per time
// interval, counting courts whose status is Available.
type SessionsParser struct{}

var _ crawlers.ResponseParser = SessionsParser{}

func (SessionsParser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureJSON(raw); err != nil {
		return nil, err
	}

	var sessions []session
	if err := json.Unmarshal(raw.Body, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions from %s: %w", raw.Request.URL, err)
	}

	md := raw.Request.Metadata
	now := time.Now()
	var slots []models.Slot
	for _, sess := range sessions {
		date, err := time.ParseInLocation("2006-01-02", sess.Date, crawlers.London())
		if err != nil {
			slog.Warn("Dropping session with bad date", "value", sess.Date)
			continue
		}
		for _, rolled := range rollUpSession(sess) {
			slots = append(slots, models.Slot{
				CompositeKey:  md.Venue.CompositeKey,
				Category:      md.Category,
				Date:          date,
				StartingTime:  rolled.start,
				EndingTime:    rolled.end,
				Price:         md.DefaultPrice,
				Spaces:        rolled.available,
				LastRefreshed: now,
				BookingURL:    fillBookingURL(md.BookingURL, date),
			})
		}
	}
	return slots, nil
}

type rolledSlot struct {
	start, end models.ClockTime
	available  int
}

// rollUpSession flattens the session's per-court slot lists and counts
// available courts per (start, end) pair. Timestamps are UTC with trailing
// seconds; they convert to London wall clock and round up to the minute.
func rollUpSession(sess session) []rolledSlot {
	type key struct{ start, end models.ClockTime }
	counts := make(map[key]int)
	for _, loc := range sess.Locations {
		for _, slot := range loc.Slots {
			start, err1 := parseSessionTime(slot.StartTime)
			end, err2 := parseSessionTime(slot.EndTime)
			if err1 != nil || err2 != nil {
				slog.Warn("Dropping court slot with bad timestamps", "start", slot.StartTime, "end", slot.EndTime)
				continue
			}
			k := key{start, end}
			if _, seen := counts[k]; !seen {
				counts[k] = 0
			}
			if slot.Status == "Available" {
				counts[k]++
			}
		}
	}

	out := make([]rolledSlot, 0, len(counts))
	for k, n := range counts {
		out = append(out, rolledSlot{start: k.start, end: k.end, available: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

func parseSessionTime(value string) (models.ClockTime, error) {
	t, err := time.Parse("2006-01-02T15:04:05Z", value)
	if err != nil {
		return 0, err
	}
	local := t.In(crawlers.London())
	if local.Second() > 0 {
		local = local.Truncate(time.Minute).Add(time.Minute)
	}
	return models.ClockTimeOf(local), nil
}

// fillBookingURL completes the calendar deep-link template with the session
// date and the preceding day, both in the site's millisecond-Z format.
func fillBookingURL(template string, date time.Time) string {
	const stamp = "2006-01-02T15:04:05.000Z"
	filled := strings.ReplaceAll(template, "{formatted_date}", date.Format(stamp))
	return strings.ReplaceAll(filled, "{formatted_previous_day}", date.AddDate(0, 0, -1).Format(stamp))
}
