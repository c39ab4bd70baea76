// Package citysport crawls CitySport's site-wide timetable. One request
// returns every activity at the site for a date; the parser keeps only the
// badminton rows.
package citysport

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://www.citysport.org.uk/"
	timetableURL        = "https://bookings.citysport.org.uk/LhWeb/en/api/Sites/1/Timetables/ActivityBookings"
	bookingPage         = "https://bookings.citysport.org.uk/LhWeb/en/Public/Bookings/"
	lookaheadDays       = 6
)

func init() {
	crawlers.Register("citysport", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	return []*crawlers.Adapter{{
		Name:                "citysport/badminton",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportBadminton,
		LookaheadDays:       lookaheadDays,
		Requests:            timetableRequests{},
		Parser:              timetableParser{},
	}}
}

type timetableRequests struct{}

func (timetableRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	return []models.RequestDetail{{
		URL: fmt.Sprintf("%s?date=%s&pid=0", timetableURL, date.Format("2006/01/02")),
		Headers: map[string]string{
			"Referer": "https://bookings.citysport.org.uk/LhWeb/en/Public/Bookings",
		},
		Metadata: models.RequestMetadata{
			Venue:      venue,
			Date:       date,
			Category:   "Badminton",
			BookingURL: bookingPage,
		},
	}}
}

// activityBooking is one timetable row. The endpoint carries many more fields;
// only the ones the parser reads are declared.
type activityBooking struct {
	ActivityGroupDescription string  `json:"ActivityGroupDescription"`
	ActivityDescription      string  `json:"ActivityDescription"`
	StartTime                string  `json:"StartTime"`
	EndTime                  string  `json:"EndTime"`
	Price                    float64 `json:"Price"`
	TotalPlaces              int     `json:"TotalPlaces"`
	AvailablePlaces          int     `json:"AvailablePlaces"`
}

const timetableTimeLayout = "2006-01-02T15:04:05"

type timetableParser struct{}

var _ crawlers.ResponseParser = timetableParser{}

func (timetableParser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureJSON(raw); err != nil {
		return nil, err
	}

	var rows []activityBooking
	if err := json.Unmarshal(raw.Body, &rows); err != nil {
		return nil, fmt.Errorf("decode timetable from %s: %w", raw.Request.URL, err)
	}

	md := raw.Request.Metadata
	now := time.Now()
	var slots []models.Slot
	for _, row := range rows {
		if row.ActivityGroupDescription != "Badminton" {
			continue
		}
		start, err := time.ParseInLocation(timetableTimeLayout, row.StartTime, crawlers.London())
		if err != nil {
			slog.Warn("Dropping timetable row with bad start time", "value", row.StartTime)
			continue
		}
		end, err := time.ParseInLocation(timetableTimeLayout, row.EndTime, crawlers.London())
		if err != nil {
			slog.Warn("Dropping timetable row with bad end time", "value", row.EndTime)
			continue
		}
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, crawlers.London()),
			StartingTime:  models.ClockTimeOf(start),
			EndingTime:    models.ClockTimeOf(end),
			Price:         "£" + strconv.FormatFloat(row.Price, 'f', 2, 64),
			Spaces:        row.AvailablePlaces,
			LastRefreshed: now,
			BookingURL:    md.BookingURL,
		})
	}
	return slots, nil
}
