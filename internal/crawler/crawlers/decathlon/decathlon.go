// Package decathlon crawls the Decathlon Activities API for pickleball
// sessions. Venue slugs in the catalogue are Decathlon activity identifiers;
// one request lists all published timeslots from now on.
package decathlon

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
	organisationWebsite = "https://decathlon.co.uk/"
	apiBase             = "https://api-eu.decathlon.net/activities/v2/activities"
	apiKey              = "666565be-422c-4b54-8138-682de3b95aee"
)

func init() {
	crawlers.Register("decathlon", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	return []*crawlers.Adapter{{
		Name:                "decathlon/pickleball",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportPickleball,
		// The timeslot listing starts at "now" and covers the whole window.
		LookaheadDays: 0,
		Requests:      timeslotRequests{},
		Parser:        timeslotParser{},
	}}
}

type timeslotRequests struct{}

func (timeslotRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	startDate := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	return []models.RequestDetail{{
		URL: fmt.Sprintf(
			"%s/%s/timeslots?timeslotStatus=PUBLISHED&excludeFull=false&startDate=%s&sort%%5Bby%%5D=startDate&sort%%5Border%%5D=asc&pagination%%5Bfrom%%5D=0&pagination%%5Blimit%%5D=100",
			apiBase, venue.Slug, startDate,
		),
		Headers: map[string]string{
			"Referer":       "https://activities.decathlon.co.uk/",
			"Accept":        "application/json, text/plain, */*",
			"Cache-Control": "no-cache",
			"X-Api-Key":     apiKey,
		},
		Metadata: models.RequestMetadata{
			Venue:      venue,
			Date:       date,
			Category:   "Pickleball",
			BookingURL: fmt.Sprintf("https://activities.decathlon.co.uk/en-GB/sport-activities/details/%s", venue.Slug),
		},
	}}
}

type offer struct {
	Identifier string  `json:"identifier"`
	Currency   string  `json:"currency"`
	Price      float64 `json:"price"`
	Name       string  `json:"name"`
}

type activity struct {
	Identifier                string    `json:"identifier"`
	ActivityIdentifier        string    `json:"activityIdentifier"`
	RemainingAttendeeCapacity int       `json:"remainingAttendeeCapacity"`
	MaximumAttendeeCapacity   int       `json:"maximumAttendeeCapacity"`
	StartDate                 time.Time `json:"startDate"`
	EndDate                   time.Time `json:"endDate"`
	Status                    string    `json:"status"`
	Offers                    []offer   `json:"offers"`
}

type timeslotParser struct{}

var _ crawlers.ResponseParser = timeslotParser{}

func (timeslotParser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureJSON(raw); err != nil {
		return nil, err
	}

	var activities []activity
	if err := json.Unmarshal(raw.Body, &activities); err != nil {
		return nil, fmt.Errorf("decode timeslots from %s: %w", raw.Request.URL, err)
	}

	md := raw.Request.Metadata
	now := time.Now()
	slots := make([]models.Slot, 0, len(activities))
	for _, act := range activities {
		start := act.StartDate.In(crawlers.London())
		end := act.EndDate.In(crawlers.London())
		if !end.After(start) {
			slog.Warn("Dropping timeslot with inverted interval", "sku", act.Identifier)
			continue
		}
		price := "0.0"
		if len(act.Offers) > 0 {
			price = "£" + strconv.FormatFloat(act.Offers[0].Price, 'f', 2, 64)
		}
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, crawlers.London()),
			StartingTime:  models.ClockTimeOf(start),
			EndingTime:    models.ClockTimeOf(end),
			Price:         price,
			Spaces:        act.RemainingAttendeeCapacity,
			LastRefreshed: now,
			BookingURL:    fmt.Sprintf("https://activities.decathlon.co.uk/en-GB/participants?sku=%s", act.Identifier),
		})
	}
	return slots, nil
}
