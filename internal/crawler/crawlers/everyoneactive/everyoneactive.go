// Package everyoneactive crawls the Everyone Active mobile availability API.
// The endpoint reports each court separately with epoch timestamps; the
// parser converts to London wall clock and rolls courts up per interval.
package everyoneactive

import (
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://www.everyoneactive.com/"
	availabilityURL     = "https://caching.everyoneactive.com/aws/api/activity/availability"

	// The availability API never returns prices; the standard court rate is
	// applied to every slot.
	courtPrice = "£18.00"
)

// activityIDs maps venue slugs to the badminton activity code of each site.
var activityIDs = map[string]string{
	"queen-mother-sports-centre":             "155BADMINTON1",
	"st-augustines-sports-centre":            "156BADMINTON1",
	"reynolds-sports-centre":                 "119BADM050SH001",
	"moberly-sports-centre":                  "160BADM055SH001",
	"little-venice-sports-centre":            "158BADMINTON1",
	"jubilee-community-leisure-centre":       "282BADM060SH001",
	"church-street-community-leisure-centre": "270BADM060SH001",
	"academy-sport":                          "262BADM060SH001",
	"vale-farm-sports-centre":                "101BADMINTON1",
	"greenford-sports-centre":                "118BADM050SH001",
	"harrow-leisure-centre":                  "091BADMINT001",
}

func init() {
	crawlers.Register("everyoneactive", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	return []*crawlers.Adapter{{
		Name:                "everyoneactive/badminton",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportBadminton,
		LookaheadDays:       6,
		Requests:            availabilityRequests{},
		Parser:              AvailabilityParser{},
	}}
}

type availabilityRequests struct{}

func (availabilityRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	activityID, ok := activityIDs[venue.Slug]
	if !ok {
		return nil
	}
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Unix()
	to := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, time.UTC).Unix()
	return []models.RequestDetail{{
		URL: fmt.Sprintf("%s?toUTC=%d&activityId=%s&fromUTC=%d&locale=en_GB", availabilityURL, to, activityID, from),
		Headers: map[string]string{
			"Host":              "caching.everyoneactive.com",
			"AuthenticationKey": "M0bi1eProB00king$",
			"Accept":            "application/json,application/json",
			"User-Agent":        "iPhone",
			"Accept-Language":   "en-GB;q=1.0",
			"Content-Type":      "application/json",
		},
		Metadata: models.RequestMetadata{
			Venue:        venue,
			Date:         date,
			Category:     "Badminton",
			DefaultPrice: courtPrice,
			BookingURL:   fmt.Sprintf("https://www.everyoneactive.com/centre/%s/", venue.Slug),
		},
	}}
}

type courtSlot struct {
	StartUTC       int64 `json:"sUTC"`
	AvailableSlots int   `json:"s"`
}

type bookableItem struct {
	CourtName string      `json:"n"`
	CourtID   string      `json:"id"`
	Slots     []courtSlot `json:"slots"`
}

type availabilityResponse struct {
	APIVersion    string         `json:"apiVer"`
	SiteTimezone  string         `json:"siteTimezone"`
	Frequency     int            `json:"frequency"`
	Duration      int            `json:"duration"`
	BookableItems []bookableItem `json:"bookableItems"`
}

type AvailabilityParser struct{}

var _ crawlers.ResponseParser = AvailabilityParser{}

func (AvailabilityParser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureJSON(raw); err != nil {
		return nil, err
	}

	var resp availabilityResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode availability from %s: %w", raw.Request.URL, err)
	}
	duration := resp.Duration
	if duration <= 0 {
		duration = 60
	}

	// Sum availability over courts per (date, start).
	type key struct {
		date  string
		start models.ClockTime
	}
	type entry struct {
		date  time.Time
		start models.ClockTime
		total int
	}
	totals := make(map[key]*entry)
	for _, item := range resp.BookableItems {
		for _, slot := range item.Slots {
			local := crawlers.FromEpoch(slot.StartUTC)
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, crawlers.London())
			k := key{day.Format("2006-01-02"), models.ClockTimeOf(local)}
			if e, ok := totals[k]; ok {
				e.total += slot.AvailableSlots
			} else {
				totals[k] = &entry{date: day, start: models.ClockTimeOf(local), total: slot.AvailableSlots}
			}
		}
	}

	entries := make([]*entry, 0, len(totals))
	for _, e := range totals {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.Before(entries[j].date)
		}
		return entries[i].start.Before(entries[j].start)
	})

	md := raw.Request.Metadata
	now := time.Now()
	slots := make([]models.Slot, 0, len(entries))
	for _, e := range entries {
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          e.date,
			StartingTime:  e.start,
			EndingTime:    e.start.Add(duration),
			Price:         md.DefaultPrice,
			Spaces:        e.total,
			LastRefreshed: now,
			BookingURL:    md.BookingURL,
		})
	}
	return slots, nil
}
