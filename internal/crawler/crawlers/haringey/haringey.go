// Package haringey crawls Haringey Active Wellbeing's flow.onl deployment.
// It sits on the newer v2 times endpoint but the response envelope matches
// the Better API, so the better parser applies.
package haringey

import (
	"fmt"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/crawler/crawlers/better"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://haringey.gov.uk/"
	bookingHost         = "https://haringeyactivewellbeing.bookings.flow.onl"
	apiBase             = "https://flow.onl/api/activities/venue"
	lookaheadDays       = 6
)

func init() {
	crawlers.Register("haringey", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	return []*crawlers.Adapter{{
		Name:                "haringey/badminton",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportBadminton,
		LookaheadDays:       lookaheadDays,
		Requests:            badmintonRequests{},
		Parser:              better.Parser{},
	}}
}

type badmintonRequests struct{}

func (badmintonRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	day := date.Format("2006-01-02")
	const activityID = "badminton"
	return []models.RequestDetail{{
		URL: fmt.Sprintf("%s/%s/activity/%s/v2/times?date=%s", apiBase, venue.Slug, activityID, day),
		Headers: map[string]string{
			"Origin":  bookingHost,
			"Referer": bookingHost + "/",
		},
		Metadata: models.RequestMetadata{
			Venue:      venue,
			Date:       date,
			Category:   "Badminton",
			BookingURL: fmt.Sprintf("%s/location/%s/%s/%s/by-time/", bookingHost, venue.Slug, activityID, day),
		},
	}}
}
