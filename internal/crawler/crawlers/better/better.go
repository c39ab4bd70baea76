package better

import (
	"fmt"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://www.better.org.uk"
	apiBase             = "https://better-admin.org.uk/api/activities/venue"
	bookingBase         = "https://bookings.better.org.uk"

	// The API only serves availability this many days ahead.
	lookaheadDays = 6
)

func init() {
	crawlers.Register("better", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	adapter := func(sport models.Sport, strategy crawlers.RequestStrategy) *crawlers.Adapter {
		return &crawlers.Adapter{
			Name:                "better/" + string(sport),
			OrganisationWebsite: organisationWebsite,
			Sport:               sport,
			LookaheadDays:       lookaheadDays,
			Requests:            strategy,
			Parser:              Parser{},
			PlaceholderOnEmpty:  true,
		}
	}
	return []*crawlers.Adapter{
		adapter(models.SportBadminton, badmintonRequests{}),
		adapter(models.SportSquash, squashRequests{}),
		adapter(models.SportPickleball, pickleballRequests{}),
	}
}

// buildRequest assembles one times-endpoint request for an activity variant.
func buildRequest(venue models.Venue, date time.Time, category, activityID string) models.RequestDetail {
	day := date.Format("2006-01-02")
	bookingURL := fmt.Sprintf("%s/location/%s/%s/%s/by-time/", bookingBase, venue.Slug, activityID, day)
	return models.RequestDetail{
		URL: fmt.Sprintf("%s/%s/activity/%s/times?date=%s", apiBase, venue.Slug, activityID, day),
		Headers: map[string]string{
			"Origin":  bookingBase,
			"Referer": fmt.Sprintf("%s/location/%s/%s/%s/by-time", bookingBase, venue.Slug, activityID, day),
		},
		Metadata: models.RequestMetadata{
			Venue:      venue,
			Date:       date,
			Category:   category,
			BookingURL: bookingURL,
		},
	}
}

// Two booking durations exist for badminton; both are fetched per venue/date.
type badmintonRequests struct{}

func (badmintonRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	var out []models.RequestDetail
	for _, activityID := range []string{"badminton-40min", "badminton-60min"} {
		out = append(out, buildRequest(venue, date, "Badminton", activityID))
	}
	return out
}

type squashRequests struct{}

func (squashRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	activityID := "squash-court-40min"
	// Woolwich is on the newer activity scheme.
	if venue.Slug == "woolwich-waves-leisure-centre" {
		activityID += "/v2"
	}
	return []models.RequestDetail{buildRequest(venue, date, "Squash", activityID)}
}

type pickleballRequests struct{}

func (pickleballRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	return []models.RequestDetail{buildRequest(venue, date, "Pickleball", "pickleball-60min")}
}
