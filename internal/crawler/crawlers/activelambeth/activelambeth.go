// Package activelambeth crawls Active Lambeth's flow.onl booking deployment,
// which runs the same API as Better Leisure.
package activelambeth

import (
	"fmt"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/crawler/crawlers/better"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://lambethcouncil.bookings.flow.onl"
	apiBase             = "https://flow.onl/api/activities/venue"
	lookaheadDays       = 6
)

func init() {
	crawlers.Register("activelambeth", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	adapter := func(sport models.Sport, strategy crawlers.RequestStrategy) *crawlers.Adapter {
		return &crawlers.Adapter{
			Name:                "activelambeth/" + string(sport),
			OrganisationWebsite: organisationWebsite,
			Sport:               sport,
			LookaheadDays:       lookaheadDays,
			Requests:            strategy,
			Parser:              better.Parser{},
		}
	}
	return []*crawlers.Adapter{
		adapter(models.SportBadminton, requests{category: "Badminton", activityIDs: []string{"badminton-40min", "badminton-60min"}}),
		adapter(models.SportSquash, requests{category: "Squash", activityIDs: []string{"squash-court-40min"}}),
	}
}

type requests struct {
	category    string
	activityIDs []string
}

func (r requests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	day := date.Format("2006-01-02")
	out := make([]models.RequestDetail, 0, len(r.activityIDs))
	for _, activityID := range r.activityIDs {
		out = append(out, models.RequestDetail{
			URL: fmt.Sprintf("%s/%s/activity/%s/times?date=%s", apiBase, venue.Slug, activityID, day),
			Headers: map[string]string{
				"Origin":  organisationWebsite,
				"Referer": fmt.Sprintf("%s/location/%s/%s/%s/by-time", organisationWebsite, venue.Slug, activityID, day),
			},
			Metadata: models.RequestMetadata{
				Venue:      venue,
				Date:       date,
				Category:   r.category,
				BookingURL: fmt.Sprintf("%s/location/%s/%s/%s/by-time/", organisationWebsite, venue.Slug, activityID, day),
			},
		})
	}
	return out
}
