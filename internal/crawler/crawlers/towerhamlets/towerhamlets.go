// Package towerhamlets crawls Tower Hamlets' Gladstone booking API. The API
// needs a JWT that the public booking site hands out to anonymous browser
// sessions, so a headless browser fetches it once per pipeline run.
package towerhamlets

import (
	"fmt"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://be-well.org.uk/"
	apiHost             = "towerhamletscouncil.gladstonego.cloud"
	defaultBookingPage  = "https://towerhamletscouncil.gladstonego.cloud/book"

	// Hard-coded court rate; the sessions API does not return prices.
	courtPrice = "£12.80"
)

// activityIDs maps each site to its badminton activity codes. Site ids double
// as venue slugs in the catalogue.
var activityIDs = map[string][]string{
	"JOSC":  {"JACT000010", "JACT000011"},
	"WSC":   {"WACT000010", "WACT000011"},
	"PBLC":  {"PACT000010", "PACT000011"},
	"MEPLS": {"MACT000009", "MACT000010", "MACT000011"},
}

func init() {
	crawlers.Register("towerhamlets", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	bookingURL := defaultBookingPage
	var loginTimeout time.Duration
	if deps.Config != nil {
		if deps.Config.Crawler.TowerHamlets.BookingURL != "" {
			bookingURL = deps.Config.Crawler.TowerHamlets.BookingURL
		}
		loginTimeout = deps.Config.Crawler.TowerHamlets.LoginTimeout
	}
	return []*crawlers.Adapter{{
		Name:                "towerhamlets/badminton",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportBadminton,
		// One sessions response carries the whole month, so only today is
		// requested.
		LookaheadDays: 0,
		Requests:      sessionRequests{},
		Parser:        SessionsParser{},
		TokenSource:   NewJWTTokenSource(bookingURL, loginTimeout),
	}}
}

type sessionRequests struct{}

func (sessionRequests) GenerateRequests(venue models.Venue, date time.Time, token string) []models.RequestDetail {
	ids, ok := activityIDs[venue.Slug]
	if !ok {
		return nil
	}
	var out []models.RequestDetail
	for _, activityID := range ids {
		out = append(out, models.RequestDetail{
			URL: fmt.Sprintf(
				"https://%s/api/availability/V2/sessions?siteIds=%s&activityIDs=%s&webBookableOnly=true&dateFrom=%s&locationId=",
				apiHost, venue.Slug, activityID, dateFrom(date),
			),
			Headers: map[string]string{"Host": apiHost},
			Token:   token,
			Metadata: models.RequestMetadata{
				Venue:        venue,
				Date:         date,
				Category:     "Badminton",
				DefaultPrice: courtPrice,
				BookingURL: fmt.Sprintf(
					"https://%s/book/calendar/%s?activityDate={formatted_date}&previousActivityDate={formatted_previous_day}",
					apiHost, activityID,
				),
			},
		})
	}
	return out
}

// dateFrom starts today's query at the current instant so already-started
// slots are excluded, and future dates at midnight.
func dateFrom(date time.Time) string {
	const stamp = "2006-01-02T15:04:05.000Z"
	now := time.Now().In(crawlers.London())
	if date.Year() == now.Year() && date.YearDay() == now.YearDay() {
		return now.UTC().Format(stamp)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Format(stamp)
}
