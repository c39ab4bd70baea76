// Package southwark crawls Southwark Leisure's two booking backends: the
// Gladstone sessions API for badminton and the signature availability API
// for pickleball. Both shapes already have parsers elsewhere in the tree,
// so this package only contributes request strategies.
package southwark

import (
	"fmt"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/crawler/crawlers/everyoneactive"
	"github.com/courtscan/courtscan/internal/crawler/crawlers/towerhamlets"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://southwarkleisure.co.uk/"
	gladstoneHost       = "southwarkcouncil.gladstonego.cloud"
	signatureHost       = "southwarkcouncil.gs-signature.cloud"

	badmintonPrice  = "£9.70"
	pickleballPrice = "£11.85"
)

// badmintonActivityIDs maps Gladstone site ids (venue slugs) to activity codes.
var badmintonActivityIDs = map[string][]string{
	"CAS": {"CAACT00001"},
}

// pickleballActivityIDs maps venue slugs to signature-API activity codes.
var pickleballActivityIDs = map[string]string{
	"CWLC": "CWACT00003", // Canada Water Leisure Centre
}

func init() {
	crawlers.Register("southwark", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	bookingURL := fmt.Sprintf("https://%s/book", gladstoneHost)
	var loginTimeout time.Duration
	if deps.Config != nil {
		loginTimeout = deps.Config.Crawler.TowerHamlets.LoginTimeout
	}
	return []*crawlers.Adapter{
		{
			Name:                "southwark/badminton",
			OrganisationWebsite: organisationWebsite,
			Sport:               models.SportBadminton,
			// A sessions response covers the whole bookable window.
			LookaheadDays: 0,
			Requests:      badmintonRequests{},
			Parser:        towerhamlets.SessionsParser{},
			TokenSource:   towerhamlets.NewJWTTokenSource(bookingURL, loginTimeout),
		},
		{
			Name:                "southwark/pickleball",
			OrganisationWebsite: organisationWebsite,
			Sport:               models.SportPickleball,
			LookaheadDays:       6,
			Requests:            pickleballRequests{},
			Parser:              everyoneactive.AvailabilityParser{},
		},
	}
}

type badmintonRequests struct{}

func (badmintonRequests) GenerateRequests(venue models.Venue, date time.Time, token string) []models.RequestDetail {
	ids, ok := badmintonActivityIDs[venue.Slug]
	if !ok {
		return nil
	}
	dateFrom := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000Z")
	var out []models.RequestDetail
	for _, activityID := range ids {
		out = append(out, models.RequestDetail{
			URL: fmt.Sprintf(
				"https://%s/api/availability/V2/sessions?siteIds=%s&activityIDs=%s&webBookableOnly=true&dateFrom=%s&locationId=",
				gladstoneHost, venue.Slug, activityID, dateFrom,
			),
			Headers: map[string]string{"Host": gladstoneHost},
			Token:   token,
			Metadata: models.RequestMetadata{
				Venue:        venue,
				Date:         date,
				Category:     "Badminton",
				DefaultPrice: badmintonPrice,
				BookingURL: fmt.Sprintf(
					"https://%s/book/calendar/%s?activityDate={formatted_date}&previousActivityDate={formatted_previous_day}",
					gladstoneHost, activityID,
				),
			},
		})
	}
	return out
}

type pickleballRequests struct{}

func (pickleballRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	activityID, ok := pickleballActivityIDs[venue.Slug]
	if !ok {
		return nil
	}
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Unix()
	to := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, time.UTC).Unix()
	return []models.RequestDetail{{
		URL: fmt.Sprintf(
			"https://%s/AWS/api/activity/availability?toUTC=%d&activityId=%s&fromUTC=%d&locale=en_GB",
			signatureHost, to, activityID, from,
		),
		Headers: map[string]string{"Host": signatureHost},
		Metadata: models.RequestMetadata{
			Venue:        venue,
			Date:         date,
			Category:     "Pickleball",
			DefaultPrice: pickleballPrice,
			BookingURL:   fmt.Sprintf("https://%s/book/calendar/%s", gladstoneHost, activityID),
		},
	}}
}
