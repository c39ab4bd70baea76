package everyoneactive

import (
	"testing"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Three courts each expose one free slot at 2026-01-10 19:00 UTC (GMT) with
// 60-minute duration; the 20:00 slot is only free on one court.
const availabilityFixture = `{
	"apiVer":"2.0","siteTimezone":"Europe/London","maxBookableTime":0,
	"frequency":60,"duration":60,"addonOptionsAvailable":false,
	"bookableItems":[
		{"n":"Court 1","id":"c1","slots":[
			{"sUTC":1768071600,"p":"P","pd":null,"rp":false,"s":1},
			{"sUTC":1768075200,"p":"P","pd":null,"rp":false,"s":0}]},
		{"n":"Court 2","id":"c2","slots":[
			{"sUTC":1768071600,"p":"P","pd":null,"rp":false,"s":1}]},
		{"n":"Court 3","id":"c3","slots":[
			{"sUTC":1768071600,"p":"P","pd":null,"rp":false,"s":1},
			{"sUTC":1768075200,"p":"P","pd":null,"rp":false,"s":1}]}
	]}`

func TestParseRollsUpCourtsAcrossItems(t *testing.T) {
	raw := &models.RawResponse{
		Body:       []byte(availabilityFixture),
		StatusCode: 200,
		Request: models.RequestDetail{
			URL: availabilityURL,
			Metadata: models.RequestMetadata{
				Venue:        models.Venue{CompositeKey: "ea00aa11", Slug: "queen-mother-sports-centre"},
				Category:     "Badminton",
				DefaultPrice: courtPrice,
				BookingURL:   "https://www.everyoneactive.com/centre/queen-mother-sports-centre/",
			},
		},
	}
	slots, err := AvailabilityParser{}.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("parsed %d slots, want 2 intervals", len(slots))
	}

	first := slots[0]
	if first.StartingTime.String() != "19:00" || first.EndingTime.String() != "20:00" {
		t.Errorf("interval = %s-%s", first.StartingTime, first.EndingTime)
	}
	if first.Spaces != 3 {
		t.Errorf("19:00 spaces = %d, want 3 (one per court)", first.Spaces)
	}
	if first.Date.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("date = %s", first.Date)
	}
	if first.Price != "£18.00" {
		t.Errorf("price = %q", first.Price)
	}
	if slots[1].Spaces != 1 {
		t.Errorf("20:00 spaces = %d, want 1", slots[1].Spaces)
	}
}

func TestGenerateRequestsNeedsActivityMapping(t *testing.T) {
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	reqs := availabilityRequests{}.GenerateRequests(models.Venue{Slug: "queen-mother-sports-centre"}, date, "")
	if len(reqs) != 1 {
		t.Fatalf("generated %d requests, want 1", len(reqs))
	}
	if reqs[0].Headers["AuthenticationKey"] == "" {
		t.Error("mobile API key header missing")
	}

	if reqs := (availabilityRequests{}).GenerateRequests(models.Venue{Slug: "unmapped-centre"}, date, ""); reqs != nil {
		t.Errorf("unmapped venue should yield no requests, got %d", len(reqs))
	}
}
