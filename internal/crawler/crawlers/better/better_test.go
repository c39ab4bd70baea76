package better

import (
	"strings"
	"testing"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

var testVenue = models.Venue{
	CompositeKey: "ab12cd34",
	VenueName:    "Poplar Baths Leisure Centre",
	Slug:         "poplar-baths-leisure-centre",
	Sports:       []string{"badminton", "squash"},
}

func rawResponse(body string) *models.RawResponse {
	return &models.RawResponse{
		Body:       []byte(body),
		StatusCode: 200,
		Request: models.RequestDetail{
			URL: "https://better-admin.org.uk/api/activities/venue/poplar-baths-leisure-centre/activity/badminton-60min/times?date=2026-03-14",
			Metadata: models.RequestMetadata{
				Venue:      testVenue,
				Date:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
				Category:   "Badminton",
				BookingURL: "https://bookings.better.org.uk/location/poplar-baths-leisure-centre/badminton-60min/2026-03-14/by-time/",
			},
		},
	}
}

const listFixture = `{"data":[
	{"starts_at":{"format_12_hour":"6:00pm","format_24_hour":"18:00"},
	 "ends_at":{"format_12_hour":"7:00pm","format_24_hour":"19:00"},
	 "duration":"1hr","price":{"formatted_amount":"£12.50"},
	 "category_slug":"badminton-60min","date":"2026-03-14",
	 "venue_slug":"poplar-baths-leisure-centre","spaces":3,"name":"Badminton 60min"},
	{"starts_at":{"format_12_hour":"7:00pm","format_24_hour":"19:00"},
	 "ends_at":{"format_12_hour":"8:00pm","format_24_hour":"20:00"},
	 "duration":"1hr","price":{"formatted_amount":"£12.50"},
	 "category_slug":"badminton-60min","date":"2026-03-14",
	 "venue_slug":"poplar-baths-leisure-centre","spaces":0,"name":"Badminton 60min"}
]}`

const keyedFixture = `{"data":{
	"1800":{"starts_at":{"format_12_hour":"6:00pm","format_24_hour":"18:00"},
	 "ends_at":{"format_12_hour":"7:00pm","format_24_hour":"19:00"},
	 "duration":"1hr","price":{"formatted_amount":"£6.80"},
	 "category_slug":"badminton-60min","date":"2026-03-14",
	 "venue_slug":"poplar-baths-leisure-centre","spaces":1,"name":"Badminton 60min"}
}}`

func TestParseListShape(t *testing.T) {
	slots, err := Parser{}.Parse(rawResponse(listFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("parsed %d slots, want 2", len(slots))
	}
	first := slots[0]
	if first.CompositeKey != "ab12cd34" {
		t.Errorf("composite key = %q", first.CompositeKey)
	}
	if first.StartingTime.String() != "18:00" || first.EndingTime.String() != "19:00" {
		t.Errorf("interval = %s-%s", first.StartingTime, first.EndingTime)
	}
	if first.Price != "£12.50" {
		t.Errorf("price = %q", first.Price)
	}
	if first.Spaces != 3 {
		t.Errorf("spaces = %d", first.Spaces)
	}
	if slots[1].Spaces != 0 {
		t.Errorf("sold-out slot spaces = %d, want 0", slots[1].Spaces)
	}
	if !strings.HasPrefix(first.BookingURL, "https://bookings.better.org.uk/location/") {
		t.Errorf("booking url = %q", first.BookingURL)
	}
}

func TestParseKeyedShape(t *testing.T) {
	slots, err := Parser{}.Parse(rawResponse(keyedFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 {
		t.Fatalf("parsed %d slots, want 1", len(slots))
	}
	if slots[0].Price != "£6.80" || slots[0].Spaces != 1 {
		t.Errorf("slot = %+v", slots[0])
	}
}

func TestParseEmptyData(t *testing.T) {
	slots, err := Parser{}.Parse(rawResponse(`{"data":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("parsed %d slots from empty data, want 0", len(slots))
	}
}

func TestBadmintonRequestsCoverBothDurations(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	reqs := badmintonRequests{}.GenerateRequests(testVenue, date, "")
	if len(reqs) != 2 {
		t.Fatalf("generated %d requests, want 2", len(reqs))
	}
	wantURL := "https://better-admin.org.uk/api/activities/venue/poplar-baths-leisure-centre/activity/badminton-40min/times?date=2026-03-14"
	if reqs[0].URL != wantURL {
		t.Errorf("url = %q\nwant %q", reqs[0].URL, wantURL)
	}
	if reqs[0].Headers["Origin"] != "https://bookings.better.org.uk" {
		t.Errorf("origin = %q", reqs[0].Headers["Origin"])
	}
	if reqs[0].Metadata.Category != "Badminton" {
		t.Errorf("category = %q", reqs[0].Metadata.Category)
	}
}

func TestSquashSlugQuirk(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	woolwich := testVenue
	woolwich.Slug = "woolwich-waves-leisure-centre"

	reqs := squashRequests{}.GenerateRequests(woolwich, date, "")
	if len(reqs) != 1 {
		t.Fatalf("generated %d requests, want 1", len(reqs))
	}
	if !strings.Contains(reqs[0].URL, "/activity/squash-court-40min/v2/times") {
		t.Errorf("woolwich url missing v2 scheme: %q", reqs[0].URL)
	}

	reqs = squashRequests{}.GenerateRequests(testVenue, date, "")
	if strings.Contains(reqs[0].URL, "/v2/") {
		t.Errorf("standard venue should not use v2 scheme: %q", reqs[0].URL)
	}
}

func TestFactoryRegistersAllSports(t *testing.T) {
	adapters := factory(&crawlers.Deps{})
	if len(adapters) != 3 {
		t.Fatalf("factory built %d adapters, want 3", len(adapters))
	}
	for _, a := range adapters {
		if a.LookaheadDays != 6 {
			t.Errorf("%s lookahead = %d, want 6", a.Name, a.LookaheadDays)
		}
		if !a.PlaceholderOnEmpty {
			t.Errorf("%s must synthesise placeholders on empty days", a.Name)
		}
	}
}
