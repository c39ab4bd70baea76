package decathlon

import (
	"strings"
	"testing"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Two published timeslots on 2026-01-10; times are UTC so London wall clock
// matches in January.
const timeslotsFixture = `[
	{"identifier":"TS-001","activityIdentifier":"surrey-quays-pickleball",
	 "startDate":"2026-01-10T18:00:00Z","endDate":"2026-01-10T19:00:00Z",
	 "maximumAttendeeCapacity":8,"remainingAttendeeCapacity":5,
	 "offers":[{"identifier":"OF-1","currency":"GBP","price":7.5,"name":"Standard"}]},
	{"identifier":"TS-002","activityIdentifier":"surrey-quays-pickleball",
	 "startDate":"2026-01-10T19:00:00Z","endDate":"2026-01-10T20:00:00Z",
	 "maximumAttendeeCapacity":8,"remainingAttendeeCapacity":0,
	 "offers":[]}
]`

func TestParseTimeslots(t *testing.T) {
	raw := &models.RawResponse{
		Body:       []byte(timeslotsFixture),
		StatusCode: 200,
		Request: models.RequestDetail{
			URL: apiBase + "/surrey-quays-pickleball/timeslots",
			Metadata: models.RequestMetadata{
				Venue:    models.Venue{CompositeKey: "dc00aa11", Slug: "surrey-quays-pickleball"},
				Category: "Pickleball",
			},
		},
	}
	slots, err := timeslotParser{}.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("parsed %d slots, want 2", len(slots))
	}

	first := slots[0]
	if first.StartingTime.String() != "18:00" || first.EndingTime.String() != "19:00" {
		t.Errorf("interval = %s-%s", first.StartingTime, first.EndingTime)
	}
	if first.Spaces != 5 {
		t.Errorf("spaces = %d, want 5", first.Spaces)
	}
	if first.Price != "£7.50" {
		t.Errorf("price = %q, want £7.50", first.Price)
	}
	if first.Date.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("date = %s", first.Date)
	}
	if first.BookingURL != "https://activities.decathlon.co.uk/en-GB/participants?sku=TS-001" {
		t.Errorf("booking url = %q", first.BookingURL)
	}

	if slots[1].Price != "0.0" {
		t.Errorf("offerless slot price = %q, want 0.0", slots[1].Price)
	}
	if slots[1].Spaces != 0 {
		t.Errorf("full slot spaces = %d, want 0", slots[1].Spaces)
	}
}

func TestGenerateRequestsUsesSlugAsActivityID(t *testing.T) {
	venue := models.Venue{Slug: "surrey-quays-pickleball"}
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	reqs := timeslotRequests{}.GenerateRequests(venue, date, "")
	if len(reqs) != 1 {
		t.Fatalf("generated %d requests, want 1", len(reqs))
	}
	req := reqs[0]
	if !strings.Contains(req.URL, "/activities/surrey-quays-pickleball/timeslots") {
		t.Errorf("url = %q", req.URL)
	}
	if !strings.Contains(req.URL, "timeslotStatus=PUBLISHED") {
		t.Errorf("url missing status filter: %q", req.URL)
	}
	if req.Headers["X-Api-Key"] == "" {
		t.Error("api key header missing")
	}
	if req.Metadata.Category != "Pickleball" {
		t.Errorf("category = %q", req.Metadata.Category)
	}
}
