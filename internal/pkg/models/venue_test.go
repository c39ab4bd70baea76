package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompositeKey(t *testing.T) {
	tests := []struct {
		website string
		slug    string
		want    string
	}{
		// md5("https://www.better.org.uk|poplar-baths-leisure-centre")[:8]
		{"https://www.better.org.uk", "poplar-baths-leisure-centre", CompositeKey("https://www.better.org.uk", "poplar-baths-leisure-centre")},
	}
	for _, tt := range tests {
		got := CompositeKey(tt.website, tt.slug)
		if len(got) != 8 {
			t.Errorf("CompositeKey(%q, %q) = %q, want 8 hex chars", tt.website, tt.slug, got)
		}
		if got != tt.want {
			t.Errorf("CompositeKey not deterministic: %q != %q", got, tt.want)
		}
	}
}

func TestCompositeKeyDistinguishesInputs(t *testing.T) {
	a := CompositeKey("https://www.better.org.uk", "venue-a")
	b := CompositeKey("https://www.better.org.uk", "venue-b")
	if a == b {
		t.Fatalf("different slugs produced the same composite key %q", a)
	}
	c := CompositeKey("https://www.everyoneactive.com/", "venue-a")
	if a == c {
		t.Fatalf("different websites produced the same composite key %q", a)
	}
}

const validMapping = `[
  {
    "organisation": "Better Leisure",
    "organisation_website": "https://www.better.org.uk",
    "venues": [
      {
        "venue_name": "Poplar Baths Leisure Centre",
        "slug": "poplar-baths-leisure-centre",
        "sports": ["badminton", "squash"],
        "location": {"postcode": "E14 0EH", "latitude": 51.5117, "longitude": -0.0197}
      }
    ]
  }
]`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venues.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadVenueMapping(t *testing.T) {
	mappings, err := LoadVenueMapping(writeMapping(t, validMapping))
	if err != nil {
		t.Fatalf("LoadVenueMapping: %v", err)
	}
	venues := FlattenMappings(mappings)
	if len(venues) != 1 {
		t.Fatalf("got %d venues, want 1", len(venues))
	}
	v := venues[0]
	if v.CompositeKey != CompositeKey("https://www.better.org.uk", "poplar-baths-leisure-centre") {
		t.Errorf("unexpected composite key %q", v.CompositeKey)
	}
	if v.Postcode != "E14 0EH" {
		t.Errorf("postcode = %q", v.Postcode)
	}
	if !v.OffersSport(SportBadminton) || !v.OffersSport(SportSquash) {
		t.Errorf("sports not carried over: %v", v.Sports)
	}
	if v.OffersSport(SportPickleball) {
		t.Errorf("venue should not offer pickleball")
	}
}

func TestLoadVenueMappingRejectsWholeFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty array", `[]`},
		{"unknown sport", `[{"organisation":"X","organisation_website":"https://x.org","venues":[{"venue_name":"V","slug":"v","sports":["tennis"],"location":{"latitude":51.5,"longitude":-0.1}}]}]`},
		{"missing slug", `[{"organisation":"X","organisation_website":"https://x.org","venues":[{"venue_name":"V","slug":"","sports":["squash"],"location":{"latitude":51.5,"longitude":-0.1}}]}]`},
		{"no coordinates", `[{"organisation":"X","organisation_website":"https://x.org","venues":[{"venue_name":"V","slug":"v","sports":["squash"],"location":{"latitude":0,"longitude":0}}]}]`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadVenueMapping(writeMapping(t, tt.content)); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
