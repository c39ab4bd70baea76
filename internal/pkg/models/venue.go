package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Venue is one row of the sportsvenue catalogue. The composite key is the
// stable identity of a venue across refreshes; slot rows reference it.
type Venue struct {
	CompositeKey        string   `db:"composite_key"`
	Organisation        string   `db:"organisation"`
	OrganisationWebsite string   `db:"organisation_website"`
	VenueName           string   `db:"venue_name"`
	Slug                string   `db:"slug"`
	Postcode            string   `db:"postcode"`
	Address             string   `db:"address"`
	Latitude            float64  `db:"latitude"`
	Longitude           float64  `db:"longitude"`
	Sports              []string `db:"-"`
}

func (v Venue) OffersSport(sport Sport) bool {
	for _, s := range v.Sports {
		if s == string(sport) {
			return true
		}
	}
	return false
}

// CompositeKey derives the 8-hex-char venue identifier from the organisation
// website and the venue slug. The derivation is part of the data contract:
// md5(organisation_website + "|" + slug) truncated to 8 characters.
func CompositeKey(organisationWebsite, slug string) string {
	sum := md5.Sum([]byte(organisationWebsite + "|" + slug))
	return hex.EncodeToString(sum[:])[:8]
}

// Venue mapping file models. The file is the single source of the catalogue:
// an array of organisations, each holding its venues.

type VenueMappingLocation struct {
	Postcode  *string `json:"postcode"`
	Address   *string `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type MappedVenue struct {
	VenueName string               `json:"venue_name"`
	Slug      string               `json:"slug"`
	Sports    []string             `json:"sports"`
	Location  VenueMappingLocation `json:"location"`
}

type OrganisationMapping struct {
	Organisation        string        `json:"organisation"`
	OrganisationWebsite string        `json:"organisation_website"`
	Venues              []MappedVenue `json:"venues"`
}

// LoadVenueMapping reads and validates the venue mapping file. Any invalid
// entry rejects the whole file: a partially loaded catalogue would silently
// drop venues from every subsequent crawl.
func LoadVenueMapping(path string) ([]OrganisationMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue mapping file: %w", err)
	}
	var mappings []OrganisationMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parse venue mapping file %s: %w", path, err)
	}
	if err := validateMappings(mappings); err != nil {
		return nil, fmt.Errorf("invalid venue mapping file %s: %w", path, err)
	}
	return mappings, nil
}

func validateMappings(mappings []OrganisationMapping) error {
	if len(mappings) == 0 {
		return fmt.Errorf("no organisations defined")
	}
	seen := make(map[string]string)
	for _, org := range mappings {
		if org.Organisation == "" || org.OrganisationWebsite == "" {
			return fmt.Errorf("organisation with empty name or website")
		}
		if len(org.Venues) == 0 {
			return fmt.Errorf("organisation %q has no venues", org.Organisation)
		}
		for _, v := range org.Venues {
			if v.VenueName == "" || v.Slug == "" {
				return fmt.Errorf("organisation %q: venue with empty name or slug", org.Organisation)
			}
			if len(v.Sports) == 0 {
				return fmt.Errorf("venue %q offers no sports", v.Slug)
			}
			for _, s := range v.Sports {
				if _, err := ParseSport(s); err != nil {
					return fmt.Errorf("venue %q: %w", v.Slug, err)
				}
			}
			if v.Location.Latitude == 0 && v.Location.Longitude == 0 {
				return fmt.Errorf("venue %q has no coordinates", v.Slug)
			}
			key := CompositeKey(org.OrganisationWebsite, v.Slug)
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("composite key collision %s between %q and %q", key, prev, v.Slug)
			}
			seen[key] = v.Slug
		}
	}
	return nil
}

// FlattenMappings turns the hierarchical mapping document into catalogue rows.
func FlattenMappings(mappings []OrganisationMapping) []Venue {
	var venues []Venue
	for _, org := range mappings {
		for _, v := range org.Venues {
			venue := Venue{
				CompositeKey:        CompositeKey(org.OrganisationWebsite, v.Slug),
				Organisation:        org.Organisation,
				OrganisationWebsite: org.OrganisationWebsite,
				VenueName:           v.VenueName,
				Slug:                v.Slug,
				Latitude:            v.Location.Latitude,
				Longitude:           v.Location.Longitude,
				Sports:              v.Sports,
			}
			if v.Location.Postcode != nil {
				venue.Postcode = *v.Location.Postcode
			}
			if v.Location.Address != nil {
				venue.Address = *v.Location.Address
			}
			venues = append(venues, venue)
		}
	}
	return venues
}
