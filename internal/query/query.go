// Package query answers availability searches against the master tables. It
// owns the group-then-rank shaping: one group per venue and date, anchored on
// the earliest bookable slot, because users pick a venue first and scan times
// second.
package query

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/geo"
	"github.com/courtscan/courtscan/internal/pkg/models"
	"github.com/courtscan/courtscan/internal/pkg/storage"
)

// Geocoder resolves a postcode to coordinates. geo.PostcodesClient implements
// it; tests use fixed fakes.
type Geocoder interface {
	Geocode(ctx context.Context, postcode string) (geo.Point, error)
}

const (
	SortByDistance = "distance"
	SortByPrice    = "price"
)

// Criteria is one availability search. Either Postcode+RadiusMiles or
// SpecifiedVenues selects the venue set; SpecifiedVenues wins when both are
// present.
type Criteria struct {
	Sport           models.Sport
	Date            time.Time
	Postcode        string
	RadiusMiles     float64
	StartTime       models.ClockTime
	EndTime         models.ClockTime
	SpecifiedVenues []string
	SortBy          string
}

// SlotView is one bookable interval as presented to the API.
type SlotView struct {
	StartingTime models.ClockTime `json:"starting_time"`
	EndingTime   models.ClockTime `json:"ending_time"`
	Price        string           `json:"price"`
	Spaces       int              `json:"spaces"`
	Available    bool             `json:"available"`
	BookingURL   string           `json:"booking_url"`
}

// VenueGroup is one venue's availability on one date: the earliest bookable
// slot as the anchor plus the rest of the day as other availabilities.
type VenueGroup struct {
	Venue               models.Venue `json:"venue"`
	Date                time.Time    `json:"date"`
	DistanceMiles       float64      `json:"distance_miles"`
	Anchor              SlotView     `json:"anchor"`
	OtherAvailabilities []SlotView   `json:"other_availabilities"`
}

type Service struct {
	venues   storage.VenueCatalogue
	slots    storage.SlotReader
	geocoder Geocoder
	now      func() time.Time
}

func NewService(venues storage.VenueCatalogue, slots storage.SlotReader, geocoder Geocoder) *Service {
	return &Service{venues: venues, slots: slots, geocoder: geocoder, now: time.Now}
}

// Search returns per-venue availability groups for the criteria. An unknown
// postcode surfaces geo.ErrInvalidPostcode for the API layer to translate
// into a 400. An empty specified-venue list with no postcode yields zero
// groups rather than falling back to the whole catalogue.
func (s *Service) Search(ctx context.Context, c Criteria) ([]VenueGroup, error) {
	candidates, err := s.venues.ListOfferingSport(ctx, c.Sport)
	if err != nil {
		return nil, fmt.Errorf("list venues for %s: %w", c.Sport, err)
	}

	var selected []models.Venue
	distances := make(map[string]float64)
	switch {
	case len(c.SpecifiedVenues) > 0:
		want := make(map[string]bool, len(c.SpecifiedVenues))
		for _, key := range c.SpecifiedVenues {
			want[key] = true
		}
		for _, v := range candidates {
			if want[v.CompositeKey] {
				selected = append(selected, v)
			}
		}
		if c.Postcode != "" {
			origin, err := s.geocoder.Geocode(ctx, c.Postcode)
			if err != nil {
				return nil, err
			}
			for _, v := range selected {
				distances[v.CompositeKey] = geo.DistanceMiles(origin, geo.Point{Latitude: v.Latitude, Longitude: v.Longitude})
			}
		}
	case c.Postcode != "":
		origin, err := s.geocoder.Geocode(ctx, c.Postcode)
		if err != nil {
			return nil, err
		}
		for _, v := range candidates {
			d := geo.DistanceMiles(origin, geo.Point{Latitude: v.Latitude, Longitude: v.Longitude})
			if d <= c.RadiusMiles {
				selected = append(selected, v)
				distances[v.CompositeKey] = d
			}
		}
	default:
		return nil, nil
	}
	if len(selected) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(selected))
	byKey := make(map[string]models.Venue, len(selected))
	for _, v := range selected {
		keys = append(keys, v.CompositeKey)
		byKey[v.CompositeKey] = v
	}

	slots, err := s.slots.SearchSlots(ctx, c.Sport, storage.SlotFilter{
		CompositeKeys: keys,
		Date:          c.Date,
		StartAfter:    c.StartTime,
		EndBefore:     c.EndTime,
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}

	groups := buildGroups(slots, byKey, distances)
	sortGroups(groups, c.SortBy)
	return groups, nil
}

// SearchVenue returns one venue's availability for the whole day. The caller
// identifies the venue by composite key; an unknown key surfaces
// storage.ErrVenueNotFound.
func (s *Service) SearchVenue(ctx context.Context, sport models.Sport, date time.Time, compositeKey string) (*VenueGroup, error) {
	venue, err := s.venues.Lookup(ctx, compositeKey)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.SearchSlots(ctx, sport, storage.SlotFilter{
		CompositeKeys: []string{compositeKey},
		Date:          date,
		StartAfter:    models.NewClockTime(0, 0),
		EndBefore:     models.NewClockTime(23, 59),
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	groups := buildGroups(slots, map[string]models.Venue{compositeKey: *venue}, nil)
	if len(groups) == 0 {
		// Every slot fully booked: no anchor, so no group.
		return nil, nil
	}
	return &groups[0], nil
}

// buildGroups folds slot rows into per-venue groups. Rows arrive ordered by
// (composite_key, starting_time) from storage, so the first bookable slot of
// each key becomes the anchor.
func buildGroups(slots []models.Slot, venues map[string]models.Venue, distances map[string]float64) []VenueGroup {
	grouped := make(map[string][]models.Slot)
	var order []string
	for _, slot := range slots {
		if _, ok := venues[slot.CompositeKey]; !ok {
			continue
		}
		if _, seen := grouped[slot.CompositeKey]; !seen {
			order = append(order, slot.CompositeKey)
		}
		grouped[slot.CompositeKey] = append(grouped[slot.CompositeKey], slot)
	}

	groups := make([]VenueGroup, 0, len(order))
	for _, key := range order {
		rows := grouped[key]
		sort.Slice(rows, func(i, j int) bool { return rows[i].StartingTime.Before(rows[j].StartingTime) })

		anchorIdx := -1
		for i, row := range rows {
			if row.Spaces > 0 {
				anchorIdx = i
				break
			}
		}
		if anchorIdx < 0 {
			continue
		}

		group := VenueGroup{
			Venue:         venues[key],
			Date:          rows[anchorIdx].Date,
			DistanceMiles: distances[key],
			Anchor:        viewOf(rows[anchorIdx]),
		}
		for i, row := range rows {
			if i == anchorIdx {
				continue
			}
			group.OtherAvailabilities = append(group.OtherAvailabilities, viewOf(row))
		}
		groups = append(groups, group)
	}
	return groups
}

func viewOf(s models.Slot) SlotView {
	return SlotView{
		StartingTime: s.StartingTime,
		EndingTime:   s.EndingTime,
		Price:        s.Price,
		Spaces:       s.Spaces,
		Available:    s.Spaces > 0,
		BookingURL:   s.BookingURL,
	}
}

func sortGroups(groups []VenueGroup, sortBy string) {
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].Date.Equal(groups[j].Date) {
			return groups[i].Date.Before(groups[j].Date)
		}
		if sortBy == SortByPrice {
			return PriceValue(groups[i].Anchor.Price) < PriceValue(groups[j].Anchor.Price)
		}
		return groups[i].DistanceMiles < groups[j].DistanceMiles
	})
}

// PriceValue extracts the leading numeric value from a price string such as
// "£12.50" or "£8.00 / hour". Unparseable prices sort last.
func PriceValue(price string) float64 {
	s := strings.TrimSpace(price)
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return math.MaxFloat64
	}
	end := start
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	v, err := strconv.ParseFloat(s[start:end], 64)
	if err != nil {
		return math.MaxFloat64
	}
	return v
}
