// Package better crawls the Better Leisure booking API. The same API backs
// the council deployments on flow.onl, so activelambeth and haringey reuse
// this package's parser.
package better

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

type timeFormat struct {
	Format12Hour string `json:"format_12_hour"`
	Format24Hour string `json:"format_24_hour"`
}

type priceBlock struct {
	FormattedAmount string `json:"formatted_amount"`
}

type apiSlot struct {
	StartsAt     timeFormat `json:"starts_at"`
	EndsAt       timeFormat `json:"ends_at"`
	Duration     string     `json:"duration"`
	Price        priceBlock `json:"price"`
	CategorySlug string     `json:"category_slug"`
	Date         string     `json:"date"`
	VenueSlug    string     `json:"venue_slug"`
	Spaces       int        `json:"spaces"`
	Name         string     `json:"name"`
}

type timesEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Parser decodes the `{"data": ...}` envelope the Better API returns. The
// data block is a JSON array on most venues and a keyed object on a few, so
// both shapes are accepted.
type Parser struct{}

var _ crawlers.ResponseParser = Parser{}

func (Parser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureJSON(raw); err != nil {
		return nil, err
	}

	var envelope timesEnvelope
	if err := json.Unmarshal(raw.Body, &envelope); err != nil {
		return nil, fmt.Errorf("decode times envelope from %s: %w", raw.Request.URL, err)
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}

	apiSlots, err := decodeDataBlock(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("decode data block from %s: %w", raw.Request.URL, err)
	}

	md := raw.Request.Metadata
	now := time.Now()
	slots := make([]models.Slot, 0, len(apiSlots))
	for _, s := range apiSlots {
		start, err := models.ParseClockTime(s.StartsAt.Format24Hour)
		if err != nil {
			slog.Warn("Dropping slot with bad start time", "url", raw.Request.URL, "value", s.StartsAt.Format24Hour)
			continue
		}
		end, err := models.ParseClockTime(s.EndsAt.Format24Hour)
		if err != nil {
			slog.Warn("Dropping slot with bad end time", "url", raw.Request.URL, "value", s.EndsAt.Format24Hour)
			continue
		}
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          md.Date,
			StartingTime:  start,
			EndingTime:    end,
			Price:         s.Price.FormattedAmount,
			Spaces:        s.Spaces,
			LastRefreshed: now,
			BookingURL:    md.BookingURL,
		})
	}
	return slots, nil
}

func decodeDataBlock(data json.RawMessage) ([]apiSlot, error) {
	var asList []apiSlot
	if err := json.Unmarshal(data, &asList); err == nil {
		return asList, nil
	}
	var asMap map[string]apiSlot
	if err := json.Unmarshal(data, &asMap); err != nil {
		return nil, err
	}
	out := make([]apiSlot, 0, len(asMap))
	for _, s := range asMap {
		out = append(out, s)
	}
	return out, nil
}
