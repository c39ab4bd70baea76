package models

import (
	"fmt"
	"net/http"
	"time"
)

// Slot is the unified availability record: one bookable interval at one venue
// for one sport. Every provider response is normalised into this shape before
// it reaches storage.
type Slot struct {
	UID           string    `db:"uid"`
	CompositeKey  string    `db:"composite_key"`
	Category      string    `db:"category"`
	Date          time.Time `db:"date"`
	StartingTime  ClockTime `db:"starting_time"`
	EndingTime    ClockTime `db:"ending_time"`
	Price         string    `db:"price"`
	Spaces        int       `db:"spaces"`
	LastRefreshed time.Time `db:"last_refreshed"`
	BookingURL    string    `db:"booking_url"`
}

func (s Slot) Validate() error {
	if s.CompositeKey == "" {
		return fmt.Errorf("slot has no composite key")
	}
	if !s.EndingTime.After(s.StartingTime) {
		return fmt.Errorf("slot %s %s: ending time %s not after starting time %s",
			s.CompositeKey, s.Date.Format("2006-01-02"), s.EndingTime, s.StartingTime)
	}
	if s.Spaces < 0 {
		return fmt.Errorf("slot %s %s: negative spaces %d", s.CompositeKey, s.Date.Format("2006-01-02"), s.Spaces)
	}
	return nil
}

// SlotTime is a recurring start/end pair at a venue, used to synthesise
// fully-booked placeholder slots when a provider returns an empty day.
type SlotTime struct {
	Start ClockTime `db:"starting_time"`
	End   ClockTime `db:"ending_time"`
}

// RequestMetadata carries the crawl context that produced a request, so the
// parser can stamp provider-agnostic fields onto the slots it emits.
type RequestMetadata struct {
	Venue    Venue
	Date     time.Time
	Category string
	// DefaultPrice is set by adapters whose provider never returns a price.
	// The policy is explicit per adapter, never inferred.
	DefaultPrice string
	// BookingURL is either the final deep-link or a template the parser
	// completes from response data.
	BookingURL string
}

// RequestDetail is one outbound provider request plus its crawl context.
type RequestDetail struct {
	URL      string
	Headers  map[string]string
	Payload  []byte
	Token    string
	Metadata RequestMetadata
}

// RawResponse is a validated provider response handed to a parser, with a
// back-pointer to the request that produced it.
type RawResponse struct {
	Body       []byte
	StatusCode int
	Headers    http.Header
	Request    RequestDetail
}
