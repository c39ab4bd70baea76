package crawlers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Doer issues one provider request. The shared HTTP client implements it;
// tests substitute stubs.
type Doer interface {
	Do(ctx context.Context, rd models.RequestDetail) (*models.RawResponse, error)
}

// TokenSource supplies the auth token an adapter's requests need. Refresh
// discards any cached token and obtains a fresh one; the crawl loop calls it
// once when a request comes back 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// PlaceholderSource answers which start/end times a venue historically offers
// on a date. Backed by the master slot table.
type PlaceholderSource interface {
	KnownSlotTimes(ctx context.Context, sport models.Sport, compositeKey string, date time.Time) ([]models.SlotTime, error)
}

// RequestStrategy produces the provider requests for one venue and one date.
// token is empty for unauthenticated providers.
type RequestStrategy interface {
	GenerateRequests(venue models.Venue, date time.Time, token string) []models.RequestDetail
}

// ResponseParser turns one raw provider response into normalised slots.
// Parsers are pure: no IO, no clock reads beyond the metadata they are handed.
type ResponseParser interface {
	Parse(raw *models.RawResponse) ([]models.Slot, error)
}

// Adapter binds one organisation+sport pair to its request strategy and
// parser. The crawl loop treats every adapter identically.
type Adapter struct {
	// Name identifies the adapter in logs, e.g. "better/badminton".
	Name                string
	OrganisationWebsite string
	Sport               models.Sport
	// LookaheadDays is how far ahead the provider exposes availability,
	// counting today as day zero.
	LookaheadDays int
	Requests      RequestStrategy
	Parser        ResponseParser
	// TokenSource is nil for providers without authentication.
	TokenSource TokenSource
	// PlaceholderOnEmpty synthesises fully-booked slots from the venue's
	// known times when the provider returns an empty day. Providers that
	// omit sold-out days entirely would otherwise look identical to venues
	// with no courts at all.
	PlaceholderOnEmpty bool
}

// Deps is everything a factory may need to assemble its adapters.
type Deps struct {
	Config       *config.Config
	Client       Doer
	Placeholders PlaceholderSource
}

// EnsureOK rejects any response that is not a plain 200 with a body.
func EnsureOK(raw *models.RawResponse) error {
	if raw.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", raw.StatusCode, raw.Request.URL)
	}
	if len(raw.Body) == 0 {
		return fmt.Errorf("empty body from %s", raw.Request.URL)
	}
	return nil
}

// EnsureJSON validates a response for a JSON parser: status, body, and a
// declared content type that is JSON. Providers serving an HTML error page
// with a 200 are caught here instead of surfacing as a decode failure.
func EnsureJSON(raw *models.RawResponse) error {
	return ensureContentType(raw, "json")
}

// EnsureHTML is EnsureJSON's counterpart for HTML-scraping parsers.
func EnsureHTML(raw *models.RawResponse) error {
	return ensureContentType(raw, "html")
}

func ensureContentType(raw *models.RawResponse, want string) error {
	if err := EnsureOK(raw); err != nil {
		return err
	}
	header := raw.Headers.Get("Content-Type")
	if header == "" {
		// Not every provider declares one; the parser still sees the body.
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("malformed content type %q from %s: %w", header, raw.Request.URL, err)
	}
	if !strings.Contains(mediaType, want) {
		return fmt.Errorf("unexpected content type %q from %s, want %s", mediaType, raw.Request.URL, want)
	}
	return nil
}
