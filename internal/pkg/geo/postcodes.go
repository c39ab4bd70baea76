package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/pkg/config"
)

// ErrInvalidPostcode is returned when the geocoding service does not know the
// postcode. Callers translate it into a client-facing 400.
var ErrInvalidPostcode = errors.New("invalid UK postcode")

// PostcodesClient resolves UK postcodes to coordinates via postcodes.io.
// No API key is required.
type PostcodesClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPostcodesClient(cfg *config.GeocodingConfig) *PostcodesClient {
	return &PostcodesClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type postcodeResult struct {
	Status int `json:"status"`
	Result *struct {
		Postcode  string  `json:"postcode"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
}

// Geocode returns the coordinates for a postcode. Success requires an HTTP
// 200 with a non-null result; anything else is reported as an invalid
// postcode so the caller can reject the search input.
func (c *PostcodesClient) Geocode(ctx context.Context, postcode string) (Point, error) {
	reqURL := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Point{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode %q: %w", postcode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Point{}, fmt.Errorf("geocode %q: read body: %w", postcode, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Postcode lookup failed", "postcode", postcode, "status", resp.StatusCode)
		return Point{}, fmt.Errorf("%w: %s", ErrInvalidPostcode, postcode)
	}

	var result postcodeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return Point{}, fmt.Errorf("geocode %q: parse response: %w", postcode, err)
	}
	if result.Result == nil {
		return Point{}, fmt.Errorf("%w: %s", ErrInvalidPostcode, postcode)
	}
	return Point{Latitude: result.Result.Latitude, Longitude: result.Result.Longitude}, nil
}

// Validate reports whether the postcode is a real UK postcode.
func (c *PostcodesClient) Validate(ctx context.Context, postcode string) (bool, error) {
	reqURL := fmt.Sprintf("%s/postcodes/%s/validate", c.baseURL, url.PathEscape(postcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("validate postcode %q: %w", postcode, err)
	}
	defer resp.Body.Close()

	var result struct {
		Result bool `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("validate postcode %q: parse response: %w", postcode, err)
	}
	return result.Result, nil
}
