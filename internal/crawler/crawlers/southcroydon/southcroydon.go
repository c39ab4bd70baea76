// Package southcroydon scrapes the South Croydon Sports Club badminton
// booking grid. The site renders a static HTML table of courts against
// half-hour rows; a slot is free when its cell carries a booking checkbox.
package southcroydon

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

const (
	organisationWebsite = "https://www.southcroydonsportsclub.com/"
	bookingURL          = "https://www.southcroydonsportsclub.com/booking/badminton-court/"

	// Flat club rate; the page itself only shows prices after login.
	courtPrice = "£8.00"
)

func init() {
	crawlers.Register("southcroydon", factory)
}

func factory(deps *crawlers.Deps) []*crawlers.Adapter {
	return []*crawlers.Adapter{{
		Name:                "southcroydon/badminton",
		OrganisationWebsite: organisationWebsite,
		Sport:               models.SportBadminton,
		LookaheadDays:       6,
		Requests:            gridRequests{},
		Parser:              gridParser{},
	}}
}

type gridRequests struct{}

func (gridRequests) GenerateRequests(venue models.Venue, date time.Time, _ string) []models.RequestDetail {
	url := fmt.Sprintf("%s?date=%s", bookingURL, date.Format("2006-01-02"))
	return []models.RequestDetail{{
		URL: url,
		Metadata: models.RequestMetadata{
			Venue:        venue,
			Date:         date,
			Category:     "Badminton",
			DefaultPrice: courtPrice,
			BookingURL:   url,
		},
	}}
}

type gridParser struct{}

var _ crawlers.ResponseParser = gridParser{}

func (gridParser) Parse(raw *models.RawResponse) ([]models.Slot, error) {
	if err := crawlers.EnsureHTML(raw); err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("parse booking grid from %s: %w", raw.Request.URL, err)
	}

	times := timeRows(doc)
	if len(times) == 0 {
		return nil, nil
	}

	// Count free courts per time row across booking columns.
	free := make([]int, len(times))
	for _, column := range nodesWithClass(doc, "div", "booking-column") {
		rows := nodesWithClass(column, "div", "row")
		for i, row := range rows {
			if i >= len(times) {
				break
			}
			if hasBookableCheckbox(row) {
				free[i]++
			}
		}
	}

	md := raw.Request.Metadata
	now := time.Now()
	day := time.Date(md.Date.Year(), md.Date.Month(), md.Date.Day(), 0, 0, 0, 0, crawlers.London())
	slots := make([]models.Slot, 0, len(times))
	for i, interval := range times {
		start, end, err := parseInterval(interval)
		if err != nil {
			slog.Warn("Skipping unreadable grid row", "row", interval, "error", err)
			continue
		}
		slots = append(slots, models.Slot{
			CompositeKey:  md.Venue.CompositeKey,
			Category:      md.Category,
			Date:          day,
			StartingTime:  start,
			EndingTime:    end,
			Price:         md.DefaultPrice,
			Spaces:        free[i],
			LastRefreshed: now,
			BookingURL:    md.BookingURL,
		})
	}
	return slots, nil
}

// timeRows reads the grid's leading time column, one "HH:MM - HH:MM" label
// per row.
func timeRows(doc *html.Node) []string {
	var times []string
	for _, column := range nodesWithClass(doc, "div", "time-column") {
		for _, row := range nodesWithClass(column, "div", "row") {
			if text := strings.TrimSpace(textContent(row)); text != "" {
				times = append(times, text)
			}
		}
	}
	return times
}

func parseInterval(s string) (models.ClockTime, models.ClockTime, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("not a time interval: %q", s)
	}
	start, err := models.ParseClockTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := models.ParseClockTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func hasBookableCheckbox(n *html.Node) bool {
	if n.Type == html.ElementNode && n.Data == "input" && hasClass(n, "bookable-checkbox") {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasBookableCheckbox(c) {
			return true
		}
	}
	return false
}

// nodesWithClass collects element nodes by tag and class without descending
// into matches, so nested rows are attributed to their nearest column.
func nodesWithClass(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
