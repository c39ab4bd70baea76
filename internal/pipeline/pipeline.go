// Package pipeline runs one sport's refresh end to end: fan the registered
// adapters out over their venues and dates, normalise the responses, and swap
// the result into the master table.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/courtscan/courtscan/internal/crawler/crawlers"
	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
	"github.com/courtscan/courtscan/internal/pkg/storage"
)

// SlotStorage is the slice of the slot store the pipeline needs: the staging
// write path plus the historical times that back placeholder synthesis.
type SlotStorage interface {
	storage.SlotWriter
	KnownSlotTimes(ctx context.Context, sport models.Sport, compositeKey string, date time.Time) ([]models.SlotTime, error)
}

// Pipeline refreshes slot availability one sport at a time. Concurrent calls
// for the same sport serialise on a per-sport mutex so a slow manual run and
// a scheduled run never race on the staging table.
type Pipeline struct {
	cfg    *config.Config
	client crawlers.Doer
	venues storage.VenueCatalogue
	slots  SlotStorage

	mu     sync.Mutex
	sports map[models.Sport]*sync.Mutex
}

func New(cfg *config.Config, client crawlers.Doer, venues storage.VenueCatalogue, slots SlotStorage) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		venues: venues,
		slots:  slots,
		sports: make(map[models.Sport]*sync.Mutex),
	}
}

func (p *Pipeline) sportMutex(sport models.Sport) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.sports[sport]; ok {
		return m
	}
	m := &sync.Mutex{}
	p.sports[sport] = m
	return m
}

// Refresh crawls every registered adapter for the sport and swaps the result
// into the master table. It returns the number of slots published. A refresh
// that yields zero slots leaves the master table untouched and reports an
// error: an empty swap would wipe good data over a transient outage.
func (p *Pipeline) Refresh(ctx context.Context, sport models.Sport) (int, error) {
	m := p.sportMutex(sport)
	m.Lock()
	defer m.Unlock()

	deps := &crawlers.Deps{Config: p.cfg, Client: p.client, Placeholders: p.slots}
	adapters := crawlers.BySport(deps, sport)
	if len(adapters) == 0 {
		return 0, fmt.Errorf("no adapters registered for %s", sport)
	}
	venues, err := p.venues.ListOfferingSport(ctx, sport)
	if err != nil {
		return 0, fmt.Errorf("list venues for %s: %w", sport, err)
	}

	return p.refresh(ctx, sport, adapters, venues)
}

func (p *Pipeline) refresh(ctx context.Context, sport models.Sport, adapters []*crawlers.Adapter, venues []models.Venue) (int, error) {
	started := time.Now()
	slog.Info("Refresh started", "sport", sport, "adapters", len(adapters), "venues", len(venues))

	var (
		resultMu  sync.Mutex
		collected []models.Slot
		failed    int
	)
	var wg sync.WaitGroup
	for _, adapter := range adapters {
		adapterVenues := venuesFor(adapter, venues)
		if len(adapterVenues) == 0 {
			continue
		}

		tokens := newTokenHolder(adapter.TokenSource)
		token, err := tokens.current(ctx)
		if err != nil {
			slog.Warn("Token acquisition failed, skipping adapter", "adapter", adapter.Name, "error", err)
			continue
		}

		dates := crawlers.DateWindow(started, adapter.LookaheadDays)
		for _, venue := range adapterVenues {
			for _, date := range dates {
				for _, req := range adapter.Requests.GenerateRequests(venue, date, token) {
					wg.Add(1)
					go func(adapter *crawlers.Adapter, req models.RequestDetail) {
						defer wg.Done()
						slots, err := p.crawlOne(ctx, adapter, tokens, req)
						resultMu.Lock()
						defer resultMu.Unlock()
						if err != nil {
							failed++
							slog.Warn("Crawl task failed", "adapter", adapter.Name,
								"venue", req.Metadata.Venue.Slug, "date", req.Metadata.Date.Format("2006-01-02"), "error", err)
							return
						}
						collected = append(collected, slots...)
					}(adapter, req)
				}
			}
		}
	}
	wg.Wait()

	slots := crawlers.RollUpCourts(collected)
	valid := slots[:0]
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			slog.Warn("Dropping invalid slot", "sport", sport, "error", err)
			continue
		}
		valid = append(valid, s)
	}

	if len(valid) == 0 {
		return 0, fmt.Errorf("refresh for %s produced no slots (%d tasks failed), master table kept", sport, failed)
	}

	if err := p.slots.ResetStaging(ctx, sport); err != nil {
		return 0, fmt.Errorf("reset staging for %s: %w", sport, err)
	}
	if err := p.slots.InsertStaging(ctx, sport, valid); err != nil {
		return 0, fmt.Errorf("stage slots for %s: %w", sport, err)
	}
	if err := p.slots.SwapStagingToMaster(ctx, sport); err != nil {
		return 0, fmt.Errorf("swap staging for %s: %w", sport, err)
	}

	slog.Info("Refresh complete", "sport", sport, "slots", len(valid),
		"failed_tasks", failed, "took", time.Since(started).Round(time.Millisecond))
	return len(valid), nil
}

// crawlOne issues one request, retrying once with a fresh token when an
// authenticated provider answers 401, and parses the response. An empty
// result turns into fully-booked placeholders when the adapter opts in.
func (p *Pipeline) crawlOne(ctx context.Context, adapter *crawlers.Adapter, tokens *tokenHolder, req models.RequestDetail) ([]models.Slot, error) {
	raw, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if raw.StatusCode == http.StatusUnauthorized && tokens.source != nil {
		token, err := tokens.refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("token refresh after 401: %w", err)
		}
		req.Token = token
		if raw, err = p.client.Do(ctx, req); err != nil {
			return nil, err
		}
	}

	slots, err := adapter.Parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 && adapter.PlaceholderOnEmpty && p.slots != nil {
		md := req.Metadata
		times, err := p.slots.KnownSlotTimes(ctx, adapter.Sport, md.Venue.CompositeKey, md.Date)
		if err != nil {
			slog.Warn("Placeholder lookup failed", "adapter", adapter.Name, "venue", md.Venue.Slug, "error", err)
			return nil, nil
		}
		return crawlers.PlaceholderSlots(md, times, time.Now()), nil
	}
	return slots, nil
}

func venuesFor(adapter *crawlers.Adapter, venues []models.Venue) []models.Venue {
	var out []models.Venue
	for _, v := range venues {
		if v.OrganisationWebsite == adapter.OrganisationWebsite {
			out = append(out, v)
		}
	}
	return out
}

// tokenHolder shares one token between the concurrent tasks of an adapter and
// makes sure a burst of 401s triggers a single browser login, not one each.
type tokenHolder struct {
	source crawlers.TokenSource

	mu    sync.Mutex
	token string
	fresh bool
}

func newTokenHolder(source crawlers.TokenSource) *tokenHolder {
	return &tokenHolder{source: source}
}

func (h *tokenHolder) current(ctx context.Context) (string, error) {
	if h.source == nil {
		return "", nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token != "" {
		return h.token, nil
	}
	token, err := h.source.Token(ctx)
	if err != nil {
		return "", err
	}
	h.token = token
	return token, nil
}

func (h *tokenHolder) refresh(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fresh {
		return h.token, nil
	}
	token, err := h.source.Refresh(ctx)
	if err != nil {
		return "", err
	}
	h.token = token
	h.fresh = true
	return token, nil
}
