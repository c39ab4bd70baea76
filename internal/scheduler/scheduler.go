// Package scheduler re-runs the per-sport refresh pipelines on cron
// expressions from config. Serialisation per sport lives in the pipeline, so
// an overrunning refresh delays its successor instead of racing it.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

// Refresher runs one sport's refresh. *pipeline.Pipeline implements it.
type Refresher interface {
	Refresh(ctx context.Context, sport models.Sport) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// New builds the scheduler from the per-sport cron expressions. An empty
// expression disables that sport's periodic refresh.
func New(cfg *config.SchedulerConfig, refresher Refresher) (*Scheduler, error) {
	c := cron.New()
	entries := []struct {
		sport models.Sport
		expr  string
	}{
		{models.SportBadminton, cfg.Badminton},
		{models.SportSquash, cfg.Squash},
		{models.SportPickleball, cfg.Pickleball},
	}
	for _, e := range entries {
		if e.expr == "" {
			continue
		}
		sport := e.sport
		if _, err := c.AddFunc(e.expr, func() { runRefresh(refresher, sport) }); err != nil {
			return nil, fmt.Errorf("schedule %s refresh %q: %w", sport, e.expr, err)
		}
		slog.Info("Scheduled periodic refresh", "sport", sport, "cron", e.expr)
	}
	return &Scheduler{cron: c}, nil
}

func runRefresh(refresher Refresher, sport models.Sport) {
	started := time.Now()
	n, err := refresher.Refresh(context.Background(), sport)
	if err != nil {
		slog.Error("Scheduled refresh failed", "sport", sport, "error", err)
		return
	}
	slog.Info("Scheduled refresh finished", "sport", sport, "slots", n,
		"took", time.Since(started).Round(time.Second))
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and returns once any in-flight refresh has finished.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
