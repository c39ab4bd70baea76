package scheduler

import (
	"context"
	"testing"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/models"
)

type noopRefresher struct{}

func (noopRefresher) Refresh(context.Context, models.Sport) (int, error) { return 0, nil }

func TestNewRejectsBadCronExpression(t *testing.T) {
	_, err := New(&config.SchedulerConfig{Badminton: "not a cron line"}, noopRefresher{})
	if err == nil {
		t.Fatal("want error for malformed cron expression")
	}
}

func TestNewAcceptsEmptyAndValidExpressions(t *testing.T) {
	s, err := New(&config.SchedulerConfig{
		Badminton:  "0 */4 * * *",
		Squash:     "",
		Pickleball: "30 6 * * *",
	}, noopRefresher{})
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
