// Package refresher keeps stored forecasts fresh: it periodically asks the
// forecast service to regenerate forecasts and prunes rows that are too old
// to display.
package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/observability"
	"github.com/swfm/backend/internal/service"
)

// Refresher runs the periodic forecast refresh loop.
type Refresher struct {
	repo      domain.DataRepository
	forecasts *service.ForecastService
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	interval time.Duration
	maxAge   time.Duration
	stations []int
}

// New creates a refresher. When stations is empty every station known to
// the store is refreshed on each run.
func New(repo domain.DataRepository, forecasts *service.ForecastService, logger *slog.Logger, metrics *observability.Metrics, interval, maxAge time.Duration, stations []int) *Refresher {
	return &Refresher{
		repo:      repo,
		forecasts: forecasts,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		interval:  interval,
		maxAge:    maxAge,
		stations:  stations,
	}
}

// SetClock replaces the clock, for tests.
func (r *Refresher) SetClock(c clockwork.Clock) {
	r.clock = c
}

// Run executes refresh cycles until the context is cancelled. The first
// cycle runs immediately so a fresh deployment does not wait a full
// interval for forecasts.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("refresher started", "interval", r.interval, "max_age", r.maxAge)

	r.RunOnce(ctx)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return
		case <-ticker.Chan():
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs one refresh cycle: regenerate forecasts for the
// configured stations, then prune forecasts older than the retention
// window. Failures are logged; the cycle always completes.
func (r *Refresher) RunOnce(ctx context.Context) {
	if r.metrics != nil {
		r.metrics.RefreshRuns.Inc()
	}

	stations := r.stations
	if len(stations) == 0 {
		ids, err := r.forecasts.AllStationIDs(ctx)
		if err != nil {
			r.logger.Error("refresh: listing stations failed", "error", err)
		}
		stations = ids
	}

	if len(stations) > 0 {
		result := r.forecasts.GenerateAll(ctx, stations, nil)
		r.logger.Info("refresh cycle complete",
			"stations", len(stations),
			"succeeded", result.SuccessCount,
			"failed", result.FailCount)
	}

	cutoff := r.clock.Now().Add(-r.maxAge)
	deleted, err := r.repo.DeleteForecastsOlderThan(ctx, cutoff)
	if err != nil {
		r.logger.Error("refresh: pruning stale forecasts failed", "error", err)
		return
	}
	if deleted > 0 {
		if r.metrics != nil {
			r.metrics.ForecastsDeleted.Add(float64(deleted))
		}
		r.logger.Info("pruned stale forecasts", "deleted", deleted, "cutoff", cutoff)
	}
}
