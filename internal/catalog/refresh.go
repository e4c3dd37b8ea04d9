package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/catalog/types"
)

// Refresher periodically re-warms the first page of each browse list and
// sweeps expired cache entries, so the staleness window rarely hits a cold
// cache.
type Refresher struct {
	service   *Service
	scheduler gocron.Scheduler
	interval  time.Duration
	logger    zerolog.Logger
}

// NewRefresher creates a refresher running at the given interval.
func NewRefresher(service *Service, interval time.Duration, logger zerolog.Logger) (*Refresher, error) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Refresher{
		service:   service,
		scheduler: gs,
		interval:  interval,
		logger:    logger.With().Str("component", "refresher").Logger(),
	}, nil
}

// Start registers the warm-up job and starts the scheduler.
func (r *Refresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.run),
		gocron.WithName("catalog-warmup"),
	)
	if err != nil {
		return fmt.Errorf("failed to create warmup job: %w", err)
	}

	r.scheduler.Start()
	r.logger.Info().Dur("interval", r.interval).Msg("Started catalog warm-up job")
	return nil
}

// Stop shuts the scheduler down gracefully.
func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

func (r *Refresher) run() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	r.service.Cache().Sweep()

	warmed := 0
	for _, kind := range []types.ListKind{types.ListLatest, types.ListSeries, types.ListSingle} {
		r.service.Cache().Delete(fmt.Sprintf("list:%s:%d", kind, 1))
		if movies := r.service.List(ctx, kind, 1); len(movies) > 0 {
			warmed++
		}
	}

	r.logger.Debug().
		Int("listsWarmed", warmed).
		Dur("duration", time.Since(start)).
		Msg("Catalog warm-up completed")
}
