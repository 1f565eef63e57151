// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// the operational modes:
//
//   - Worker mode: the scout worker pool consuming the job queue
//   - Maintenance: stuck-job recovery and queue gauge updates
//   - Health server: liveness, readiness and metrics endpoints
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/theme-scout/internal/cache"
	"github.com/lueurxax/theme-scout/internal/config"
	"github.com/lueurxax/theme-scout/internal/core/ports"
	"github.com/lueurxax/theme-scout/internal/llm"
	"github.com/lueurxax/theme-scout/internal/platform/observability"
	"github.com/lueurxax/theme-scout/internal/platform/worker"
	"github.com/lueurxax/theme-scout/internal/scout"
	db "github.com/lueurxax/theme-scout/internal/storage"
)

const (
	maintenanceInterval = time.Minute
	statsInterval       = 30 * time.Second
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunWorker starts the scout worker pool plus the queue maintenance loop
// and blocks until the context is canceled.
func (a *App) RunWorker(ctx context.Context) error {
	cacheStore, closeCache, err := a.newCacheStore(ctx)
	if err != nil {
		return err
	}

	defer closeCache()

	corpus := scout.NewCorpusCache(cacheStore, a.database, a.cfg.CorpusCacheTTL, a.logger)
	reranker := scout.NewReranker(llm.New(a.cfg, a.logger), a.cfg.LLMTimeout, a.logger)
	quota := scout.NewQuotaEnforcer(a.database, a.cfg.TokenEstimate)

	scoutWorker := scout.NewWorker(
		a.cfg,
		a.database,
		a.database,
		corpus,
		reranker,
		quota,
		a.database,
		a.database,
		a.logger,
	)

	go a.runMaintenance(ctx)

	return scoutWorker.Run(ctx)
}

// newCacheStore picks Redis when configured, otherwise an in-process store.
func (a *App) newCacheStore(ctx context.Context) (ports.CacheStore, func(), error) {
	if a.cfg.RedisAddr == "" {
		a.logger.Info().Msg("no redis configured, using in-memory corpus cache")

		return cache.NewMemory(), func() {}, nil
	}

	store, err := cache.NewRedis(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}

	return store, func() {
		if err := store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("redis close failed")
		}
	}, nil
}

// runMaintenance recovers stuck jobs and keeps the queue gauge fresh.
func (a *App) runMaintenance(ctx context.Context) {
	_ = worker.Loop(ctx, worker.Config{
		Name:         "scout-maintenance",
		PollInterval: statsInterval,
		Process: func(ctx context.Context) error {
			a.updateQueueStats(ctx)
			return nil
		},
		PeriodicTasks: []worker.PeriodicTask{
			{
				Name:     "recover-stuck-jobs",
				Interval: maintenanceInterval,
				Run:      a.recoverStuckJobs,
			},
		},
		Logger: a.logger,
	})
}

func (a *App) recoverStuckJobs(ctx context.Context) {
	recovered, err := a.database.RecoverStuckScoutJobs(ctx, a.cfg.JobStuckThreshold)
	if err != nil {
		a.logger.Error().Err(err).Msg("stuck job recovery failed")
		return
	}

	if recovered > 0 {
		a.logger.Warn().Int64("recovered", recovered).Msg("recovered stuck scout jobs")
	}
}

func (a *App) updateQueueStats(ctx context.Context) {
	stats, err := a.database.GetScoutQueueStats(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("queue stats failed")
		return
	}

	for _, stat := range stats {
		observability.QueueBacklog.WithLabelValues(stat.Status).Set(float64(stat.Count))
	}
}
