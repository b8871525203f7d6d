// Package scheduler runs the periodic maintenance jobs: the request expiry
// sweep and the team health refresh.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/metrics"
)

const (
	JobRequestExpirySweep = "request_expiry_sweep"
	JobTeamHealthRefresh  = "team_health_refresh"
)

// Sweeper persists pending requests past expiry as expired.
type Sweeper interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// HealthRefresher recomputes team health scores.
type HealthRefresher interface {
	RefreshAllHealth(ctx context.Context) (int, error)
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (int64, error)
}

// Manager owns the gocron scheduler and its jobs.
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []job
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *zap.SugaredLogger
}

// New creates a manager with both maintenance jobs registered. Jobs do not
// run until Start.
func New(cfg config.SchedulerConfig, sweeper Sweeper, refresher HealthRefresher, logger *zap.SugaredLogger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{scheduler: s, ctx: ctx, cancel: cancel, logger: logger}
	m.jobs = []job{
		{
			name:     JobRequestExpirySweep,
			interval: cfg.ExpirySweepInterval,
			run:      sweeper.ExpireStale,
		},
		{
			name:     JobTeamHealthRefresh,
			interval: cfg.HealthRefreshInterval,
			run: func(ctx context.Context) (int64, error) {
				n, err := refresher.RefreshAllHealth(ctx)
				return int64(n), err
			},
		},
	}

	for _, j := range m.jobs {
		_, err := s.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(m.execute, j),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			cancel()
			_ = s.Shutdown()
			return nil, fmt.Errorf("registering job %s: %w", j.name, err)
		}
	}
	return m, nil
}

// Start starts running the registered jobs.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Infow("Scheduler started", "jobs", len(m.jobs))
}

// Shutdown cancels running jobs and waits for them to return.
func (m *Manager) Shutdown() error {
	m.cancel()
	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}
	m.logger.Info("Scheduler stopped")
	return nil
}

// execute runs one job with a deadline of one interval.
func (m *Manager) execute(j job) {
	ctx, cancel := context.WithTimeout(m.ctx, j.interval)
	defer cancel()

	start := time.Now()
	n, err := j.run(ctx)
	if err != nil {
		metrics.JobRuns.WithLabelValues(j.name, "error").Inc()
		m.logger.Errorw("Scheduled job failed", "job", j.name, "error", err)
		return
	}

	metrics.JobRuns.WithLabelValues(j.name, "ok").Inc()
	m.logger.Debugw("Scheduled job finished",
		"job", j.name,
		"affected", n,
		"duration", time.Since(start),
	)
}
