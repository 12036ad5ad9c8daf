package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"reddit_archiver/internal/domain"
)

// Syncer defines the sync operations the runner drives.
type Syncer interface {
	SyncPendingForGroup(ctx context.Context, group domain.SourceGroup, refreshFirst bool) (*domain.SyncReport, error)
	SyncDue(ctx context.Context, limit int) (*domain.SyncReport, error)
}

type RunnerConfig struct {
	Schedule    string
	DueSchedule string
	Groups      []domain.SourceGroup
	DueLimit    int
	RunTimeout  time.Duration
}

// Runner runs pending and due syncs on cron schedules. A job still running when its
// next tick arrives is skipped.
type Runner struct {
	syncer Syncer
	cfg    RunnerConfig
	logger *slog.Logger
}

func NewRunner(syncer Syncer, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &Runner{
		syncer: syncer,
		cfg:    cfg,
		logger: logger.With("component", "runner"),
	}
}

func (r *Runner) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.runPending(ctx) }); err != nil {
		return fmt.Errorf("schedule pending sync %q: %w", r.cfg.Schedule, err)
	}
	if _, err := c.AddFunc(r.cfg.DueSchedule, func() { r.runDue(ctx) }); err != nil {
		return fmt.Errorf("schedule due sync %q: %w", r.cfg.DueSchedule, err)
	}

	r.logger.Info("runner started",
		"schedule", r.cfg.Schedule,
		"due_schedule", r.cfg.DueSchedule,
		"groups", len(r.cfg.Groups),
	)

	r.runPending(ctx)

	c.Start()
	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()

	r.logger.Info("runner stopped")
	return ctx.Err()
}

// runPending refreshes the queue once, then drains every group.
func (r *Runner) runPending(ctx context.Context) {
	for i, group := range r.cfg.Groups {
		if ctx.Err() != nil {
			return
		}

		runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
		_, err := r.syncer.SyncPendingForGroup(runCtx, group, i == 0)
		cancel()

		if err != nil {
			r.logger.Error("pending sync failed", "group", group, "error", err)
		}
	}
}

func (r *Runner) runDue(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	if _, err := r.syncer.SyncDue(runCtx, r.cfg.DueLimit); err != nil {
		r.logger.Error("due sync failed", "error", err)
	}
}
