package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"reddit_archiver/internal/domain"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "syncer",
		Short:         "Archive and re-sync Reddit activity",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	// withApp wires the application for a command and tears it down afterwards.
	withApp := func(run func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath)
			if err != nil {
				setupLogger("info").Error("failed to start", "error", err)
				return err
			}
			defer a.Close()

			if err := run(ctx, a, cmd); err != nil {
				a.logger.Error("command failed", "command", cmd.Name(), "error", err)
				return err
			}
			return nil
		}
	}

	root.AddCommand(
		newSyncCommand(withApp),
		newRefreshPendingCommand(withApp),
		newSyncSingleCommand(withApp),
		newSyncDueCommand(withApp),
		newDaemonCommand(withApp),
		newPendingStatusCommand(withApp),
		newCallsCommand(withApp),
	)
	return root
}

type appRunner func(run func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error

func newSyncCommand(withApp appRunner) *cobra.Command {
	var (
		group          string
		refreshPending bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync queued items of one group, or all of them",
		// The group is checked before anything is wired so a typo fails fast.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ResolveGroups(group); err != nil {
				return &exitError{code: 2, err: err}
			}
			return nil
		},
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			groups, _ := domain.ResolveGroups(group)
			return syncGroups(ctx, cmd, a.sync, groups, refreshPending)
		}),
	}

	cmd.Flags().StringVar(&group, "group", string(domain.GroupAll), "source group to sync (all, saved, upvoted, ...)")
	cmd.Flags().BoolVar(&refreshPending, "refresh-pending", false, "reconcile listings before syncing")
	return cmd
}

type groupSyncer interface {
	SyncPendingForGroup(ctx context.Context, group domain.SourceGroup, refreshFirst bool) (*domain.SyncReport, error)
}

// syncGroups runs the groups in order. Item failures only show up in the printed
// reports; batch-level errors are returned. The listings are refreshed once, before
// the first group.
func syncGroups(ctx context.Context, cmd *cobra.Command, syncer groupSyncer, groups []domain.SourceGroup, refreshPending bool) error {
	var errs []error
	for i, g := range groups {
		report, err := syncer.SyncPendingForGroup(ctx, g, refreshPending && i == 0)
		if report != nil {
			printReport(cmd, report)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", g, err))
			if report == nil || errors.Is(err, domain.ErrRateLimitExceeded) || ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

func newRefreshPendingCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync:refresh-pending",
		Short: "Reconcile every configured listing and queue missing items",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			queued, err := a.reconciler.RefreshAllPending(ctx)
			cmd.Printf("queued %d entries\n", queued)
			return err
		}),
	}
}

func newSyncSingleCommand(withApp appRunner) *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:   "sync:single",
		Short: "Sync one link with its comments, or one comment with its link",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			report, err := a.sync.SyncSingle(ctx, rawURL)
			if report != nil {
				printReport(cmd, report)
			}
			return err
		}),
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "permalink, short link or link fullname")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newSyncDueCommand(withApp appRunner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sync:due",
		Short: "Re-sync records whose next sync time has passed",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Sync.DueLimit
			}
			report, err := a.sync.SyncDue(ctx, limit)
			if report != nil {
				printReport(cmd, report)
			}
			return err
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to re-sync (default from config, 0 or less for all)")
	return cmd
}

func newDaemonCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run pending and due syncs on their schedules until interrupted",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			a.logger.Info("starting reddit syncer",
				"groups", a.groups,
				"schedule", a.cfg.Sync.Schedule,
				"due_schedule", a.cfg.Sync.DueSchedule,
			)

			err := a.runner().Start(ctx)
			if errors.Is(err, context.Canceled) {
				a.logger.Info("shutdown complete")
				return nil
			}
			return err
		}),
	}
}

func newPendingStatusCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "pending:status",
		Short: "Show how many entries are queued per group",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			counts, err := a.pending.CountByGroup(ctx)
			if err != nil {
				return err
			}
			for _, g := range domain.AllGroups() {
				cmd.Printf("%-10s %d\n", g, counts[g])
			}
			return nil
		}),
	}
}

func newCallsCommand(withApp appRunner) *cobra.Command {
	var n int64

	cmd := &cobra.Command{
		Use:   "calls:recent",
		Short: "Show the most recent upstream calls from the call log",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			if a.callLog == nil {
				return errors.New("call log requires redis.enabled")
			}

			subject := a.cfg.Reddit.Username
			if state, err := a.callLog.State(ctx, subject); err == nil {
				cmd.Printf("remaining %d/%d, resets %s\n", state.Remaining, state.Limit, state.RetryAfter.Format("15:04:05"))
			}

			events, err := a.callLog.Recent(ctx, subject, n)
			if err != nil {
				return err
			}
			for _, ev := range events {
				status := fmt.Sprint(ev.StatusCode)
				if ev.Error != "" {
					status = ev.Error
				}
				cmd.Printf("%s %-6s %s %s\n", ev.At.Format("2006-01-02 15:04:05"), ev.Method, ev.Endpoint, status)
			}
			return nil
		}),
	}

	cmd.Flags().Int64Var(&n, "n", 20, "number of events")
	return cmd
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	group := string(report.Group)
	if group == "" {
		group = "-"
	}
	cmd.Printf("run %s group=%s succeeded=%d failed=%d deferred=%d duration=%s\n",
		report.RunID, group, report.Succeeded, report.Failed, report.Deferred, report.Duration.Round(1e6))

	stages := make(map[string]int)
	for _, e := range report.Errors {
		stages[e.Stage]++
	}
	keys := make([]string, 0, len(stages))
	for k := range stages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.PrintErrf("  %s: %d failed\n", k, stages[k])
	}
}
