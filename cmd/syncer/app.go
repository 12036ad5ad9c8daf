package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"reddit_archiver/internal/config"
	"reddit_archiver/internal/denormalize"
	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/fetcher"
	"reddit_archiver/internal/publisher"
	"reddit_archiver/internal/ratelimit"
	"reddit_archiver/internal/reconciler"
	"reddit_archiver/internal/reddit"
	"reddit_archiver/internal/scheduler"
	"reddit_archiver/internal/service"
	"reddit_archiver/internal/storage/postgres"
	"reddit_archiver/internal/storage/redis"
)

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	groups     []domain.SourceGroup
	db         *sqlx.DB
	redis      *goredis.Client
	callLog    *redis.CallLog
	rabbitMQ   *publisher.RabbitMQ
	pending    *postgres.PendingStore
	reconciler *reconciler.Reconciler
	sync       *service.SyncService
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)

	groups, err := resolveGroups(cfg.Sync.Groups)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, groups: groups}

	a.db, err = sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database")

	bucket := ratelimit.NewBucket(ratelimit.Config{
		Subject:           cfg.Reddit.Username,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		InitialTokens:     cfg.RateLimit.InitialTokens,
		WaitTimeout:       cfg.RateLimit.WaitTimeout,
	}, logger)

	recorders := reddit.Recorders{reddit.NewLogRecorder(logger)}
	if cfg.Redis.Enabled {
		a.redis, err = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.callLog = redis.NewCallLog(a.redis, cfg.Redis.CallLogSize)
		recorders = append(recorders, a.callLog)

		// Another process may have spent part of the allowance already.
		if state, err := a.callLog.State(ctx, bucket.Subject()); err == nil {
			bucket.Update(*state)
		}
	}

	sinks := publisher.NewSinks(logger, publisher.NewLogSink(logger))
	if cfg.RabbitMQ.Enabled {
		a.rabbitMQ, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		sinks.Add(a.rabbitMQ)
	}

	client := reddit.New(reddit.Config{
		BaseURL:     cfg.Reddit.BaseURL,
		Username:    cfg.Reddit.Username,
		AccessToken: cfg.Reddit.AccessToken,
		UserAgent:   cfg.Reddit.UserAgent,
		PageSize:    cfg.Reddit.PageSize,
		Timeout:     cfg.Reddit.Timeout,
		MaxAttempts: cfg.Reddit.Retry.MaxAttempts,
		RetryDelay:  cfg.Reddit.Retry.Delay,
	}, bucket, recorders, logger)

	content := postgres.NewContentStore(a.db)
	a.pending = postgres.NewPendingStore(a.db)
	a.reconciler = reconciler.New(client, content, a.pending, groups, logger)

	a.sync = service.NewSyncService(service.Dependencies{
		Content:    content,
		Pending:    a.pending,
		GroupState: postgres.NewGroupStateStore(a.db),
		Refresher:  a.reconciler,
		Fetcher: fetcher.New(client, fetcher.Config{
			BatchSize: cfg.Sync.BatchSize,
			MaxDepth:  cfg.Sync.MaxTreeDepth,
		}, logger),
		Threads:      client,
		Denormalizer: denormalize.New(),
		Planner:      scheduler.NewPolicy(),
		Sink:         sinks,
		TxManager:    postgres.NewTransactionManager(a.db),
	}, logger)

	return a, nil
}

func (a *app) runner() *scheduler.Runner {
	return scheduler.NewRunner(a.sync, scheduler.RunnerConfig{
		Schedule:    a.cfg.Sync.Schedule,
		DueSchedule: a.cfg.Sync.DueSchedule,
		Groups:      a.groups,
		DueLimit:    a.cfg.Sync.DueLimit,
		RunTimeout:  a.cfg.Sync.RunTimeout,
	}, a.logger)
}

func (a *app) Close() {
	if a.rabbitMQ != nil {
		_ = a.rabbitMQ.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// resolveGroups expands the configured selectors, dropping duplicates.
func resolveGroups(selectors []string) ([]domain.SourceGroup, error) {
	seen := make(map[domain.SourceGroup]struct{})
	var out []domain.SourceGroup
	for _, selector := range selectors {
		groups, err := domain.ResolveGroups(selector)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	return out, nil
}
