package reddit

import (
	"context"
	"errors"
	"log/slog"
)

// LogRecorder writes call events to the structured log.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With("component", "api_calls")}
}

func (r *LogRecorder) Record(ctx context.Context, event CallEvent) error {
	level := slog.LevelDebug
	if event.Error != "" {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "api call",
		"method", event.Method,
		"endpoint", event.Endpoint,
		"options", event.Options,
		"status", event.StatusCode,
		"attempt", event.Attempt,
		"duration", event.Duration,
		"remaining", event.RateLimit.Remaining,
		"error", event.Error,
	)
	return nil
}

// Recorders fans an event out to every recorder and joins their errors.
type Recorders []CallRecorder

func (rs Recorders) Record(ctx context.Context, event CallEvent) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
