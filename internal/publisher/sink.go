package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"reddit_archiver/internal/domain"
)

// Sink receives sync errors.
type Sink interface {
	Report(ctx context.Context, syncErr domain.SyncError)
}

// LogSink writes sync errors to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "sync_errors")}
}

func (s *LogSink) Report(ctx context.Context, syncErr domain.SyncError) {
	s.logger.ErrorContext(ctx, "sync error",
		"sync_error_id", syncErr.ID,
		"run_id", syncErr.RunID,
		"group", syncErr.Group,
		"external_id", syncErr.ExternalID,
		"stage", syncErr.Stage,
		"error_type", classify(syncErr.Err),
		"error", syncErr.Err,
	)
}

// Sinks fans a report out to every sink. A panicking sink is logged and does not
// stop the others.
type Sinks struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewSinks(logger *slog.Logger, sinks ...Sink) *Sinks {
	return &Sinks{sinks: sinks, logger: logger.With("component", "error_sinks")}
}

func (ss *Sinks) Add(sink Sink) {
	ss.sinks = append(ss.sinks, sink)
}

func (ss *Sinks) Report(ctx context.Context, syncErr domain.SyncError) {
	for _, sink := range ss.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					ss.logger.ErrorContext(ctx, "error sink panicked",
						"sink", fmt.Sprintf("%T", sink),
						"sync_error_id", syncErr.ID,
						"panic", r,
					)
				}
			}()
			sink.Report(ctx, syncErr)
		}()
	}
}

func classify(err error) string {
	var (
		denormErr     *domain.DenormalizationError
		structuralErr *domain.StructuralError
		transportErr  *domain.TransportError
		upstreamErr   *domain.UpstreamError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &denormErr):
		return "denormalization"
	case errors.As(err, &structuralErr):
		return "structural"
	case errors.Is(err, domain.ErrUniqueViolation):
		return "unique_violation"
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return "rate_limit"
	case errors.Is(err, domain.ErrTreeTooDeep):
		return "tree_too_deep"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &upstreamErr):
		return "upstream"
	default:
		return "internal"
	}
}

func validJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return raw
}
