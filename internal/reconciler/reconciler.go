// Package reconciler compares the upstream listings with local records and queues
// whatever is missing.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/pagination"
)

type ListingSource interface {
	Listing(ctx context.Context, group domain.SourceGroup, cursor domain.SyncCursor) (pagination.Page[domain.RawItem], error)
}

type ContentIndex interface {
	ExistingExternalIDs(ctx context.Context, ids []domain.ExternalID) (map[domain.ExternalID]struct{}, error)
}

type PendingQueue interface {
	Enqueue(ctx context.Context, entry *domain.PendingEntry) error
}

type Reconciler struct {
	source  ListingSource
	content ContentIndex
	pending PendingQueue
	groups  []domain.SourceGroup
	now     func() time.Time
	logger  *slog.Logger
}

func New(
	source ListingSource,
	content ContentIndex,
	pending PendingQueue,
	groups []domain.SourceGroup,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		source:  source,
		content: content,
		pending: pending,
		groups:  groups,
		now:     time.Now,
		logger:  logger.With("component", "reconciler"),
	}
}

// GetPendingEntries returns listing items for group that have no local record, in
// listing order. A negative limit drains the whole listing. Items removed upstream
// are dropped silently.
func (r *Reconciler) GetPendingEntries(ctx context.Context, group domain.SourceGroup, limit int) ([]domain.PendingEntry, error) {
	fetch := func(ctx context.Context, cursor domain.SyncCursor) (pagination.Page[domain.RawItem], error) {
		return r.source.Listing(ctx, group, cursor)
	}

	items, err := pagination.Drain(ctx, fetch, limit)
	if err != nil {
		return nil, fmt.Errorf("drain listing %s: %w", group, err)
	}

	type candidate struct {
		id   domain.ExternalID
		item domain.RawItem
	}

	candidates := make([]candidate, 0, len(items))
	ids := make([]domain.ExternalID, 0, len(items))
	for _, item := range items {
		if item.IsPlaceholder() || item.IsRemoved() {
			continue
		}
		id, err := item.ExternalID()
		if err != nil {
			r.logger.Warn("skipping listing item without id", "group", group, "kind", item.Kind, "error", err)
			continue
		}
		candidates = append(candidates, candidate{id: id, item: item})
		ids = append(ids, id)
	}

	existing, err := r.content.ExistingExternalIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup existing ids: %w", err)
	}

	now := r.now().UTC()
	seen := make(map[domain.ExternalID]struct{}, len(candidates))
	var entries []domain.PendingEntry
	for _, c := range candidates {
		if _, ok := existing[c.id]; ok {
			continue
		}
		if _, ok := seen[c.id]; ok {
			continue
		}
		seen[c.id] = struct{}{}

		entries = append(entries, domain.PendingEntry{
			Group:          group,
			ExternalID:     c.id,
			RawListingJSON: c.item.Marshal(),
			QueuedAt:       now,
		})
	}

	r.logger.Debug("reconciled listing",
		"group", group,
		"listed", len(items),
		"existing", len(existing),
		"pending", len(entries),
	)

	return entries, nil
}

// RefreshAllPending reconciles every configured group and queues the results. A group
// whose listing or enqueue fails does not stop the others; a spent rate limit does.
func (r *Reconciler) RefreshAllPending(ctx context.Context) (int, error) {
	var (
		total int
		errs  []error
	)

	for _, group := range r.groups {
		entries, err := r.GetPendingEntries(ctx, group, pagination.Unbounded)
		if err != nil {
			r.logger.Error("refresh pending failed", "group", group, "error", err)
			errs = append(errs, fmt.Errorf("refresh %s: %w", group, err))
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				break
			}
			continue
		}

		queued, err := r.enqueue(ctx, entries)
		total += queued
		if err != nil {
			r.logger.Error("enqueue pending failed", "group", group, "queued", queued, "error", err)
			errs = append(errs, fmt.Errorf("refresh %s: %w", group, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		r.logger.Info("refreshed pending entries", "group", group, "queued", queued)
	}

	return total, errors.Join(errs...)
}

// enqueue stops at the first failing entry of a group; the rest is picked up by the
// next refresh.
func (r *Reconciler) enqueue(ctx context.Context, entries []domain.PendingEntry) (int, error) {
	for i := range entries {
		if err := r.pending.Enqueue(ctx, &entries[i]); err != nil {
			return i, fmt.Errorf("enqueue %s: %w", entries[i].ExternalID, err)
		}
	}
	return len(entries), nil
}
