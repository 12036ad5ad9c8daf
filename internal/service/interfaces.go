package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"reddit_archiver/internal/domain"
)

type ContentStore interface {
	// FindByExternalID returns domain.ErrNotFound when no record exists.
	FindByExternalID(ctx context.Context, id domain.ExternalID) (*domain.ContentRecord, error)
	ExistingExternalIDs(ctx context.Context, ids []domain.ExternalID) (map[domain.ExternalID]struct{}, error)
	// Save inserts when rec.ID is zero and updates in place otherwise. A duplicate
	// insert fails with domain.ErrUniqueViolation.
	Save(ctx context.Context, rec *domain.ContentRecord) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ContentRecord, error)
}

type PendingStore interface {
	Enqueue(ctx context.Context, entry *domain.PendingEntry) error
	// ListBySourceGroup returns up to limit entries in queue order; a negative limit
	// returns all of them.
	ListBySourceGroup(ctx context.Context, group domain.SourceGroup, limit int) ([]domain.PendingEntry, error)
	Dequeue(ctx context.Context, id int64) error
}

type GroupStateStore interface {
	Get(ctx context.Context, group string) (*domain.GroupSyncState, error)
	Update(ctx context.Context, state *domain.GroupSyncState) error
}

type PendingRefresher interface {
	RefreshAllPending(ctx context.Context) (int, error)
}

type ItemFetcher interface {
	FetchBatches(ctx context.Context, ids []domain.ExternalID) ([]domain.RawItem, error)
	ResolveTree(ctx context.Context, linkID domain.ExternalID, node domain.RawItem) ([]domain.RawItem, error)
}

type ThreadSource interface {
	Thread(ctx context.Context, linkID domain.ExternalID) (domain.RawItem, []domain.RawItem, error)
}

type Denormalizer interface {
	Denormalize(ctx context.Context, item domain.RawItem, parent *domain.RawItem) (*domain.ContentRecord, error)
}

type NextSyncPlanner interface {
	ComputeAndSetNextSync(rec *domain.ContentRecord)
}

// ErrorSink receives per-item failures. Report must not fail the run.
type ErrorSink interface {
	Report(ctx context.Context, syncErr domain.SyncError)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
