// Package fetcher loads full item bodies in batches and resolves "more" placeholders
// in comment trees.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reddit_archiver/internal/domain"
)

const (
	MaxBatchSize    = 100
	DefaultMaxDepth = 50
)

// API is the subset of the upstream client the fetcher needs.
type API interface {
	Info(ctx context.Context, ids []domain.ExternalID) ([]domain.RawItem, error)
	MoreChildren(ctx context.Context, linkID domain.ExternalID, children []string) ([]domain.RawItem, error)
}

type Config struct {
	BatchSize int
	MaxDepth  int
}

// BatchError names a batch that could not be fetched.
type BatchError struct {
	Index int
	IDs   []domain.ExternalID
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (%d ids): %v", e.Index, len(e.IDs), e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type Fetcher struct {
	api       API
	batchSize int
	maxDepth  int
	logger    *slog.Logger
}

func New(api API, cfg Config, logger *slog.Logger) *Fetcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Fetcher{
		api:       api,
		batchSize: batchSize,
		maxDepth:  maxDepth,
		logger:    logger.With("component", "fetcher"),
	}
}

// FetchItemsByIDs fetches every id, one call per batch. The first failing batch aborts
// the rest.
func (f *Fetcher) FetchItemsByIDs(ctx context.Context, ids []domain.ExternalID) ([]domain.RawItem, error) {
	var items []domain.RawItem
	for i, batch := range f.batches(ids) {
		got, err := f.api.Info(ctx, batch)
		if err != nil {
			return nil, &BatchError{Index: i, IDs: batch, Err: err}
		}
		items = append(items, got...)
	}
	return items, nil
}

// FetchBatches attempts every batch independently and returns whatever succeeded along
// with the joined batch errors. A rate limit failure stops the remaining batches, which
// are reported unfetched.
func (f *Fetcher) FetchBatches(ctx context.Context, ids []domain.ExternalID) ([]domain.RawItem, error) {
	var (
		items []domain.RawItem
		errs  []error
	)

	batches := f.batches(ids)
	for i, batch := range batches {
		got, err := f.api.Info(ctx, batch)
		if err != nil {
			f.logger.Warn("batch fetch failed", "batch", i, "ids", len(batch), "error", err)
			errs = append(errs, &BatchError{Index: i, IDs: batch, Err: err})

			if errors.Is(err, domain.ErrRateLimitExceeded) || ctx.Err() != nil {
				for j := i + 1; j < len(batches); j++ {
					errs = append(errs, &BatchError{Index: j, IDs: batches[j], Err: err})
				}
				break
			}
			continue
		}
		items = append(items, got...)
	}

	return items, errors.Join(errs...)
}

// FailedIDs lists the ids carried by BatchErrors inside err.
func FailedIDs(err error) map[domain.ExternalID]struct{} {
	failed := make(map[domain.ExternalID]struct{})
	if err == nil {
		return failed
	}

	var walk func(error)
	walk = func(e error) {
		var be *BatchError
		if errors.As(e, &be) {
			for _, id := range be.IDs {
				failed[id] = struct{}{}
			}
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return failed
}

// ExpandMoreChildren resolves a placeholder into the comments it stands for,
// following nested placeholders.
func (f *Fetcher) ExpandMoreChildren(ctx context.Context, linkID domain.ExternalID, placeholder domain.RawItem) ([]domain.RawItem, error) {
	return f.expand(ctx, linkID, placeholder, 1)
}

func (f *Fetcher) expand(ctx context.Context, linkID domain.ExternalID, placeholder domain.RawItem, depth int) ([]domain.RawItem, error) {
	if depth > f.maxDepth {
		return nil, fmt.Errorf("%w: depth %d under %s", domain.ErrTreeTooDeep, depth, linkID)
	}

	children := placeholder.Placeholder().Children
	if len(children) == 0 {
		return nil, nil
	}

	var resolved []domain.RawItem
	for start := 0; start < len(children); start += f.batchSize {
		end := min(start+f.batchSize, len(children))

		things, err := f.api.MoreChildren(ctx, linkID, children[start:end])
		if err != nil {
			return nil, fmt.Errorf("more children of %s: %w", linkID, err)
		}

		for _, thing := range things {
			if !thing.IsPlaceholder() {
				resolved = append(resolved, thing)
				continue
			}
			if len(thing.Placeholder().Children) == 0 {
				continue
			}
			nested, err := f.expand(ctx, linkID, thing, depth+1)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, nested...)
		}
	}

	return resolved, nil
}

// ResolveTree flattens one top level thread node, its nested replies and every
// placeholder below it into a list of comments.
func (f *Fetcher) ResolveTree(ctx context.Context, linkID domain.ExternalID, node domain.RawItem) ([]domain.RawItem, error) {
	return f.resolveTree(ctx, linkID, node, 1)
}

func (f *Fetcher) resolveTree(ctx context.Context, linkID domain.ExternalID, node domain.RawItem, depth int) ([]domain.RawItem, error) {
	if depth > f.maxDepth {
		return nil, fmt.Errorf("%w: depth %d under %s", domain.ErrTreeTooDeep, depth, linkID)
	}

	if node.IsPlaceholder() {
		return f.expand(ctx, linkID, node, depth)
	}

	out := []domain.RawItem{node}

	replies, err := node.Replies()
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		sub, err := f.resolveTree(ctx, linkID, reply, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (f *Fetcher) batches(ids []domain.ExternalID) [][]domain.ExternalID {
	seen := make(map[domain.ExternalID]struct{}, len(ids))
	unique := make([]domain.ExternalID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var out [][]domain.ExternalID
	for start := 0; start < len(unique); start += f.batchSize {
		end := min(start+f.batchSize, len(unique))
		out = append(out, unique[start:end])
	}
	return out
}
