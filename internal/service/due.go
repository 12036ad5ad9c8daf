package service

import (
	"context"
	"errors"
	"fmt"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/fetcher"
)

// SyncDue refreshes up to limit records whose next sync time has passed.
func (s *SyncService) SyncDue(ctx context.Context, limit int) (*domain.SyncReport, error) {
	r := s.newRun("")

	due, err := s.content.ListDue(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	if len(due) == 0 {
		return s.finish(r), nil
	}

	r.logger.Info("starting due sync", "due", len(due))

	ids := make([]domain.ExternalID, len(due))
	for i, rec := range due {
		ids[i] = rec.ExternalID
	}

	items, fetchErr := s.fetcher.FetchBatches(ctx, ids)
	fresh := indexByID(items)
	failed := fetcher.FailedIDs(fetchErr)

	parents, parentErr := s.fetchMissingLinks(ctx, fresh)
	failedParents := fetcher.FailedIDs(parentErr)

	for i := range due {
		if err := ctx.Err(); err != nil {
			fetchErr = errors.Join(fetchErr, err)
			break
		}
		s.syncDueRecord(ctx, r, &due[i], fresh, failed, parents, failedParents)
	}

	var runErr error
	if fetchErr != nil {
		runErr = fmt.Errorf("fetch due items: %w", fetchErr)
	}
	if parentErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("fetch parent links: %w", parentErr))
	}

	return s.finish(r), runErr
}

// fetchMissingLinks loads the parent links of fetched comments that were not fetched
// themselves.
func (s *SyncService) fetchMissingLinks(ctx context.Context, fresh map[domain.ExternalID]domain.RawItem) (map[domain.ExternalID]domain.RawItem, error) {
	links := make(map[domain.ExternalID]domain.RawItem)
	var missing []domain.ExternalID

	for _, item := range fresh {
		linkID, ok := item.ParentLinkID()
		if !ok {
			continue
		}
		if link, ok := fresh[linkID]; ok {
			links[linkID] = link
			continue
		}
		missing = append(missing, linkID)
	}

	if len(missing) == 0 {
		return links, nil
	}

	items, err := s.fetcher.FetchBatches(ctx, missing)
	for id, item := range indexByID(items) {
		links[id] = item
	}
	return links, err
}

func (s *SyncService) syncDueRecord(
	ctx context.Context,
	r *run,
	rec *domain.ContentRecord,
	fresh map[domain.ExternalID]domain.RawItem,
	failed map[domain.ExternalID]struct{},
	parents map[domain.ExternalID]domain.RawItem,
	failedParents map[domain.ExternalID]struct{},
) {
	externalID := rec.ExternalID.String()

	item, ok := fresh[rec.ExternalID]
	if !ok {
		if _, ok := failed[rec.ExternalID]; ok {
			r.report.Deferred++
			return
		}
		s.fail(ctx, r, externalID, domain.StageFetch, fmt.Errorf("%s: %w", externalID, domain.ErrNotFound), rec.RawBody, nil)
		return
	}

	// Removed upstream: keep the archived copy and stop re-syncing it.
	if item.IsRemoved() {
		rec.NextSyncAt = nil
		if err := s.persist(ctx, 0, rec); err != nil {
			s.fail(ctx, r, externalID, domain.StagePersist, err, item.Marshal(), nil)
			return
		}
		r.logger.Info("item removed upstream, re-sync disabled", "external_id", externalID)
		r.report.Succeeded++
		return
	}

	var parent *domain.RawItem
	if item.Kind == domain.KindComment {
		linkID, ok := item.ParentLinkID()
		if !ok {
			s.fail(ctx, r, externalID, domain.StageResolve,
				&domain.StructuralError{ExternalID: externalID, Reason: "comment has no parent link id"}, item.Marshal(), nil)
			return
		}
		p, ok := parents[linkID]
		if !ok {
			if _, ok := failedParents[linkID]; ok {
				r.report.Deferred++
				return
			}
			s.fail(ctx, r, externalID, domain.StageResolve,
				&domain.StructuralError{ExternalID: externalID, Reason: fmt.Sprintf("parent link %s not found upstream", linkID)},
				item.Marshal(), nil)
			return
		}
		parent = &p
	}

	updated, err := s.denormalizer.Denormalize(ctx, item, parent)
	if err != nil {
		s.fail(ctx, r, externalID, domain.StageDenormalize, err, item.Marshal(), marshalParent(parent))
		return
	}
	updated.ID = rec.ID
	s.schedule(updated)

	if err := s.persist(ctx, 0, updated); err != nil {
		s.fail(ctx, r, externalID, domain.StagePersist, err, item.Marshal(), marshalParent(parent))
		return
	}
	r.report.Succeeded++
}

func marshalParent(parent *domain.RawItem) []byte {
	if parent == nil {
		return nil
	}
	return parent.Marshal()
}
