package service

import (
	"context"
	"errors"
	"fmt"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/reddit"
)

// SyncSingle syncs whatever rawURL points at, bypassing the pending queue. A link is
// synced with its whole comment tree; a comment is synced with its parent link.
func (s *SyncService) SyncSingle(ctx context.Context, rawURL string) (*domain.SyncReport, error) {
	target, err := reddit.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	r := s.newRun("")
	r.logger = r.logger.With("link", target.Link.String())

	if target.Comment != nil {
		return s.syncSingleComment(ctx, r, target.Link, *target.Comment)
	}
	return s.syncThread(ctx, r, target.Link)
}

func (s *SyncService) syncSingleComment(ctx context.Context, r *run, linkID, commentID domain.ExternalID) (*domain.SyncReport, error) {
	items, err := s.fetcher.FetchBatches(ctx, []domain.ExternalID{linkID, commentID})
	if err != nil {
		return nil, fmt.Errorf("fetch comment: %w", err)
	}

	byID := indexByID(items)
	link, ok := byID[linkID]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", linkID, domain.ErrNotFound)
	}
	comment, ok := byID[commentID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", commentID, domain.ErrNotFound)
	}

	records, err := s.buildRecords(ctx, comment, &link)
	if err != nil {
		s.fail(ctx, r, commentID.String(), domain.StageDenormalize, err, comment.Marshal(), link.Marshal())
		return s.finish(r), nil
	}
	if err := s.persist(ctx, 0, records...); err != nil {
		s.fail(ctx, r, commentID.String(), domain.StagePersist, err, comment.Marshal(), link.Marshal())
		return s.finish(r), nil
	}

	r.report.Succeeded++
	return s.finish(r), nil
}

// syncThread saves the link, then each top level comment subtree on its own so one
// broken subtree does not lose the rest.
func (s *SyncService) syncThread(ctx context.Context, r *run, linkID domain.ExternalID) (*domain.SyncReport, error) {
	link, nodes, err := s.threads.Thread(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("fetch thread %s: %w", linkID, err)
	}

	if !s.syncThreadItem(ctx, r, link, nil) {
		return s.finish(r), nil
	}

	for _, node := range nodes {
		comments, err := s.fetcher.ResolveTree(ctx, linkID, node)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) || ctx.Err() != nil {
				return s.finish(r), fmt.Errorf("resolve comment tree: %w", err)
			}
			nodeID := linkID.String()
			if id, idErr := node.ExternalID(); idErr == nil {
				nodeID = id.String()
			}
			s.fail(ctx, r, nodeID, domain.StageExpand, err, node.Marshal(), link.Marshal())
			continue
		}

		for _, comment := range comments {
			if comment.IsRemoved() {
				continue
			}
			s.syncThreadItem(ctx, r, comment, &link)
		}
	}

	return s.finish(r), nil
}

func (s *SyncService) syncThreadItem(ctx context.Context, r *run, item domain.RawItem, link *domain.RawItem) bool {
	externalID := "unknown"
	if id, err := item.ExternalID(); err == nil {
		externalID = id.String()
	}

	rec, err := s.denormalizer.Denormalize(ctx, item, link)
	if err != nil {
		s.fail(ctx, r, externalID, domain.StageDenormalize, err, item.Marshal(), marshalParent(link))
		return false
	}
	s.schedule(rec)

	if err := s.persist(ctx, 0, rec); err != nil {
		s.fail(ctx, r, externalID, domain.StagePersist, err, item.Marshal(), marshalParent(link))
		return false
	}

	r.report.Succeeded++
	return true
}
