package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/fetcher"
	"reddit_archiver/internal/pagination"
)

type Dependencies struct {
	Content      ContentStore
	Pending      PendingStore
	GroupState   GroupStateStore
	Refresher    PendingRefresher
	Fetcher      ItemFetcher
	Threads      ThreadSource
	Denormalizer Denormalizer
	Planner      NextSyncPlanner
	Sink         ErrorSink
	TxManager    TransactionManager
}

type SyncService struct {
	content      ContentStore
	pending      PendingStore
	groupState   GroupStateStore
	refresher    PendingRefresher
	fetcher      ItemFetcher
	threads      ThreadSource
	denormalizer Denormalizer
	planner      NextSyncPlanner
	sink         ErrorSink
	txManager    TransactionManager
	now          func() time.Time
	logger       *slog.Logger
}

func NewSyncService(deps Dependencies, logger *slog.Logger) *SyncService {
	return &SyncService{
		content:      deps.Content,
		pending:      deps.Pending,
		groupState:   deps.GroupState,
		refresher:    deps.Refresher,
		fetcher:      deps.Fetcher,
		threads:      deps.Threads,
		denormalizer: deps.Denormalizer,
		planner:      deps.Planner,
		sink:         deps.Sink,
		txManager:    deps.TxManager,
		now:          time.Now,
		logger:       logger.With("component", "sync"),
	}
}

// run collects the outcome of one orchestrator invocation.
type run struct {
	report *domain.SyncReport
	start  time.Time
	logger *slog.Logger
}

func (s *SyncService) newRun(group domain.SourceGroup) *run {
	id := uuid.NewString()
	return &run{
		report: &domain.SyncReport{RunID: id, Group: group},
		start:  s.now(),
		logger: s.logger.With("run_id", id, "group", group),
	}
}

// fail records a per-item failure and hands it to the sink. The run carries on.
func (s *SyncService) fail(ctx context.Context, r *run, externalID, stage string, err error, raw, parentRaw json.RawMessage) {
	syncErr := domain.SyncError{
		ID:            uuid.NewString(),
		RunID:         r.report.RunID,
		Group:         r.report.Group,
		ExternalID:    externalID,
		Stage:         stage,
		Err:           err,
		RawPayload:    raw,
		ParentPayload: parentRaw,
		OccurredAt:    s.now().UTC(),
	}

	r.report.Failed++
	r.report.Errors = append(r.report.Errors, syncErr)
	r.logger.Warn("item sync failed", "external_id", externalID, "stage", stage, "error", err)

	if s.sink != nil {
		s.sink.Report(ctx, syncErr)
	}
}

func (s *SyncService) finish(r *run) *domain.SyncReport {
	r.report.Duration = s.now().Sub(r.start)
	r.logger.Info("sync completed",
		"succeeded", r.report.Succeeded,
		"failed", r.report.Failed,
		"deferred", r.report.Deferred,
		"duration", r.report.Duration,
	)
	return r.report
}

// SyncPendingForGroup processes every queued entry of group. Item failures are
// reported and leave the entry queued; only batch-level failures are returned.
func (s *SyncService) SyncPendingForGroup(ctx context.Context, group domain.SourceGroup, refreshFirst bool) (*domain.SyncReport, error) {
	r := s.newRun(group)

	// A refresh that failed for some groups still leaves the rest queued, so only a
	// spent allowance or a cancelled context stops the run here.
	var refreshErr error
	if refreshFirst {
		queued, err := s.refresher.RefreshAllPending(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) || ctx.Err() != nil {
				return nil, fmt.Errorf("refresh pending: %w", err)
			}
			r.logger.Warn("refresh pending partially failed", "queued", queued, "error", err)
			refreshErr = fmt.Errorf("refresh pending: %w", err)
		} else {
			r.logger.Info("refreshed pending entries", "queued", queued)
		}
	}

	entries, err := s.pending.ListBySourceGroup(ctx, group, pagination.Unbounded)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	r.logger.Info("starting sync", "pending", len(entries))

	parents, parentErr := s.fetchParentLinks(ctx, entries)
	failedParents := fetcher.FailedIDs(parentErr)

	var runErr error
	for i := range entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		s.syncEntry(ctx, r, &entries[i], parents, failedParents)
	}

	if err := s.updateGroupState(ctx, group, r.report); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("update group state: %w", err))
	}
	if parentErr != nil {
		runErr = errors.Join(fmt.Errorf("fetch parent links: %w", parentErr), runErr)
	}

	return s.finish(r), errors.Join(refreshErr, runErr)
}

// fetchParentLinks loads, in one batched pass, the links of queued comments that do
// not carry their parent payload.
func (s *SyncService) fetchParentLinks(ctx context.Context, entries []domain.PendingEntry) (map[domain.ExternalID]domain.RawItem, error) {
	var ids []domain.ExternalID
	for _, entry := range entries {
		if len(entry.ParentRawListingJSON) > 0 {
			continue
		}
		item, err := domain.ParseRawItem(entry.RawListingJSON)
		if err != nil {
			continue
		}
		if linkID, ok := item.ParentLinkID(); ok {
			ids = append(ids, linkID)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}

	items, err := s.fetcher.FetchBatches(ctx, ids)
	return indexByID(items), err
}

func (s *SyncService) syncEntry(
	ctx context.Context,
	r *run,
	entry *domain.PendingEntry,
	parents map[domain.ExternalID]domain.RawItem,
	failedParents map[domain.ExternalID]struct{},
) {
	externalID := entry.ExternalID.String()
	fail := func(stage string, err error) {
		s.fail(ctx, r, externalID, stage, err, entry.RawListingJSON, entry.ParentRawListingJSON)
	}

	item, err := domain.ParseRawItem(entry.RawListingJSON)
	if err != nil {
		fail(domain.StageDecode, err)
		return
	}

	var parent *domain.RawItem
	if item.Kind == domain.KindComment {
		resolved, deferred, err := resolveParent(entry, item, parents, failedParents)
		if deferred {
			r.report.Deferred++
			r.logger.Debug("parent fetch failed, leaving entry queued", "external_id", externalID)
			return
		}
		if err != nil {
			fail(domain.StageResolve, err)
			return
		}
		parent = resolved
	}

	records, err := s.buildRecords(ctx, item, parent)
	if err != nil {
		fail(domain.StageDenormalize, err)
		return
	}

	if err := s.persist(ctx, entry.ID, records...); err != nil {
		fail(domain.StagePersist, err)
		return
	}

	r.report.Succeeded++
}

// resolveParent finds the link a queued comment belongs to. deferred is true when the
// link could not be fetched for reasons unrelated to the comment itself.
func resolveParent(
	entry *domain.PendingEntry,
	item domain.RawItem,
	parents map[domain.ExternalID]domain.RawItem,
	failedParents map[domain.ExternalID]struct{},
) (parent *domain.RawItem, deferred bool, err error) {
	if len(entry.ParentRawListingJSON) > 0 {
		p, err := domain.ParseRawItem(entry.ParentRawListingJSON)
		if err != nil {
			return nil, false, &domain.StructuralError{ExternalID: entry.ExternalID.String(), Reason: "undecodable parent payload: " + err.Error()}
		}
		return &p, false, nil
	}

	linkID, ok := item.ParentLinkID()
	if !ok {
		return nil, false, &domain.StructuralError{ExternalID: entry.ExternalID.String(), Reason: "comment has no parent link id"}
	}
	if p, ok := parents[linkID]; ok {
		return &p, false, nil
	}
	if _, ok := failedParents[linkID]; ok {
		return nil, true, nil
	}
	return nil, false, &domain.StructuralError{
		ExternalID: entry.ExternalID.String(),
		Reason:     fmt.Sprintf("parent link %s not found upstream", linkID),
	}
}

// buildRecords denormalizes item, and its parent link when given, and schedules the
// next re-sync of each. The parent comes first so it is saved before its comment.
func (s *SyncService) buildRecords(ctx context.Context, item domain.RawItem, parent *domain.RawItem) ([]*domain.ContentRecord, error) {
	var records []*domain.ContentRecord

	if parent != nil {
		parentRec, err := s.denormalizer.Denormalize(ctx, *parent, nil)
		if err != nil {
			return nil, fmt.Errorf("parent link: %w", err)
		}
		records = append(records, parentRec)
	}

	rec, err := s.denormalizer.Denormalize(ctx, item, parent)
	if err != nil {
		return nil, err
	}
	records = append(records, rec)

	for _, r := range records {
		s.schedule(r)
	}
	return records, nil
}

func (s *SyncService) schedule(rec *domain.ContentRecord) {
	if rec.IsArchived {
		rec.NextSyncAt = nil
		return
	}
	s.planner.ComputeAndSetNextSync(rec)
}

// persist saves records and dequeues the pending entry in one transaction. A unique
// violation means another writer inserted the same item first; the unit is retried once
// and then finds the existing row.
func (s *SyncService) persist(ctx context.Context, entryID int64, records ...*domain.ContentRecord) error {
	err := s.saveUnit(ctx, entryID, records)
	if errors.Is(err, domain.ErrUniqueViolation) {
		s.logger.Debug("unique violation, retrying unit", "error", err)
		err = s.saveUnit(ctx, entryID, records)
	}
	return err
}

func (s *SyncService) saveUnit(ctx context.Context, entryID int64, records []*domain.ContentRecord) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, rec := range records {
			existing, err := s.content.FindByExternalID(txCtx, rec.ExternalID)
			switch {
			case err == nil:
				rec.ID = existing.ID
			case errors.Is(err, domain.ErrNotFound):
				rec.ID = 0
			default:
				return fmt.Errorf("find %s: %w", rec.ExternalID, err)
			}

			if err := s.content.Save(txCtx, rec); err != nil {
				return fmt.Errorf("save %s: %w", rec.ExternalID, err)
			}
		}

		if entryID != 0 {
			if err := s.pending.Dequeue(txCtx, entryID); err != nil {
				return fmt.Errorf("dequeue entry %d: %w", entryID, err)
			}
		}
		return nil
	})
}

func (s *SyncService) updateGroupState(ctx context.Context, group domain.SourceGroup, report *domain.SyncReport) error {
	state, err := s.groupState.Get(ctx, string(group))
	if err != nil {
		return err
	}

	state.Group = string(group)
	state.LastSyncedAt = s.now().UTC()
	state.TotalSynced += int64(report.Succeeded)
	state.TotalFailed += int64(report.Failed)

	return s.groupState.Update(ctx, state)
}

func indexByID(items []domain.RawItem) map[domain.ExternalID]domain.RawItem {
	out := make(map[domain.ExternalID]domain.RawItem, len(items))
	for _, item := range items {
		id, err := item.ExternalID()
		if err != nil {
			continue
		}
		out[id] = item
	}
	return out
}
