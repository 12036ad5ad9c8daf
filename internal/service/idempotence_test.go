package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit_archiver/internal/denormalize"
	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/pagination"
	"reddit_archiver/internal/reconciler"
	"reddit_archiver/internal/scheduler"
	"reddit_archiver/internal/testutil"
)

type memContent struct {
	nextID  int64
	records map[domain.ExternalID]domain.ContentRecord
}

func (m *memContent) FindByExternalID(_ context.Context, id domain.ExternalID) (*domain.ContentRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *memContent) ExistingExternalIDs(_ context.Context, ids []domain.ExternalID) (map[domain.ExternalID]struct{}, error) {
	out := make(map[domain.ExternalID]struct{})
	for _, id := range ids {
		if _, ok := m.records[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memContent) Save(_ context.Context, rec *domain.ContentRecord) error {
	if rec.ID == 0 {
		if _, ok := m.records[rec.ExternalID]; ok {
			return domain.ErrUniqueViolation
		}
		m.nextID++
		rec.ID = m.nextID
	}
	m.records[rec.ExternalID] = *rec
	return nil
}

func (m *memContent) ListDue(context.Context, time.Time, int) ([]domain.ContentRecord, error) {
	return nil, nil
}

type memPending struct {
	nextID  int64
	entries map[int64]domain.PendingEntry
}

func (m *memPending) Enqueue(_ context.Context, entry *domain.PendingEntry) error {
	for _, e := range m.entries {
		if e.Group == entry.Group && e.ExternalID == entry.ExternalID {
			return nil
		}
	}
	m.nextID++
	entry.ID = m.nextID
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memPending) ListBySourceGroup(_ context.Context, group domain.SourceGroup, limit int) ([]domain.PendingEntry, error) {
	var out []domain.PendingEntry
	for _, e := range m.entries {
		if e.Group == group {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPending) Dequeue(_ context.Context, id int64) error {
	delete(m.entries, id)
	return nil
}

type memGroupState map[string]domain.GroupSyncState

func (m memGroupState) Get(_ context.Context, group string) (*domain.GroupSyncState, error) {
	state := m[group]
	return &state, nil
}

func (m memGroupState) Update(_ context.Context, state *domain.GroupSyncState) error {
	m[state.Group] = *state
	return nil
}

type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memListing map[domain.SourceGroup][]domain.RawItem

func (m memListing) Listing(_ context.Context, group domain.SourceGroup, _ domain.SyncCursor) (pagination.Page[domain.RawItem], error) {
	return pagination.Page[domain.RawItem]{Items: m[group]}, nil
}

func TestSyncPendingForGroup_SecondRunWithoutRemoteChangesDoesNothing(t *testing.T) {
	ctx := context.Background()
	content := &memContent{records: map[domain.ExternalID]domain.ContentRecord{}}
	pending := &memPending{entries: map[int64]domain.PendingEntry{}}
	listing := memListing{domain.GroupSaved: {linkItem("a"), linkItem("b")}}

	refresher := reconciler.New(listing, content, pending, []domain.SourceGroup{domain.GroupSaved}, testutil.DiscardLogger())
	svc := NewSyncService(Dependencies{
		Content:      content,
		Pending:      pending,
		GroupState:   memGroupState{},
		Refresher:    refresher,
		Denormalizer: denormalize.New(),
		Planner:      scheduler.NewPolicy(),
		TxManager:    directTx{},
	}, testutil.DiscardLogger())

	first, err := svc.SyncPendingForGroup(ctx, domain.GroupSaved, true)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Succeeded)
	assert.Zero(t, first.Failed)
	assert.Empty(t, pending.entries)
	ids := map[domain.ExternalID]int64{}
	for extID, rec := range content.records {
		ids[extID] = rec.ID
	}

	second, err := svc.SyncPendingForGroup(ctx, domain.GroupSaved, true)
	require.NoError(t, err)
	assert.Zero(t, second.Succeeded)
	assert.Zero(t, second.Failed)
	assert.Zero(t, second.Deferred)
	assert.Empty(t, pending.entries)

	require.Len(t, content.records, 2)
	for extID, rec := range content.records {
		assert.Equal(t, ids[extID], rec.ID, extID.String())
	}
}

func TestSyncPendingForGroup_Idempotent(t *testing.T) {
	ctx := context.Background()
	content := &memContent{records: map[domain.ExternalID]domain.ContentRecord{}}
	pending := &memPending{entries: map[int64]domain.PendingEntry{}}
	groups := memGroupState{}

	svc := NewSyncService(Dependencies{
		Content:      content,
		Pending:      pending,
		GroupState:   groups,
		Denormalizer: denormalize.New(),
		Planner:      scheduler.NewPolicy(),
		TxManager:    directTx{},
	}, testutil.DiscardLogger())

	enqueue := func() {
		for _, local := range []string{"a", "b"} {
			entry := entryFor(0, linkItem(local))
			require.NoError(t, pending.Enqueue(ctx, &entry))
		}
	}

	enqueue()
	report, err := svc.SyncPendingForGroup(ctx, domain.GroupSaved, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, pending.entries)

	first := content.records[domain.NewExternalID(domain.KindLink, "a")]

	enqueue()
	report, err = svc.SyncPendingForGroup(ctx, domain.GroupSaved, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)

	assert.Len(t, content.records, 2)
	second := content.records[domain.NewExternalID(domain.KindLink, "a")]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "title a", second.Title)
	assert.Nil(t, second.NextSyncAt, "items older than six months are not re-synced")
	assert.Equal(t, int64(4), groups["saved"].TotalSynced)
}
