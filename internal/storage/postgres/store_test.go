package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/pagination"
	"reddit_archiver/internal/testutil"
)

type StoreTestSuite struct {
	suite.Suite
	ctx  context.Context
	mock sqlmock.Sqlmock
	db   *sqlx.DB
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.db = sqlx.NewDb(db, "postgres")
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

var contentCols = []string{
	"id", "external_id", "kind", "subreddit", "author", "title", "body", "url", "permalink",
	"score", "raw_body", "parent_external_id", "is_archived", "created_at", "next_sync_at", "synced_at",
}

func (s *StoreTestSuite) TestContentStore_FindByExternalID() {
	store := NewContentStore(s.db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows(contentCols).AddRow(
		int64(9), "t1_c1", "t1", "golang", "bob", "Generics", "nice", nil, "/r/golang/c1",
		12, []byte(`{"kind":"t1","data":{}}`), "t3_abc", false, created, nil, created,
	)
	s.mock.ExpectQuery("SELECT (.+) FROM content_records WHERE external_id = \\$1").
		WithArgs("t1_c1").
		WillReturnRows(rows)

	rec, err := store.FindByExternalID(s.ctx, domain.NewExternalID(domain.KindComment, "c1"))
	s.Require().NoError(err)
	s.Equal(int64(9), rec.ID)
	s.Equal(domain.KindComment, rec.Kind)
	s.Require().NotNil(rec.Body)
	s.Equal("nice", *rec.Body)
	s.Nil(rec.URL)
	s.Require().NotNil(rec.ParentExternalID)
	s.Equal("t3_abc", rec.ParentExternalID.String())
	s.Nil(rec.NextSyncAt)
	s.Equal(created, rec.CreatedAt)
}

func (s *StoreTestSuite) TestContentStore_FindByExternalID_NotFound() {
	store := NewContentStore(s.db)

	s.mock.ExpectQuery("SELECT (.+) FROM content_records").
		WithArgs("t3_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FindByExternalID(s.ctx, domain.NewExternalID(domain.KindLink, "missing"))
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *StoreTestSuite) TestContentStore_SaveInsertsAndSetsID() {
	store := NewContentStore(s.db)
	next := time.Now().Add(time.Hour)

	rec := &domain.ContentRecord{
		ExternalID: domain.NewExternalID(domain.KindLink, "abc"),
		Kind:       domain.KindLink,
		Title:      "Generics",
		URL:        testutil.Ptr("https://go.dev"),
		RawBody:    []byte(`{"kind":"t3"}`),
		CreatedAt:  time.Now(),
		NextSyncAt: &next,
	}

	s.mock.ExpectQuery("INSERT INTO content_records").
		WithArgs("t3_abc", "t3", "", "", "Generics", nil, "https://go.dev", "", 0, `{"kind":"t3"}`,
			nil, false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	s.Require().NoError(store.Save(s.ctx, rec))
	s.Equal(int64(7), rec.ID)
}

func (s *StoreTestSuite) TestContentStore_SaveDuplicateIsUniqueViolation() {
	store := NewContentStore(s.db)
	rec := &domain.ContentRecord{ExternalID: domain.NewExternalID(domain.KindLink, "abc"), Kind: domain.KindLink}

	s.mock.ExpectQuery("INSERT INTO content_records").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "content_records_external_id_key"})

	err := store.Save(s.ctx, rec)
	s.ErrorIs(err, domain.ErrUniqueViolation)
	s.Zero(rec.ID)
}

func (s *StoreTestSuite) TestContentStore_SaveUpdatesInPlace() {
	store := NewContentStore(s.db)
	rec := &domain.ContentRecord{ID: 3, ExternalID: domain.NewExternalID(domain.KindLink, "abc"), Score: 99}

	s.mock.ExpectExec("UPDATE content_records SET").
		WithArgs(int64(3), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), 99, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(store.Save(s.ctx, rec))
}

func (s *StoreTestSuite) TestContentStore_SaveUpdateMissingRow() {
	store := NewContentStore(s.db)
	rec := &domain.ContentRecord{ID: 3, ExternalID: domain.NewExternalID(domain.KindLink, "abc")}

	s.mock.ExpectExec("UPDATE content_records SET").WillReturnResult(sqlmock.NewResult(0, 0))

	s.ErrorIs(store.Save(s.ctx, rec), domain.ErrNotFound)
}

func (s *StoreTestSuite) TestContentStore_ExistingExternalIDs() {
	store := NewContentStore(s.db)

	s.mock.ExpectQuery("SELECT external_id FROM content_records WHERE external_id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"external_id"}).AddRow("t3_a").AddRow("t1_b"))

	got, err := store.ExistingExternalIDs(s.ctx, []domain.ExternalID{
		domain.NewExternalID(domain.KindLink, "a"),
		domain.NewExternalID(domain.KindComment, "b"),
		domain.NewExternalID(domain.KindLink, "z"),
	})
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Contains(got, domain.NewExternalID(domain.KindComment, "b"))
}

func (s *StoreTestSuite) TestContentStore_ExistingExternalIDs_Empty() {
	got, err := NewContentStore(s.db).ExistingExternalIDs(s.ctx, nil)
	s.NoError(err)
	s.Empty(got)
}

func (s *StoreTestSuite) TestContentStore_ListDueUnlimited() {
	store := NewContentStore(s.db)
	now := time.Now()

	s.mock.ExpectQuery("SELECT (.+) FROM content_records\\s+WHERE next_sync_at IS NOT NULL").
		WithArgs(sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows(contentCols).AddRow(
			int64(1), "t3_a", "t3", "", "", "A", nil, nil, "", 0, []byte(`{}`), nil, false, now, now, now,
		))

	due, err := store.ListDue(s.ctx, now, 0)
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.NotNil(due[0].NextSyncAt)
}

func (s *StoreTestSuite) TestPendingStore_EnqueueExistingReturnsID() {
	store := NewPendingStore(s.db)
	entry := &domain.PendingEntry{
		Group:          domain.GroupSaved,
		ExternalID:     domain.NewExternalID(domain.KindLink, "a"),
		RawListingJSON: []byte(`{"kind":"t3"}`),
	}

	s.mock.ExpectQuery("INSERT INTO pending_entries").
		WithArgs("saved", "t3_a", `{"kind":"t3"}`, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectQuery("SELECT id FROM pending_entries").
		WithArgs("saved", "t3_a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	s.NoError(store.Enqueue(s.ctx, entry))
	s.Equal(int64(5), entry.ID)
}

func (s *StoreTestSuite) TestPendingStore_ListAndDequeue() {
	store := NewPendingStore(s.db)
	now := time.Now()

	s.mock.ExpectQuery("SELECT (.+) FROM pending_entries").
		WithArgs("upvoted", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_group", "external_id", "raw_listing_json", "parent_raw_listing_json", "queued_at"}).
			AddRow(int64(1), "upvoted", "t3_a", []byte(`{}`), nil, now).
			AddRow(int64(2), "upvoted", "t1_b", []byte(`{}`), []byte(`{"kind":"t3"}`), now))
	s.mock.ExpectExec("DELETE FROM pending_entries WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entries, err := store.ListBySourceGroup(s.ctx, domain.GroupUpvoted, pagination.Unbounded)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Empty(entries[0].ParentRawListingJSON)
	s.Equal(domain.KindComment, entries[1].ExternalID.Kind)
	s.NotEmpty(entries[1].ParentRawListingJSON)

	s.NoError(store.Dequeue(s.ctx, 1))
}

func (s *StoreTestSuite) TestPendingStore_ListWithLimit() {
	s.mock.ExpectQuery("SELECT (.+) FROM pending_entries (.+) LIMIT \\$2").
		WithArgs("saved", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_group", "external_id", "raw_listing_json", "parent_raw_listing_json", "queued_at"}).
			AddRow(int64(7), "saved", "t3_a", []byte(`{}`), nil, time.Now()))

	entries, err := NewPendingStore(s.db).ListBySourceGroup(s.ctx, domain.GroupSaved, 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(int64(7), entries[0].ID)
}

func (s *StoreTestSuite) TestPendingStore_CountByGroup() {
	s.mock.ExpectQuery("SELECT source_group, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"source_group", "count"}).AddRow("saved", 3).AddRow("hidden", 1))

	counts, err := NewPendingStore(s.db).CountByGroup(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, counts[domain.GroupSaved])
	s.Equal(1, counts[domain.GroupHidden])
}

func (s *StoreTestSuite) TestGroupStateStore_GetUnknownGroup() {
	s.mock.ExpectQuery("SELECT (.+) FROM group_sync_state").
		WithArgs("saved").
		WillReturnError(sql.ErrNoRows)

	state, err := NewGroupStateStore(s.db).Get(s.ctx, "saved")
	s.Require().NoError(err)
	s.Equal("saved", state.Group)
	s.Zero(state.TotalSynced)
}

func (s *StoreTestSuite) TestGroupStateStore_Update() {
	now := time.Now()
	s.mock.ExpectExec("INSERT INTO group_sync_state").
		WithArgs("saved", sqlmock.AnyArg(), int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewGroupStateStore(s.db).Update(s.ctx, &domain.GroupSyncState{
		Group: "saved", LastSyncedAt: now, TotalSynced: 4, TotalFailed: 1,
	})
	s.NoError(err)
}

func (s *StoreTestSuite) TestTransactionManager_CommitsAndSharesTx() {
	tm := NewTransactionManager(s.db)
	store := NewPendingStore(s.db)

	s.mock.ExpectBegin()
	s.mock.ExpectExec("DELETE FROM pending_entries").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec("DELETE FROM pending_entries").WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		s.NotNil(GetTxFromContext(ctx))
		if err := store.Dequeue(ctx, 1); err != nil {
			return err
		}
		// nested call joins the outer transaction
		return tm.WithTransaction(ctx, func(ctx context.Context) error {
			return store.Dequeue(ctx, 2)
		})
	})
	s.NoError(err)
}

func (s *StoreTestSuite) TestTransactionManager_RollsBackOnError() {
	tm := NewTransactionManager(s.db)
	boom := errors.New("boom")

	s.mock.ExpectBegin()
	s.mock.ExpectRollback()

	err := tm.WithTransaction(s.ctx, func(context.Context) error { return boom })
	s.ErrorIs(err, boom)
}
