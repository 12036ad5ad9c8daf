package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"reddit_archiver/internal/domain"
)

const contentColumns = `id, external_id, kind, subreddit, author, title, body, url, permalink,
	score, raw_body, parent_external_id, is_archived, created_at, next_sync_at, synced_at`

type contentRow struct {
	ID               int64      `db:"id"`
	ExternalID       string     `db:"external_id"`
	Kind             string     `db:"kind"`
	Subreddit        string     `db:"subreddit"`
	Author           string     `db:"author"`
	Title            string     `db:"title"`
	Body             *string    `db:"body"`
	URL              *string    `db:"url"`
	Permalink        string     `db:"permalink"`
	Score            int        `db:"score"`
	RawBody          []byte     `db:"raw_body"`
	ParentExternalID *string    `db:"parent_external_id"`
	IsArchived       bool       `db:"is_archived"`
	CreatedAt        time.Time  `db:"created_at"`
	NextSyncAt       *time.Time `db:"next_sync_at"`
	SyncedAt         time.Time  `db:"synced_at"`
}

func (r contentRow) toRecord() (domain.ContentRecord, error) {
	id, err := domain.ParseExternalID(r.ExternalID)
	if err != nil {
		return domain.ContentRecord{}, err
	}

	rec := domain.ContentRecord{
		ID:         r.ID,
		ExternalID: id,
		Kind:       domain.Kind(r.Kind),
		Subreddit:  r.Subreddit,
		Author:     r.Author,
		Title:      r.Title,
		Body:       r.Body,
		URL:        r.URL,
		Permalink:  r.Permalink,
		Score:      r.Score,
		RawBody:    r.RawBody,
		IsArchived: r.IsArchived,
		CreatedAt:  r.CreatedAt.UTC(),
		NextSyncAt: r.NextSyncAt,
		SyncedAt:   r.SyncedAt.UTC(),
	}
	if r.ParentExternalID != nil {
		parent, err := domain.ParseExternalID(*r.ParentExternalID)
		if err != nil {
			return domain.ContentRecord{}, err
		}
		rec.ParentExternalID = &parent
	}
	return rec, nil
}

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) FindByExternalID(ctx context.Context, id domain.ExternalID) (*domain.ContentRecord, error) {
	query := `SELECT ` + contentColumns + ` FROM content_records WHERE external_id = $1`

	var row contentRow
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, id.String()); err != nil {
		return nil, mapError("find "+id.String(), err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, fmt.Errorf("decode record %d: %w", row.ID, err)
	}
	return &rec, nil
}

func (s *ContentStore) ExistingExternalIDs(ctx context.Context, ids []domain.ExternalID) (map[domain.ExternalID]struct{}, error) {
	result := make(map[domain.ExternalID]struct{})
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	var found []string
	query := `SELECT external_id FROM content_records WHERE external_id = ANY($1)`
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &found, query, pq.Array(keys)); err != nil {
		return nil, mapError("existing external ids", err)
	}

	for _, key := range found {
		id, err := domain.ParseExternalID(key)
		if err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}
	return result, nil
}

// Save inserts rec when it has no ID yet and sets rec.ID, otherwise it updates the row in
// place. Inserting an external id that already exists fails with domain.ErrUniqueViolation.
func (s *ContentStore) Save(ctx context.Context, rec *domain.ContentRecord) error {
	if rec.ID == 0 {
		return s.insert(ctx, rec)
	}
	return s.update(ctx, rec)
}

func (s *ContentStore) insert(ctx context.Context, rec *domain.ContentRecord) error {
	query := `
		INSERT INTO content_records (
			external_id, kind, subreddit, author, title, body, url, permalink,
			score, raw_body, parent_external_id, is_archived, created_at, next_sync_at, synced_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		rec.ExternalID.String(),
		string(rec.Kind),
		rec.Subreddit,
		rec.Author,
		rec.Title,
		rec.Body,
		rec.URL,
		rec.Permalink,
		rec.Score,
		string(rec.RawBody),
		parentKey(rec.ParentExternalID),
		rec.IsArchived,
		rec.CreatedAt.UTC(),
		rec.NextSyncAt,
		syncedAt(rec.SyncedAt),
	).Scan(&rec.ID)

	return mapError("insert "+rec.ExternalID.String(), err)
}

func (s *ContentStore) update(ctx context.Context, rec *domain.ContentRecord) error {
	query := `
		UPDATE content_records SET
			subreddit = $2,
			author = $3,
			title = $4,
			body = $5,
			url = $6,
			permalink = $7,
			score = $8,
			raw_body = $9,
			parent_external_id = $10,
			is_archived = $11,
			next_sync_at = $12,
			synced_at = $13
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		rec.ID,
		rec.Subreddit,
		rec.Author,
		rec.Title,
		rec.Body,
		rec.URL,
		rec.Permalink,
		rec.Score,
		string(rec.RawBody),
		parentKey(rec.ParentExternalID),
		rec.IsArchived,
		rec.NextSyncAt,
		syncedAt(rec.SyncedAt),
	)
	if err != nil {
		return mapError("update "+rec.ExternalID.String(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", rec.ExternalID, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s (id %d): %w", rec.ExternalID, rec.ID, domain.ErrNotFound)
	}
	return nil
}

// ListDue returns non-archived records whose next sync time is at or before now, oldest
// schedule first. A non-positive limit returns every due record.
func (s *ContentStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.ContentRecord, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_records
		WHERE next_sync_at IS NOT NULL AND next_sync_at <= $1 AND NOT is_archived
		ORDER BY next_sync_at, id
		LIMIT $2`

	var lim any
	if limit > 0 {
		lim = limit
	}

	var rows []contentRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, now.UTC(), lim); err != nil {
		return nil, mapError("list due", err)
	}

	records := make([]domain.ContentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", row.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parentKey(id *domain.ExternalID) *string {
	if id == nil {
		return nil
	}
	key := id.String()
	return &key
}

func syncedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
