package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"reddit_archiver/internal/domain"
)

type pendingRow struct {
	ID                   int64     `db:"id"`
	Group                string    `db:"source_group"`
	ExternalID           string    `db:"external_id"`
	RawListingJSON       []byte    `db:"raw_listing_json"`
	ParentRawListingJSON []byte    `db:"parent_raw_listing_json"`
	QueuedAt             time.Time `db:"queued_at"`
}

type PendingStore struct {
	db *sqlx.DB
}

func NewPendingStore(db *sqlx.DB) *PendingStore {
	return &PendingStore{db: db}
}

// Enqueue adds entry unless the same item is already queued for its group. entry.ID is
// set to the id of the queued row either way.
func (s *PendingStore) Enqueue(ctx context.Context, entry *domain.PendingEntry) error {
	query := `
		INSERT INTO pending_entries (source_group, external_id, raw_listing_json, parent_raw_listing_json, queued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_group, external_id) DO NOTHING
		RETURNING id`

	exec := GetExecutor(ctx, s.db)
	queuedAt := entry.QueuedAt
	if queuedAt.IsZero() {
		queuedAt = time.Now()
	}

	err := exec.QueryRowxContext(ctx, query,
		string(entry.Group),
		entry.ExternalID.String(),
		string(entry.RawListingJSON),
		nullableJSON(entry.ParentRawListingJSON),
		queuedAt.UTC(),
	).Scan(&entry.ID)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM pending_entries WHERE source_group = $1 AND external_id = $2",
			string(entry.Group), entry.ExternalID.String(),
		).Scan(&entry.ID)
	}

	return mapError("enqueue "+entry.ExternalID.String(), err)
}

// ListBySourceGroup returns up to limit queued entries of group in queue order. A
// negative limit returns every entry.
func (s *PendingStore) ListBySourceGroup(ctx context.Context, group domain.SourceGroup, limit int) ([]domain.PendingEntry, error) {
	query := `
		SELECT id, source_group, external_id, raw_listing_json, parent_raw_listing_json, queued_at
		FROM pending_entries
		WHERE source_group = $1
		ORDER BY id
		LIMIT $2`

	var lim any
	if limit >= 0 {
		lim = limit
	}

	var rows []pendingRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, string(group), lim); err != nil {
		return nil, mapError("list pending "+string(group), err)
	}

	entries := make([]domain.PendingEntry, 0, len(rows))
	for _, row := range rows {
		id, err := domain.ParseExternalID(row.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("decode pending entry %d: %w", row.ID, err)
		}
		entries = append(entries, domain.PendingEntry{
			ID:                   row.ID,
			Group:                domain.SourceGroup(row.Group),
			ExternalID:           id,
			RawListingJSON:       row.RawListingJSON,
			ParentRawListingJSON: row.ParentRawListingJSON,
			QueuedAt:             row.QueuedAt.UTC(),
		})
	}
	return entries, nil
}

func (s *PendingStore) Dequeue(ctx context.Context, id int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, "DELETE FROM pending_entries WHERE id = $1", id)
	return mapError(fmt.Sprintf("dequeue %d", id), err)
}

// CountByGroup reports how many entries are queued per group.
func (s *PendingStore) CountByGroup(ctx context.Context) (map[domain.SourceGroup]int, error) {
	var rows []struct {
		Group string `db:"source_group"`
		Count int    `db:"count"`
	}
	query := `SELECT source_group, COUNT(*) AS count FROM pending_entries GROUP BY source_group`
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query); err != nil {
		return nil, mapError("count pending", err)
	}

	counts := make(map[domain.SourceGroup]int, len(rows))
	for _, row := range rows {
		counts[domain.SourceGroup(row.Group)] = row.Count
	}
	return counts, nil
}

func nullableJSON(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}
