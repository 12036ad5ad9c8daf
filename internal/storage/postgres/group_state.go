package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"reddit_archiver/internal/domain"
)

type GroupStateStore struct {
	db *sqlx.DB
}

func NewGroupStateStore(db *sqlx.DB) *GroupStateStore {
	return &GroupStateStore{db: db}
}

func (s *GroupStateStore) Get(ctx context.Context, group string) (*domain.GroupSyncState, error) {
	var state domain.GroupSyncState
	query := `
		SELECT id, source_group, last_synced_at, total_synced, total_failed
		FROM group_sync_state
		WHERE source_group = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, group)
	if errors.Is(err, sql.ErrNoRows) {
		// never synced
		return &domain.GroupSyncState{Group: group}, nil
	}
	if err != nil {
		return nil, mapError("get group state "+group, err)
	}
	return &state, nil
}

func (s *GroupStateStore) Update(ctx context.Context, state *domain.GroupSyncState) error {
	query := `
		INSERT INTO group_sync_state (source_group, last_synced_at, total_synced, total_failed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_group) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			total_synced = EXCLUDED.total_synced,
			total_failed = EXCLUDED.total_failed`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.Group,
		state.LastSyncedAt.UTC(),
		state.TotalSynced,
		state.TotalFailed,
	)
	return mapError("update group state "+state.Group, err)
}
