package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit_archiver/internal/domain"
)

func TestSyncCommand_InvalidGroupExitsBeforeWiring(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"sync", "--group", "bookmarks", "--config", "does-not-exist.yaml"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)

	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.code)
	assert.ErrorIs(t, err, domain.ErrInvalidGroup)
}

func TestResolveGroups(t *testing.T) {
	groups, err := resolveGroups([]string{"saved", "all", "saved"})
	require.NoError(t, err)
	assert.Equal(t, domain.AllGroups(), groups)

	_, err = resolveGroups([]string{"saved", "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidGroup)
}

type scriptedSyncer struct {
	results map[domain.SourceGroup]func() (*domain.SyncReport, error)
	calls   []domain.SourceGroup
	refresh []bool
}

func (f *scriptedSyncer) SyncPendingForGroup(_ context.Context, group domain.SourceGroup, refreshFirst bool) (*domain.SyncReport, error) {
	f.calls = append(f.calls, group)
	f.refresh = append(f.refresh, refreshFirst)
	if result, ok := f.results[group]; ok {
		return result()
	}
	return &domain.SyncReport{Group: group}, nil
}

func quietCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func TestSyncGroups_ItemFailuresExitZero(t *testing.T) {
	cmd, out := quietCommand()
	syncer := &scriptedSyncer{results: map[domain.SourceGroup]func() (*domain.SyncReport, error){
		domain.GroupSaved: func() (*domain.SyncReport, error) {
			return &domain.SyncReport{
				Group:     domain.GroupSaved,
				Succeeded: 4,
				Failed:    1,
				Errors:    []domain.SyncError{{ExternalID: "t3_c", Stage: domain.StageDenormalize}},
			}, nil
		},
	}}

	err := syncGroups(context.Background(), cmd, syncer, []domain.SourceGroup{domain.GroupSaved, domain.GroupHidden}, true)

	assert.NoError(t, err)
	assert.Equal(t, 0, exitCode(err))
	assert.Equal(t, []domain.SourceGroup{domain.GroupSaved, domain.GroupHidden}, syncer.calls)
	assert.Equal(t, []bool{true, false}, syncer.refresh)
	assert.Contains(t, out.String(), "succeeded=4 failed=1")
	assert.Contains(t, out.String(), "denormalize: 1 failed")
}

func TestSyncGroups_BatchErrorExitsNonZero(t *testing.T) {
	cmd, _ := quietCommand()
	parentErr := fmt.Errorf("fetch parent links: %w", &domain.TransportError{Err: errors.New("connection reset")})
	syncer := &scriptedSyncer{results: map[domain.SourceGroup]func() (*domain.SyncReport, error){
		domain.GroupSaved: func() (*domain.SyncReport, error) {
			return &domain.SyncReport{Group: domain.GroupSaved, Deferred: 2}, parentErr
		},
	}}

	err := syncGroups(context.Background(), cmd, syncer, []domain.SourceGroup{domain.GroupSaved, domain.GroupHidden}, false)

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "sync saved")
	assert.Equal(t, []domain.SourceGroup{domain.GroupSaved, domain.GroupHidden}, syncer.calls, "later groups still run")
}

func TestSyncGroups_RateLimitStopsRemainingGroups(t *testing.T) {
	cmd, _ := quietCommand()
	syncer := &scriptedSyncer{results: map[domain.SourceGroup]func() (*domain.SyncReport, error){
		domain.GroupSaved: func() (*domain.SyncReport, error) {
			return &domain.SyncReport{Group: domain.GroupSaved, Deferred: 1}, domain.ErrRateLimitExceeded
		},
	}}

	err := syncGroups(context.Background(), cmd, syncer, []domain.SourceGroup{domain.GroupSaved, domain.GroupHidden}, false)

	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t, []domain.SourceGroup{domain.GroupSaved}, syncer.calls)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrap: %w", &exitError{code: 2, err: domain.ErrInvalidGroup})))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
