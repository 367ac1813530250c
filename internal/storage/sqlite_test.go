//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"regionnet/internal/model"
)

func TestSQLiteStoreRunAndSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "regionnet.db")

	store := NewSQLiteStore(dbPath)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := model.RunRecord{VersionedRecord: CurrentVersion(), ID: "run-1", GraphName: "g", Steps: 2, CreatedAtUTC: "2026-01-01T00:00:00Z"}
	require.NoError(t, store.SaveRun(ctx, run))

	got, ok, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, run, got)

	_, ok, err = store.GetRun(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	snapshots := []model.OutputSnapshot{
		{VersionedRecord: CurrentVersion(), RunID: "run-1", Step: 1, Region: "a", Output: "out", Type: "Real32", Values: []float64{2}},
		{VersionedRecord: CurrentVersion(), RunID: "run-1", Step: 0, Region: "a", Output: "out", Type: "Real32", Values: []float64{1}},
	}
	require.NoError(t, store.AppendSnapshots(ctx, snapshots))

	stored, err := store.GetSnapshots(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, 0, stored[0].Step)
	require.Equal(t, []float64{2}, stored[1].Values)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	_, _, err := store.GetRun(context.Background(), "r")
	require.ErrorIs(t, err, ErrNotInitialized)
}
