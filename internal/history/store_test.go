package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLatestBuildOnEmptyStore(t *testing.T) {
	store := openTestStore(t)
	_, err := store.LatestBuild(context.Background())
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestRecordBuildRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	build := BuildRecord{
		ID:       uuid.NewString(),
		Started:  time.Unix(1756600000, 0),
		Duration: 42 * time.Second,
		Outcome:  "passed",
	}
	runs := []RunRecord{
		{BuildID: build.ID, Script: "plot_fast", Duration: 1200 * time.Millisecond, MemoryMB: 10.5, Outcome: "passed"},
		{BuildID: build.ID, Script: "plot_slow", Duration: 8 * time.Second, MemoryMB: 80, Outcome: "passed"},
		{BuildID: build.ID, Script: "plot_bad", Duration: 300 * time.Millisecond, MemoryMB: 2, Outcome: "failed"},
	}
	require.NoError(t, store.RecordBuild(ctx, build, runs))

	got, err := store.LatestBuild(ctx)
	require.NoError(t, err)
	require.Equal(t, build.ID, got.ID)
	require.Equal(t, build.Duration, got.Duration)
	require.Equal(t, "passed", got.Outcome)
	require.True(t, got.Started.Equal(build.Started))

	gotRuns, err := store.RunsForBuild(ctx, build.ID)
	require.NoError(t, err)
	require.Len(t, gotRuns, 3)
	// Slowest first.
	require.Equal(t, "plot_slow", gotRuns[0].Script)
	require.Equal(t, "plot_fast", gotRuns[1].Script)
	require.Equal(t, "plot_bad", gotRuns[2].Script)
	require.InDelta(t, 10.5, gotRuns[1].MemoryMB, 0.001)
}

func TestLatestBuildPicksNewest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := BuildRecord{ID: uuid.NewString(), Started: time.Unix(1000, 0), Outcome: "failed"}
	newer := BuildRecord{ID: uuid.NewString(), Started: time.Unix(2000, 0), Outcome: "passed"}
	require.NoError(t, store.RecordBuild(ctx, older, nil))
	require.NoError(t, store.RecordBuild(ctx, newer, nil))

	got, err := store.LatestBuild(ctx)
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)
}

func TestScriptTrendNewestFirstAndLimited(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, started := range []int64{1000, 2000, 3000} {
		b := BuildRecord{ID: uuid.NewString(), Started: time.Unix(started, 0), Outcome: "passed"}
		run := RunRecord{
			BuildID:  b.ID,
			Script:   "plot_demo",
			Duration: time.Duration(i+1) * time.Second,
			Outcome:  "passed",
		}
		require.NoError(t, store.RecordBuild(ctx, b, []RunRecord{run}))
	}

	trend, err := store.ScriptTrend(ctx, "plot_demo", 2)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	require.Equal(t, 3*time.Second, trend[0].Duration)
	require.Equal(t, 2*time.Second, trend[1].Duration)

	none, err := store.ScriptTrend(ctx, "plot_unknown", 5)
	require.NoError(t, err)
	require.Empty(t, none)
}
