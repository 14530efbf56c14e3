package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dekarrin/ddreduce/internal/history"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Store_RecordAndRecentFor(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := history.RunRecord{
		RunID:           uuid.New(),
		ProjectDir:      "/proj",
		ReducedFile:     "src/main.rs",
		MasterErrorCode: "E0384",
		MasterErrorSrc:  "error[E0384]: cannot assign twice",
		Started:         time.Unix(1000, 0).UTC(),
		Finished:        time.Unix(1010, 0).UTC(),
		Iterations:      5,
		Accepted:        2,
		Rejected:        3,
		FinalSourceHash: "deadbeef",
	}
	require.NoError(t, store.Record(ctx, rec))

	recent, err := store.RecentFor(ctx, "/proj", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, rec.RunID, recent[0].RunID)
	assert.Equal(t, rec.MasterErrorCode, recent[0].MasterErrorCode)
	assert.Equal(t, rec.Iterations, recent[0].Iterations)
}

func Test_Store_RecentFor_FiltersByProject(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, history.RunRecord{
		RunID: uuid.New(), ProjectDir: "/a", Started: time.Unix(1, 0), Finished: time.Unix(2, 0),
	}))
	require.NoError(t, store.Record(ctx, history.RunRecord{
		RunID: uuid.New(), ProjectDir: "/b", Started: time.Unix(1, 0), Finished: time.Unix(2, 0),
	}))

	recent, err := store.RecentFor(ctx, "/a", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "/a", recent[0].ProjectDir)
}
