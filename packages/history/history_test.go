package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restlabs/restcheck/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := openTestStore(t)

	first := &runner.RunResult{
		RunID:    uuid.New().String(),
		File:     "circuits.yaml",
		Passed:   4,
		Failed:   1,
		Duration: 1200 * time.Millisecond,
	}
	second := &runner.RunResult{
		RunID:    uuid.New().String(),
		File:     "checksum.yaml",
		Passed:   1,
		Skipped:  2,
		Duration: 300 * time.Millisecond,
	}

	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	files := []string{runs[0].File, runs[1].File}
	assert.Contains(t, files, "circuits.yaml")
	assert.Contains(t, files, "checksum.yaml")

	for _, r := range runs {
		if r.File == "circuits.yaml" {
			assert.Equal(t, first.RunID, r.ID)
			assert.Equal(t, 4, r.Passed)
			assert.Equal(t, 1, r.Failed)
			assert.Equal(t, 1200*time.Millisecond, r.Duration)
		}
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(&runner.RunResult{
			RunID: uuid.New().String(),
			File:  "circuits.yaml",
		}))
	}

	runs, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStore_DuplicateRunIDRejected(t *testing.T) {
	store := openTestStore(t)

	result := &runner.RunResult{RunID: uuid.New().String(), File: "circuits.yaml"}
	require.NoError(t, store.Save(result))
	assert.Error(t, store.Save(result))
}

func TestStore_EmptyHistory(t *testing.T) {
	store := openTestStore(t)

	runs, err := store.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
