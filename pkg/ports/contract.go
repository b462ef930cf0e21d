package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunProgressStoreContract runs a suite of tests to verify that a ProgressStore
// implementation adheres to the defined interface contract.
func RunProgressStoreContract(t *testing.T, store ProgressStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create progress
		progress := domain.NewProgress(sessionID)
		progress.Completed = []string{"pwd", "ls"}

		// 2. Save
		err := store.Save(ctx, sessionID, progress)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, []string{"pwd", "ls"}, loaded.Completed)
		assert.WithinDuration(t, progress.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		progress := domain.NewProgress(sessionID)
		progress.Completed = []string{"pwd"}
		require.NoError(t, store.Save(ctx, sessionID, progress))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"pwd"}, loaded.Completed)
	})

	t.Run("Empty Progress", func(t *testing.T) {
		id := sessionID + "-empty"
		require.NoError(t, store.Save(ctx, id, domain.NewProgress(id)))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, loaded.Completed)
	})

	t.Run("Loaded Copy Is Isolated", func(t *testing.T) {
		progress := domain.NewProgress(sessionID)
		progress.Completed = []string{"pwd"}
		require.NoError(t, store.Save(ctx, sessionID, progress))

		// Mutating after save must not leak into the store
		progress.Completed[0] = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"pwd"}, loaded.Completed)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, sessionID, domain.NewProgress(sessionID))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting twice is fine
		assert.NoError(t, store.Delete(ctx, sessionID))
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 sessions
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewProgress(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewProgress(id2)))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
