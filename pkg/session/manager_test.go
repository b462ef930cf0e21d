package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/autograde/pkg/adapters/memory"
	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/session"
	"github.com/aretw0/autograde/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data  map[string]*domain.Progress
	mu    sync.Mutex
	saves int
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Progress)
	}
	s.data[sessionID] = progress.Snapshot()
	s.saves++
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.data[sessionID]; ok {
		return p.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func testCatalog(n int) *catalog.Catalog {
	cat := &catalog.Catalog{
		StartMessage: "Welcome.",
		EndMessage:   "All done.",
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("ex-%02d", i)
		cat.Exercises = append(cat.Exercises, domain.Exercise{
			Name:         name,
			Sequence:     i,
			CommandRegex: domain.MustCompilePattern(name),
			StartMessage: "Run " + name,
			WinMessage:   "Done " + name,
			Hint:         "Type " + name,
		})
	}
	return cat
}

func TestManager_SubmitPersistsProgress(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(testCatalog(2), session.WithStore(store))
	ctx := context.Background()

	res, err := mgr.Submit(ctx, "alice", domain.UserState{ExerciseName: "ex-00", Command: "ex-00"})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "Done ex-00\nRun ex-01", res.Text)

	progress, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"ex-00"}, progress.Completed)

	// A fresh manager over the same store resumes the session.
	other := session.NewManager(testCatalog(2), session.WithStore(store))
	idx, err := other.Current(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	mgr := session.NewManager(testCatalog(2))
	ctx := context.Background()

	_, err := mgr.Submit(ctx, "alice", domain.UserState{ExerciseName: "ex-00", Command: "ex-00"})
	require.NoError(t, err)

	idx, err := mgr.Current(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = mgr.Submit(ctx, "bob", domain.UserState{ExerciseName: "ex-01", Command: "ex-01"})
	assert.True(t, domain.IsRejection(err))
}

func TestManager_RejectionDoesNotSave(t *testing.T) {
	store := &SlowStore{}
	mgr := session.NewManager(testCatalog(1), session.WithStore(store))
	ctx := context.Background()

	// 1. The first submission creates the session, even when rejected.
	_, err := mgr.Submit(ctx, "s1", domain.UserState{ExerciseName: "ex-00", Command: "nope"})
	require.Error(t, err)
	assert.Equal(t, 1, store.saves)

	// 2. Later rejected attempts change nothing.
	_, err = mgr.Submit(ctx, "s1", domain.UserState{ExerciseName: "ex-00", Command: "nope"})
	require.Error(t, err)
	assert.Equal(t, 1, store.saves)
}

func TestManager_ReadsDoNotCreateSessions(t *testing.T) {
	store := &SlowStore{}
	mgr := session.NewManager(testCatalog(2), session.WithStore(store))
	ctx := context.Background()

	// 1. Views of an unknown session answer from an empty registry.
	idx, err := mgr.Current(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	_, err = mgr.Hint(ctx, "ghost")
	require.NoError(t, err)
	_, _, err = mgr.Status(ctx, "ghost")
	require.NoError(t, err)
	_, err = mgr.StartMessage(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "All done.", mgr.EndMessage())

	// 2. Nothing was stored.
	assert.Equal(t, 0, store.saves)
	_, err = store.Load(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// 3. Reset is a mutating call and stores the session.
	_, err = mgr.Reset(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
}

func TestManager_StatusAndReset(t *testing.T) {
	mgr := session.NewManager(testCatalog(2))
	ctx := context.Background()

	_, err := mgr.Submit(ctx, "s", domain.UserState{ExerciseName: "ex-00", Command: "ex-00"})
	require.NoError(t, err)

	entries, text, err := mgr.Status(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []tracker.StatusEntry{
		{Name: "ex-00", Complete: true},
		{Name: "ex-01", Active: true},
	}, entries)
	assert.Contains(t, text, "Exercise Status:")

	idx, err := mgr.Reset(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	hint, err := mgr.Hint(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Type ex-00", hint)
}

func TestManager_AllComplete(t *testing.T) {
	mgr := session.NewManager(testCatalog(1))
	ctx := context.Background()

	res, err := mgr.Submit(ctx, "s", domain.UserState{ExerciseName: "ex-00", Command: "ex-00"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "All done.")

	_, err = mgr.Current(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrAllComplete)
	_, err = mgr.Hint(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrAllComplete)
}

func TestManager_CreateAndDelete(t *testing.T) {
	mgr := session.NewManager(testCatalog(1))
	ctx := context.Background()

	id, err := mgr.Create(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 26)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, mgr.Delete(ctx, id))
	ids, err = mgr.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, id)
}

func TestManager_EmptySessionID(t *testing.T) {
	mgr := session.NewManager(testCatalog(1))
	_, err := mgr.Current(context.Background(), "")
	assert.Error(t, err)
}

func TestManager_Locking(t *testing.T) {
	store := &SlowStore{}
	n := 10
	mgr := session.NewManager(testCatalog(n), session.WithStore(store))
	ctx := context.Background()
	id := "race-test"

	// Every goroutine completes whatever exercise is active when it gets the
	// lock. Without serialization, concurrent read-modify-write cycles would
	// lose completions.
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.Do(ctx, id, func(ctx context.Context, tr *tracker.Tracker) error {
				_, ex, err := tr.Registry().Active()
				if err != nil {
					return err
				}
				return tr.Registry().MarkComplete(ex.Name)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	progress, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, progress.Completed, n)
}

type failingStore struct {
	memory.Store
}

func (f *failingStore) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	return nil, errors.New("disk on fire")
}

func TestManager_LoadFailure(t *testing.T) {
	mgr := session.NewManager(testCatalog(1), session.WithStore(&failingStore{}))
	_, err := mgr.Current(context.Background(), "s")
	assert.ErrorContains(t, err, "disk on fire")
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
