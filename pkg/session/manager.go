package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/aretw0/autograde/pkg/adapters/memory"
	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/feedback"
	"github.com/aretw0/autograde/pkg/ports"
	"github.com/aretw0/autograde/pkg/tracker"
	"github.com/aretw0/autograde/pkg/verify"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns learner sessions. Each call rebuilds the session's tracker
// from the catalogue and its stored progress, runs under a per-session lock
// and saves the progress back when it changed.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	catalog *catalog.Catalog
	store   ports.ProgressStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	verifier *verify.Verifier
	renderer *feedback.Renderer
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore sets the progress store. Defaults to an in-memory store.
func WithStore(store ports.ProgressStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithVerifier sets the verification pipeline shared by all sessions.
func WithVerifier(v *verify.Verifier) Option {
	return func(m *Manager) {
		m.verifier = v
	}
}

// WithRenderer sets the message renderer shared by all sessions.
func WithRenderer(r *feedback.Renderer) Option {
	return func(m *Manager) {
		m.renderer = r
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over a catalogue.
func NewManager(cat *catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog: cat,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = memory.NewStore()
	}
	if m.verifier == nil {
		m.verifier = verify.New(verify.WithLogger(m.logger))
	}
	if m.renderer == nil {
		m.renderer = feedback.Plain()
	}
	return m
}

// Catalog returns the catalogue sessions are built from.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Store returns the underlying progress store.
func (m *Manager) Store() ports.ProgressStore {
	return m.store
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create starts a new session with a fresh ID and returns the ID.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := NewID()
	if err := m.store.Save(ctx, id, domain.NewProgress(id)); err != nil {
		return "", fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Info("session created", "session_id", id)
	return id, nil
}

// Do runs fn against the session's tracker while holding the session lock.
// Unknown sessions start empty and are only stored once fn completes an
// exercise. Progress is saved when fn changed it, even if fn returned an error.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *tracker.Tracker) error) error {
	return m.run(ctx, sessionID, false, fn)
}

// Update is Do for mutating calls: an unknown session is stored even when
// fn left its progress empty.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(context.Context, *tracker.Tracker) error) error {
	return m.run(ctx, sessionID, true, fn)
}

func (m *Manager) run(ctx context.Context, sessionID string, persistNew bool, fn func(context.Context, *tracker.Tracker) error) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		progress, isNew, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}

		reg, err := m.catalog.NewRegistry()
		if err != nil {
			return fmt.Errorf("failed to build registry: %w", err)
		}
		if unknown := reg.Restore(progress.Completed); len(unknown) > 0 {
			m.logger.Warn("stored progress names unknown exercises", "session_id", sessionID, "exercises", unknown)
		}

		tr := tracker.New(reg,
			tracker.WithMessages(tracker.Messages{Start: m.catalog.StartMessage, End: m.catalog.EndMessage}),
			tracker.WithVerifier(m.verifier),
			tracker.WithRenderer(m.renderer),
		)

		fnErr := fn(ctx, tr)

		completed := reg.Completed()
		if (isNew && persistNew) || !slices.Equal(completed, progress.Completed) {
			progress.Completed = completed
			progress.UpdatedAt = time.Now().UTC()
			if err := m.store.Save(ctx, sessionID, progress); err != nil {
				return errors.Join(fnErr, fmt.Errorf("failed to save session: %w", err))
			}
		}
		return fnErr
	})
}

func (m *Manager) load(ctx context.Context, sessionID string) (*domain.Progress, bool, error) {
	progress, err := m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		return progress, false, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return domain.NewProgress(sessionID), true, nil
	default:
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
}

// Submit grades a snapshot within a session.
func (m *Manager) Submit(ctx context.Context, sessionID string, state domain.UserState) (tracker.Result, error) {
	var res tracker.Result
	err := m.Update(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		var err error
		res, err = tr.Submit(ctx, state)
		return err
	})
	if err == nil {
		m.logger.Debug("submission graded", "session_id", sessionID, "exercise", state.ExerciseName, "completed", res.Completed)
	}
	return res, err
}

// StartMessage renders the session's start message.
func (m *Manager) StartMessage(ctx context.Context, sessionID string) (string, error) {
	var msg string
	err := m.Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		msg = tr.StartMessage()
		return nil
	})
	return msg, err
}

// EndMessage renders the catalogue's end message. It is the same for
// every session.
func (m *Manager) EndMessage() string {
	return m.renderer.RenderStyled(m.catalog.EndMessage, nil, feedback.EndStyle)
}

// Hint renders the hint of the session's active exercise.
func (m *Manager) Hint(ctx context.Context, sessionID string) (string, error) {
	var hint string
	err := m.Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		var err error
		hint, err = tr.ActiveHint()
		return err
	})
	return hint, err
}

// Current returns the index of the session's active exercise.
func (m *Manager) Current(ctx context.Context, sessionID string) (int, error) {
	var idx int
	err := m.Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		var err error
		idx, err = tr.Current()
		return err
	})
	return idx, err
}

// Status returns the session's exercise status entries and their text rendering.
func (m *Manager) Status(ctx context.Context, sessionID string) ([]tracker.StatusEntry, string, error) {
	var (
		entries []tracker.StatusEntry
		text    string
	)
	err := m.Do(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		entries = tr.Status()
		text = tr.StatusText()
		return nil
	})
	return entries, text, err
}

// Reset clears the session's progress and returns the active index.
func (m *Manager) Reset(ctx context.Context, sessionID string) (int, error) {
	var idx int
	err := m.Update(ctx, sessionID, func(ctx context.Context, tr *tracker.Tracker) error {
		idx = tr.Reset()
		return nil
	})
	if err == nil {
		m.logger.Info("session reset", "session_id", sessionID)
	}
	return idx, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
