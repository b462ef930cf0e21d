package ports

import (
	"context"

	"github.com/aretw0/autograde/pkg/domain"
)

// ProgressStore defines the interface for persisting learner progress.
// This lets a session survive restarts and move between replicas.
type ProgressStore interface {
	// Save persists the progress for a given session ID.
	Save(ctx context.Context, sessionID string, progress *domain.Progress) error

	// Load retrieves the progress for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Progress, error)

	// Delete removes the progress for a given session ID.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}
