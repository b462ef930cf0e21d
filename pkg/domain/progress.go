package domain

import "time"

// Progress is the durable projection of a session: the names of the
// exercises it has completed. Completion flags themselves live in the
// session's registry; Progress is what gets persisted.
type Progress struct {
	SessionID string    `json:"session_id"`
	Completed []string  `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgress creates an empty progress record for a session.
func NewProgress(sessionID string) *Progress {
	return &Progress{
		SessionID: sessionID,
		Completed: []string{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Snapshot returns a deep copy of the progress.
func (p *Progress) Snapshot() *Progress {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Completed = append([]string(nil), p.Completed...)
	return &cp
}
