package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/ports"
)

// MockStore is a minimal in-memory ProgressStore used to check the contract suite itself.
type MockStore struct {
	data map[string]*domain.Progress
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Progress),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	m.data[sessionID] = progress.Snapshot()
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	progress, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return progress.Snapshot(), nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestProgressStore_Contract(t *testing.T) {
	ports.RunProgressStoreContract(t, NewMockStore())
}
