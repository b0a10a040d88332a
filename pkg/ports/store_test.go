package ports_test

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"testing"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/ports"
)

// MockStore is an in-memory StateStore that round-trips states through JSON
// to simulate serialization.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.data[sessionID] = raw
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	raw, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(m.data)), nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewMockStore())
}

func TestCompletionFunc(t *testing.T) {
	var got domain.CompletionAction
	var h ports.CompletionHandler = ports.CompletionFunc(func(_ context.Context, _ domain.AgentConfiguration, a domain.CompletionAction) error {
		got = a
		return nil
	})
	if err := h.Complete(context.Background(), domain.AgentConfiguration{}, domain.ActionAPIAccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.ActionAPIAccess {
		t.Errorf("expected %q, got %q", domain.ActionAPIAccess, got)
	}
}
