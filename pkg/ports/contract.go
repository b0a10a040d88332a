package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "input-source")
		state.CurrentStep = 1
		state.History = append(state.History, "output-channel")
		state.Draft = domain.NewDraft(map[string]string{"input-source": "shopify-reviews"})

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.SessionID, loaded.SessionID)
		assert.Equal(t, 1, loaded.CurrentStep)
		assert.Equal(t, domain.StatusActive, loaded.Status)
		assert.Equal(t, "shopify-reviews", loaded.Draft.String("input-source"))
		assert.Equal(t, []string{"input-source", "output-channel"}, loaded.History)
	})

	t.Run("Save Generated", func(t *testing.T) {
		id := sessionID + "-generated"
		defer func() { _ = store.Delete(ctx, id) }()

		state := domain.NewState(id, "input-source")
		state.CurrentStep = 3
		state.Status = domain.StatusGenerated
		state.Configuration = &domain.AgentConfiguration{
			ID:          "cfg-1",
			DisplayName: domain.DefaultDisplayName,
			Settings:    domain.Settings{UpdateFrequency: domain.DefaultUpdateFrequency},
		}
		require.NoError(t, store.Save(ctx, id, state))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, loaded.Configuration)
		assert.Equal(t, "cfg-1", loaded.Configuration.ID)
		assert.Equal(t, domain.StatusGenerated, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "input-source"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "input-source"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "input-source"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
