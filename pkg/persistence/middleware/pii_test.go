package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware(middleware.DefaultSecretPatterns)(underlyingStore)

	ctx := context.Background()
	sessionID := "pii-session"
	state := draftState(sessionID, map[string]string{
		domain.KeyInputSource: "shopify-reviews",
		domain.KeyStoreURL:    "https://shop.example.com",
		domain.KeyAPIKey:      "secret123",
		domain.KeyWebhookURL:  "",
	})
	state.Configuration = &domain.AgentConfiguration{
		ID:    "cfg",
		Draft: state.Draft,
		Settings: domain.Settings{
			APIKey:   "secret123",
			StoreURL: "https://shop.example.com",
			Extra:    map[string]string{"bot-token": "t0k"},
		},
	}

	require.NoError(t, secureStore.Save(ctx, sessionID, state))

	// The in-memory state is untouched.
	assert.Equal(t, "secret123", state.Draft.String(domain.KeyAPIKey))
	assert.Equal(t, "secret123", state.Configuration.Settings.APIKey)
	assert.Equal(t, "t0k", state.Configuration.Settings.Extra["bot-token"])

	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Draft.String(domain.KeyAPIKey))
	assert.Equal(t, "https://shop.example.com", stored.Draft.String(domain.KeyStoreURL))
	assert.Equal(t, "", stored.Draft.String(domain.KeyWebhookURL), "blank values stay blank")
	assert.Equal(t, "shopify-reviews", stored.Draft.String(domain.KeyInputSource))

	require.NotNil(t, stored.Configuration)
	assert.Equal(t, middleware.Mask, stored.Configuration.Settings.APIKey)
	assert.Equal(t, "https://shop.example.com", stored.Configuration.Settings.StoreURL)
	assert.Equal(t, middleware.Mask, stored.Configuration.Settings.Extra["bot-token"])
	assert.Equal(t, middleware.Mask, stored.Configuration.Draft.String(domain.KeyAPIKey))
}

func TestPIIMiddleware_ExactKeys(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware(middleware.ExactKeys("sheet-id"))(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "s", draftState("s", map[string]string{
		"sheet-id":       "abc",
		"sheet-id-extra": "visible",
	})))

	stored, err := underlyingStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Draft.String("sheet-id"))
	assert.Equal(t, "visible", stored.Draft.String("sheet-id-extra"))
}

func TestPIIMiddleware_RestoresWithinProcess(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware(middleware.DefaultSecretPatterns)(underlyingStore)
	ctx := context.Background()

	state := draftState("s", map[string]string{
		domain.KeyAPIKey:     "sk_live_1",
		domain.KeyWebhookURL: "https://hooks.slack.com/services/x",
	})
	state.Configuration = &domain.AgentConfiguration{
		Draft:    state.Draft,
		Settings: domain.Settings{APIKey: "sk_live_1", Extra: map[string]string{"bot-token": "t0k"}},
	}
	require.NoError(t, secureStore.Save(ctx, "s", state))

	loaded, err := secureStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "sk_live_1", loaded.Draft.String(domain.KeyAPIKey))
	assert.Equal(t, "https://hooks.slack.com/services/x", loaded.Draft.String(domain.KeyWebhookURL))
	assert.Empty(t, loaded.Draft.Masked())
	assert.Equal(t, "sk_live_1", loaded.Configuration.Settings.APIKey)
	assert.Equal(t, "t0k", loaded.Configuration.Settings.Extra["bot-token"])
	assert.Equal(t, "sk_live_1", loaded.Configuration.Draft.String(domain.KeyAPIKey))

	stored, err := underlyingStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Draft.String(domain.KeyAPIKey), "restoring must not touch the stored copy")

	// Another process over the same store only sees the masks.
	other := middleware.NewPIIMiddleware(middleware.DefaultSecretPatterns)(underlyingStore)
	fresh, err := other.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.KeyAPIKey, domain.KeyWebhookURL}, fresh.Draft.Masked())

	// Saving a masked draft does not turn the mask into a kept value.
	require.NoError(t, other.Save(ctx, "s", fresh))
	again, err := other.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, again.Draft.String(domain.KeyAPIKey))

	require.NoError(t, secureStore.Delete(ctx, "s"))
	require.NoError(t, underlyingStore.Save(ctx, "s", stored))
	afterDelete, err := secureStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, afterDelete.Draft.String(domain.KeyAPIKey), "delete drops the kept values")
}

func TestPIIMiddleware_DroppedSecretIsForgotten(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware(middleware.ExactKeys(domain.KeyAPIKey))(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "s", draftState("s", map[string]string{domain.KeyAPIKey: "k1"})))
	require.NoError(t, secureStore.Save(ctx, "s", draftState("s", map[string]string{domain.KeyInputSource: "shopify-reviews"})))
	require.NoError(t, underlyingStore.Save(ctx, "s", draftState("s", map[string]string{domain.KeyAPIKey: middleware.Mask})))

	loaded, err := secureStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Draft.String(domain.KeyAPIKey))
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	encrypted := middleware.NewEncryptionMiddleware(keyring(t, generateKey(t)))

	// Masking runs before encryption, so the ciphertext holds masked values.
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware(middleware.ExactKeys(domain.KeyAPIKey)),
		encrypted,
	)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s", draftState("s", map[string]string{domain.KeyAPIKey: "k"})))
	assert.True(t, underlyingStore.data["s"].Draft.Has("__encrypted__"))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "k", loaded.Draft.String(domain.KeyAPIKey))

	decrypted, err := middleware.Chain(underlyingStore, encrypted).Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, decrypted.Draft.String(domain.KeyAPIKey))
}
