package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/agentforge/pkg/adapters/memory"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/persistence/middleware"
	"github.com/aretw0/agentforge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func keyring(t *testing.T, active []byte, fallback ...[]byte) *middleware.Keyring {
	t.Helper()
	k, err := middleware.NewKeyring(active, fallback...)
	require.NoError(t, err)
	return k
}

func draftState(id string, values map[string]string) *domain.State {
	s := domain.NewState(id, "input-source")
	s.Draft = domain.NewDraft(values)
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewEncryptionMiddleware(keyring(t, generateKey(t)))(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	originalState := draftState(sessionID, map[string]string{"api-key": "my-secret-sauce"})

	require.NoError(t, secureStore.Save(ctx, sessionID, originalState))

	// The underlying store only sees the envelope.
	storedState, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, storedState.Draft.Has("api-key"), "secret must be hidden")
	assert.True(t, storedState.Draft.Has("__encrypted__"))
	assert.Empty(t, storedState.History)
	assert.Equal(t, domain.StatusActive, storedState.Status)

	loadedState, err := secureStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loadedState.Draft.String("api-key"))
	assert.Equal(t, []string{"input-source"}, loadedState.History)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(keyring(t, generateKey(t)))
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(keyring(t, oldKey))(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"
	require.NoError(t, secureStoreOld.Save(ctx, sessionID, draftState(sessionID, map[string]string{"sheet-id": "old"})))

	secureStoreNew := middleware.NewEncryptionMiddleware(keyring(t, newKey, oldKey))(underlyingStore)

	loadedState, err := secureStoreNew.Load(ctx, sessionID)
	require.NoError(t, err, "Load with rotated key failed")
	assert.Equal(t, "old", loadedState.Draft.String("sheet-id"))

	// Saving again re-encrypts with the new key.
	loadedState.Draft = loadedState.Draft.With(map[string]string{"sheet-id": "new"})
	require.NoError(t, secureStoreNew.Save(ctx, sessionID, loadedState))

	_, err = secureStoreOld.Load(ctx, sessionID)
	assert.Error(t, err, "Expected failure when loading new-key encryption with old-key middleware")
}

func TestEncryptionMiddleware_BoundToSession(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewEncryptionMiddleware(keyring(t, generateKey(t)))(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, "alice", draftState("alice", map[string]string{"api-key": "a"})))
	envelope, err := underlyingStore.Load(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, underlyingStore.Save(ctx, "mallory", envelope))

	_, err = secureStore.Load(ctx, "mallory")
	assert.Error(t, err, "an envelope copied to another session must not open")
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "plain", draftState("plain", nil)))

	secureStore := middleware.NewEncryptionMiddleware(keyring(t, generateKey(t)))(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNoEnvelope)
}

func TestNewKeyring_InvalidKeys(t *testing.T) {
	_, err := middleware.NewKeyring([]byte("short-key"))
	assert.Error(t, err)

	_, err = middleware.NewKeyring(generateKey(t), []byte("short-fallback"))
	assert.ErrorContains(t, err, "key #2")
}

func TestParseKeyring(t *testing.T) {
	key := generateKey(t)
	encoded := base64.StdEncoding.EncodeToString(key)

	k, err := middleware.ParseKeyring(" "+encoded+"\n", encoded)
	require.NoError(t, err)
	require.NotNil(t, k)

	_, err = middleware.ParseKeyring(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
	_, err = middleware.ParseKeyring("not base64!")
	assert.ErrorContains(t, err, "key #1")
	_, err = middleware.ParseKeyring(encoded, "not base64!")
	assert.ErrorContains(t, err, "key #2")
}
