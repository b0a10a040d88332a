package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/agentforge/pkg/adapters/redis"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*redis.Store)(nil)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Now()
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, "input-source")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Key expiry in miniredis, index pruning by the injected clock.
	mr.FastForward(2 * time.Second)
	now = now.Add(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, "input-source")))

	assert.True(t, mr.Exists("custom:app:session:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, store.Save(context.Background(), "abc", domain.NewState("abc", "input-source")))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"session:abc"))
	assert.Equal(t, redis.DefaultPrefix, store.Prefix())
}

func TestRedisStore_ReservedNamesAreSessionIDs(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("p:"))
	locker := redis.NewLocker(client, store.Prefix())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "real", domain.NewState("real", "input-source")))
	for _, id := range []string{"index", "lock:real", "session:real"} {
		require.NoError(t, store.Save(ctx, id, domain.NewState(id, "input-source")), id)
	}

	unlock, err := locker.Lock(ctx, "real", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("p:lock:real"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"real", "index", "lock:real", "session:real"}, ids)

	for _, id := range []string{"real", "index", "lock:real", "session:real"} {
		state, err := store.Load(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, id, state.SessionID)
	}

	require.NoError(t, store.Delete(ctx, "lock:real"))
	assert.True(t, mr.Exists("p:lock:real"), "deleting a session never releases a lock")
	require.NoError(t, unlock(ctx))

	require.NoError(t, store.Delete(ctx, "index"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"real", "session:real"}, ids)
}
