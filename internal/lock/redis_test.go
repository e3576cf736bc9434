package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/blues/launchpad/internal/errs"
)

func newRedisLock(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, ttl), mr
}

func TestRedis_LockAndRelease(t *testing.T) {
	l, mr := newRedisLock(t, time.Minute)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "project-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("launchpad:lock:project-1"))

	// 不同的键互不影响
	unlockB, err := l.Lock(ctx, "project-2")
	require.NoError(t, err)
	unlockB()

	timeout, cancel := context.WithTimeout(ctx, 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(timeout, "project-1")
	require.ErrorIs(t, err, errs.ErrLockUnavailable)

	unlock()
	require.False(t, mr.Exists("launchpad:lock:project-1"))

	unlock, err = l.Lock(ctx, "project-1")
	require.NoError(t, err)
	unlock()
}

func TestRedis_StaleReleaseKeepsNewHolder(t *testing.T) {
	l, mr := newRedisLock(t, time.Second)
	ctx := context.Background()
	key := "launchpad:lock:project-1"

	stale, err := l.Lock(ctx, "project-1")
	require.NoError(t, err)

	// 持有者超时，锁被他人获取
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))

	current, err := l.Lock(ctx, "project-1")
	require.NoError(t, err)
	holder, err := mr.Get(key)
	require.NoError(t, err)

	stale()
	got, err := mr.Get(key)
	require.NoError(t, err)
	require.Equal(t, holder, got)

	current()
	require.False(t, mr.Exists(key))
}
