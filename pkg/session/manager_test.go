package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/maitre/pkg/adapters/memory"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/aretw0/maitre/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	inner *memory.Store
}

func (s *SlowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.inner.Save(ctx, sess)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	return s.inner.Load(ctx, sessionID)
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	return s.inner.Delete(ctx, sessionID)
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

func TestManager_UpdateIsSerialised(t *testing.T) {
	store := &SlowStore{inner: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Create(ctx, domain.NewSession(id)))

	var wg sync.WaitGroup
	concurrentWrites := 10

	// Without the lock, concurrent read-modify-write cycles would lose appends.
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
				next := s.Snapshot()
				next.Append(domain.RoleUser, fmt.Sprintf("msg-%d", val))
				return next, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, final.Messages, concurrentWrites)
}

func TestManager_Create(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, domain.NewSession("s1")))
	assert.Error(t, manager.Create(ctx, domain.NewSession("s1")), "duplicate id")
	assert.Error(t, manager.Create(ctx, domain.NewSession("")), "empty id")

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestManager_UpdateFailureKeepsStoredSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Create(ctx, domain.NewSession("s1")))

	boom := errors.New("extraction failed")
	_, err := manager.Update(ctx, "s1", func(s *domain.Session) (*domain.Session, error) {
		s.Append(domain.RoleUser, "lost")
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Messages)
}

func TestManager_NotFound(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := manager.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	called := false
	_, err = manager.Update(ctx, "missing", func(s *domain.Session) (*domain.Session, error) {
		called = true
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.False(t, called)
}

// countingLocker records lock traffic without any backend.
type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastTTL  time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.lastTTL = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, domain.NewSession("s1")))
	_, err := manager.Load(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.lastTTL)

	locker.failWith = errors.New("redis down")
	_, err = manager.Load(ctx, "s1")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
