package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/bizdesk/internal/auth"
	"github.com/bizdesk/bizdesk/internal/kv"
	"github.com/bizdesk/bizdesk/internal/sweeper"
)

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	store := kv.NewMemoryStore()
	sessions := auth.NewKVSessionRepository(store, "bizdesk")
	ctx := context.Background()
	now := time.Now()

	fresh, err := auth.NewSession("user-1", now.Add(-time.Hour))
	require.NoError(t, err)
	stale, err := auth.NewSession("user-2", now.Add(-25*time.Hour))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, fresh))
	require.NoError(t, sessions.Save(ctx, stale))

	s := sweeper.New(sessions, time.Minute, func() time.Time { return now })
	s.Sweep(ctx)

	_, err = sessions.Get(ctx, fresh.ID)
	assert.NoError(t, err, "active session must survive the sweep")

	_, err = sessions.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSweep_NothingToDo(t *testing.T) {
	store := kv.NewMemoryStore()
	sessions := auth.NewKVSessionRepository(store, "bizdesk")
	ctx := context.Background()

	s := sweeper.New(sessions, time.Minute, nil)
	s.Sweep(ctx)

	list, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	store := kv.NewMemoryStore()
	sessions := auth.NewKVSessionRepository(store, "bizdesk")

	s := sweeper.New(sessions, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
