package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_StampsBothTimestamps(t *testing.T) {
	now := newFakeClock().Now()

	s, err := NewSession("user-1", now)
	require.NoError(t, err)

	assert.Len(t, s.ID, 32)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.LastActivity)
	assert.True(t, s.Valid(now))
}

func TestSession_ExpiresAfterInactivityWindow(t *testing.T) {
	clock := newFakeClock()
	s, err := NewSession("user-1", clock.Now())
	require.NoError(t, err)

	clock.Advance(SessionTTL)
	assert.True(t, s.Valid(clock.Now()), "exactly at the boundary is still valid")

	clock.Advance(time.Second)
	assert.False(t, s.Valid(clock.Now()))
}

func TestSession_RefreshExtendsValidity(t *testing.T) {
	clock := newFakeClock()
	s, err := NewSession("user-1", clock.Now())
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	refreshed := s.Refreshed(clock.Now())

	clock.Advance(2 * time.Hour)
	assert.False(t, s.Valid(clock.Now()), "the original copy is untouched")
	assert.True(t, refreshed.Valid(clock.Now()))
	assert.Equal(t, s.CreatedAt, refreshed.CreatedAt)
}

func TestSession_NilIsInvalid(t *testing.T) {
	var s *Session
	assert.False(t, s.Valid(time.Now()))
}
