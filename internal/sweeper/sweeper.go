// Package sweeper removes expired session records in the background. It is
// the server-side counterpart of the client app's periodic validity
// re-check: sessions that stop being touched are deleted once their
// inactivity window lapses, instead of lingering until next use.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/bizdesk/bizdesk/internal/auth"
)

// Sweeper periodically deletes expired sessions.
type Sweeper struct {
	sessions auth.SessionRepository
	interval time.Duration
	now      func() time.Time
}

// New creates a Sweeper. now may be nil, in which case time.Now is used.
func New(sessions auth.SessionRepository, interval time.Duration, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{sessions: sessions, interval: interval, now: now}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("session sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes every session whose inactivity window has lapsed.
func (s *Sweeper) Sweep(ctx context.Context) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		slog.Error("sweeper: failed to list sessions", "error", err)
		return
	}

	now := s.now()
	removed := 0
	for i := range sessions {
		if ctx.Err() != nil {
			return
		}
		if sessions[i].Valid(now) {
			continue
		}
		if err := s.sessions.Delete(ctx, sessions[i].ID); err != nil {
			slog.Error("sweeper: failed to delete session", "sessionId", sessions[i].ID, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("sweeper: removed expired sessions", "count", removed)
	}
}
