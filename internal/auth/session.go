package auth

import "time"

// SessionTTL is the sliding inactivity window: a session stays valid while
// its last activity is within this duration, and every validity check
// refreshes the timestamp.
const SessionTTL = 24 * time.Hour

// Session is a persisted proof that a user has authenticated. The JSON
// field names are the stored contract.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// NewSession creates a session for userID with both timestamps set to now.
func NewSession(userID string, now time.Time) (*Session, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

// Valid reports whether the session's last activity is within the TTL.
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.LastActivity) <= SessionTTL
}

// Refreshed returns a copy with LastActivity set to now. Callers persist
// the copy; the receiver is not mutated.
func (s *Session) Refreshed(now time.Time) *Session {
	out := *s
	out.LastActivity = now
	return &out
}
