package auth

import (
	"fmt"
	"sync"
	"time"
)

const (
	// maxAttempts is how many failed logins an email gets inside the
	// rolling window before it is locked out.
	maxAttempts = 5
	// attemptWindow is the rolling window the attempt counter lives in.
	attemptWindow = 15 * time.Minute
	// lockoutDuration is how long an email stays locked after the
	// threshold is crossed.
	lockoutDuration = 30 * time.Minute
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed bool
	// Message is set when the attempt is refused.
	Message string
	// Remaining is the number of failed attempts left in the current
	// window when Allowed is true.
	Remaining int
	// RetryAfter is how long until the lockout lifts when Allowed is false.
	RetryAfter time.Duration
}

type limitEntry struct {
	attempts    int
	lastAttempt time.Time
	lockedUntil time.Time
}

// Limiter throttles failed login attempts per normalized email. State is
// in-memory and lost on restart; that is a deliberate scoping decision
// carried over from the original single-user deployment and would need a
// shared backing store in a multi-instance setup.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*limitEntry
	now     func() time.Time
}

// NewLimiter creates a Limiter. now may be nil, in which case time.Now is
// used; tests inject a fake clock.
func NewLimiter(now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		entries: make(map[string]*limitEntry),
		now:     now,
	}
}

// Check reports whether a login attempt for email may proceed. An entry
// whose window or lockout has elapsed is reset on the spot.
func (l *Limiter) Check(email string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[email]
	if !ok {
		return Decision{Allowed: true, Remaining: maxAttempts}
	}

	if !e.lockedUntil.IsZero() {
		if now.Before(e.lockedUntil) {
			wait := e.lockedUntil.Sub(now)
			return Decision{
				Allowed:    false,
				Message:    fmt.Sprintf("Too many failed attempts. Please try again in %s.", humanDuration(wait)),
				RetryAfter: wait,
			}
		}
		// Lockout elapsed.
		delete(l.entries, email)
		return Decision{Allowed: true, Remaining: maxAttempts}
	}

	if now.Sub(e.lastAttempt) > attemptWindow {
		// Window elapsed without reaching the threshold.
		delete(l.entries, email)
		return Decision{Allowed: true, Remaining: maxAttempts}
	}

	return Decision{Allowed: true, Remaining: maxAttempts - e.attempts}
}

// Record registers the outcome of a login attempt. A success clears all
// state for the email; a failure increments the counter and arms the
// lockout once the threshold is reached.
func (l *Limiter) Record(email string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		delete(l.entries, email)
		return
	}

	now := l.now()

	e, ok := l.entries[email]
	if !ok || now.Sub(e.lastAttempt) > attemptWindow {
		e = &limitEntry{}
		l.entries[email] = e
	}

	e.attempts++
	e.lastAttempt = now
	if e.attempts >= maxAttempts {
		e.lockedUntil = now.Add(lockoutDuration)
	}
}

// humanDuration renders a wait time the way the lockout message needs it:
// whole minutes, rounded up, falling back to seconds under a minute.
func humanDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	mins := int((d + time.Minute - 1) / time.Minute)
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
