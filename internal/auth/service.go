package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrAccountExists is returned by Register when the email already has a
// record. Registration is the one flow allowed to disclose this: the
// registrant already knows their own email.
var ErrAccountExists = errors.New("an account with this email already exists")

// ErrSessionInvalid is returned by Authenticate when the token or its
// session record is missing, expired, or otherwise unusable.
var ErrSessionInvalid = errors.New("session is invalid or expired")

// RateLimitError refuses a login while the email is locked out. It is not
// an authentication failure: no attempt is recorded against the account.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Message }

// InvalidCredentialsError is the generic login failure. It never says
// whether the email or the password was wrong. Remaining is the number of
// attempts left before lockout, or -1 when no warning should be shown.
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string {
	switch {
	case e.Remaining == 0:
		return "Invalid email or password. Account temporarily locked due to too many failed attempts."
	case e.Remaining == 1:
		return "Invalid email or password. 1 attempt remaining before temporary lockout."
	case e.Remaining > 0:
		return fmt.Sprintf("Invalid email or password. %d attempts remaining before temporary lockout.", e.Remaining)
	default:
		return "Invalid email or password."
	}
}

// warnThreshold is the remaining-attempt count at or below which login
// failures start warning the user about the coming lockout.
const warnThreshold = 2

// Service implements registration, login, logout, and request
// authentication over the credential and session stores.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	limiter    *Limiter
	secret     []byte
	bcryptCost int
	now        func() time.Time
}

// NewService creates an auth Service. now may be nil, in which case
// time.Now is used; tests inject a fake clock.
func NewService(users UserRepository, sessions SessionRepository, limiter *Limiter, secret []byte, bcryptCost int, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		limiter:    limiter,
		secret:     secret,
		bcryptCost: bcryptCost,
		now:        now,
	}
}

// Result is returned by the flows that establish a session.
type Result struct {
	User    *PublicUser
	Session *Session
	Token   string
}

// NormalizeEmail lowercases and trims an email for use as the credential
// store's lookup key and the rate limiter's identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a credential record and a fresh session. Password
// strength is the caller's concern; by the time a password reaches this
// flow it has already passed validation.
func (s *Service) Register(ctx context.Context, email, password, name, company string) (*Result, error) {
	email = NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	id, err := NewID()
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Company:      strings.TrimSpace(company),
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	slog.Info("user registered", "userId", user.ID)

	return s.establishSession(ctx, user)
}

// Login authenticates an email/password pair. The rate limiter is
// consulted before the credential store is touched; legacy credential
// forms are upgraded to bcrypt on a successful match.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = NormalizeEmail(email)

	if d := s.limiter.Check(email); !d.Allowed {
		return nil, &RateLimitError{Message: d.Message, RetryAfter: d.RetryAfter}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, s.recordFailure(email)
	}

	ok, migrate := VerifyPassword(user, password)
	if !ok {
		return nil, s.recordFailure(email)
	}

	if migrate {
		if err := s.migrateCredential(ctx, user, password); err != nil {
			// The login itself succeeded; the upgrade retries next time.
			slog.Error("credential migration failed", "userId", user.ID, "error", err)
		}
	}

	s.limiter.Record(email, true)
	slog.Info("user logged in", "userId", user.ID)

	return s.establishSession(ctx, user)
}

// Logout deletes the persisted session record.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a bearer token to an Identity. A valid check
// refreshes the session's activity timestamp; an expired session record
// is deleted on detection.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	userID, sessionID, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	now := s.now()
	if session.UserID != userID || !session.Valid(now) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			slog.Warn("failed to delete expired session", "sessionId", sessionID, "error", err)
		}
		return nil, ErrSessionInvalid
	}

	if err := s.sessions.Save(ctx, session.Refreshed(now)); err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	return &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Company:   user.Company,
		SessionID: session.ID,
	}, nil
}

// recordFailure registers a failed attempt and builds the generic error,
// attaching the remaining-attempt warning once the user is close to
// lockout.
func (s *Service) recordFailure(email string) error {
	s.limiter.Record(email, false)

	d := s.limiter.Check(email)
	if !d.Allowed {
		// This failure armed the lockout.
		return &InvalidCredentialsError{Remaining: 0}
	}
	if d.Remaining <= warnThreshold {
		return &InvalidCredentialsError{Remaining: d.Remaining}
	}
	return &InvalidCredentialsError{Remaining: -1}
}

// migrateCredential rewrites a legacy record with a bcrypt hash and drops
// the transitional plaintext field.
func (s *Service) migrateCredential(ctx context.Context, user *User, password string) error {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.LegacyPassword = ""

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	slog.Info("credential upgraded to bcrypt", "userId", user.ID)
	return nil
}

func (s *Service) establishSession(ctx context.Context, user *User) (*Result, error) {
	now := s.now()

	session, err := NewSession(user.ID, now)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := GenerateToken(user.ID, session.ID, s.secret, now)
	if err != nil {
		return nil, err
	}

	return &Result{
		User:    user.PublicView(),
		Session: session,
		Token:   token,
	}, nil
}
