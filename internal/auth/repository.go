package auth

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a user whose email already has
// a record.
var ErrEmailTaken = errors.New("email already registered")

// ErrSessionNotFound is returned when a session record is not found.
var ErrSessionNotFound = errors.New("session not found")

// UserRepository provides operations on the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// FindByEmail looks up a record by normalized email; (nil, nil) when
	// no record exists.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Update replaces the record with the same ID.
	Update(ctx context.Context, user *User) error
	List(ctx context.Context) ([]User, error)
}

// SessionRepository provides operations on persisted session records.
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Session, error)
}
