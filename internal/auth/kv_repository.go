package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bizdesk/bizdesk/internal/kv"
)

// KVUserRepository implements UserRepository over the key-value store. All
// credential records live in one JSON array under <prefix>_users, which is
// read and rewritten whole on every mutation. A process-local mutex keeps
// those read-modify-write cycles from interleaving; cross-process races
// are accepted (the store serves a single owner's data).
type KVUserRepository struct {
	mu     sync.Mutex
	store  kv.Store
	prefix string
}

// NewKVUserRepository creates a UserRepository keyed under prefix.
func NewKVUserRepository(store kv.Store, prefix string) *KVUserRepository {
	return &KVUserRepository{store: store, prefix: prefix}
}

func (r *KVUserRepository) usersKey() string {
	return r.prefix + "_users"
}

func (r *KVUserRepository) load(ctx context.Context) ([]User, error) {
	users, _, err := kv.Get[[]User](ctx, r.store, r.usersKey())
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	return users, nil
}

func (r *KVUserRepository) save(ctx context.Context, users []User) error {
	if err := kv.Set(ctx, r.store, r.usersKey(), users); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}

// Create appends a new credential record, enforcing email uniqueness.
func (r *KVUserRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].Email == user.Email {
			return ErrEmailTaken
		}
	}

	return r.save(ctx, append(users, *user))
}

// GetByID retrieves a record by its ID.
func (r *KVUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByEmail looks up a record by normalized email; (nil, nil) when absent.
func (r *KVUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// Update replaces the record with the same ID.
func (r *KVUserRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			return r.save(ctx, users)
		}
	}
	return ErrUserNotFound
}

// List returns all credential records.
func (r *KVUserRepository) List(ctx context.Context) ([]User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// KVSessionRepository implements SessionRepository over the key-value
// store, one document per session under <prefix>_session_<id>.
type KVSessionRepository struct {
	store  kv.Store
	prefix string
}

// NewKVSessionRepository creates a SessionRepository keyed under prefix.
func NewKVSessionRepository(store kv.Store, prefix string) *KVSessionRepository {
	return &KVSessionRepository{store: store, prefix: prefix}
}

func (r *KVSessionRepository) sessionKey(id string) string {
	return r.prefix + "_session_" + id
}

// Save persists the session record under its own key.
func (r *KVSessionRepository) Save(ctx context.Context, session *Session) error {
	if err := kv.Set(ctx, r.store, r.sessionKey(session.ID), session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session record by ID.
func (r *KVSessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	session, found, err := kv.Get[Session](ctx, r.store, r.sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session record. Absent records are not an error.
func (r *KVSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.sessionKey(id)); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// List returns every persisted session record.
func (r *KVSessionRepository) List(ctx context.Context) ([]Session, error) {
	keyPrefix := r.prefix + "_session_"
	keys, err := r.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing session keys: %w", err)
	}

	sessions := []Session{}
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		session, found, err := kv.Get[Session](ctx, r.store, key)
		if err != nil {
			return nil, fmt.Errorf("loading session %q: %w", key, err)
		}
		if found {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}
