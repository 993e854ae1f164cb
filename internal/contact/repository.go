package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bizdesk/bizdesk/internal/kv"
)

// ErrContactNotFound is returned when a contact record is not found.
var ErrContactNotFound = errors.New("contact not found")

// Repository provides operations on an owner's contact list.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*Contact, error)
	Create(ctx context.Context, ownerID string, c *Contact) error
	Update(ctx context.Context, ownerID string, c *Contact) error
	Delete(ctx context.Context, ownerID, id string) error
}

// KVRepository implements Repository over the key-value store. Each
// owner's contacts live in one JSON array under <prefix>_contacts_<owner>.
type KVRepository struct {
	mu     sync.Mutex
	store  kv.Store
	prefix string
}

// NewKVRepository creates a contact Repository keyed under prefix.
func NewKVRepository(store kv.Store, prefix string) *KVRepository {
	return &KVRepository{store: store, prefix: prefix}
}

func (r *KVRepository) key(ownerID string) string {
	return r.prefix + "_contacts_" + ownerID
}

func (r *KVRepository) load(ctx context.Context, ownerID string) ([]Contact, error) {
	contacts, _, err := kv.Get[[]Contact](ctx, r.store, r.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	return contacts, nil
}

func (r *KVRepository) save(ctx context.Context, ownerID string, contacts []Contact) error {
	if err := kv.Set(ctx, r.store, r.key(ownerID), contacts); err != nil {
		return fmt.Errorf("saving contacts: %w", err)
	}
	return nil
}

// List returns all of an owner's contacts.
func (r *KVRepository) List(ctx context.Context, ownerID string) ([]Contact, error) {
	contacts, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return contacts, nil
}

// GetByID retrieves a single contact.
func (r *KVRepository) GetByID(ctx context.Context, ownerID, id string) (*Contact, error) {
	contacts, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			c := contacts[i]
			return &c, nil
		}
	}
	return nil, ErrContactNotFound
}

// Create appends a contact to the owner's list.
func (r *KVRepository) Create(ctx context.Context, ownerID string, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	return r.save(ctx, ownerID, append(contacts, *c))
}

// Update replaces the contact with the same ID.
func (r *KVRepository) Update(ctx context.Context, ownerID string, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range contacts {
		if contacts[i].ID == c.ID {
			contacts[i] = *c
			return r.save(ctx, ownerID, contacts)
		}
	}
	return ErrContactNotFound
}

// Delete removes the contact with the given ID.
func (r *KVRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			contacts = append(contacts[:i], contacts[i+1:]...)
			return r.save(ctx, ownerID, contacts)
		}
	}
	return ErrContactNotFound
}
