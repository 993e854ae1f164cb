package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bizdesk/bizdesk/internal/kv"
)

// ErrTransactionNotFound is returned when a transaction is not found.
var ErrTransactionNotFound = errors.New("transaction not found")

// Repository provides operations on an owner's transaction list.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]Transaction, error)
	Create(ctx context.Context, ownerID string, t *Transaction) error
	Delete(ctx context.Context, ownerID, id string) error
}

// KVRepository implements Repository over the key-value store. Each
// owner's transactions live in one JSON array under
// <prefix>_transactions_<owner>.
type KVRepository struct {
	mu     sync.Mutex
	store  kv.Store
	prefix string
}

// NewKVRepository creates a finance Repository keyed under prefix.
func NewKVRepository(store kv.Store, prefix string) *KVRepository {
	return &KVRepository{store: store, prefix: prefix}
}

func (r *KVRepository) key(ownerID string) string {
	return r.prefix + "_transactions_" + ownerID
}

func (r *KVRepository) load(ctx context.Context, ownerID string) ([]Transaction, error) {
	txs, _, err := kv.Get[[]Transaction](ctx, r.store, r.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	return txs, nil
}

// List returns all of an owner's transactions.
func (r *KVRepository) List(ctx context.Context, ownerID string) ([]Transaction, error) {
	txs, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}

// Create appends a transaction to the owner's list.
func (r *KVRepository) Create(ctx context.Context, ownerID string, t *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txs, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := kv.Set(ctx, r.store, r.key(ownerID), append(txs, *t)); err != nil {
		return fmt.Errorf("saving transactions: %w", err)
	}
	return nil
}

// Delete removes the transaction with the given ID.
func (r *KVRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txs, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range txs {
		if txs[i].ID == id {
			txs = append(txs[:i], txs[i+1:]...)
			if err := kv.Set(ctx, r.store, r.key(ownerID), txs); err != nil {
				return fmt.Errorf("saving transactions: %w", err)
			}
			return nil
		}
	}
	return ErrTransactionNotFound
}
