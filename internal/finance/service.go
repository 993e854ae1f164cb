package finance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bizdesk/bizdesk/internal/auth"
)

// ErrInvalidType is returned for an unknown transaction type.
var ErrInvalidType = errors.New("transaction type must be income or expense")

// ErrInvalidAmount is returned for a zero or negative amount.
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// Service provides finance-tracker operations for authenticated owners.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a finance Service. now may be nil for time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Input carries the caller-editable transaction fields.
type Input struct {
	Type        string
	Category    string
	Description string
	Amount      float64
	Date        time.Time
}

// List returns the owner's transactions, optionally narrowed by type.
func (s *Service) List(ctx context.Context, ownerID, typ string) ([]Transaction, error) {
	txs, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return txs, nil
	}

	out := []Transaction{}
	for _, t := range txs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out, nil
}

// Add records a transaction with a fresh ID. An unset date defaults to
// the current time.
func (s *Service) Add(ctx context.Context, ownerID string, in Input) (*Transaction, error) {
	if !ValidType(in.Type) {
		return nil, ErrInvalidType
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	id, err := auth.NewID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	if in.Date.IsZero() {
		in.Date = now
	}

	t := &Transaction{
		ID:          id,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, ownerID, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Summarize totals the owner's transactions.
func (s *Service) Summarize(ctx context.Context, ownerID string) (*Summary, error) {
	txs, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Count: len(txs)}
	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			sum.TotalIncome += t.Amount
		case TypeExpense:
			sum.TotalExpenses += t.Amount
		}
	}
	sum.Net = sum.TotalIncome - sum.TotalExpenses
	if sum.TotalIncome > 0 {
		sum.ProfitMargin = sum.Net / sum.TotalIncome * 100
	}
	return sum, nil
}
