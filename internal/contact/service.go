package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bizdesk/bizdesk/internal/auth"
)

// ErrInvalidStatus is returned for an unknown pipeline status.
var ErrInvalidStatus = errors.New("invalid contact status")

// ErrEmptyName is returned when an update would blank the contact's name.
var ErrEmptyName = errors.New("contact name cannot be empty")

// Service provides contact operations for authenticated owners.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a contact Service. now may be nil for time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Input carries the caller-editable contact fields.
type Input struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Status  string
	Notes   string
}

// List returns the owner's contacts, optionally narrowed by pipeline
// status and a case-insensitive search over name, email, and company.
func (s *Service) List(ctx context.Context, ownerID, status, query string) ([]Contact, error) {
	contacts, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if status == "" && query == "" {
		return contacts, nil
	}

	query = strings.ToLower(query)
	out := []Contact{}
	for _, c := range contacts {
		if status != "" && c.Status != status {
			continue
		}
		if query != "" && !matchesQuery(&c, query) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Get retrieves a single contact.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Contact, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// Create adds a contact with a fresh ID. An empty status defaults to lead.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*Contact, error) {
	if in.Status == "" {
		in.Status = StatusLead
	}
	if !ValidStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	id, err := auth.NewID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &Contact{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Status:    in.Status,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, ownerID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateInput carries optional field replacements for a contact. A nil
// field keeps the stored value; a set field replaces it, so a caller can
// still clear email, phone, company, or notes by sending the empty string.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Status  *string
	Notes   *string
}

// Update applies the set fields of the input to an existing contact and
// leaves the omitted ones untouched.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		c.Status = *in.Status
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		c.Name = name
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Company != nil {
		c.Company = strings.TrimSpace(*in.Company)
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, ownerID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func matchesQuery(c *Contact, query string) bool {
	for _, field := range []string{c.Name, c.Email, c.Company} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
