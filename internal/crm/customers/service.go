package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// createRetries bounds how often a create is retried when the generated
// customer id collides with a row inserted by legacy data.
const createRetries = 2

type Service struct {
	repo Repository
	gen  *sequence.Generator
}

func NewService(repo Repository, gen *sequence.Generator) *Service {
	return &Service{repo: repo, gen: gen}
}

// Create assigns the customer id once at creation. The short name is derived
// from the full name when the caller does not supply one.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, createdBy string) (*Customer, error) {
	shortName := strings.ToUpper(strings.TrimSpace(req.ShortName))
	if shortName == "" {
		shortName = DeriveShortName(req.Name)
	}
	if shortName == "" {
		return nil, fmt.Errorf("%w: customer name yields an empty short name", shared.ErrValidation)
	}

	customer := Customer{
		Name:           strings.TrimSpace(req.Name),
		ShortName:      shortName,
		PotentialLevel: req.PotentialLevel,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Notes:          req.Notes,
		State:          StateActive,
		CreatedBy:      createdBy,
	}

	var lastErr error
	for attempt := 0; attempt <= createRetries; attempt++ {
		customerID, err := s.gen.CustomerID(ctx, shortName)
		if err != nil {
			return nil, fmt.Errorf("generate customer id: %w", err)
		}
		customer.CustomerID = customerID

		id, err := s.repo.Create(ctx, customer)
		if err == nil {
			return s.repo.Get(ctx, id)
		}
		if !errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create customer: %w", lastErr)
}

// Update merges a partial update. The customer id is never regenerated.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if existing.State == StateDeleted {
		return nil, fmt.Errorf("%w: customer %s is deleted", shared.ErrValidation, existing.CustomerID)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.PotentialLevel != nil {
		updates["potential_level"] = *req.PotentialLevel
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return existing, nil
	}

	expected := req.Revision
	if expected == 0 {
		expected = existing.Revision
	}
	if err := s.repo.Update(ctx, id, expected, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete soft-deletes the customer. Related opportunities, care records,
// surveys and quotations are left untouched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get customer: %w", err)
	}
	if existing.State == StateDeleted {
		return nil
	}
	if err := s.repo.SetState(ctx, id, StateDeleted); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCustomerID(ctx context.Context, customerID string) (*Customer, error) {
	return s.repo.GetByCustomerID(ctx, customerID)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}
