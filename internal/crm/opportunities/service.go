package opportunities

import (
	"context"
	"fmt"
	"time"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	gen          *sequence.Generator
	now          func() time.Time
}

func NewService(repo Repository, customerRepo customers.Repository, gen *sequence.Generator) *Service {
	return &Service{repo: repo, customerRepo: customerRepo, gen: gen, now: time.Now}
}

// Create opens a new opportunity. The number is sequenced within the creation
// day and the value is computed server-side; any value sent by the client is
// discarded.
func (s *Service) Create(ctx context.Context, req CreateOpportunityRequest, createdBy string) (*Opportunity, error) {
	customer, err := s.customerRepo.Get(ctx, req.CustomerRef)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}
	if customer.State == customers.StateDeleted {
		return nil, fmt.Errorf("%w: customer %s is deleted", shared.ErrValidation, customer.CustomerID)
	}

	opportunityNo, err := s.gen.OpportunityNo(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate opportunity no: %w", err)
	}

	opportunity := Opportunity{
		OpportunityNo:    opportunityNo,
		CustomerRef:      req.CustomerRef,
		Demands:          req.Demands,
		UnitPrice:        req.UnitPrice,
		Probability:      req.Probability,
		OpportunityValue: Value(req.UnitPrice, req.Probability),
		CareHistory:      []string{},
		Status:           StatusOpen,
		Notes:            req.Notes,
		CreatedBy:        createdBy,
	}

	id, err := s.repo.Create(ctx, opportunity)
	if err != nil {
		return nil, fmt.Errorf("create opportunity: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update merges a partial edit. Closed opportunities are read-only. The value
// is recomputed whenever either operand changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOpportunityRequest) (*Opportunity, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	if existing.Closed() {
		return nil, fmt.Errorf("%w: opportunity %s is %s", shared.ErrLocked, existing.OpportunityNo, existing.Status)
	}

	updates := make(map[string]interface{})
	unitPrice := existing.UnitPrice
	probability := existing.Probability

	if req.Demands != nil {
		updates["demands"] = *req.Demands
	}
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
		updates["unit_price"] = unitPrice
	}
	if req.Probability != nil {
		probability = *req.Probability
		updates["probability"] = probability
	}
	if req.UnitPrice != nil || req.Probability != nil {
		updates["opportunity_value"] = Value(unitPrice, probability)
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
		return nil, fmt.Errorf("update opportunity: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Transition closes the opportunity as won or lost.
func (s *Service) Transition(ctx context.Context, id int64, target OpportunityStatus) (*Opportunity, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	if err := ValidateTransition(existing.Status, target); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, existing.Status, target); err != nil {
		return nil, fmt.Errorf("update opportunity status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Opportunity, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListOpportunitiesRequest) ([]Opportunity, int, error) {
	return s.repo.List(ctx, req)
}
